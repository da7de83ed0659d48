package account

import (
	"github.com/dmitrymomot/venuehub/handler"
	"github.com/dmitrymomot/venuehub/pkg/auth"
	"github.com/dmitrymomot/venuehub/pkg/session"
)

type setupResponse struct {
	Secret        string `json:"secret"`
	QRCode        string `json:"qrCode"`
	OTPAuthURL    string `json:"otpauthUrl"`
	EmergencyCode string `json:"emergencyCode,omitempty"`
}

type enableRequest struct {
	Code string `json:"code"`
}

type disableRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

type emergencyResetRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	EmergencyCode string `json:"emergencyCode"`
}

type statusResponse struct {
	TwoFactorEnabled bool                 `json:"twoFactorEnabled"`
	Status           auth.TwoFactorStatus `json:"status,omitempty"`
}

func (s *Service) setup(ctx handler.Context, _ struct{}) handler.Response {
	res, err := s.auth.StartSetup(ctx, session.StateFromContext(ctx))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(setupResponse{
		Secret:        res.Secret,
		QRCode:        res.QRCode,
		OTPAuthURL:    res.OTPAuthURL,
		EmergencyCode: res.EmergencyCode,
	})
}

func (s *Service) enable(ctx handler.Context, req enableRequest) handler.Response {
	if err := s.auth.ConfirmSetup(ctx, session.StateFromContext(ctx), req.Code); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(statusResponse{TwoFactorEnabled: true})
}

func (s *Service) disable(ctx handler.Context, req disableRequest) handler.Response {
	err := s.auth.Disable(ctx, session.StateFromContext(ctx), auth.DisableInput{
		Password: req.Password,
		Code:     req.Code,
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(statusResponse{TwoFactorEnabled: false})
}

func (s *Service) status(ctx handler.Context, _ struct{}) handler.Response {
	st, err := s.auth.Status(ctx, session.StateFromContext(ctx))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(statusResponse{TwoFactorEnabled: st == auth.TwoFactorEnabled, Status: st})
}

// resetWithEmergencyCode never touches the caller's session; the account
// logs in normally afterwards.
func (s *Service) resetWithEmergencyCode(ctx handler.Context, req emergencyResetRequest) handler.Response {
	err := s.auth.ResetWithEmergencyCode(ctx, auth.EmergencyResetInput{
		Username:      req.Username,
		Password:      req.Password,
		EmergencyCode: req.EmergencyCode,
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(statusResponse{TwoFactorEnabled: false})
}
