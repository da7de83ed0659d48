package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/venuehub/handler"
	"github.com/dmitrymomot/venuehub/pkg/auth"
	authhttp "github.com/dmitrymomot/venuehub/svc/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type identityResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     auth.Role `json:"role"`
	LoginAt  time.Time `json:"loginAt"`
}

func toIdentityResponse(id auth.Identity) identityResponse {
	return identityResponse{
		ID:       id.AccountID,
		Username: id.Username,
		Role:     id.Role,
		LoginAt:  id.LoginAt,
	}
}

type loginResponse struct {
	OK          bool              `json:"ok,omitempty"`
	Requires2FA bool              `json:"requires2FA,omitempty"`
	User        *identityResponse `json:"user,omitempty"`
}

// login saves whatever state the attempt produced, failed attempts included,
// so a wrong password also drops a previous identity.
func (s *Service) login(ctx handler.Context, req loginRequest) handler.Response {
	w := ctx.ResponseWriter()
	sess, err := s.sessions.Ensure(ctx, w, ctx.Request())
	if err != nil {
		return handler.Error(err)
	}

	next, res, loginErr := s.auth.Login(ctx, sess.Auth, auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
		Code:     req.Code,
	})
	if err := s.sessions.Save(ctx, w, sess, next); err != nil {
		return handler.Error(err)
	}
	if loginErr != nil {
		return handler.Error(loginErr)
	}

	if res.Requires2FA {
		return handler.JSON(loginResponse{Requires2FA: true})
	}
	user := toIdentityResponse(*res.Identity)
	return handler.JSON(loginResponse{OK: true, User: &user})
}

// me runs behind RequireAuth, which puts the identity in the context.
func (s *Service) me(ctx handler.Context, _ struct{}) handler.Response {
	id, ok := authhttp.IdentityFromContext(ctx)
	if !ok {
		return handler.Error(auth.ErrUnauthenticated)
	}
	return handler.JSON(toIdentityResponse(id))
}

// logout deletes the session record outright, so there is no anonymous state
// left to save.
func (s *Service) logout(ctx handler.Context, _ struct{}) handler.Response {
	if err := s.sessions.Destroy(ctx, ctx.ResponseWriter(), ctx.Request()); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}
