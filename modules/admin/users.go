package admin

import (
	"net/http"

	"github.com/dmitrymomot/venuehub/handler"
	"github.com/dmitrymomot/venuehub/pkg/auth"
	authhttp "github.com/dmitrymomot/venuehub/svc/auth"
)

func (s *Service) list(ctx handler.Context, _ struct{}) handler.Response {
	accounts, err := s.auth.ListAccounts(ctx)
	if err != nil {
		return handler.Error(err)
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return handler.JSON(out, handler.WithJSONMeta(map[string]any{"total": len(out)}))
}

func (s *Service) get(ctx handler.Context, req usernameParam) handler.Response {
	acc, err := s.auth.GetAccount(ctx, req.Username)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(toAccountResponse(acc))
}

func (s *Service) create(ctx handler.Context, req createRequest) handler.Response {
	acc, err := s.auth.CreateAccount(ctx, auth.CreateAccountInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(toAccountResponse(acc), handler.WithJSONStatus(http.StatusCreated))
}

// update changes password and/or role. The username in the path is the key
// and cannot be changed.
func (s *Service) update(ctx handler.Context, req updateRequest) handler.Response {
	acc, err := s.auth.UpdateAccount(ctx, req.Username, auth.UpdateAccountInput{
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(toAccountResponse(acc))
}

func (s *Service) delete(ctx handler.Context, req usernameParam) handler.Response {
	actor, ok := authhttp.IdentityFromContext(ctx)
	if !ok {
		return handler.Error(auth.ErrUnauthenticated)
	}
	if err := s.auth.DeleteAccount(ctx, actor, req.Username); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}

// resetTwoFactor clears 2FA for a user who lost their device. Admin
// accounts must recover with their emergency code instead.
func (s *Service) resetTwoFactor(ctx handler.Context, req usernameParam) handler.Response {
	acc, err := s.auth.ResetTwoFactor(ctx, req.Username)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(toAccountResponse(acc))
}
