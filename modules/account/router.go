package account

import (
	"github.com/go-chi/chi/v5"
)

// Registrar adds its routes to a router.
type Registrar interface {
	Register(r chi.Router)
}

// RouterOptions selects the route groups to mount. Nil groups are skipped.
type RouterOptions struct {
	Account Registrar
	Admin   Registrar
}

// Router builds the application routes.
//
//	r.Group(func(r chi.Router) {
//		r.Use(sessions.Middleware)
//		r.Mount("/", account.Router(account.RouterOptions{
//			Account: account.NewService(authSvc, sessions),
//			Admin:   admin.NewService(authSvc),
//		}))
//	})
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	if opts.Account != nil {
		opts.Account.Register(r)
	}
	if opts.Admin != nil {
		r.Route("/admin", opts.Admin.Register)
	}
	return r
}
