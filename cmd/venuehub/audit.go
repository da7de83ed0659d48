package main

import (
	"context"

	"github.com/dmitrymomot/venuehub/pkg/audit"
	"github.com/dmitrymomot/venuehub/pkg/clientip"
	"github.com/dmitrymomot/venuehub/pkg/requestid"
	authhttp "github.com/dmitrymomot/venuehub/svc/auth"
)

func newAuditLogger(store audit.Storage) *audit.Logger {
	return audit.NewLogger(store,
		audit.WithUserIDExtractor(authhttp.AuditExtractor()),
		audit.WithRequestIDExtractor(nonEmpty(requestid.FromContext)),
		audit.WithIPExtractor(nonEmpty(clientip.GetIPFromContext)),
	)
}

func nonEmpty(fn func(context.Context) string) audit.ContextExtractor {
	return func(ctx context.Context) (string, bool) {
		v := fn(ctx)
		return v, v != ""
	}
}
