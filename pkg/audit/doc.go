// Package audit keeps a durable trail of security relevant actions.
//
// A Logger stamps each event with an ID, a timestamp and whatever the
// configured context extractors find (acting user, request ID, client IP)
// and hands it to a Storage. Reads go through Storage.Query directly.
//
//	log := audit.NewLogger(audit.NewMemoryStorage(1000),
//		audit.WithRequestIDExtractor(func(ctx context.Context) (string, bool) {
//			id := requestid.FromContext(ctx)
//			return id, id != ""
//		}),
//	)
//	_ = log.Log(ctx, "auth.2fa_disabled", audit.WithResource("account", id.String()))
package audit
