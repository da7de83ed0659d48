// Package logger builds *slog.Logger instances with functional options and
// injects request-scoped attributes (request id, environment) through
// ContextExtractor callbacks run on every record.
//
//	log := logger.New(
//		logger.WithEnvironment("production", "venuehub"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "login succeeded", logger.UserID(id), logger.Component("auth"))
//
// Attribute helpers such as Error and UserID return an empty slog.Attr for nil
// input so call sites can pass optional values without branching.
package logger
