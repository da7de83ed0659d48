package requestid

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/venuehub/pkg/logger"
)

// LoggerExtractor adds the request ID to log records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return logger.RequestID(id), true
		}
		return slog.Attr{}, false
	}
}
