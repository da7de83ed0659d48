package ratelimiter

import (
	"context"
	"time"
)

// Store keeps bucket state per key. The memory store serves a single
// instance; the Redis store shares budgets across instances.
type Store interface {
	// ConsumeTokens refills the bucket for the elapsed time, then takes
	// tokens. A negative remaining count means the check is denied. Passing
	// zero tokens only refreshes the state.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)

	// Reset forgets key, giving it a full bucket on the next check.
	Reset(ctx context.Context, key string) error
}
