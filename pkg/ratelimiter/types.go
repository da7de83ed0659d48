package ratelimiter

import "time"

// Result is the bucket state after a check.
type Result struct {
	Limit     int       // bucket capacity
	Remaining int       // negative when the check was denied
	ResetAt   time.Time // next refill
}

// Allowed reports whether the check fit in the bucket. Denied checks still
// spend their tokens, so hammering a key keeps it closed.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is zero for allowed checks.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Config describes a token bucket: Capacity tokens at most, RefillRate tokens
// added every RefillInterval.
type Config struct {
	Capacity       int
	RefillRate     int
	RefillInterval time.Duration
}

// PerWindow allows n attempts per window and refills them all at once, which
// is how login, recovery and second-factor budgets are expressed.
func PerWindow(n int, window time.Duration) Config {
	return Config{Capacity: n, RefillRate: n, RefillInterval: window}
}
