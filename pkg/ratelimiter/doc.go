// Package ratelimiter implements token bucket rate limiting backed by process
// memory or Redis, plus HTTP middleware.
//
// A Bucket consumes tokens from a Store. Denied requests still consume, so
// Result.Remaining goes negative and a client that keeps hammering stays
// blocked until refills catch up. The auth service uses a Bucket to throttle
// TOTP and emergency code attempts per account; the middleware throttles the
// login endpoints per client IP:
//
//	limiter, _ := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//		Capacity:       10,
//		RefillRate:     1,
//		RefillInterval: 30 * time.Second,
//	})
//	r.With(ratelimiter.Middleware(limiter, ratelimiter.Composite(
//		ratelimiter.Static("login"), ratelimiter.KeyByIP,
//	))).Post("/login", h)
//
// RedisStore runs the same refill-then-consume step in a Lua script so
// several instances share buckets.
package ratelimiter
