// Package redis connects to Redis with go-redis/v9. The client backs the
// shared session store and the distributed attempt limiter when REDIS_URL is
// configured.
package redis
