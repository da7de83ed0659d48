// Package httpserver runs an http.Server bound to a context: cancel the
// context (for example from signal.NotifyContext) and the server drains
// in-flight requests within the shutdown timeout, then runs its hooks.
//
// HealthHandler serves liveness and readiness probes built from named checks
// such as mongo.Healthcheck or redis.Healthcheck.
package httpserver
