// Package requestid tags every HTTP request with a correlation ID.
//
// Middleware reuses a well-formed incoming X-Request-ID header or generates a
// UUID, stores it in the context and echoes it in the response. Register
// LoggerExtractor with pkg/logger so every record carries request_id.
package requestid
