// Package requestid tags each HTTP request with a correlation ID.
//
// The ID comes from the X-Request-ID header when it is well formed and is
// generated as a UUIDv7 otherwise. It is echoed in the response header and
// can be added to every log record:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r.Use(requestid.Middleware())
package requestid
