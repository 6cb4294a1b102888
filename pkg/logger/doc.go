// Package logger builds the service's *slog.Logger.
//
// New applies functional options (environment defaults, level, format, output,
// static attributes) and wraps the resulting handler with one that
// runs ContextExtractor callbacks on every record. The HTTP layer registers
// extractors for the request id and the bound tenant subdomain, so any
// log line written with a request context carries both.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.App.Env, cfg.App.Name),
//		logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "tenant provisioned", logger.Subdomain("acme"))
//
// Attribute helpers in attr.go keep key names consistent. Error and Errors
// return an empty Attr for nil errors, so they can be passed unconditionally.
package logger
