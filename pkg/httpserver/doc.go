// Package httpserver wraps net/http with graceful shutdown, configurable
// timeouts, life-cycle hooks and health probes.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithStopHook(registry.Close),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Run returns when ctx is canceled, on SIGINT/SIGTERM or after Shutdown.
// Listen errors are wrapped with ErrStart and shutdown errors with
// ErrShutdown.
//
// LivenessHandler and ReadinessHandler back the /health/live and
// /health/ready probes.
package httpserver
