// Package middlewares provides Pablo middleware.
//
// # Recover
//
// Recover turns panics in plugins and themes into *PanicError values for the
// App's ErrorHandler. The default handler shows the panic and its stack in
// debug mode and the generic error message otherwise.
//
// # Request ID
//
// RequestID tags each request with an ID taken from X-Request-ID or
// X-Correlation-ID, or a new UUID. Pass RequestIDExtractor to logger.New to
// add request_id to every log record:
//
//	log := logger.New(cfg, middlewares.RequestIDExtractor(), pablo.PluginExtractor())
//	app := pablo.New(
//	    pablo.WithLogger(log),
//	    pablo.WithMiddleware(
//	        middlewares.Recover(),
//	        middlewares.RequestID(),
//	        middlewares.AccessLog(),
//	    ),
//	)
//
// # Access log
//
// AccessLog writes one "request completed" record per request.
package middlewares
