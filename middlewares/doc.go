// Package middlewares provides HTTP middleware for unchained applications.
//
// # Request ID
//
// RequestID assigns an ID to each request for tracing. It keeps an upstream
// ID found in the X-Request-ID or X-Correlation-ID headers and otherwise
// generates a UUIDv7:
//
//	app, err := unchained.CreateApp(env,
//	    unchained.WithBundles(bundles...),
//	    unchained.WithComponentLogger("web", middlewares.RequestIDExtractor()),
//	    unchained.WithMiddleware(middlewares.RequestID()),
//	)
//
// RequestIDExtractor adds request_id to every log entry written with the request context.
//
// # Recover
//
// Recover converts panics into a *PanicError handled by the app's error handler:
//
//	unchained.WithMiddleware(middlewares.Recover())
//
// Middlewares are also declared per bundle, in which case they only wrap the
// routes served on that bundle's behalf:
//
//	var Bundle = &unchained.Bundle{
//	    Type:       "AdminBundle",
//	    Module:     "admin",
//	    Middleware: []unchained.Middleware{middlewares.Recover()},
//	}
//
// # Error Handler
//
// ErrorHandler answers with a JSON body that carries the request ID:
//
//	unchained.WithErrorHandler(middlewares.ErrorHandler())
package middlewares
