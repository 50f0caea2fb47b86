// Package httputil provides JSON response helpers, request parsing and the
// middleware stack shared by the HTTP API.
//
// Typical chain:
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware(logger),
//		httputil.LoggingMiddleware,
//		httputil.RecoveryMiddleware,
//		httputil.MaxBytesMiddleware(1<<20),
//	)(router)
//
// Errors are written as {"error": "...", "request_id": "..."}.
package httputil
