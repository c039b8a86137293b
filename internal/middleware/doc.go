// Package middleware provides HTTP middleware for the Reginald bot server.
//
// The middleware package contains reusable middleware components for
// request processing and task endpoint protection.
//
// # Available Middleware
//
// Core middleware components:
//
//   - RequestID: Unique request identifier propagation
//   - Logger: Structured request logging
//   - Recovery: Panic recovery with a JSON error response
//   - CronAuth: Shared-secret protection for the task endpoints
//
// # Task Endpoint Protection
//
// The task endpoints are driven by an external scheduler that presents a
// bearer secret:
//
//	mux.Handle("POST /tasks/post-scheduled",
//	    middleware.CronAuth(cfg.CronSecret)(handler))
//
// # Context Values
//
// Middleware sets context values accessible via helper functions:
//
//   - GetRequestID(ctx): Returns unique request identifier
package middleware
