// Package handler provides HTTP request handlers for the Reginald bot server.
//
// The handler package contains all HTTP endpoint implementations organized by
// domain. Each handler struct encapsulates the dependencies needed to serve
// requests for a specific feature area (events, channels, tasks, OAuth).
//
// # Handler Pattern
//
// All handlers follow a consistent pattern:
//
//   - Constructor function (NewXxxHandler) accepts service dependencies
//   - Methods handle specific HTTP endpoints
//   - Response helpers from response.go standardize output format
//   - Errors are mapped to RFC 9457 Problem Details responses
//
// # Response Format
//
// Handlers use standardized response functions:
//
//   - WriteData: Single resource with optional links
//   - WriteJSON: Raw JSON response
//   - WriteError: RFC 9457 Problem Details error response
//
// # Task Endpoints
//
// The /tasks routes are driven by an external cron scheduler and sit behind
// the CronAuth middleware, which checks a shared bearer secret.
//
// # Example Usage
//
//	handler := NewEventHandler(eventService)
//	mux.HandleFunc("POST /v1/events", handler.CreateEvent)
//	mux.HandleFunc("GET /v1/events/{eventId}", handler.GetEvent)
package handler
