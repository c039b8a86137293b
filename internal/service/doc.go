// Package service implements the business logic layer for the Reginald bot.
//
// The service package contains all domain logic, validation rules, and
// orchestration of repository and gateway operations. Services are the
// primary abstraction between HTTP handlers, chat interactions, and data
// access.
//
// # Service Pattern
//
// All services follow a consistent pattern:
//
//   - Constructor function (NewXxxService) accepts repository and gateway dependencies
//   - Methods implement business operations with proper validation
//   - Errors are returned as sentinel errors or wrapped errors for context
//   - Context is passed through for cancellation and request-scoped values
//
// # Repository Interfaces
//
// Services define their own repository interfaces, allowing:
//
//   - Easy mocking for unit tests
//   - Decoupling from specific database implementations
//   - Clear contracts for data access requirements
//
// # Concurrency
//
// Roster mutations are serialized per event through an in-process keyed
// mutex. Every mutation re-reads the freshest session document under the
// lock before applying its change, so concurrent joins cannot oversubscribe
// a roster and scheduled publishing happens at most once.
//
// # Error Handling
//
// Services return domain-specific errors defined as package-level variables:
//
//	var (
//	    ErrEventNotFound       = errors.New("event not found")
//	    ErrInsufficientCapacity = errors.New("not enough spots left on the roster")
//	)
//
// # Example Usage
//
//	svc := NewEventService(eventRepo, channelRepo, profileRepo, gw, sync, logger)
//	result, err := svc.JoinEvent(ctx, eventID, &model.JoinEventRequest{
//	    UserID: "U123", GuestCount: 1,
//	})
package service
