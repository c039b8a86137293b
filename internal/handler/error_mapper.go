package handler

import (
	"errors"

	"github.com/forgo/reginald/internal/model"
	"github.com/forgo/reginald/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotChannelAdmin),
		errors.Is(err, service.ErrGoogleAuthRequired),
		errors.Is(err, service.ErrNotParticipant):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrEventNotFound):
		return model.NewNotFoundError("event")
	case errors.Is(err, service.ErrRosterNotFound):
		return model.NewNotFoundError("roster")
	case errors.Is(err, service.ErrProfileNotFound):
		return model.NewNotFoundError("event profile")
	case errors.Is(err, service.ErrChannelNotConfigured):
		return model.NewNotFoundError("channel configuration")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrAlreadyEnrolled),
		errors.Is(err, service.ErrAlreadyPosted),
		errors.Is(err, service.ErrInsufficientCapacity),
		errors.Is(err, service.ErrRosterOccupied),
		errors.Is(err, service.ErrLastRosterProtected):
		return model.NewConflictError(err.Error())

	// ===== Validation Errors → 400 =====
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrTitleTooLong),
		errors.Is(err, service.ErrNoRosters),
		errors.Is(err, service.ErrInvalidRosterName),
		errors.Is(err, service.ErrInvalidCapacity),
		errors.Is(err, service.ErrNoRosterSelected),
		errors.Is(err, service.ErrNotEnrolled),
		errors.Is(err, service.ErrGuestsNotAllowed),
		errors.Is(err, service.ErrInvalidGuestCount),
		errors.Is(err, service.ErrProfileNameRequired),
		errors.Is(err, service.ErrCapacityUnitRequired):
		return model.NewBadRequestError(err.Error())

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("an unexpected error occurred")
	}
}
