package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Event Errors =====
var (
	ErrEventNotFound   = errors.New("event not found")
	ErrTitleRequired   = errors.New("event title is required")
	ErrTitleTooLong    = errors.New("event title exceeds maximum length")
	ErrNoRosters       = errors.New("event requires at least one roster")
	ErrAlreadyPosted   = errors.New("event already announced in this channel")
	ErrNotChannelAdmin = errors.New("not authorized to perform this action")
)

// ===== Roster Errors =====
var (
	ErrRosterNotFound       = errors.New("roster not found")
	ErrInvalidRosterName    = errors.New("roster name is required")
	ErrInvalidCapacity      = errors.New("roster capacity must be at least 1")
	ErrLastRosterProtected  = errors.New("cannot remove the only roster")
	ErrRosterOccupied       = errors.New("roster still has enrolled players")
	ErrNoRosterSelected     = errors.New("a roster must be selected")
	ErrAlreadyEnrolled      = errors.New("already on a roster or the standby list")
	ErrNotEnrolled          = errors.New("not enrolled in this event")
	ErrGuestsNotAllowed     = errors.New("this roster does not permit guests")
	ErrInvalidGuestCount    = errors.New("guest count out of range")
	ErrInsufficientCapacity = errors.New("not enough spots left for the party")
	ErrRosterOverfilled     = errors.New("roster occupancy exceeds its capacity")
)

// ===== Channel Errors =====
var (
	ErrChannelNotConfigured = errors.New("channel has not been configured")
	ErrProfileNotFound      = errors.New("event profile not found")
	ErrProfileNameRequired  = errors.New("profile name is required")
	ErrCapacityUnitRequired = errors.New("profile capacity unit is required")
)

// ===== Calendar Errors =====
var (
	ErrGoogleAuthRequired = errors.New("google account not connected")
	ErrNotParticipant     = errors.New("not a participant of this event")
)
