package handler

import (
	"net/http"

	"github.com/forgo/reginald/internal/model"
	"github.com/forgo/reginald/internal/service"
)

// EventHandler handles event administration endpoints
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// CreateEvent handles POST /v1/events - create and announce a new event
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	var fieldErrors []model.FieldError
	if req.Title == "" {
		fieldErrors = append(fieldErrors, model.FieldError{
			Field:   "title",
			Message: "title is required",
		})
	}
	if req.StartTime.IsZero() {
		fieldErrors = append(fieldErrors, model.FieldError{
			Field:   "start_time",
			Message: "start_time is required",
		})
	}
	if req.ChannelID == "" {
		fieldErrors = append(fieldErrors, model.FieldError{
			Field:   "channel_id",
			Message: "channel_id is required",
		})
	}
	if len(fieldErrors) > 0 {
		WriteError(w, model.NewValidationError(fieldErrors))
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, event, map[string]string{
		"self": "/v1/events/" + event.ID,
	})
}

// GetEvent handles GET /v1/events/{eventId} - get the session state
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), eventID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, event, map[string]string{
		"self": "/v1/events/" + event.ID,
	})
}

// JoinEvent handles POST /v1/events/{eventId}/join - enroll a user
func (h *EventHandler) JoinEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	var req model.JoinEventRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if req.UserID == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "user_id", Message: "user_id is required"},
		}))
		return
	}

	result, err := h.eventService.JoinEvent(r.Context(), eventID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

// LeaveEvent handles POST /v1/events/{eventId}/leave - remove a user
func (h *EventHandler) LeaveEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if req.UserID == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "user_id", Message: "user_id is required"},
		}))
		return
	}

	result, err := h.eventService.LeaveEvent(r.Context(), eventID, req.UserID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

// AddRoster handles POST /v1/events/{eventId}/rosters - append a roster
func (h *EventHandler) AddRoster(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	var req model.AddRosterRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	event, err := h.eventService.AddRoster(r.Context(), eventID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, event, nil)
}

// RemoveRoster handles DELETE /v1/events/{eventId}/rosters/{rosterName}
func (h *EventHandler) RemoveRoster(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	rosterName := r.PathValue("rosterName")
	if eventID == "" || rosterName == "" {
		WriteError(w, model.NewBadRequestError("event ID and roster name required"))
		return
	}

	event, err := h.eventService.RemoveRoster(r.Context(), eventID, rosterName)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, event, nil)
}

// ShareEvent handles POST /v1/events/{eventId}/share - cross-post
func (h *EventHandler) ShareEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	var req struct {
		ChannelID string `json:"channel_id"`
	}
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if req.ChannelID == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "channel_id", Message: "channel_id is required"},
		}))
		return
	}

	if err := h.eventService.ShareEvent(r.Context(), eventID, req.ChannelID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// DeleteEvent handles DELETE /v1/events/{eventId} - remove the event
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	requestedBy := r.URL.Query().Get("requested_by")
	if requestedBy == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "requested_by", Message: "requested_by is required"},
		}))
		return
	}

	if err := h.eventService.DeleteEvent(r.Context(), eventID, requestedBy); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
