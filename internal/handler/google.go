package handler

import (
	"net/http"

	"github.com/forgo/reginald/internal/model"
	"github.com/forgo/reginald/internal/service"
)

// GoogleHandler handles the Google Calendar OAuth endpoints
type GoogleHandler struct {
	calendarService *service.CalendarService
}

// NewGoogleHandler creates a new Google OAuth handler
func NewGoogleHandler(calendarService *service.CalendarService) *GoogleHandler {
	return &GoogleHandler{
		calendarService: calendarService,
	}
}

// AuthRedirect handles GET /google/oauth/authorize?user_id= - send the user
// to the Google consent page
func (h *GoogleHandler) AuthRedirect(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user_id required"))
		return
	}

	http.Redirect(w, r, h.calendarService.AuthURL(userID), http.StatusFound)
}

// Callback handles GET /google/oauth/callback?code=&state= - complete the
// OAuth exchange and store the token
func (h *GoogleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		WriteError(w, model.NewBadRequestError("code and state required"))
		return
	}

	if err := h.calendarService.HandleCallback(r.Context(), state, code); err != nil {
		WriteError(w, model.NewInternalError("authorization could not be completed"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<html><body><p>Splendid! Your calendar is now connected. You may close this window.</p></body></html>"))
}

// AddToCalendar handles POST /v1/events/{eventId}/calendar - insert the
// event into the requesting user's Google Calendar
func (h *GoogleHandler) AddToCalendar(w http.ResponseWriter, r *http.Request) {
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

	link, err := h.calendarService.AddEventToCalendar(r.Context(), eventID, req.UserID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"html_link": link})
}
