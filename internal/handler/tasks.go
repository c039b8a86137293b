package handler

import (
	"fmt"
	"net/http"

	"github.com/forgo/reginald/internal/service"
)

// TaskHandler handles the externally scheduled task endpoints. The routes
// sit behind the cron auth middleware.
type TaskHandler struct {
	eventService     *service.EventService
	reminderService  *service.ReminderService
	primaryChannelID string
	defaultEventTime string
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(
	eventService *service.EventService,
	reminderService *service.ReminderService,
	primaryChannelID string,
	defaultEventTime string,
) *TaskHandler {
	return &TaskHandler{
		eventService:     eventService,
		reminderService:  reminderService,
		primaryChannelID: primaryChannelID,
		defaultEventTime: defaultEventTime,
	}
}

// weeksAhead is how far out the recurring default event is booked.
const weeksAhead = 2

// PostScheduled handles POST /tasks/post-scheduled - announce due sessions
func (h *TaskHandler) PostScheduled(w http.ResponseWriter, r *http.Request) {
	count, err := h.eventService.PublishDueEvents(r.Context())
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to publish scheduled events",
		})
		return
	}

	message := "No events to post."
	if count > 0 {
		message = fmt.Sprintf("Posted %d event(s).", count)
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"count":   count,
	})
}

// SendAnnouncement handles POST /tasks/send-announcement - create and
// announce the recurring default event for the primary channel
func (h *TaskHandler) SendAnnouncement(w http.ResponseWriter, r *http.Request) {
	session, err := h.eventService.CreateRecurringEvent(r.Context(), h.primaryChannelID, h.defaultEventTime, weeksAhead)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":  fmt.Sprintf("Announced *%s* for %s.", session.Title, session.BookingDate),
		"event_id": session.ID,
	})
}

// SendReminders handles POST /tasks/send-reminders?dryRun= - day-before
// reminders for tomorrow's events
func (h *TaskHandler) SendReminders(w http.ResponseWriter, r *http.Request) {
	dryRun := r.URL.Query().Get("dryRun") == "true"

	previews, err := h.reminderService.SendReminders(r.Context(), dryRun)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to send reminders",
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"dry_run":   dryRun,
		"count":     len(previews),
		"reminders": previews,
	})
}
