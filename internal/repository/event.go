package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/forgo/reginald/internal/database"
	"github.com/forgo/reginald/internal/model"
)

const eventTable = "event_session"

// EventRepository handles event session data access. Each session is stored
// as one document keyed by its event code, rosters and standby queue nested
// inside.
type EventRepository struct {
	db database.Database
}

// NewEventRepository creates a new event repository
func NewEventRepository(db database.Database) *EventRepository {
	return &EventRepository{db: db}
}

// Get retrieves an event session by its code. Returns (nil, nil) when the
// session does not exist.
func (r *EventRepository) Get(ctx context.Context, eventID string) (*model.EventSession, error) {
	query := `SELECT * FROM type::thing($table, $event_id)`
	vars := map[string]interface{}{
		"table":    eventTable,
		"event_id": eventID,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseSessionResult(result)
}

// Upsert writes the whole session document, creating it if absent.
func (r *EventRepository) Upsert(ctx context.Context, session *model.EventSession) error {
	query := `UPSERT type::thing($table, $event_id) CONTENT $content`
	vars := map[string]interface{}{
		"table":    eventTable,
		"event_id": session.ID,
		"content":  sessionContent(session),
	}

	return r.db.Execute(ctx, query, vars)
}

// Delete removes an event session
func (r *EventRepository) Delete(ctx context.Context, eventID string) error {
	query := `DELETE type::thing($table, $event_id)`
	vars := map[string]interface{}{
		"table":    eventTable,
		"event_id": eventID,
	}

	return r.db.Execute(ctx, query, vars)
}

// FindDue retrieves scheduled sessions whose post time has arrived.
func (r *EventRepository) FindDue(ctx context.Context, now time.Time) ([]*model.EventSession, error) {
	query := `
		SELECT * FROM event_session
		WHERE status = $status AND post_at != NONE AND post_at <= $now
		ORDER BY post_at ASC
	`
	vars := map[string]interface{}{
		"status": model.EventStatusScheduled,
		"now":    now,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseSessionsResult(result)
}

// FindUpcoming retrieves active sessions starting at or after the given time.
func (r *EventRepository) FindUpcoming(ctx context.Context, from time.Time) ([]*model.EventSession, error) {
	query := `
		SELECT * FROM event_session
		WHERE status = $status AND booking_full_date >= $from
		ORDER BY booking_full_date ASC
	`
	vars := map[string]interface{}{
		"status": model.EventStatusActive,
		"from":   from,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseSessionsResult(result)
}

// FindNext retrieves the soonest active session at or after the given time.
// Returns (nil, nil) when none exists.
func (r *EventRepository) FindNext(ctx context.Context, from time.Time) (*model.EventSession, error) {
	query := `
		SELECT * FROM event_session
		WHERE status = $status AND booking_full_date >= $from
		ORDER BY booking_full_date ASC
		LIMIT 1
	`
	vars := map[string]interface{}{
		"status": model.EventStatusActive,
		"from":   from,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseSessionResult(result)
}

// FindBetween retrieves active sessions starting inside [from, to).
func (r *EventRepository) FindBetween(ctx context.Context, from, to time.Time) ([]*model.EventSession, error) {
	query := `
		SELECT * FROM event_session
		WHERE status = $status AND booking_full_date >= $from AND booking_full_date < $to
		ORDER BY booking_full_date ASC
	`
	vars := map[string]interface{}{
		"status": model.EventStatusActive,
		"from":   from,
		"to":     to,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseSessionsResult(result)
}

// FindByDateString retrieves the first active session announced for the given
// human-readable date. Returns (nil, nil) when none exists.
func (r *EventRepository) FindByDateString(ctx context.Context, bookingDate string) (*model.EventSession, error) {
	query := `
		SELECT * FROM event_session
		WHERE status = $status AND booking_date = $booking_date
		LIMIT 1
	`
	vars := map[string]interface{}{
		"status":       model.EventStatusActive,
		"booking_date": bookingDate,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseSessionResult(result)
}

// sessionContent builds the full document for an UPSERT ... CONTENT write.
func sessionContent(e *model.EventSession) map[string]interface{} {
	rosters := make([]map[string]interface{}, 0, len(e.Rosters))
	for i := range e.Rosters {
		r := &e.Rosters[i]
		rosters = append(rosters, map[string]interface{}{
			"id":             r.ID,
			"name":           r.Name,
			"capacity":       r.Capacity,
			"allow_plus_one": r.AllowPlusOne,
			"players":        participantsContent(r.Players),
		})
	}

	posted := make([]map[string]interface{}, 0, len(e.Posted))
	for _, m := range e.Posted {
		posted = append(posted, map[string]interface{}{
			"channel_id": m.ChannelID,
			"message_ts": m.MessageTS,
		})
	}

	content := map[string]interface{}{
		"title":             e.Title,
		"event_type":        e.EventType,
		"event_category":    e.EventCategory,
		"venue_code":        e.VenueCode,
		"location":          e.Location,
		"description":       e.Description,
		"booking_date":      e.BookingDate,
		"booking_full_date": e.BookingFull,
		"booking_time":      e.BookingTime,
		"rosters":           rosters,
		"max_capacity":      e.MaxCapacity,
		"standby":           participantsContent(e.Standby),
		"posted_messages":   posted,
		"status":            e.Status,
		"post_channel_id":   e.PostChannelID,
		"created_by":        e.CreatedBy,
		"created_at":        e.CreatedAt,
	}
	if e.PostAt != nil {
		content["post_at"] = *e.PostAt
	}
	return content
}

func participantsContent(players []model.Participant) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(players))
	for _, p := range players {
		out = append(out, map[string]interface{}{
			"id":             p.ID,
			"email":          p.Email,
			"plus_one_count": p.PlusOneCount,
		})
	}
	return out
}

func (r *EventRepository) parseSessionResult(result interface{}) (*model.EventSession, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	if id, ok := data["id"]; ok {
		data["id"] = bareRecordID(convertSurrealID(id), eventTable)
	}

	// Datetime values do not survive a JSON round trip; pull them out first
	// and reapply below.
	bookingFull := getTime(data, "booking_full_date")
	postAt := getTime(data, "post_at")
	createdAt := getTime(data, "created_at")
	delete(data, "booking_full_date")
	delete(data, "post_at")
	delete(data, "created_at")

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var session model.EventSession
	if err := json.Unmarshal(jsonBytes, &session); err != nil {
		return nil, err
	}

	if bookingFull != nil {
		session.BookingFull = *bookingFull
	}
	session.PostAt = postAt
	if createdAt != nil {
		session.CreatedAt = *createdAt
	}

	if session.Rosters == nil {
		session.Rosters = []model.Roster{}
	}
	if session.Standby == nil {
		session.Standby = []model.Participant{}
	}
	if session.Posted == nil {
		session.Posted = []model.PostedMessage{}
	}

	return &session, nil
}

func (r *EventRepository) parseSessionsResult(result []interface{}) ([]*model.EventSession, error) {
	sessions := make([]*model.EventSession, 0)

	for _, res := range result {
		if resp, ok := res.(map[string]interface{}); ok {
			if resultData, ok := resp["result"].([]interface{}); ok {
				for _, item := range resultData {
					session, err := r.parseSessionResult(item)
					if err != nil {
						continue
					}
					sessions = append(sessions, session)
				}
				continue
			}
		}

		session, err := r.parseSessionResult(res)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}
