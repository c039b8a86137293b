package model

import (
	"strings"
	"time"
)

// EventSession represents a single organized gathering with its full roster
// state. The whole session is stored as one document so every mutation is a
// read-modify-write of the entire record.
type EventSession struct {
	ID            string          `json:"id"` // e.g., "EVT-1A2B3C4D"
	Title         string          `json:"title"`
	EventType     string          `json:"event_type"`     // profile name, e.g., "padel"
	EventCategory string          `json:"event_category"` // SPORT, SPECTATOR
	VenueCode     string          `json:"venue_code,omitempty"` // shown as the entry cipher
	Location      string          `json:"location"`
	Description   string          `json:"description,omitempty"`
	BookingDate   string          `json:"booking_date"` // human form, e.g., "Monday, January 2nd"
	BookingFull   time.Time       `json:"booking_full_date"`   // precise start instant
	BookingTime   string          `json:"booking_time"`        // 24h clock, e.g., "17:30"
	Rosters       []Roster        `json:"rosters"`
	MaxCapacity   int             `json:"max_capacity"` // sum of roster capacities, kept in step
	Standby       []Participant   `json:"standby"`
	Posted        []PostedMessage `json:"posted_messages"`
	Status        string          `json:"status"`
	PostAt        *time.Time      `json:"post_at,omitempty"`         // only for scheduled sessions
	PostChannelID string          `json:"post_channel_id,omitempty"` // where to post when due
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Roster is a named sub-list of an event with its own capacity.
type Roster struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Capacity     int           `json:"capacity"`
	AllowPlusOne bool          `json:"allow_plus_one"`
	Players      []Participant `json:"players"`
}

// Participant is one enrolled user, possibly bringing guests.
type Participant struct {
	ID           string `json:"id"` // platform user ID
	Email        string `json:"email,omitempty"`
	PlusOneCount int    `json:"plus_one_count"`
}

// PostedMessage records one announcement message carrying this event.
type PostedMessage struct {
	ChannelID string `json:"channel_id"`
	MessageTS string `json:"message_ts"`
}

// EventStatus constants
const (
	EventStatusScheduled = "SCHEDULED" // created but not yet announced
	EventStatusActive    = "ACTIVE"    // announced, accepting joins
)

// EventCategory constants
const (
	EventCategorySport     = "SPORT"     // multiple unit rosters
	EventCategorySpectator = "SPECTATOR" // single attendee roster
)

// Constraints
const (
	MaxEventTitleLength = 100
	MaxPlusOneCount     = 2
)

// OccupiedSpots counts filled positions on the roster, guests included.
func (r *Roster) OccupiedSpots() int {
	occupied := 0
	for _, p := range r.Players {
		occupied += 1 + p.PlusOneCount
	}
	return occupied
}

// SpotsLeft reports remaining capacity. A negative value means the stored
// record violates the occupancy invariant; callers must treat it as
// corruption, not as a full roster.
func (r *Roster) SpotsLeft() int {
	return r.Capacity - r.OccupiedSpots()
}

// HasRoom reports whether the roster can seat a party of the given size.
func (r *Roster) HasRoom(partySize int) bool {
	return r.SpotsLeft() >= partySize
}

// TotalCapacity sums every roster's capacity.
func (e *EventSession) TotalCapacity() int {
	total := 0
	for i := range e.Rosters {
		total += e.Rosters[i].Capacity
	}
	return total
}

// TotalOccupied sums filled positions across all rosters.
func (e *EventSession) TotalOccupied() int {
	total := 0
	for i := range e.Rosters {
		total += e.Rosters[i].OccupiedSpots()
	}
	return total
}

// AvailableRosters returns the rosters with at least one open spot,
// preserving declaration order.
func (e *EventSession) AvailableRosters() []*Roster {
	var open []*Roster
	for i := range e.Rosters {
		if e.Rosters[i].SpotsLeft() > 0 {
			open = append(open, &e.Rosters[i])
		}
	}
	return open
}

// ParticipantLocation names where on an event a user was found.
type ParticipantLocation struct {
	OnStandby  bool
	RosterName string
}

// FindParticipant locates a user on the event. Rosters are scanned in order
// before the standby queue. Returns nil when the user is not enrolled.
func (e *EventSession) FindParticipant(userID string) *ParticipantLocation {
	for i := range e.Rosters {
		for _, p := range e.Rosters[i].Players {
			if p.ID == userID {
				return &ParticipantLocation{RosterName: e.Rosters[i].Name}
			}
		}
	}
	for _, p := range e.Standby {
		if p.ID == userID {
			return &ParticipantLocation{OnStandby: true}
		}
	}
	return nil
}

// RosterByName finds a roster by case-insensitive name match.
func (e *EventSession) RosterByName(name string) *Roster {
	for i := range e.Rosters {
		if strings.EqualFold(e.Rosters[i].Name, name) {
			return &e.Rosters[i]
		}
	}
	return nil
}

// PrimaryChannelID is the channel whose configuration governs rendering:
// the first announced channel, or the scheduled target before announcement.
func (e *EventSession) PrimaryChannelID() string {
	if len(e.Posted) > 0 {
		return e.Posted[0].ChannelID
	}
	return e.PostChannelID
}

// IsPostedTo reports whether the event already has an announcement in the channel.
func (e *EventSession) IsPostedTo(channelID string) bool {
	for _, m := range e.Posted {
		if m.ChannelID == channelID {
			return true
		}
	}
	return false
}

// RosterSpec describes one roster in a create request.
type RosterSpec struct {
	Name         string `json:"name"`
	Capacity     int    `json:"capacity"`
	AllowPlusOne bool   `json:"allow_plus_one"`
}

// CreateEventRequest represents a request to create an event session
type CreateEventRequest struct {
	Title       string       `json:"title"`
	EventType   string       `json:"event_type"`
	Location    string       `json:"location"`
	Description string       `json:"description,omitempty"`
	VenueCode   string       `json:"venue_code,omitempty"`
	StartTime   time.Time    `json:"start_time"`
	Rosters     []RosterSpec `json:"rosters"`
	ChannelID   string       `json:"channel_id"`
	CreatedBy   string       `json:"created_by"`
	PostAt      *time.Time   `json:"post_at,omitempty"` // nil = announce immediately
}

// AddRosterRequest represents a request to add a roster to an existing event
type AddRosterRequest struct {
	Name         string `json:"name"`
	Capacity     int    `json:"capacity"`
	AllowPlusOne bool   `json:"allow_plus_one"`
}

// JoinEventRequest represents a user's request to join an event
type JoinEventRequest struct {
	UserID     string `json:"user_id"`
	RosterID   string `json:"roster_id,omitempty"` // empty = let the engine pick
	GuestCount int    `json:"guest_count"`
}
