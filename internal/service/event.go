package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/forgo/reginald/internal/gateway"
	"github.com/forgo/reginald/internal/message"
	"github.com/forgo/reginald/internal/model"
)

// EventRepositoryInterface defines the session store interface
type EventRepositoryInterface interface {
	Get(ctx context.Context, eventID string) (*model.EventSession, error)
	Upsert(ctx context.Context, session *model.EventSession) error
	Delete(ctx context.Context, eventID string) error
	FindDue(ctx context.Context, now time.Time) ([]*model.EventSession, error)
	FindUpcoming(ctx context.Context, from time.Time) ([]*model.EventSession, error)
	FindNext(ctx context.Context, from time.Time) (*model.EventSession, error)
	FindBetween(ctx context.Context, from, to time.Time) ([]*model.EventSession, error)
	FindByDateString(ctx context.Context, bookingDate string) (*model.EventSession, error)
}

// ChannelRepositoryInterface defines the channel config store interface
type ChannelRepositoryInterface interface {
	Get(ctx context.Context, channelID string) (*model.ChannelConfig, error)
	Upsert(ctx context.Context, cfg *model.ChannelConfig) error
}

// ProfileRepositoryInterface defines the event profile store interface
type ProfileRepositoryInterface interface {
	Get(ctx context.Context, name string) (*model.EventProfile, error)
	List(ctx context.Context) ([]*model.EventProfile, error)
	Upsert(ctx context.Context, profile *model.EventProfile) error
}

// Event code alphabet matches the announcement format EVT-XXXXXXXX.
const eventCodeAlphabet = "0123456789ABCDEF"

// newEventID mints an event code like "EVT-1A2B3C4D".
func newEventID() string {
	code, err := gonanoid.Generate(eventCodeAlphabet, 8)
	if err != nil {
		// gonanoid only fails when the system entropy source does.
		code = uuid.New().String()[:8]
	}
	return "EVT-" + code
}

// EventService owns the roster engine: event lifecycle and every enrollment
// transition. All mutations of one event are serialized through a per-event
// lock and always re-read the freshest session state under it.
type EventService struct {
	repo     EventRepositoryInterface
	channels ChannelRepositoryInterface
	profiles ProfileRepositoryInterface
	gateway  gateway.Gateway
	sync     *AnnouncementSync
	locks    *eventLocks
	logger   *slog.Logger
}

// NewEventService creates a new event service
func NewEventService(
	repo EventRepositoryInterface,
	channels ChannelRepositoryInterface,
	profiles ProfileRepositoryInterface,
	gw gateway.Gateway,
	sync *AnnouncementSync,
	logger *slog.Logger,
) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		repo:     repo,
		channels: channels,
		profiles: profiles,
		gateway:  gw,
		sync:     sync,
		locks:    newEventLocks(),
		logger:   logger,
	}
}

// CreateEvent creates a new event session. A future post time turns the
// session into a scheduled announcement; otherwise it is announced at once.
func (s *EventService) CreateEvent(ctx context.Context, req *model.CreateEventRequest) (*model.EventSession, error) {
	if req.Title == "" {
		return nil, ErrTitleRequired
	}
	if len(req.Title) > model.MaxEventTitleLength {
		return nil, ErrTitleTooLong
	}
	if len(req.Rosters) == 0 {
		return nil, ErrNoRosters
	}
	for _, spec := range req.Rosters {
		if spec.Name == "" {
			return nil, ErrInvalidRosterName
		}
		if spec.Capacity < 1 {
			return nil, ErrInvalidCapacity
		}
	}

	profile, err := s.profiles.Get(ctx, req.EventType)
	if err != nil {
		return nil, fmt.Errorf("get event profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	rosters := make([]model.Roster, 0, len(req.Rosters))
	maxCapacity := 0
	for _, spec := range req.Rosters {
		rosters = append(rosters, model.Roster{
			ID:           uuid.New().String(),
			Name:         spec.Name,
			Capacity:     spec.Capacity,
			AllowPlusOne: spec.AllowPlusOne,
			Players:      []model.Participant{},
		})
		maxCapacity += spec.Capacity
	}

	venueCode := req.VenueCode
	if venueCode == "" {
		venueCode = profile.VenueCode
	}

	now := time.Now()
	session := &model.EventSession{
		ID:            newEventID(),
		Title:         req.Title,
		EventType:     req.EventType,
		EventCategory: profile.Category,
		VenueCode:     venueCode,
		Location:      req.Location,
		Description:   req.Description,
		BookingDate:   message.FormatBookingDate(req.StartTime),
		BookingFull:   req.StartTime,
		BookingTime:   req.StartTime.Format("15:04"),
		Rosters:       rosters,
		MaxCapacity:   maxCapacity,
		Standby:       []model.Participant{},
		Posted:        []model.PostedMessage{},
		Status:        model.EventStatusActive,
		PostChannelID: req.ChannelID,
		CreatedBy:     req.CreatedBy,
		CreatedAt:     now,
	}

	// A post time more than a few seconds out defers the announcement to
	// the scheduling gate.
	if req.PostAt != nil && req.PostAt.After(now.Add(5*time.Second)) {
		session.Status = model.EventStatusScheduled
		postAt := *req.PostAt
		session.PostAt = &postAt
		if err := s.repo.Upsert(ctx, session); err != nil {
			return nil, fmt.Errorf("save scheduled event: %w", err)
		}
		return session, nil
	}

	if err := s.Announce(ctx, session, req.ChannelID, ""); err != nil {
		return nil, err
	}
	return session, nil
}

// Announce renders and posts the event to a channel, appends the message to
// the ledger, and persists the session.
func (s *EventService) Announce(ctx context.Context, session *model.EventSession, channelID, customIntro string) error {
	cfg, err := s.channels.Get(ctx, channelID)
	if err != nil {
		return fmt.Errorf("get channel config: %w", err)
	}

	blocks := message.EventBlocks(session, cfg, customIntro)
	ref, err := s.gateway.PostMessage(ctx, channelID, blocks, message.PostFallback(session))
	if err != nil {
		return fmt.Errorf("post announcement: %w", err)
	}

	session.Posted = append(session.Posted, model.PostedMessage{
		ChannelID: ref.ChannelID,
		MessageTS: ref.MessageTS,
	})
	session.Status = model.EventStatusActive

	if err := s.repo.Upsert(ctx, session); err != nil {
		return fmt.Errorf("save announced event: %w", err)
	}
	return nil
}

// JoinResult describes where a join request landed.
type JoinResult struct {
	PlacedOnStandby bool
	RosterName      string
	GuestCount      int
}

// JoinEvent enrolls a user. With every roster full the user lands on the
// standby queue regardless of requested guests. With a single open roster no
// explicit selection is needed; with several, one must be named.
func (s *EventService) JoinEvent(ctx context.Context, eventID string, req *model.JoinEventRequest) (*JoinResult, error) {
	if req.GuestCount < 0 || req.GuestCount > model.MaxPlusOneCount {
		return nil, ErrInvalidGuestCount
	}

	unlock := s.locks.Acquire(eventID)
	defer unlock()

	session, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if session == nil {
		return nil, ErrEventNotFound
	}

	if err := s.checkOccupancy(session); err != nil {
		return nil, err
	}
	if session.FindParticipant(req.UserID) != nil {
		return nil, ErrAlreadyEnrolled
	}

	player := model.Participant{
		ID:    req.UserID,
		Email: s.lookupEmail(ctx, req.UserID),
	}

	open := session.AvailableRosters()
	if len(open) == 0 {
		// Standby enrollment always joins alone.
		session.Standby = append(session.Standby, player)
		if err := s.repo.Upsert(ctx, session); err != nil {
			return nil, fmt.Errorf("save standby enrollment: %w", err)
		}
		s.sync.SyncAll(ctx, session)
		return &JoinResult{PlacedOnStandby: true}, nil
	}

	var roster *model.Roster
	if req.RosterID == "" {
		// Implicit assignment only when the sole open roster takes no
		// guests; a guest-allowing roster needs an explicit choice.
		if len(open) > 1 || open[0].AllowPlusOne {
			return nil, ErrNoRosterSelected
		}
		roster = open[0]
	} else {
		for i := range session.Rosters {
			if session.Rosters[i].ID == req.RosterID {
				roster = &session.Rosters[i]
				break
			}
		}
		if roster == nil {
			return nil, ErrRosterNotFound
		}
	}

	if req.GuestCount > 0 && !roster.AllowPlusOne {
		return nil, ErrGuestsNotAllowed
	}
	if !roster.HasRoom(1 + req.GuestCount) {
		return nil, ErrInsufficientCapacity
	}

	player.PlusOneCount = req.GuestCount
	roster.Players = append(roster.Players, player)

	if err := s.repo.Upsert(ctx, session); err != nil {
		return nil, fmt.Errorf("save enrollment: %w", err)
	}
	s.sync.SyncAll(ctx, session)

	return &JoinResult{RosterName: roster.Name, GuestCount: req.GuestCount}, nil
}

// checkOccupancy guards a freshly fetched record before any mutation. An
// overfilled roster means the stored document is corrupt; the transition
// aborts rather than building on it.
func (s *EventService) checkOccupancy(session *model.EventSession) error {
	for i := range session.Rosters {
		r := &session.Rosters[i]
		if r.SpotsLeft() < 0 {
			s.logger.Error("roster occupancy exceeds capacity",
				"event_id", session.ID, "roster", r.Name,
				"capacity", r.Capacity, "occupied", r.OccupiedSpots())
			return ErrRosterOverfilled
		}
	}
	return nil
}

// LeaveResult describes a departure and any standby promotion it triggered.
type LeaveResult struct {
	WasOnStandby   bool
	RosterName     string
	Promoted       *model.Participant
	PromotedRoster string
}

// LeaveEvent removes a user from their roster or the standby queue. A roster
// departure promotes the head of the standby queue into the freed roster,
// keeping the guest count the promoted player signed up with.
func (s *EventService) LeaveEvent(ctx context.Context, eventID, userID string) (*LeaveResult, error) {
	unlock := s.locks.Acquire(eventID)
	defer unlock()

	session, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if session == nil {
		return nil, ErrEventNotFound
	}
	if err := s.checkOccupancy(session); err != nil {
		return nil, err
	}

	result := &LeaveResult{}
	removed := false

	for i := range session.Rosters {
		roster := &session.Rosters[i]
		for j, p := range roster.Players {
			if p.ID != userID {
				continue
			}
			roster.Players = append(roster.Players[:j], roster.Players[j+1:]...)
			removed = true
			result.RosterName = roster.Name

			if len(session.Standby) > 0 {
				promoted := session.Standby[0]
				session.Standby = session.Standby[1:]
				roster.Players = append(roster.Players, promoted)
				result.Promoted = &promoted
				result.PromotedRoster = roster.Name
			}
			break
		}
		if removed {
			break
		}
	}

	if !removed {
		for i, p := range session.Standby {
			if p.ID == userID {
				session.Standby = append(session.Standby[:i], session.Standby[i+1:]...)
				removed = true
				result.WasOnStandby = true
				break
			}
		}
	}

	if !removed {
		return nil, ErrNotEnrolled
	}

	if err := s.repo.Upsert(ctx, session); err != nil {
		return nil, fmt.Errorf("save departure: %w", err)
	}
	s.sync.SyncAll(ctx, session)

	if result.Promoted != nil {
		text := fmt.Sprintf("Fortune smiles upon you! A position for *%s* has become available. You are now on the roster for *%s*.",
			session.Title, result.PromotedRoster)
		if err := s.gateway.DirectMessage(ctx, result.Promoted.ID, text); err != nil {
			s.logger.Error("promotion notice failed",
				"event_id", session.ID, "user_id", result.Promoted.ID, "error", err)
		}
	}

	return result, nil
}

// AddRoster appends a roster to an existing event and grows its capacity.
func (s *EventService) AddRoster(ctx context.Context, eventID string, req *model.AddRosterRequest) (*model.EventSession, error) {
	if req.Name == "" {
		return nil, ErrInvalidRosterName
	}
	if req.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	unlock := s.locks.Acquire(eventID)
	defer unlock()

	session, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if session == nil {
		return nil, ErrEventNotFound
	}

	session.Rosters = append(session.Rosters, model.Roster{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Capacity:     req.Capacity,
		AllowPlusOne: req.AllowPlusOne,
		Players:      []model.Participant{},
	})
	session.MaxCapacity += req.Capacity

	if err := s.repo.Upsert(ctx, session); err != nil {
		return nil, fmt.Errorf("save added roster: %w", err)
	}
	s.sync.SyncAll(ctx, session)

	return session, nil
}

// RemoveRoster removes an empty roster by name and shrinks the capacity.
// The last remaining roster can never be removed.
func (s *EventService) RemoveRoster(ctx context.Context, eventID, rosterName string) (*model.EventSession, error) {
	unlock := s.locks.Acquire(eventID)
	defer unlock()

	session, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if session == nil {
		return nil, ErrEventNotFound
	}

	if len(session.Rosters) <= 1 {
		return nil, ErrLastRosterProtected
	}

	roster := session.RosterByName(rosterName)
	if roster == nil {
		return nil, ErrRosterNotFound
	}
	if len(roster.Players) > 0 {
		return nil, ErrRosterOccupied
	}

	for i := range session.Rosters {
		if &session.Rosters[i] == roster {
			session.MaxCapacity -= roster.Capacity
			session.Rosters = append(session.Rosters[:i], session.Rosters[i+1:]...)
			break
		}
	}

	if err := s.repo.Upsert(ctx, session); err != nil {
		return nil, fmt.Errorf("save removed roster: %w", err)
	}
	s.sync.SyncAll(ctx, session)

	return session, nil
}

// ShareEvent cross-posts an existing announcement to another channel. Each
// channel carries at most one copy, and the target must be configured.
func (s *EventService) ShareEvent(ctx context.Context, eventID, targetChannelID string) error {
	unlock := s.locks.Acquire(eventID)
	defer unlock()

	session, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if session == nil {
		return ErrEventNotFound
	}

	if session.IsPostedTo(targetChannelID) {
		return ErrAlreadyPosted
	}

	cfg, err := s.channels.Get(ctx, targetChannelID)
	if err != nil {
		return fmt.Errorf("get channel config: %w", err)
	}
	if cfg == nil {
		return ErrChannelNotConfigured
	}

	intro := fmt.Sprintf("A summons is issued! :trumpet:\n\nAll are invited to the engagement of *%s* on *%s*. There are still positions available. Will you answer the call?",
		session.Title, session.BookingDate)

	blocks := message.EventBlocks(session, cfg, intro)
	fallback := fmt.Sprintf("An invitation to %s on %s awaits!", session.Title, session.BookingDate)

	ref, err := s.gateway.PostMessage(ctx, targetChannelID, blocks, fallback)
	if err != nil {
		return fmt.Errorf("post shared announcement: %w", err)
	}

	session.Posted = append(session.Posted, model.PostedMessage{
		ChannelID: ref.ChannelID,
		MessageTS: ref.MessageTS,
	})

	if err := s.repo.Upsert(ctx, session); err != nil {
		return fmt.Errorf("save shared event: %w", err)
	}
	return nil
}

// DeleteEvent removes the event and best-effort deletes its announcements.
// Only the admin of the event's primary channel may delete it.
func (s *EventService) DeleteEvent(ctx context.Context, eventID, requestedBy string) error {
	unlock := s.locks.Acquire(eventID)
	defer unlock()

	session, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if session == nil {
		return ErrEventNotFound
	}

	if channelID := session.PrimaryChannelID(); channelID != "" {
		cfg, err := s.channels.Get(ctx, channelID)
		if err != nil {
			return fmt.Errorf("get channel config: %w", err)
		}
		// No stored config means no known admin; nobody is authorized.
		if cfg == nil || cfg.ConfiguredBy != requestedBy {
			return ErrNotChannelAdmin
		}
	}

	for _, posted := range session.Posted {
		ref := gateway.MessageRef{ChannelID: posted.ChannelID, MessageTS: posted.MessageTS}
		if err := s.gateway.DeleteMessage(ctx, ref); err != nil {
			s.logger.Error("announcement delete failed",
				"event_id", session.ID, "channel_id", posted.ChannelID, "error", err)
		}
	}

	if err := s.repo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// GetEvent retrieves a session by its code.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*model.EventSession, error) {
	session, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if session == nil {
		return nil, ErrEventNotFound
	}
	return session, nil
}

// lookupEmail fetches the user's profile email for the calendar invite list.
// Enrollment never fails on a directory miss.
func (s *EventService) lookupEmail(ctx context.Context, userID string) string {
	email, err := s.gateway.UserEmail(ctx, userID)
	if err != nil {
		s.logger.Warn("user email lookup failed", "user_id", userID, "error", err)
		return ""
	}
	return email
}
