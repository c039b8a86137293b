package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forgo/reginald/internal/message"
	"github.com/forgo/reginald/internal/model"
)

// PublishDueEvents announces every scheduled session whose post time has
// arrived. Each session is re-read under its lock so a concurrent publish or
// mutation can never double-post. Returns the number of sessions announced.
func (s *EventService) PublishDueEvents(ctx context.Context) (int, error) {
	due, err := s.repo.FindDue(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("find due events: %w", err)
	}

	posted := 0
	for _, stale := range due {
		if s.publishOne(ctx, stale.ID) {
			posted++
		}
	}
	return posted, nil
}

func (s *EventService) publishOne(ctx context.Context, eventID string) bool {
	unlock := s.locks.Acquire(eventID)
	defer unlock()

	session, err := s.repo.Get(ctx, eventID)
	if err != nil {
		s.logger.Error("scheduled event fetch failed", "event_id", eventID, "error", err)
		return false
	}
	// Another publish may have won the race while we waited on the lock.
	if session == nil || session.Status != model.EventStatusScheduled {
		return false
	}

	if session.PostChannelID == "" {
		s.logger.Error("scheduled event has no target channel", "event_id", eventID)
		return false
	}

	cfg, err := s.channels.Get(ctx, session.PostChannelID)
	if err != nil {
		s.logger.Error("channel config fetch failed for scheduled event",
			"event_id", eventID, "channel_id", session.PostChannelID, "error", err)
		return false
	}
	if cfg == nil {
		s.logger.Error("channel not configured, skipping scheduled event",
			"event_id", eventID, "channel_id", session.PostChannelID)
		return false
	}

	blocks := message.EventBlocks(session, cfg, "")
	fallback := fmt.Sprintf("An invitation to %s awaits!", session.Title)

	ref, err := s.gateway.PostMessage(ctx, session.PostChannelID, blocks, fallback)
	if err != nil {
		s.logger.Error("scheduled announcement post failed",
			"event_id", eventID, "channel_id", session.PostChannelID, "error", err)
		return false
	}

	session.Status = model.EventStatusActive
	session.Posted = append(session.Posted, model.PostedMessage{
		ChannelID: ref.ChannelID,
		MessageTS: ref.MessageTS,
	})
	session.PostAt = nil

	if err := s.repo.Upsert(ctx, session); err != nil {
		s.logger.Error("scheduled event save failed", "event_id", eventID, "error", err)
		return false
	}
	return true
}

// CreateRecurringEvent builds a default event from the channel's configured
// profile, booked for Monday the given number of weeks ahead, and announces
// it immediately. eventTime is the 24h start time, e.g. "17:30".
func (s *EventService) CreateRecurringEvent(ctx context.Context, channelID, eventTime string, weeksAhead int) (*model.EventSession, error) {
	cfg, err := s.channels.Get(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("get channel config: %w", err)
	}
	if cfg == nil {
		return nil, ErrChannelNotConfigured
	}

	profile, err := s.profiles.Get(ctx, cfg.DefaultEventType)
	if err != nil {
		return nil, fmt.Errorf("get event profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	now := time.Now()
	bookingDay := message.BookingDateForWeeksAhead(now, weeksAhead)
	bookingFull := bookingDay
	if parsed, err := time.Parse("15:04", eventTime); err == nil {
		bookingFull = bookingDay.Add(time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute)
	}

	session := &model.EventSession{
		ID:            newEventID(),
		Title:         profile.Name,
		EventType:     profile.Name,
		EventCategory: profile.Category,
		VenueCode:     profile.VenueCode,
		Location:      profile.DefaultLocation,
		Description:   fmt.Sprintf("A regularly scheduled engagement of %s.", profile.Name),
		BookingDate:   message.FormatBookingDate(bookingDay),
		BookingFull:   bookingFull,
		BookingTime:   eventTime,
		Rosters:       defaultRosters(profile),
		Standby:       []model.Participant{},
		Posted:        []model.PostedMessage{},
		Status:        model.EventStatusActive,
		PostChannelID: channelID,
		CreatedBy:     "scheduled_task",
		CreatedAt:     now,
	}
	session.MaxCapacity = session.TotalCapacity()

	if err := s.Announce(ctx, session, channelID, ""); err != nil {
		return nil, err
	}
	return session, nil
}

// defaultRosters derives the roster layout from a profile. A SPORT profile
// gets one roster per capacity unit; a SPECTATOR profile gets a single
// attendee roster.
func defaultRosters(profile *model.EventProfile) []model.Roster {
	if profile.Category == model.EventCategorySport {
		playersPerUnit := 2
		if strings.Contains(strings.ToLower(profile.Name), "padel") {
			playersPerUnit = 4
		}
		unit := strings.TrimSuffix(profile.CapacityUnit, "s")

		rosters := make([]model.Roster, 0, profile.DefaultCapacity)
		for i := 1; i <= profile.DefaultCapacity; i++ {
			rosters = append(rosters, model.Roster{
				ID:       uuid.New().String(),
				Name:     fmt.Sprintf("%s %d", unit, i),
				Capacity: playersPerUnit,
				Players:  []model.Participant{},
			})
		}
		return rosters
	}

	return []model.Roster{{
		ID:       uuid.New().String(),
		Name:     "Attendees",
		Capacity: profile.DefaultCapacity,
		Players:  []model.Participant{},
	}}
}
