package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/forgo/reginald/internal/forecast"
	"github.com/forgo/reginald/internal/gateway"
	"github.com/forgo/reginald/internal/model"
)

// DefaultReminderTemplate is used when a channel has no custom reminder text.
const DefaultReminderTemplate = "A gentle reminder, esteemed combatants. Our engagement, *{eventTitle}*, is scheduled for tomorrow at {eventTime}. Pray, prepare accordingly. {weather}"

// ReminderService sends day-before reminders to enrolled players.
type ReminderService struct {
	repo     EventRepositoryInterface
	channels ChannelRepositoryInterface
	gateway  gateway.Gateway
	forecast forecast.Service
	logger   *slog.Logger
}

// NewReminderService creates a new reminder service
func NewReminderService(
	repo EventRepositoryInterface,
	channels ChannelRepositoryInterface,
	gw gateway.Gateway,
	fc forecast.Service,
	logger *slog.Logger,
) *ReminderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderService{
		repo:     repo,
		channels: channels,
		gateway:  gw,
		forecast: fc,
		logger:   logger,
	}
}

// ReminderPreview records one reminder that was (or would be) sent.
type ReminderPreview struct {
	EventID        string   `json:"event_id"`
	ChannelID      string   `json:"channel_id"`
	Recipients     []string `json:"recipients"`
	Text           string   `json:"text"`
	CustomTemplate bool     `json:"custom_template"`
}

// SendReminders delivers tomorrow's reminders. With dryRun set the reminders
// are composed and logged but nothing is delivered. Returns one preview per
// reminder either way.
func (s *ReminderService) SendReminders(ctx context.Context, dryRun bool) ([]ReminderPreview, error) {
	now := time.Now()
	tomorrow := now.AddDate(0, 0, 1)
	start := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, tomorrow.Location())
	end := start.AddDate(0, 0, 1)

	sessions, err := s.repo.FindBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("find tomorrow's sessions: %w", err)
	}

	previews := make([]ReminderPreview, 0, len(sessions))
	for _, session := range sessions {
		preview, ok := s.composeReminder(ctx, session)
		if !ok {
			continue
		}

		if dryRun {
			s.logger.Info("dry run reminder",
				"event_id", preview.EventID, "channel_id", preview.ChannelID,
				"recipients", len(preview.Recipients), "text", preview.Text)
		} else {
			s.deliver(ctx, preview)
		}
		previews = append(previews, preview)
	}

	return previews, nil
}

func (s *ReminderService) composeReminder(ctx context.Context, session *model.EventSession) (ReminderPreview, bool) {
	channelID := session.PrimaryChannelID()
	if channelID == "" {
		s.logger.Warn("event has no channel, skipping reminder", "event_id", session.ID)
		return ReminderPreview{}, false
	}

	var recipients []string
	for i := range session.Rosters {
		for _, p := range session.Rosters[i].Players {
			recipients = append(recipients, p.ID)
		}
	}
	if len(recipients) == 0 {
		s.logger.Info("event has no players, skipping reminder", "event_id", session.ID)
		return ReminderPreview{}, false
	}

	cfg, err := s.channels.Get(ctx, channelID)
	if err != nil {
		s.logger.Warn("channel config lookup failed for reminder",
			"event_id", session.ID, "channel_id", channelID, "error", err)
		cfg = nil
	}

	template := DefaultReminderTemplate
	custom := cfg != nil && cfg.ReminderText != ""
	if custom {
		template = cfg.ReminderText
	}

	weather := s.forecast.Summary(ctx, session.BookingFull)

	text := template
	text = strings.ReplaceAll(text, "{eventTitle}", "*"+session.Title+"*")
	text = strings.ReplaceAll(text, "{eventTime}", "*"+session.BookingTime+"*")
	text = strings.ReplaceAll(text, "{weather}", weather)

	return ReminderPreview{
		EventID:        session.ID,
		ChannelID:      channelID,
		Recipients:     recipients,
		Text:           text,
		CustomTemplate: custom,
	}, true
}

func (s *ReminderService) deliver(ctx context.Context, preview ReminderPreview) {
	var err error
	if len(preview.Recipients) > 1 {
		err = s.gateway.GroupMessage(ctx, preview.Recipients, preview.Text)
	} else {
		err = s.gateway.DirectMessage(ctx, preview.Recipients[0], preview.Text)
	}
	if err != nil {
		s.logger.Error("reminder delivery failed", "event_id", preview.EventID, "error", err)
		return
	}
	s.logger.Info("reminder sent", "event_id", preview.EventID, "recipients", len(preview.Recipients))
}
