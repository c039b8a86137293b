package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/forgo/reginald/internal/gateway"
	"github.com/forgo/reginald/internal/model"
)

// ChannelService manages per-channel bot configuration and event profiles.
type ChannelService struct {
	channels ChannelRepositoryInterface
	profiles ProfileRepositoryInterface
	gateway  gateway.Gateway
	logger   *slog.Logger
}

// NewChannelService creates a new channel service
func NewChannelService(
	channels ChannelRepositoryInterface,
	profiles ProfileRepositoryInterface,
	gw gateway.Gateway,
	logger *slog.Logger,
) *ChannelService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelService{
		channels: channels,
		profiles: profiles,
		gateway:  gw,
		logger:   logger,
	}
}

// ConfigureChannel stores the channel's settings and confirms in-channel.
// The configuring user becomes the channel's admin.
func (s *ChannelService) ConfigureChannel(ctx context.Context, req *model.ConfigureChannelRequest) (*model.ChannelConfig, error) {
	if req.ChannelID == "" {
		return nil, ErrChannelNotConfigured
	}
	if req.DefaultEventType != "" {
		profile, err := s.profiles.Get(ctx, req.DefaultEventType)
		if err != nil {
			return nil, fmt.Errorf("get event profile: %w", err)
		}
		if profile == nil {
			return nil, ErrProfileNotFound
		}
	}

	cfg := &model.ChannelConfig{
		ID:               req.ChannelID,
		DefaultEventType: req.DefaultEventType,
		ReactionEmoji:    normalizeEmoji(req.ReactionEmoji, model.DefaultReactionEmoji),
		DisplayEmoji:     normalizeEmoji(req.DisplayEmoji, model.DefaultDisplayEmoji),
		ReminderText:     req.ReminderText,
		ConfiguredBy:     req.ConfiguredBy,
		ConfiguredAt:     time.Now(),
	}

	if err := s.channels.Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("save channel config: %w", err)
	}

	confirmation := fmt.Sprintf("My duties for this channel have been set by <@%s>.", req.ConfiguredBy)
	if err := s.gateway.PostEphemeral(ctx, req.ChannelID, req.ConfiguredBy, confirmation); err != nil {
		s.logger.Warn("failed to confirm channel configuration", "channel_id", req.ChannelID, "error", err)
	}

	return cfg, nil
}

// GetConfig returns the channel's configuration, or ErrChannelNotConfigured.
func (s *ChannelService) GetConfig(ctx context.Context, channelID string) (*model.ChannelConfig, error) {
	cfg, err := s.channels.Get(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("get channel config: %w", err)
	}
	if cfg == nil {
		return nil, ErrChannelNotConfigured
	}
	return cfg, nil
}

// CreateProfile registers a reusable event profile.
func (s *ChannelService) CreateProfile(ctx context.Context, profile *model.EventProfile) (*model.EventProfile, error) {
	if strings.TrimSpace(profile.Name) == "" {
		return nil, ErrProfileNameRequired
	}
	if profile.Category == "" {
		profile.Category = model.EventCategorySport
	}
	if profile.Category == model.EventCategorySport && strings.TrimSpace(profile.CapacityUnit) == "" {
		return nil, ErrCapacityUnitRequired
	}
	if profile.DefaultCapacity <= 0 {
		profile.DefaultCapacity = 1
	}

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("save event profile: %w", err)
	}
	return profile, nil
}

// ListProfiles returns all registered event profiles.
func (s *ChannelService) ListProfiles(ctx context.Context) ([]*model.EventProfile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list event profiles: %w", err)
	}
	return profiles, nil
}

// normalizeEmoji strips surrounding colons and falls back to a default.
func normalizeEmoji(emoji, fallback string) string {
	emoji = strings.Trim(strings.TrimSpace(emoji), ":")
	if emoji == "" {
		return fallback
	}
	return emoji
}
