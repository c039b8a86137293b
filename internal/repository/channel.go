package repository

import (
	"context"
	"errors"

	"github.com/forgo/reginald/internal/database"
	"github.com/forgo/reginald/internal/model"
)

const channelTable = "channel_config"

// ChannelRepository handles channel configuration data access. Configs are
// keyed by the channel ID.
type ChannelRepository struct {
	db database.Database
}

// NewChannelRepository creates a new channel repository
func NewChannelRepository(db database.Database) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Get retrieves a channel's configuration. Returns (nil, nil) when the
// channel has never been configured.
func (r *ChannelRepository) Get(ctx context.Context, channelID string) (*model.ChannelConfig, error) {
	query := `SELECT * FROM type::thing($table, $channel_id)`
	vars := map[string]interface{}{
		"table":      channelTable,
		"channel_id": channelID,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseChannelResult(result)
}

// Upsert writes a channel's configuration, creating it if absent.
func (r *ChannelRepository) Upsert(ctx context.Context, cfg *model.ChannelConfig) error {
	query := `UPSERT type::thing($table, $channel_id) CONTENT $content`
	vars := map[string]interface{}{
		"table":      channelTable,
		"channel_id": cfg.ID,
		"content": map[string]interface{}{
			"default_event_type": cfg.DefaultEventType,
			"reaction_emoji":     cfg.ReactionEmoji,
			"display_emoji":      cfg.DisplayEmoji,
			"reminder_text":      cfg.ReminderText,
			"configured_by":      cfg.ConfiguredBy,
			"configured_at":      cfg.ConfiguredAt,
		},
	}

	return r.db.Execute(ctx, query, vars)
}

func parseChannelResult(result interface{}) (*model.ChannelConfig, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	cfg := &model.ChannelConfig{
		ID:               bareRecordID(convertSurrealID(data["id"]), channelTable),
		DefaultEventType: getString(data, "default_event_type"),
		ReactionEmoji:    getString(data, "reaction_emoji"),
		DisplayEmoji:     getString(data, "display_emoji"),
		ReminderText:     getString(data, "reminder_text"),
		ConfiguredBy:     getString(data, "configured_by"),
	}
	if t := getTime(data, "configured_at"); t != nil {
		cfg.ConfiguredAt = *t
	}

	return cfg, nil
}
