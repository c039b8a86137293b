package model

import "time"

// ChannelConfig holds the per-channel defaults set by a channel administrator.
// The record ID is the channel ID itself.
type ChannelConfig struct {
	ID               string    `json:"id"` // channel ID
	DefaultEventType string    `json:"default_event_type"`
	ReactionEmoji    string    `json:"reaction_emoji"`
	DisplayEmoji     string    `json:"display_emoji"`
	ReminderText     string    `json:"reminder_text,omitempty"` // supports {eventTitle}, {eventTime}, {weather}
	ConfiguredBy     string    `json:"configured_by"`           // treated as the channel admin
	ConfiguredAt     time.Time `json:"configured_at"`
}

// Default emoji applied when a channel config leaves them unset.
const (
	DefaultReactionEmoji = "hand"
	DefaultDisplayEmoji  = "scroll"
)

// EventProfile is a reusable template for recurring events. The record ID is
// the profile name.
type EventProfile struct {
	Name            string `json:"name"` // e.g., "padel"
	Category        string `json:"category"`
	CapacityUnit    string `json:"capacity_unit"` // e.g., "courts"
	DefaultLocation string `json:"default_location"`
	VenueCode       string `json:"venue_code,omitempty"`
	DefaultCapacity int    `json:"default_capacity"` // units for SPORT, seats for SPECTATOR
}

// ConfigureChannelRequest represents an admin request to set channel defaults
type ConfigureChannelRequest struct {
	ChannelID        string `json:"channel_id"`
	DefaultEventType string `json:"default_event_type"`
	ReactionEmoji    string `json:"reaction_emoji,omitempty"`
	DisplayEmoji     string `json:"display_emoji,omitempty"`
	ReminderText     string `json:"reminder_text,omitempty"`
	ConfiguredBy     string `json:"configured_by"`
}
