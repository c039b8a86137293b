// Package gateway abstracts the chat platform behind a small messaging
// interface so the roster engine never talks to Slack directly.
package gateway

import (
	"context"

	"github.com/slack-go/slack"
)

// MessageRef identifies one posted message on the platform.
type MessageRef struct {
	ChannelID string
	MessageTS string
}

// Gateway is the messaging surface the engine depends on.
// Implementations must be safe for concurrent use.
type Gateway interface {
	// PostMessage publishes an announcement to a channel and returns its ref.
	PostMessage(ctx context.Context, channelID string, blocks []slack.Block, fallback string) (MessageRef, error)

	// UpdateMessage rewrites an existing announcement in place.
	UpdateMessage(ctx context.Context, ref MessageRef, blocks []slack.Block, fallback string) error

	// DeleteMessage removes an announcement.
	DeleteMessage(ctx context.Context, ref MessageRef) error

	// PostEphemeral sends a message only the given user can see.
	PostEphemeral(ctx context.Context, channelID, userID, text string) error

	// DirectMessage opens a conversation with one user and sends text.
	DirectMessage(ctx context.Context, userID, text string) error

	// GroupMessage opens a group conversation with several users and sends text.
	GroupMessage(ctx context.Context, userIDs []string, text string) error

	// UserEmail looks up the email address on a user's profile.
	UserEmail(ctx context.Context, userID string) (string, error)
}
