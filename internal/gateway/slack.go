package gateway

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// SlackGateway implements Gateway over the Slack Web API.
type SlackGateway struct {
	client *slack.Client
}

// NewSlackGateway creates a gateway using the given bot token.
func NewSlackGateway(botToken string) *SlackGateway {
	return &SlackGateway{
		client: slack.New(botToken),
	}
}

// PostMessage publishes an announcement to a channel
func (g *SlackGateway) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, fallback string) (MessageRef, error) {
	channel, ts, err := g.client.PostMessageContext(ctx, channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(fallback, false),
	)
	if err != nil {
		return MessageRef{}, fmt.Errorf("post message to %s: %w", channelID, err)
	}
	return MessageRef{ChannelID: channel, MessageTS: ts}, nil
}

// UpdateMessage rewrites an existing announcement in place
func (g *SlackGateway) UpdateMessage(ctx context.Context, ref MessageRef, blocks []slack.Block, fallback string) error {
	_, _, _, err := g.client.UpdateMessageContext(ctx, ref.ChannelID, ref.MessageTS,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(fallback, false),
	)
	if err != nil {
		return fmt.Errorf("update message %s in %s: %w", ref.MessageTS, ref.ChannelID, err)
	}
	return nil
}

// DeleteMessage removes an announcement
func (g *SlackGateway) DeleteMessage(ctx context.Context, ref MessageRef) error {
	_, _, err := g.client.DeleteMessageContext(ctx, ref.ChannelID, ref.MessageTS)
	if err != nil {
		return fmt.Errorf("delete message %s in %s: %w", ref.MessageTS, ref.ChannelID, err)
	}
	return nil
}

// PostEphemeral sends a message only the given user can see
func (g *SlackGateway) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	_, err := g.client.PostEphemeralContext(ctx, channelID, userID,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return fmt.Errorf("post ephemeral to %s in %s: %w", userID, channelID, err)
	}
	return nil
}

// DirectMessage opens a conversation with one user and sends text
func (g *SlackGateway) DirectMessage(ctx context.Context, userID, text string) error {
	return g.conversationMessage(ctx, []string{userID}, text)
}

// GroupMessage opens a group conversation with several users and sends text
func (g *SlackGateway) GroupMessage(ctx context.Context, userIDs []string, text string) error {
	return g.conversationMessage(ctx, userIDs, text)
}

// UserEmail looks up the email address on a user's profile
func (g *SlackGateway) UserEmail(ctx context.Context, userID string) (string, error) {
	user, err := g.client.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get user info for %s: %w", userID, err)
	}
	return user.Profile.Email, nil
}

func (g *SlackGateway) conversationMessage(ctx context.Context, userIDs []string, text string) error {
	channel, _, _, err := g.client.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: userIDs,
	})
	if err != nil {
		return fmt.Errorf("open conversation: %w", err)
	}
	_, _, err = g.client.PostMessageContext(ctx, channel.ID,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return fmt.Errorf("post to conversation %s: %w", channel.ID, err)
	}
	return nil
}
