package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/forgo/reginald/internal/gateway"
	"github.com/forgo/reginald/internal/message"
	"github.com/forgo/reginald/internal/model"
)

// maxConcurrentUpdates bounds the parallel message rewrites per resync.
const maxConcurrentUpdates = 4

// AnnouncementSync keeps every posted copy of an event announcement in step
// with the session state.
type AnnouncementSync struct {
	gateway  gateway.Gateway
	channels ChannelRepositoryInterface
	logger   *slog.Logger
}

// NewAnnouncementSync creates an announcement synchronizer
func NewAnnouncementSync(gw gateway.Gateway, channels ChannelRepositoryInterface, logger *slog.Logger) *AnnouncementSync {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnnouncementSync{
		gateway:  gw,
		channels: channels,
		logger:   logger,
	}
}

// SyncAll re-renders the announcement once and rewrites every posted copy.
// A failure on one message is logged and does not stop the rest; the stored
// session state remains the source of truth either way.
func (s *AnnouncementSync) SyncAll(ctx context.Context, session *model.EventSession) {
	if len(session.Posted) == 0 {
		return
	}

	cfg, err := s.channels.Get(ctx, session.PrimaryChannelID())
	if err != nil {
		s.logger.Warn("channel config lookup failed during resync",
			"event_id", session.ID, "channel_id", session.PrimaryChannelID(), "error", err)
		cfg = nil
	}

	blocks := message.EventBlocks(session, cfg, "")
	fallback := message.UpdateFallback(session)

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentUpdates)
	for _, posted := range session.Posted {
		ref := gateway.MessageRef{ChannelID: posted.ChannelID, MessageTS: posted.MessageTS}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := s.gateway.UpdateMessage(ctx, ref, blocks, fallback); err != nil {
				s.logger.Error("announcement update failed",
					"event_id", session.ID, "channel_id", ref.ChannelID, "message_ts", ref.MessageTS, "error", err)
			}
		}()
	}
	wg.Wait()
}
