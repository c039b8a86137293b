package message

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/forgo/reginald/internal/model"
)

// Action IDs for the announcement buttons.
const (
	ActionJoinEvent     = "join_event_button"
	ActionAddToCalendar = "add_to_gcal_button"
)

// eventIDPrefix tags the block_id of the trailing divider.
const eventIDPrefix = "event_id::"

// MarkerBlockID returns the block_id carrying the event ID inside an
// announcement.
func MarkerBlockID(eventID string) string {
	return eventIDPrefix + eventID
}

// EventIDFromBlockID recovers an event ID from a marker block_id.
func EventIDFromBlockID(blockID string) (string, bool) {
	if !strings.HasPrefix(blockID, eventIDPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(blockID, eventIDPrefix)
	if id == "" {
		return "", false
	}
	return id, true
}

// EventIDFromBlocks scans a message's blocks for the marker divider and
// returns the embedded event ID.
func EventIDFromBlocks(blocks []slack.Block) (string, bool) {
	for _, b := range blocks {
		divider, ok := b.(*slack.DividerBlock)
		if !ok {
			continue
		}
		if id, ok := EventIDFromBlockID(divider.BlockID); ok {
			return id, true
		}
	}
	return "", false
}

// EventBlocks renders the full announcement for an event session.
// customIntro replaces the standard summons line when non-empty; the
// description still follows it.
func EventBlocks(e *model.EventSession, cfg *model.ChannelConfig, customIntro string) []slack.Block {
	displayEmoji := model.DefaultDisplayEmoji
	if cfg != nil && cfg.DisplayEmoji != "" {
		displayEmoji = cfg.DisplayEmoji
	}

	intro := customIntro
	if intro == "" {
		intro = fmt.Sprintf("A summons, esteemed gentlefolk! :%s:\n\nArrangements have been made for the event of *%s* upon *%s*.",
			displayEmoji, e.Title, e.BookingDate)
	}
	if e.Description != "" {
		intro += fmt.Sprintf("\n\n_%s_", e.Description)
	}

	details := fmt.Sprintf("*The Particulars:*\n• :clock530: *Hour of Engagement:* %s\n• :round_pushpin: *Location:* %s\n• :busts_in_silhouette: *Total Capacity:* %d of %d positions filled",
		e.BookingTime, e.Location, e.TotalOccupied(), e.TotalCapacity())
	if e.VenueCode != "" {
		details += fmt.Sprintf("\n• :key: *Entry Cipher:* %s", e.VenueCode)
	}

	joinBtn := slack.NewButtonBlockElement(ActionJoinEvent, e.ID,
		slack.NewTextBlockObject(slack.PlainTextType, "Join Event", true, false))
	joinBtn.Style = slack.StylePrimary
	calendarBtn := slack.NewButtonBlockElement(ActionAddToCalendar, e.ID,
		slack.NewTextBlockObject(slack.PlainTextType, "Add to Google Calendar", true, false))

	blocks := []slack.Block{
		markdownSection(intro),
		slack.NewDividerBlock(),
		markdownSection(details),
		markdownSection("Use the 'Join Event' button to sign up. To leave, use the `/leave-event` command."),
		slack.NewActionBlock("", joinBtn, calendarBtn),
		slack.NewDividerBlock(),
	}

	for i := range e.Rosters {
		blocks = append(blocks, rosterSection(&e.Rosters[i]))
	}

	blocks = append(blocks, standbySection(e.Standby))
	blocks = append(blocks, &slack.DividerBlock{
		Type:    slack.MBTDivider,
		BlockID: MarkerBlockID(e.ID),
	})

	return blocks
}

// UpdateFallback is the plain-text summary used when resyncing an
// announcement after a roster change.
func UpdateFallback(e *model.EventSession) string {
	return fmt.Sprintf("The roster for the event %q on %s has been amended.", e.Title, e.BookingDate)
}

// PostFallback is the plain-text summary used on first announcement.
func PostFallback(e *model.EventSession) string {
	return fmt.Sprintf("An event has been arranged: %s on %s.", e.Title, e.BookingDate)
}

func rosterSection(r *model.Roster) slack.Block {
	text := fmt.Sprintf("*The Roster for %s* (%d/%d)\n- %s",
		r.Name, r.OccupiedSpots(), r.Capacity, mentionList(r.Players, "_Awaiting participants_"))
	return markdownSection(text)
}

func standbySection(standby []model.Participant) slack.Block {
	text := fmt.Sprintf("*The Reserve Contingent* :hourglass_flowing_sand: (%d):\n- %s",
		len(standby), mentionList(standby, "_Presently vacant_"))
	return markdownSection(text)
}

func mentionList(players []model.Participant, placeholder string) string {
	if len(players) == 0 {
		return placeholder
	}
	mentions := make([]string, 0, len(players))
	for _, p := range players {
		m := fmt.Sprintf("<@%s>", p.ID)
		if p.PlusOneCount > 0 {
			m += fmt.Sprintf(" (+%d)", p.PlusOneCount)
		}
		mentions = append(mentions, m)
	}
	return strings.Join(mentions, "\n- ")
}

func markdownSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}
