package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/forgo/reginald/internal/message"
	"github.com/forgo/reginald/internal/model"
)

var (
	nextEventPattern = regexp.MustCompile(`(?i)(next event|next match|next game|upcoming)`)
	statusPattern    = regexp.MustCompile(`(?i)(my status|am i in|am i playing)`)
	spotsPattern     = regexp.MustCompile(`(?i)(spots left|open spots|how many spots)`)

	// Matches "June 2", "June 2nd", "2 June" and so on.
	monthDayPattern = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	dayMonthPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
)

// InquiryService answers free-text questions mentioning the bot.
type InquiryService struct {
	repo     EventRepositoryInterface
	channels ChannelRepositoryInterface
	logger   *slog.Logger
}

// NewInquiryService creates a new inquiry service
func NewInquiryService(repo EventRepositoryInterface, channels ChannelRepositoryInterface, logger *slog.Logger) *InquiryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InquiryService{repo: repo, channels: channels, logger: logger}
}

// Answer interprets the question text and returns a reply suitable for
// posting back into the channel.
func (s *InquiryService) Answer(ctx context.Context, userID, text string) (string, error) {
	session, dateMentioned, err := s.resolveSession(ctx, text)
	if err != nil {
		return "", err
	}

	switch {
	case statusPattern.MatchString(text):
		return s.statusReply(ctx, session, userID, dateMentioned), nil
	case spotsPattern.MatchString(text):
		return s.spotsReply(session, dateMentioned), nil
	case nextEventPattern.MatchString(text) || dateMentioned != "":
		return s.overviewReply(session, dateMentioned), nil
	default:
		return "Your humble servant is at your disposal. You may inquire about the 'next event', ask about your 'status', or check how many 'spots are left'.", nil
	}
}

// resolveSession finds the session the question refers to. A mentioned date
// narrows the lookup; otherwise the next upcoming session is used.
func (s *InquiryService) resolveSession(ctx context.Context, text string) (*model.EventSession, string, error) {
	if date, ok := mentionedDate(text, time.Now()); ok {
		formatted := message.FormatBookingDate(date)
		session, err := s.repo.FindByDateString(ctx, formatted)
		if err != nil {
			return nil, formatted, fmt.Errorf("find session by date: %w", err)
		}
		return session, formatted, nil
	}

	session, err := s.repo.FindNext(ctx, time.Now())
	if err != nil {
		return nil, "", fmt.Errorf("find next session: %w", err)
	}
	return session, "", nil
}

func notFoundReply(dateMentioned string) string {
	if dateMentioned != "" {
		return fmt.Sprintf("A noble query, but my archives show no scheduled contest for *%s*.", dateMentioned)
	}
	return "My apologies, but I could not find an upcoming engagement to check against."
}

func (s *InquiryService) statusReply(ctx context.Context, session *model.EventSession, userID, dateMentioned string) string {
	if session == nil {
		return notFoundReply(dateMentioned)
	}

	loc := session.FindParticipant(userID)
	switch {
	case loc == nil:
		emoji := model.DefaultReactionEmoji
		if channelID := session.PrimaryChannelID(); channelID != "" {
			if cfg, err := s.channels.Get(ctx, channelID); err == nil && cfg != nil && cfg.ReactionEmoji != "" {
				emoji = cfg.ReactionEmoji
			}
		}
		return fmt.Sprintf("A curious matter. It appears your name is not yet on any roster for *%s*. Pray, use the :%s: reaction on the proclamation should you wish to join.",
			session.Title, emoji)
	case loc.OnStandby:
		return fmt.Sprintf("Fear not, for your name is securely held within the Reserve Contingent for *%s*.", session.Title)
	default:
		return fmt.Sprintf("Ah, a personal inquiry! Indeed, I have your name inscribed upon the roster for *%s* for the event *%s* on *%s*.",
			loc.RosterName, session.Title, session.BookingDate)
	}
}

func (s *InquiryService) spotsReply(session *model.EventSession, dateMentioned string) string {
	if session == nil {
		return notFoundReply(dateMentioned)
	}

	remaining := session.TotalCapacity() - session.TotalOccupied()
	if remaining > 0 {
		return fmt.Sprintf("An astute question! For the event *%s*, there remain *%d* positions awaiting worthy challengers.",
			session.Title, remaining)
	}
	return fmt.Sprintf("Alas, the rosters for *%s* are at their full complement. However, you may still add your name to the Reserve Contingent.",
		session.Title)
}

func (s *InquiryService) overviewReply(session *model.EventSession, dateMentioned string) string {
	if session == nil {
		return notFoundReply(dateMentioned)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The next engagement is *%s* on *%s* at *%s*.", session.Title, session.BookingDate, session.BookingTime)

	for i := range session.Rosters {
		roster := &session.Rosters[i]
		fmt.Fprintf(&b, "\n*%s (%d/%d)*: ", roster.Name, len(roster.Players), roster.Capacity)
		if len(roster.Players) == 0 {
			b.WriteString("_None as of yet._")
			continue
		}
		mentions := make([]string, 0, len(roster.Players))
		for _, p := range roster.Players {
			mentions = append(mentions, "<@"+p.ID+">")
		}
		b.WriteString(strings.Join(mentions, ", "))
	}

	if len(session.Standby) > 0 {
		mentions := make([]string, 0, len(session.Standby))
		for _, p := range session.Standby {
			mentions = append(mentions, "<@"+p.ID+">")
		}
		fmt.Fprintf(&b, "\n*Awaiting the Call:* %s", strings.Join(mentions, ", "))
	}

	return b.String()
}

// mentionedDate extracts a month-and-day mention from the text. The year is
// inferred as the next occurrence of that date from now.
func mentionedDate(text string, now time.Time) (time.Time, bool) {
	var monthName, dayStr string
	if m := monthDayPattern.FindStringSubmatch(text); m != nil {
		monthName, dayStr = m[1], m[2]
	} else if m := dayMonthPattern.FindStringSubmatch(text); m != nil {
		dayStr, monthName = m[1], m[2]
	} else {
		return time.Time{}, false
	}

	month, ok := monthByName(monthName)
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	date := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
	if date.Month() != month {
		// Day overflowed the month, e.g. February 30.
		return time.Time{}, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		date = date.AddDate(1, 0, 0)
	}
	return date, true
}

func monthByName(name string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), name) {
			return m, true
		}
	}
	return 0, false
}
