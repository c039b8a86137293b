package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/forgo/reginald/internal/model"
)

const (
	calendarScope   = "https://www.googleapis.com/auth/calendar.events"
	calendarBaseURL = "https://www.googleapis.com/calendar/v3"

	defaultEventDuration = 90 * time.Minute
)

// TokenRepositoryInterface defines token persistence operations
type TokenRepositoryInterface interface {
	Get(ctx context.Context, userID string) (*model.GoogleToken, error)
	Save(ctx context.Context, token *model.GoogleToken) error
	Delete(ctx context.Context, userID string) error
}

// CalendarService handles the Google OAuth flow and calendar event creation.
type CalendarService struct {
	repo    EventRepositoryInterface
	tokens  TokenRepositoryInterface
	oauth   *oauth2.Config
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// CalendarConfig holds Google OAuth credentials.
type CalendarConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// NewCalendarService creates a new calendar service
func NewCalendarService(
	repo EventRepositoryInterface,
	tokens TokenRepositoryInterface,
	cfg CalendarConfig,
	logger *slog.Logger,
) *CalendarService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarService{
		repo:   repo,
		tokens: tokens,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{calendarScope},
			Endpoint:     google.Endpoint,
		},
		baseURL: calendarBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// AuthURL builds the consent URL for the user. The user ID travels in the
// OAuth state parameter so the callback can associate the token.
func (s *CalendarService) AuthURL(userID string) string {
	return s.oauth.AuthCodeURL(userID,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// HandleCallback exchanges the authorization code and stores the token for
// the user named in the state parameter.
func (s *CalendarService) HandleCallback(ctx context.Context, state, code string) error {
	if state == "" || code == "" {
		return fmt.Errorf("missing state or code")
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	stored := &model.GoogleToken{
		UserID:       state,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}
	if err := s.tokens.Save(ctx, stored); err != nil {
		return fmt.Errorf("save google token: %w", err)
	}

	s.logger.Info("google calendar authorized", "user_id", state)
	return nil
}

// calendarEvent is the subset of the Calendar API event resource we send.
type calendarEvent struct {
	Summary     string             `json:"summary"`
	Location    string             `json:"location,omitempty"`
	Description string             `json:"description"`
	Start       calendarEventTime  `json:"start"`
	End         calendarEventTime  `json:"end"`
	Attendees   []calendarAttendee `json:"attendees,omitempty"`
	Reminders   calendarReminders  `json:"reminders"`
}

type calendarEventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type calendarAttendee struct {
	Email string `json:"email"`
}

type calendarReminders struct {
	UseDefault bool               `json:"useDefault"`
	Overrides  []calendarOverride `json:"overrides"`
}

type calendarOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// AddEventToCalendar inserts the event into the user's primary calendar and
// returns the link to the created entry. The user must already be enrolled
// on a roster or the standby queue.
func (s *CalendarService) AddEventToCalendar(ctx context.Context, eventID, userID string) (string, error) {
	session, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return "", fmt.Errorf("get event: %w", err)
	}
	if session == nil {
		return "", ErrEventNotFound
	}
	if session.FindParticipant(userID) == nil {
		return "", ErrNotParticipant
	}

	stored, err := s.tokens.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get google token: %w", err)
	}
	if stored == nil {
		return "", ErrGoogleAuthRequired
	}

	source := s.oauth.TokenSource(ctx, &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		Expiry:       stored.Expiry,
	})
	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("refresh google token: %w", err)
	}
	if token.AccessToken != stored.AccessToken {
		stored.AccessToken = token.AccessToken
		stored.Expiry = token.Expiry
		if token.RefreshToken != "" {
			stored.RefreshToken = token.RefreshToken
		}
		if err := s.tokens.Save(ctx, stored); err != nil {
			s.logger.Warn("failed to persist refreshed token", "user_id", userID, "error", err)
		}
	}

	link, err := s.insertEvent(ctx, token, session)
	if err != nil {
		return "", err
	}
	return link, nil
}

func (s *CalendarService) insertEvent(ctx context.Context, token *oauth2.Token, session *model.EventSession) (string, error) {
	description := session.Description
	if description == "" {
		description = "An engagement arranged by Sir Reginald."
	}

	var attendees []calendarAttendee
	for i := range session.Rosters {
		for _, p := range session.Rosters[i].Players {
			if p.Email != "" {
				attendees = append(attendees, calendarAttendee{Email: p.Email})
			}
		}
	}
	for _, p := range session.Standby {
		if p.Email != "" {
			attendees = append(attendees, calendarAttendee{Email: p.Email})
		}
	}

	start := session.BookingFull.UTC()
	event := calendarEvent{
		Summary:     session.Title,
		Location:    session.Location,
		Description: description,
		Start:       calendarEventTime{DateTime: start.Format(time.RFC3339), TimeZone: "UTC"},
		End:         calendarEventTime{DateTime: start.Add(defaultEventDuration).Format(time.RFC3339), TimeZone: "UTC"},
		Attendees:   attendees,
		Reminders: calendarReminders{
			UseDefault: false,
			Overrides: []calendarOverride{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 60},
			},
		},
	}

	body, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("encode calendar event: %w", err)
	}

	url := s.baseURL + "/calendars/primary/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build calendar request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("calendar API returned %d: %s", resp.StatusCode, payload)
	}

	var created struct {
		HTMLLink string `json:"htmlLink"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode calendar response: %w", err)
	}
	return created.HTMLLink, nil
}
