package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/slack-go/slack"

	"github.com/forgo/reginald/internal/gateway"
	"github.com/forgo/reginald/internal/model"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockEventRepo struct {
	mu sync.Mutex

	getFunc              func(ctx context.Context, eventID string) (*model.EventSession, error)
	upsertFunc           func(ctx context.Context, session *model.EventSession) error
	deleteFunc           func(ctx context.Context, eventID string) error
	findDueFunc          func(ctx context.Context, now time.Time) ([]*model.EventSession, error)
	findUpcomingFunc     func(ctx context.Context, from time.Time) ([]*model.EventSession, error)
	findNextFunc         func(ctx context.Context, from time.Time) (*model.EventSession, error)
	findBetweenFunc      func(ctx context.Context, from, to time.Time) ([]*model.EventSession, error)
	findByDateStringFunc func(ctx context.Context, bookingDate string) (*model.EventSession, error)
}

func (m *mockEventRepo) Get(ctx context.Context, eventID string) (*model.EventSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getFunc != nil {
		return m.getFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *mockEventRepo) Upsert(ctx context.Context, session *model.EventSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, session)
	}
	return nil
}

func (m *mockEventRepo) Delete(ctx context.Context, eventID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, eventID)
	}
	return nil
}

func (m *mockEventRepo) FindDue(ctx context.Context, now time.Time) ([]*model.EventSession, error) {
	if m.findDueFunc != nil {
		return m.findDueFunc(ctx, now)
	}
	return nil, nil
}

func (m *mockEventRepo) FindUpcoming(ctx context.Context, from time.Time) ([]*model.EventSession, error) {
	if m.findUpcomingFunc != nil {
		return m.findUpcomingFunc(ctx, from)
	}
	return nil, nil
}

func (m *mockEventRepo) FindNext(ctx context.Context, from time.Time) (*model.EventSession, error) {
	if m.findNextFunc != nil {
		return m.findNextFunc(ctx, from)
	}
	return nil, nil
}

func (m *mockEventRepo) FindBetween(ctx context.Context, from, to time.Time) ([]*model.EventSession, error) {
	if m.findBetweenFunc != nil {
		return m.findBetweenFunc(ctx, from, to)
	}
	return nil, nil
}

func (m *mockEventRepo) FindByDateString(ctx context.Context, bookingDate string) (*model.EventSession, error) {
	if m.findByDateStringFunc != nil {
		return m.findByDateStringFunc(ctx, bookingDate)
	}
	return nil, nil
}

type mockChannelRepo struct {
	getFunc    func(ctx context.Context, channelID string) (*model.ChannelConfig, error)
	upsertFunc func(ctx context.Context, cfg *model.ChannelConfig) error
}

func (m *mockChannelRepo) Get(ctx context.Context, channelID string) (*model.ChannelConfig, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, channelID)
	}
	return nil, nil
}

func (m *mockChannelRepo) Upsert(ctx context.Context, cfg *model.ChannelConfig) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, cfg)
	}
	return nil
}

type mockProfileRepo struct {
	getFunc    func(ctx context.Context, name string) (*model.EventProfile, error)
	listFunc   func(ctx context.Context) ([]*model.EventProfile, error)
	upsertFunc func(ctx context.Context, profile *model.EventProfile) error
}

func (m *mockProfileRepo) Get(ctx context.Context, name string) (*model.EventProfile, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, name)
	}
	return nil, nil
}

func (m *mockProfileRepo) List(ctx context.Context) ([]*model.EventProfile, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockProfileRepo) Upsert(ctx context.Context, profile *model.EventProfile) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, profile)
	}
	return nil
}

type mockGateway struct {
	postMessageFunc   func(ctx context.Context, channelID string, blocks []slack.Block, fallback string) (gateway.MessageRef, error)
	updateMessageFunc func(ctx context.Context, ref gateway.MessageRef, blocks []slack.Block, fallback string) error
	deleteMessageFunc func(ctx context.Context, ref gateway.MessageRef) error
	postEphemeralFunc func(ctx context.Context, channelID, userID, text string) error
	directMessageFunc func(ctx context.Context, userID, text string) error
	groupMessageFunc  func(ctx context.Context, userIDs []string, text string) error
	userEmailFunc     func(ctx context.Context, userID string) (string, error)
}

func (m *mockGateway) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, fallback string) (gateway.MessageRef, error) {
	if m.postMessageFunc != nil {
		return m.postMessageFunc(ctx, channelID, blocks, fallback)
	}
	return gateway.MessageRef{ChannelID: channelID, MessageTS: "1724900000.000100"}, nil
}

func (m *mockGateway) UpdateMessage(ctx context.Context, ref gateway.MessageRef, blocks []slack.Block, fallback string) error {
	if m.updateMessageFunc != nil {
		return m.updateMessageFunc(ctx, ref, blocks, fallback)
	}
	return nil
}

func (m *mockGateway) DeleteMessage(ctx context.Context, ref gateway.MessageRef) error {
	if m.deleteMessageFunc != nil {
		return m.deleteMessageFunc(ctx, ref)
	}
	return nil
}

func (m *mockGateway) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	if m.postEphemeralFunc != nil {
		return m.postEphemeralFunc(ctx, channelID, userID, text)
	}
	return nil
}

func (m *mockGateway) DirectMessage(ctx context.Context, userID, text string) error {
	if m.directMessageFunc != nil {
		return m.directMessageFunc(ctx, userID, text)
	}
	return nil
}

func (m *mockGateway) GroupMessage(ctx context.Context, userIDs []string, text string) error {
	if m.groupMessageFunc != nil {
		return m.groupMessageFunc(ctx, userIDs, text)
	}
	return nil
}

func (m *mockGateway) UserEmail(ctx context.Context, userID string) (string, error) {
	if m.userEmailFunc != nil {
		return m.userEmailFunc(ctx, userID)
	}
	return "", nil
}

// ============================================================================
// Helper Functions
// ============================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEventService(repo *mockEventRepo, channels *mockChannelRepo, profiles *mockProfileRepo, gw *mockGateway) *EventService {
	if repo == nil {
		repo = &mockEventRepo{}
	}
	if channels == nil {
		channels = &mockChannelRepo{}
	}
	if profiles == nil {
		profiles = &mockProfileRepo{
			getFunc: func(ctx context.Context, name string) (*model.EventProfile, error) {
				return &model.EventProfile{Name: name, Category: model.EventCategorySport, CapacityUnit: "courts"}, nil
			},
		}
	}
	if gw == nil {
		gw = &mockGateway{}
	}
	logger := discardLogger()
	sync := NewAnnouncementSync(gw, channels, logger)
	return NewEventService(repo, channels, profiles, gw, sync, logger)
}

// inMemoryEventRepo wires a mockEventRepo around a single live session so
// mutations written by Upsert are visible to the next Get.
func inMemoryEventRepo(session *model.EventSession) *mockEventRepo {
	repo := &mockEventRepo{}
	repo.getFunc = func(ctx context.Context, eventID string) (*model.EventSession, error) {
		if session == nil || session.ID != eventID {
			return nil, nil
		}
		copied := *session
		return &copied, nil
	}
	repo.upsertFunc = func(ctx context.Context, updated *model.EventSession) error {
		*session = *updated
		return nil
	}
	return repo
}

func testSession() *model.EventSession {
	return &model.EventSession{
		ID:            "EVT-1A2B3C4D",
		Title:         "Badminton Night",
		EventType:     "badminton",
		EventCategory: model.EventCategorySport,
		BookingDate:   "Monday, September 7th",
		BookingFull:   time.Date(2026, 9, 7, 17, 30, 0, 0, time.UTC),
		BookingTime:   "17:30",
		Rosters: []model.Roster{
			{ID: "r1", Name: "Court 1", Capacity: 4, AllowPlusOne: true, Players: []model.Participant{}},
			{ID: "r2", Name: "Court 2", Capacity: 4, AllowPlusOne: false, Players: []model.Participant{}},
		},
		MaxCapacity: 8,
		Standby:     []model.Participant{},
		Posted:      []model.PostedMessage{{ChannelID: "C100", MessageTS: "1724900000.000100"}},
		Status:      model.EventStatusActive,
	}
}

// ============================================================================
// JoinEvent Tests
// ============================================================================

func TestJoinEvent_ExplicitRoster(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	result, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: "U1", RosterID: "r1"})
	if err != nil {
		t.Fatalf("JoinEvent failed: %v", err)
	}
	if result.PlacedOnStandby {
		t.Error("expected roster placement, got standby")
	}
	if result.RosterName != "Court 1" {
		t.Errorf("expected Court 1, got %q", result.RosterName)
	}
	if len(session.Rosters[0].Players) != 1 || session.Rosters[0].Players[0].ID != "U1" {
		t.Errorf("expected U1 on Court 1, got %+v", session.Rosters[0].Players)
	}
}

func TestJoinEvent_SingleOpenRoster_AutoAssigns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	// Fill Court 1 so only Court 2 remains open.
	session.Rosters[0].Players = []model.Participant{
		{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"},
	}
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	result, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: "U1"})
	if err != nil {
		t.Fatalf("JoinEvent failed: %v", err)
	}
	if result.RosterName != "Court 2" {
		t.Errorf("expected auto-assignment to Court 2, got %q", result.RosterName)
	}
}

func TestJoinEvent_SingleOpenGuestRoster_RequiresSelection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	// Fill Court 2 so only the guest-allowing Court 1 remains open.
	session.Rosters[1].Players = []model.Participant{
		{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"},
	}
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	_, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: "U1", GuestCount: 1})
	if !errors.Is(err, ErrNoRosterSelected) {
		t.Errorf("expected ErrNoRosterSelected, got %v", err)
	}

	// The same join with the roster named explicitly is admitted.
	result, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: "U1", RosterID: "r1", GuestCount: 1})
	if err != nil {
		t.Fatalf("JoinEvent with explicit roster failed: %v", err)
	}
	if result.RosterName != "Court 1" || result.GuestCount != 1 {
		t.Errorf("expected Court 1 admission with one guest, got %+v", result)
	}
}

func TestJoinEvent_OverfilledRoster_AbortsWithoutPersisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Court 2 holds five spots against a capacity of four.
	session := testSession()
	session.Rosters[1].Players = []model.Participant{
		{ID: "A", PlusOneCount: 2}, {ID: "B", PlusOneCount: 1},
	}

	persisted := false
	repo := &mockEventRepo{
		getFunc: func(ctx context.Context, eventID string) (*model.EventSession, error) {
			return session, nil
		},
		upsertFunc: func(ctx context.Context, s *model.EventSession) error {
			persisted = true
			return nil
		},
	}
	svc := newTestEventService(repo, nil, nil, nil)

	_, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: "U1", RosterID: "r1"})
	if !errors.Is(err, ErrRosterOverfilled) {
		t.Errorf("expected ErrRosterOverfilled, got %v", err)
	}
	if persisted {
		t.Error("a corrupted record must not be written back")
	}
}

func TestLeaveEvent_OverfilledRoster_AbortsWithoutPersisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	session.Rosters[0].Players = []model.Participant{
		{ID: "U1", PlusOneCount: 2}, {ID: "B", PlusOneCount: 2},
	}

	persisted := false
	repo := &mockEventRepo{
		getFunc: func(ctx context.Context, eventID string) (*model.EventSession, error) {
			return session, nil
		},
		upsertFunc: func(ctx context.Context, s *model.EventSession) error {
			persisted = true
			return nil
		},
	}
	svc := newTestEventService(repo, nil, nil, nil)

	_, err := svc.LeaveEvent(ctx, session.ID, "U1")
	if !errors.Is(err, ErrRosterOverfilled) {
		t.Errorf("expected ErrRosterOverfilled, got %v", err)
	}
	if persisted {
		t.Error("a corrupted record must not be written back")
	}
}

func TestJoinEvent_MultipleOpenRosters_RequiresSelection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	_, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: "U1"})
	if !errors.Is(err, ErrNoRosterSelected) {
		t.Errorf("expected ErrNoRosterSelected, got %v", err)
	}
}

func TestJoinEvent_FullEvent_PlacesOnStandby(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	session.Rosters[0].Players = []model.Participant{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}}
	session.Rosters[1].Players = []model.Participant{{ID: "E"}, {ID: "F"}, {ID: "G"}, {ID: "H"}}
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	result, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: "U1", GuestCount: 2})
	if err != nil {
		t.Fatalf("JoinEvent failed: %v", err)
	}
	if !result.PlacedOnStandby {
		t.Error("expected standby placement")
	}
	if len(session.Standby) != 1 || session.Standby[0].ID != "U1" {
		t.Errorf("expected U1 on standby, got %+v", session.Standby)
	}
	if session.Standby[0].PlusOneCount != 0 {
		t.Errorf("standby enrollment must not carry guests, got %d", session.Standby[0].PlusOneCount)
	}
}

func TestJoinEvent_AlreadyEnrolled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	session.Rosters[0].Players = []model.Participant{{ID: "U1"}}
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	_, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: "U1", RosterID: "r2"})
	if !errors.Is(err, ErrAlreadyEnrolled) {
		t.Errorf("expected ErrAlreadyEnrolled, got %v", err)
	}
}

func TestJoinEvent_GuestsOnRestrictedRoster(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	_, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: "U1", RosterID: "r2", GuestCount: 1})
	if !errors.Is(err, ErrGuestsNotAllowed) {
		t.Errorf("expected ErrGuestsNotAllowed, got %v", err)
	}
}

func TestJoinEvent_GuestCountOutOfRange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestEventService(nil, nil, nil, nil)

	for _, count := range []int{-1, 3} {
		_, err := svc.JoinEvent(ctx, "EVT-1A2B3C4D", &model.JoinEventRequest{UserID: "U1", GuestCount: count})
		if !errors.Is(err, ErrInvalidGuestCount) {
			t.Errorf("guest count %d: expected ErrInvalidGuestCount, got %v", count, err)
		}
	}
}

func TestJoinEvent_GuestsExceedRemainingCapacity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	// Court 1 has 4 spots; one player with a guest leaves room for 2 more.
	session.Rosters[0].Players = []model.Participant{{ID: "A", PlusOneCount: 1}}
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	_, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: "U1", RosterID: "r1", GuestCount: 2})
	if !errors.Is(err, ErrInsufficientCapacity) {
		t.Errorf("expected ErrInsufficientCapacity, got %v", err)
	}

	// Joining with one guest fits exactly.
	result, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: "U1", RosterID: "r1", GuestCount: 1})
	if err != nil {
		t.Fatalf("JoinEvent failed: %v", err)
	}
	if result.GuestCount != 1 {
		t.Errorf("expected guest count 1, got %d", result.GuestCount)
	}
}

func TestJoinEvent_UnknownRoster(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	_, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: "U1", RosterID: "nope"})
	if !errors.Is(err, ErrRosterNotFound) {
		t.Errorf("expected ErrRosterNotFound, got %v", err)
	}
}

func TestJoinEvent_EventNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestEventService(&mockEventRepo{}, nil, nil, nil)

	_, err := svc.JoinEvent(ctx, "EVT-MISSING1", &model.JoinEventRequest{UserID: "U1"})
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestJoinEvent_SyncsAllPostedMessages(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	session.Posted = []model.PostedMessage{
		{ChannelID: "C100", MessageTS: "1.0"},
		{ChannelID: "C200", MessageTS: "2.0"},
	}

	var mu sync.Mutex
	var updated []string
	gw := &mockGateway{
		updateMessageFunc: func(ctx context.Context, ref gateway.MessageRef, blocks []slack.Block, fallback string) error {
			mu.Lock()
			defer mu.Unlock()
			updated = append(updated, ref.ChannelID)
			return nil
		},
	}
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, gw)

	if _, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: "U1", RosterID: "r1"}); err != nil {
		t.Fatalf("JoinEvent failed: %v", err)
	}

	if len(updated) != 2 {
		t.Fatalf("expected 2 message updates, got %d", len(updated))
	}
	sort.Strings(updated)
	if updated[0] != "C100" || updated[1] != "C200" {
		t.Errorf("expected updates to C100 and C200, got %v", updated)
	}
}

func TestJoinEvent_ResyncFailureIsolatedPerChannel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	session.Posted = []model.PostedMessage{
		{ChannelID: "C100", MessageTS: "1.0"},
		{ChannelID: "C200", MessageTS: "2.0"},
	}

	var mu sync.Mutex
	var updated []string
	gw := &mockGateway{
		updateMessageFunc: func(ctx context.Context, ref gateway.MessageRef, blocks []slack.Block, fallback string) error {
			if ref.ChannelID == "C100" {
				return errors.New("message_not_found")
			}
			mu.Lock()
			defer mu.Unlock()
			updated = append(updated, ref.ChannelID)
			return nil
		},
	}
	repo := inMemoryEventRepo(session)
	svc := newTestEventService(repo, nil, nil, gw)

	// The enrollment commits even though one announcement copy cannot be
	// refreshed.
	result, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: "U1", RosterID: "r1"})
	if err != nil {
		t.Fatalf("JoinEvent failed: %v", err)
	}
	if result.RosterName != "Court 1" {
		t.Errorf("expected Court 1 admission, got %+v", result)
	}

	if len(updated) != 1 || updated[0] != "C200" {
		t.Errorf("expected the surviving copy C200 to be updated, got %v", updated)
	}

	stored, _ := repo.Get(ctx, session.ID)
	if stored.FindParticipant("U1") == nil {
		t.Error("expected the enrollment persisted despite the failed update")
	}
	if len(stored.Posted) != 2 {
		t.Errorf("ledger must not be mutated by a failed update, got %d entries", len(stored.Posted))
	}
}

func TestJoinEvent_ConcurrentJoins_NeverOversubscribe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	session.Rosters = session.Rosters[:1]
	session.MaxCapacity = 4
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := string(rune('A' + n))
			_, err := svc.JoinEvent(ctx, session.ID, &model.JoinEventRequest{UserID: userID, RosterID: "r1"})
			results[n] = err
		}(i)
	}
	wg.Wait()

	if got := len(session.Rosters[0].Players); got != 4 {
		t.Errorf("expected exactly 4 roster players, got %d", got)
	}
	if got := len(session.Standby); got != 4 {
		t.Errorf("expected 4 standby players, got %d", got)
	}
	for n, err := range results {
		if err != nil {
			t.Errorf("join %d returned error: %v", n, err)
		}
	}
}

// ============================================================================
// LeaveEvent Tests
// ============================================================================

func TestLeaveEvent_PromotesStandbyHead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	session.Rosters[0].Players = []model.Participant{{ID: "A"}, {ID: "B"}}
	session.Standby = []model.Participant{{ID: "S1", PlusOneCount: 1}, {ID: "S2"}}

	var dmUser, dmText string
	gw := &mockGateway{
		directMessageFunc: func(ctx context.Context, userID, text string) error {
			dmUser, dmText = userID, text
			return nil
		},
	}
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, gw)

	result, err := svc.LeaveEvent(ctx, session.ID, "A")
	if err != nil {
		t.Fatalf("LeaveEvent failed: %v", err)
	}
	if result.Promoted == nil || result.Promoted.ID != "S1" {
		t.Fatalf("expected S1 promoted, got %+v", result.Promoted)
	}
	if result.PromotedRoster != "Court 1" {
		t.Errorf("expected promotion into Court 1, got %q", result.PromotedRoster)
	}

	players := session.Rosters[0].Players
	if len(players) != 2 || players[1].ID != "S1" {
		t.Errorf("expected S1 appended to Court 1, got %+v", players)
	}
	if players[1].PlusOneCount != 1 {
		t.Errorf("promotion must keep the promoted player's guest count, got %d", players[1].PlusOneCount)
	}
	if len(session.Standby) != 1 || session.Standby[0].ID != "S2" {
		t.Errorf("expected S2 to remain on standby, got %+v", session.Standby)
	}

	if dmUser != "S1" {
		t.Errorf("expected promotion notice to S1, got %q", dmUser)
	}
	if !strings.Contains(dmText, "Fortune smiles upon you!") || !strings.Contains(dmText, "*Court 1*") {
		t.Errorf("unexpected promotion notice: %q", dmText)
	}
}

func TestLeaveEvent_FIFOOrderAcrossDepartures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	session.Rosters = session.Rosters[:1]
	session.Rosters[0].Players = []model.Participant{{ID: "P1"}, {ID: "P2"}}
	session.Standby = []model.Participant{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	if _, err := svc.LeaveEvent(ctx, session.ID, "P1"); err != nil {
		t.Fatalf("first leave failed: %v", err)
	}
	if _, err := svc.LeaveEvent(ctx, session.ID, "P2"); err != nil {
		t.Fatalf("second leave failed: %v", err)
	}

	players := session.Rosters[0].Players
	if len(players) != 2 || players[0].ID != "A" || players[1].ID != "B" {
		t.Errorf("expected A then B promoted in queue order, got %+v", players)
	}
	if len(session.Standby) != 1 || session.Standby[0].ID != "C" {
		t.Errorf("expected C still waiting, got %+v", session.Standby)
	}
}

func TestLeaveEvent_FromStandby_NoPromotion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	session.Rosters[0].Players = []model.Participant{{ID: "A"}}
	session.Standby = []model.Participant{{ID: "S1"}, {ID: "S2"}}
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	result, err := svc.LeaveEvent(ctx, session.ID, "S1")
	if err != nil {
		t.Fatalf("LeaveEvent failed: %v", err)
	}
	if !result.WasOnStandby {
		t.Error("expected standby departure")
	}
	if result.Promoted != nil {
		t.Errorf("standby departure must not promote, got %+v", result.Promoted)
	}
	if len(session.Standby) != 1 || session.Standby[0].ID != "S2" {
		t.Errorf("expected only S2 on standby, got %+v", session.Standby)
	}
}

func TestLeaveEvent_NotEnrolled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	_, err := svc.LeaveEvent(ctx, session.ID, "ghost")
	if !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("expected ErrNotEnrolled, got %v", err)
	}
}

// ============================================================================
// Roster Management Tests
// ============================================================================

func TestAddRoster_GrowsCapacity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	updated, err := svc.AddRoster(ctx, session.ID, &model.AddRosterRequest{Name: "Court 3", Capacity: 4, AllowPlusOne: true})
	if err != nil {
		t.Fatalf("AddRoster failed: %v", err)
	}
	if len(updated.Rosters) != 3 {
		t.Fatalf("expected 3 rosters, got %d", len(updated.Rosters))
	}
	if updated.MaxCapacity != 12 {
		t.Errorf("expected capacity 12, got %d", updated.MaxCapacity)
	}
	if updated.Rosters[2].ID == "" {
		t.Error("new roster must get an ID")
	}
}

func TestAddRoster_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestEventService(nil, nil, nil, nil)

	if _, err := svc.AddRoster(ctx, "EVT-1A2B3C4D", &model.AddRosterRequest{Name: "", Capacity: 4}); !errors.Is(err, ErrInvalidRosterName) {
		t.Errorf("expected ErrInvalidRosterName, got %v", err)
	}
	if _, err := svc.AddRoster(ctx, "EVT-1A2B3C4D", &model.AddRosterRequest{Name: "Court 3", Capacity: 0}); !errors.Is(err, ErrInvalidCapacity) {
		t.Errorf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestRemoveRoster_EmptyRoster(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	updated, err := svc.RemoveRoster(ctx, session.ID, "court 2")
	if err != nil {
		t.Fatalf("RemoveRoster failed: %v", err)
	}
	if len(updated.Rosters) != 1 || updated.Rosters[0].Name != "Court 1" {
		t.Errorf("expected only Court 1 to remain, got %+v", updated.Rosters)
	}
	if updated.MaxCapacity != 4 {
		t.Errorf("expected capacity 4, got %d", updated.MaxCapacity)
	}
}

func TestRemoveRoster_OccupiedRoster(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	session.Rosters[1].Players = []model.Participant{{ID: "A"}}
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	_, err := svc.RemoveRoster(ctx, session.ID, "Court 2")
	if !errors.Is(err, ErrRosterOccupied) {
		t.Errorf("expected ErrRosterOccupied, got %v", err)
	}
}

func TestRemoveRoster_LastRosterProtected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	session.Rosters = session.Rosters[:1]
	svc := newTestEventService(inMemoryEventRepo(session), nil, nil, nil)

	_, err := svc.RemoveRoster(ctx, session.ID, "Court 1")
	if !errors.Is(err, ErrLastRosterProtected) {
		t.Errorf("expected ErrLastRosterProtected, got %v", err)
	}
}

// ============================================================================
// CreateEvent Tests
// ============================================================================

func TestCreateEvent_AnnouncesImmediately(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var saved *model.EventSession
	repo := &mockEventRepo{
		upsertFunc: func(ctx context.Context, session *model.EventSession) error {
			saved = session
			return nil
		},
	}
	posted := false
	gw := &mockGateway{
		postMessageFunc: func(ctx context.Context, channelID string, blocks []slack.Block, fallback string) (gateway.MessageRef, error) {
			posted = true
			return gateway.MessageRef{ChannelID: channelID, MessageTS: "1.0"}, nil
		},
	}
	svc := newTestEventService(repo, nil, nil, gw)

	start := time.Date(2026, 9, 7, 17, 30, 0, 0, time.UTC)
	session, err := svc.CreateEvent(ctx, &model.CreateEventRequest{
		Title:     "Badminton Night",
		EventType: "badminton",
		StartTime: start,
		Rosters: []model.RosterSpec{
			{Name: "Court 1", Capacity: 4, AllowPlusOne: true},
		},
		ChannelID: "C100",
		CreatedBy: "U1",
	})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	if !posted {
		t.Error("expected immediate announcement")
	}
	if session.Status != model.EventStatusActive {
		t.Errorf("expected ACTIVE status, got %s", session.Status)
	}
	if !strings.HasPrefix(session.ID, "EVT-") || len(session.ID) != 12 {
		t.Errorf("unexpected event code %q", session.ID)
	}
	if session.BookingDate != "Monday, September 7th" {
		t.Errorf("unexpected booking date %q", session.BookingDate)
	}
	if session.BookingTime != "17:30" {
		t.Errorf("unexpected booking time %q", session.BookingTime)
	}
	if saved == nil || len(saved.Posted) != 1 {
		t.Errorf("expected saved session with one posted message, got %+v", saved)
	}
}

func TestCreateEvent_FuturePostTime_Schedules(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var saved *model.EventSession
	repo := &mockEventRepo{
		upsertFunc: func(ctx context.Context, session *model.EventSession) error {
			saved = session
			return nil
		},
	}
	gw := &mockGateway{
		postMessageFunc: func(ctx context.Context, channelID string, blocks []slack.Block, fallback string) (gateway.MessageRef, error) {
			t.Error("scheduled event must not post immediately")
			return gateway.MessageRef{}, nil
		},
	}
	svc := newTestEventService(repo, nil, nil, gw)

	postAt := time.Now().Add(time.Hour)
	session, err := svc.CreateEvent(ctx, &model.CreateEventRequest{
		Title:     "Badminton Night",
		EventType: "badminton",
		StartTime: time.Now().Add(48 * time.Hour),
		Rosters:   []model.RosterSpec{{Name: "Court 1", Capacity: 4}},
		ChannelID: "C100",
		PostAt:    &postAt,
	})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	if session.Status != model.EventStatusScheduled {
		t.Errorf("expected SCHEDULED status, got %s", session.Status)
	}
	if session.PostAt == nil || !session.PostAt.Equal(postAt) {
		t.Errorf("expected post time %v, got %v", postAt, session.PostAt)
	}
	if saved == nil || saved.PostChannelID != "C100" {
		t.Errorf("expected saved scheduled session targeting C100, got %+v", saved)
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestEventService(nil, nil, nil, nil)
	start := time.Now().Add(24 * time.Hour)

	cases := []struct {
		name string
		req  *model.CreateEventRequest
		want error
	}{
		{"missing title", &model.CreateEventRequest{EventType: "badminton", StartTime: start, Rosters: []model.RosterSpec{{Name: "A", Capacity: 2}}}, ErrTitleRequired},
		{"title too long", &model.CreateEventRequest{Title: strings.Repeat("x", 101), EventType: "badminton", StartTime: start, Rosters: []model.RosterSpec{{Name: "A", Capacity: 2}}}, ErrTitleTooLong},
		{"no rosters", &model.CreateEventRequest{Title: "Event", EventType: "badminton", StartTime: start}, ErrNoRosters},
		{"bad capacity", &model.CreateEventRequest{Title: "Event", EventType: "badminton", StartTime: start, Rosters: []model.RosterSpec{{Name: "A", Capacity: 0}}}, ErrInvalidCapacity},
	}

	for _, tc := range cases {
		if _, err := svc.CreateEvent(ctx, tc.req); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestCreateEvent_UnknownProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	profiles := &mockProfileRepo{
		getFunc: func(ctx context.Context, name string) (*model.EventProfile, error) {
			return nil, nil
		},
	}
	svc := newTestEventService(nil, nil, profiles, nil)

	_, err := svc.CreateEvent(ctx, &model.CreateEventRequest{
		Title:     "Event",
		EventType: "curling",
		StartTime: time.Now().Add(24 * time.Hour),
		Rosters:   []model.RosterSpec{{Name: "A", Capacity: 2}},
	})
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

// ============================================================================
// ShareEvent Tests
// ============================================================================

func TestShareEvent_PostsOncePerChannel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	channels := &mockChannelRepo{
		getFunc: func(ctx context.Context, channelID string) (*model.ChannelConfig, error) {
			return &model.ChannelConfig{ID: channelID}, nil
		},
	}
	var intro string
	gw := &mockGateway{
		postMessageFunc: func(ctx context.Context, channelID string, blocks []slack.Block, fallback string) (gateway.MessageRef, error) {
			if sec, ok := blocks[0].(*slack.SectionBlock); ok {
				intro = sec.Text.Text
			}
			return gateway.MessageRef{ChannelID: channelID, MessageTS: "2.0"}, nil
		},
	}
	svc := newTestEventService(inMemoryEventRepo(session), channels, nil, gw)

	if err := svc.ShareEvent(ctx, session.ID, "C200"); err != nil {
		t.Fatalf("ShareEvent failed: %v", err)
	}
	if !strings.Contains(intro, "A summons is issued! :trumpet:") {
		t.Errorf("expected share intro, got %q", intro)
	}
	if !session.IsPostedTo("C200") {
		t.Error("expected C200 in the posted ledger")
	}

	err := svc.ShareEvent(ctx, session.ID, "C200")
	if !errors.Is(err, ErrAlreadyPosted) {
		t.Errorf("expected ErrAlreadyPosted on repeat share, got %v", err)
	}
}

func TestShareEvent_UnconfiguredChannel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	svc := newTestEventService(inMemoryEventRepo(session), &mockChannelRepo{}, nil, nil)

	err := svc.ShareEvent(ctx, session.ID, "C999")
	if !errors.Is(err, ErrChannelNotConfigured) {
		t.Errorf("expected ErrChannelNotConfigured, got %v", err)
	}
}

// ============================================================================
// DeleteEvent Tests
// ============================================================================

func TestDeleteEvent_RequiresChannelAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	channels := &mockChannelRepo{
		getFunc: func(ctx context.Context, channelID string) (*model.ChannelConfig, error) {
			return &model.ChannelConfig{ID: channelID, ConfiguredBy: "admin"}, nil
		},
	}
	svc := newTestEventService(inMemoryEventRepo(session), channels, nil, nil)

	err := svc.DeleteEvent(ctx, session.ID, "intruder")
	if !errors.Is(err, ErrNotChannelAdmin) {
		t.Errorf("expected ErrNotChannelAdmin, got %v", err)
	}
}

func TestDeleteEvent_UnconfiguredChannel_RejectsEveryone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	deleted := false
	repo := inMemoryEventRepo(session)
	repo.deleteFunc = func(ctx context.Context, eventID string) error {
		deleted = true
		return nil
	}
	// Default channel mock stores no config, so no admin is known.
	svc := newTestEventService(repo, &mockChannelRepo{}, nil, nil)

	err := svc.DeleteEvent(ctx, session.ID, "anyone")
	if !errors.Is(err, ErrNotChannelAdmin) {
		t.Errorf("expected ErrNotChannelAdmin, got %v", err)
	}
	if deleted {
		t.Error("event must not be deleted without a known channel admin")
	}
}

func TestDeleteEvent_RemovesAnnouncements(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	session := testSession()
	session.Posted = []model.PostedMessage{
		{ChannelID: "C100", MessageTS: "1.0"},
		{ChannelID: "C200", MessageTS: "2.0"},
	}

	channels := &mockChannelRepo{
		getFunc: func(ctx context.Context, channelID string) (*model.ChannelConfig, error) {
			return &model.ChannelConfig{ID: channelID, ConfiguredBy: "admin"}, nil
		},
	}
	var deletedRefs []gateway.MessageRef
	gw := &mockGateway{
		deleteMessageFunc: func(ctx context.Context, ref gateway.MessageRef) error {
			deletedRefs = append(deletedRefs, ref)
			return nil
		},
	}
	deletedEvent := ""
	repo := inMemoryEventRepo(session)
	repo.deleteFunc = func(ctx context.Context, eventID string) error {
		deletedEvent = eventID
		return nil
	}
	svc := newTestEventService(repo, channels, nil, gw)

	if err := svc.DeleteEvent(ctx, session.ID, "admin"); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}
	if len(deletedRefs) != 2 {
		t.Errorf("expected 2 announcement deletions, got %d", len(deletedRefs))
	}
	if deletedEvent != session.ID {
		t.Errorf("expected event %s deleted, got %q", session.ID, deletedEvent)
	}
}
