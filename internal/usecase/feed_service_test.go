package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/match-center/internal/domain/match"
	"github.com/riskibarqy/match-center/internal/domain/timeline"
	"github.com/riskibarqy/match-center/internal/domain/viewport"
	idgen "github.com/riskibarqy/match-center/internal/platform/id"
	"github.com/riskibarqy/match-center/internal/platform/logging"
)

type stubRefresher struct {
	mu      sync.Mutex
	calls   int
	next    match.Snapshot
	nextErr error
}

func (r *stubRefresher) Refresh(_ context.Context, matchID int64) (match.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.nextErr != nil {
		return match.Snapshot{}, r.nextErr
	}
	snapshot := r.next
	snapshot.Match.ID = matchID
	return snapshot, nil
}

func (r *stubRefresher) set(snapshot match.Snapshot, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next = snapshot
	r.nextErr = err
}

func (r *stubRefresher) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func feedTestSnapshot(status string, events int) match.Snapshot {
	snapshot := match.Snapshot{
		Match: match.Match{
			Status: status,
			Home:   match.Team{ID: 40, Name: "Liverpool"},
			Away:   match.Team{ID: 42, Name: "Arsenal"},
		},
		FetchedAt: time.Now().UTC(),
	}
	for i := 0; i < events; i++ {
		snapshot.Timeline = append(snapshot.Timeline, timeline.Event{Minute: i + 1})
	}
	return snapshot
}

func newTestFeedService(refresher snapshotRefresher, cfg FeedConfig) *FeedService {
	return NewFeedService(refresher, idgen.NewRandomGenerator(), logging.NewNop(), cfg)
}

func TestFeedService_Watch_ReturnsInitialSnapshot(t *testing.T) {
	t.Parallel()

	refresher := &stubRefresher{next: feedTestSnapshot("1H", 2)}
	svc := newTestFeedService(refresher, FeedConfig{})

	snapshot, err := svc.Watch(context.Background(), 1035045)
	if err != nil {
		t.Fatalf("Watch error: %v", err)
	}
	if snapshot.Match.ID != 1035045 {
		t.Fatalf("unexpected match id: %d", snapshot.Match.ID)
	}
	if len(snapshot.Timeline) != 2 {
		t.Fatalf("expected 2 events, got=%d", len(snapshot.Timeline))
	}

	ids := svc.WatchedMatches(context.Background())
	if len(ids) != 1 || ids[0] != 1035045 {
		t.Fatalf("unexpected watched set: %v", ids)
	}
}

func TestFeedService_Watch_InitialFailureDoesNotRegister(t *testing.T) {
	t.Parallel()

	refresher := &stubRefresher{nextErr: errors.New("provider down")}
	svc := newTestFeedService(refresher, FeedConfig{})

	if _, err := svc.Watch(context.Background(), 1035045); err == nil {
		t.Fatal("expected error from failed initial fetch")
	}
	if ids := svc.WatchedMatches(context.Background()); len(ids) != 0 {
		t.Fatalf("expected empty watched set, got=%v", ids)
	}
}

func TestFeedService_Watch_CapacityLimit(t *testing.T) {
	t.Parallel()

	refresher := &stubRefresher{next: feedTestSnapshot("1H", 0)}
	svc := newTestFeedService(refresher, FeedConfig{MaxWatched: 1})

	if _, err := svc.Watch(context.Background(), 101); err != nil {
		t.Fatalf("first Watch error: %v", err)
	}
	if _, err := svc.Watch(context.Background(), 102); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput at capacity, got=%v", err)
	}
}

func TestFeedService_Unwatch_RemovesLastWatcher(t *testing.T) {
	t.Parallel()

	refresher := &stubRefresher{next: feedTestSnapshot("1H", 0)}
	svc := newTestFeedService(refresher, FeedConfig{})

	if _, err := svc.Watch(context.Background(), 101); err != nil {
		t.Fatalf("first Watch error: %v", err)
	}
	if _, err := svc.Watch(context.Background(), 101); err != nil {
		t.Fatalf("second Watch error: %v", err)
	}
	if got := refresher.callCount(); got != 1 {
		t.Fatalf("expected a single initial fetch, got=%d", got)
	}

	if err := svc.Unwatch(context.Background(), 101); err != nil {
		t.Fatalf("first Unwatch error: %v", err)
	}
	if ids := svc.WatchedMatches(context.Background()); len(ids) != 1 {
		t.Fatalf("match should stay watched while a watcher remains, got=%v", ids)
	}

	if err := svc.Unwatch(context.Background(), 101); err != nil {
		t.Fatalf("second Unwatch error: %v", err)
	}
	if ids := svc.WatchedMatches(context.Background()); len(ids) != 0 {
		t.Fatalf("expected empty watched set, got=%v", ids)
	}
	if err := svc.Unwatch(context.Background(), 101); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}

func TestFeedService_RefreshFailureKeepsLastSnapshot(t *testing.T) {
	t.Parallel()

	refresher := &stubRefresher{next: feedTestSnapshot("1H", 3)}
	svc := newTestFeedService(refresher, FeedConfig{})

	if _, err := svc.Watch(context.Background(), 1035045); err != nil {
		t.Fatalf("Watch error: %v", err)
	}

	refresher.set(match.Snapshot{}, errors.New("provider down"))
	svc.mu.Lock()
	entry := svc.watched[1035045]
	svc.mu.Unlock()
	svc.refreshOne(context.Background(), entry)

	snapshot, err := svc.Snapshot(context.Background(), 1035045)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if len(snapshot.Timeline) != 3 {
		t.Fatalf("expected last good snapshot with 3 events, got=%d", len(snapshot.Timeline))
	}
}

func TestFeedService_NewEventsNotifyUnpinnedSessions(t *testing.T) {
	t.Parallel()

	refresher := &stubRefresher{next: feedTestSnapshot("1H", 1)}
	svc := newTestFeedService(refresher, FeedConfig{})
	ctx := context.Background()

	if _, err := svc.Watch(ctx, 1035045); err != nil {
		t.Fatalf("Watch error: %v", err)
	}
	session, err := svc.CreateSession(ctx, 1035045)
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	if !session.State.Pinned {
		t.Fatal("new session should start pinned")
	}

	// Scroll far up, then two new events arrive.
	state, err := svc.ObserveViewport(ctx, session.SessionID, viewport.Observation{
		Offset: 0, ContentHeight: 2000, ViewportHeight: 600,
	})
	if err != nil {
		t.Fatalf("ObserveViewport error: %v", err)
	}
	if state.Pinned {
		t.Fatal("expected unpinned state after scrolling up")
	}

	refresher.set(feedTestSnapshot("2H", 3), nil)
	svc.mu.Lock()
	entry := svc.watched[1035045]
	svc.mu.Unlock()
	svc.refreshOne(ctx, entry)

	state, err = svc.SessionState(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("SessionState error: %v", err)
	}
	if state.PendingEvents != 2 {
		t.Fatalf("expected 2 pending events, got=%d", state.PendingEvents)
	}
	if !state.ShowJumpToLive {
		t.Fatal("expected jump-to-live affordance")
	}

	state, err = svc.JumpToLive(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("JumpToLive error: %v", err)
	}
	if !state.Pinned || state.PendingEvents != 0 {
		t.Fatalf("expected pinned state with no pending events, got=%+v", state)
	}
}

func TestFeedService_PinnedSessionConsumesEventsImmediately(t *testing.T) {
	t.Parallel()

	refresher := &stubRefresher{next: feedTestSnapshot("1H", 1)}
	svc := newTestFeedService(refresher, FeedConfig{})
	ctx := context.Background()

	if _, err := svc.Watch(ctx, 1035045); err != nil {
		t.Fatalf("Watch error: %v", err)
	}
	session, err := svc.CreateSession(ctx, 1035045)
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}

	refresher.set(feedTestSnapshot("1H", 2), nil)
	svc.mu.Lock()
	entry := svc.watched[1035045]
	svc.mu.Unlock()
	svc.refreshOne(ctx, entry)

	state, err := svc.SessionState(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("SessionState error: %v", err)
	}
	if state.PendingEvents != 0 || !state.AutoScroll {
		t.Fatalf("pinned session should auto-scroll with no badge, got=%+v", state)
	}
}

func TestFeedService_SessionExpires(t *testing.T) {
	t.Parallel()

	refresher := &stubRefresher{next: feedTestSnapshot("1H", 0)}
	svc := newTestFeedService(refresher, FeedConfig{SessionTTL: time.Minute})

	current := time.Unix(1_000_000, 0)
	svc.now = func() time.Time { return current }

	ctx := context.Background()
	if _, err := svc.Watch(ctx, 1035045); err != nil {
		t.Fatalf("Watch error: %v", err)
	}
	session, err := svc.CreateSession(ctx, 1035045)
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := svc.SessionState(ctx, session.SessionID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired session, got=%v", err)
	}
}

func TestFeedService_CreateSession_RequiresWatchedMatch(t *testing.T) {
	t.Parallel()

	svc := newTestFeedService(&stubRefresher{}, FeedConfig{})

	if _, err := svc.CreateSession(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}

func TestFeedService_FinishedMatchStopsPolling(t *testing.T) {
	t.Parallel()

	refresher := &stubRefresher{next: feedTestSnapshot("1H", 0)}
	svc := newTestFeedService(refresher, FeedConfig{})
	ctx := context.Background()

	if _, err := svc.Watch(ctx, 1035045); err != nil {
		t.Fatalf("Watch error: %v", err)
	}

	refresher.set(feedTestSnapshot("FT", 5), nil)
	svc.mu.Lock()
	entry := svc.watched[1035045]
	svc.mu.Unlock()
	svc.refreshOne(ctx, entry)

	if !entry.isDone() {
		t.Fatal("finished match should leave the polling set")
	}

	snapshot, err := svc.Snapshot(ctx, 1035045)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if len(snapshot.Timeline) != 5 {
		t.Fatalf("final snapshot should remain readable, got %d events", len(snapshot.Timeline))
	}
}

func TestFeedService_ObserveViewport_RejectsInvalidMeasurements(t *testing.T) {
	t.Parallel()

	svc := newTestFeedService(&stubRefresher{}, FeedConfig{})

	_, err := svc.ObserveViewport(context.Background(), "whatever", viewport.Observation{
		Offset: -1, ContentHeight: 1000, ViewportHeight: 600,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}
