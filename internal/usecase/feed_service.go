package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/match-center/internal/domain/match"
	"github.com/riskibarqy/match-center/internal/domain/viewport"
	idgen "github.com/riskibarqy/match-center/internal/platform/id"
	"github.com/riskibarqy/match-center/internal/platform/logging"
)

const (
	defaultFeedRefreshInterval = 30 * time.Second
	defaultFeedWorkerPoolSize  = 8
	defaultFeedSessionTTL      = 30 * time.Minute
	defaultFeedMaxWatched      = 50
)

type snapshotRefresher interface {
	Refresh(ctx context.Context, matchID int64) (match.Snapshot, error)
}

// FeedConfig tunes the polling loop and session registry.
type FeedConfig struct {
	RefreshInterval time.Duration
	WorkerPoolSize  int
	SessionTTL      time.Duration
	MaxWatched      int
}

// NormalizeFeedConfig fills zero values with defaults.
func NormalizeFeedConfig(cfg FeedConfig) FeedConfig {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultFeedRefreshInterval
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultFeedWorkerPoolSize
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultFeedSessionTTL
	}
	if cfg.MaxWatched <= 0 {
		cfg.MaxWatched = defaultFeedMaxWatched
	}
	return cfg
}

// FeedSession is the client-facing view of a viewer session.
type FeedSession struct {
	SessionID string         `json:"sessionId"`
	MatchID   int64          `json:"matchId"`
	ExpiresAt time.Time      `json:"expiresAt"`
	State     viewport.State `json:"state"`
}

type watchedMatch struct {
	matchID    int64
	refreshing atomic.Bool

	mu       sync.Mutex
	watchers int
	done     bool
	failures int
	snapshot match.Snapshot
}

func (w *watchedMatch) currentSnapshot() match.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot
}

func (w *watchedMatch) isDone() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

type feedSession struct {
	id      string
	matchID int64

	mu      sync.Mutex
	tracker *viewport.Tracker

	// expiresAt is guarded by FeedService.mu, not the session mutex.
	expiresAt time.Time
}

// FeedService maintains the set of watched matches, refreshes them on a fixed
// interval and fans new-event counts out to viewer sessions. A match whose
// refresh is still in flight when the next tick fires is skipped for that
// tick; the interval never stacks requests behind a slow provider.
type FeedService struct {
	refresher snapshotRefresher
	idGen     idgen.Generator
	logger    *logging.Logger
	cfg       FeedConfig
	now       func() time.Time

	mu       sync.Mutex
	watched  map[int64]*watchedMatch
	sessions map[string]*feedSession
}

func NewFeedService(
	refresher snapshotRefresher,
	idGen idgen.Generator,
	logger *logging.Logger,
	cfg FeedConfig,
) *FeedService {
	if logger == nil {
		logger = logging.Default()
	}

	return &FeedService{
		refresher: refresher,
		idGen:     idGen,
		logger:    logger,
		cfg:       NormalizeFeedConfig(cfg),
		now:       time.Now,
		watched:   make(map[int64]*watchedMatch),
		sessions:  make(map[string]*feedSession),
	}
}

// Watch registers a match for polling and returns its initial snapshot. The
// first fetch happens synchronously; only that fetch can fail a watch, later
// refresh errors keep serving the last good snapshot.
func (s *FeedService) Watch(ctx context.Context, matchID int64) (match.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeedService.Watch")
	defer span.End()

	if matchID <= 0 {
		return match.Snapshot{}, fmt.Errorf("%w: match id must be positive", ErrInvalidInput)
	}
	if s.refresher == nil {
		return match.Snapshot{}, fmt.Errorf("%w: snapshot refresher is not configured", ErrDependencyUnavailable)
	}

	s.mu.Lock()
	if entry, ok := s.watched[matchID]; ok {
		entry.mu.Lock()
		entry.watchers++
		snapshot := entry.snapshot
		entry.mu.Unlock()
		s.mu.Unlock()
		return snapshot, nil
	}
	if len(s.watched) >= s.cfg.MaxWatched {
		s.mu.Unlock()
		return match.Snapshot{}, fmt.Errorf("%w: watch capacity of %d matches reached", ErrInvalidInput, s.cfg.MaxWatched)
	}
	s.mu.Unlock()

	snapshot, err := s.refresher.Refresh(ctx, matchID)
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("initial snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.watched[matchID]; ok {
		// Lost a racing watch for the same match; keep the registered entry.
		entry.mu.Lock()
		entry.watchers++
		registered := entry.snapshot
		entry.mu.Unlock()
		return registered, nil
	}
	if len(s.watched) >= s.cfg.MaxWatched {
		return match.Snapshot{}, fmt.Errorf("%w: watch capacity of %d matches reached", ErrInvalidInput, s.cfg.MaxWatched)
	}

	entry := &watchedMatch{matchID: matchID}
	entry.watchers = 1
	entry.snapshot = snapshot
	entry.done = matchDone(snapshot.Match.Status)
	s.watched[matchID] = entry
	return snapshot, nil
}

// Unwatch drops one watcher; the match leaves the polling set when the last
// watcher is gone.
func (s *FeedService) Unwatch(ctx context.Context, matchID int64) error {
	_, span := startUsecaseSpan(ctx, "usecase.FeedService.Unwatch")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.watched[matchID]
	if !ok {
		return fmt.Errorf("%w: match %d is not watched", ErrNotFound, matchID)
	}

	entry.mu.Lock()
	entry.watchers--
	remaining := entry.watchers
	entry.mu.Unlock()

	if remaining <= 0 {
		delete(s.watched, matchID)
	}
	return nil
}

// Snapshot returns the latest snapshot of a watched match.
func (s *FeedService) Snapshot(ctx context.Context, matchID int64) (match.Snapshot, error) {
	_, span := startUsecaseSpan(ctx, "usecase.FeedService.Snapshot")
	defer span.End()

	s.mu.Lock()
	entry, ok := s.watched[matchID]
	s.mu.Unlock()
	if !ok {
		return match.Snapshot{}, fmt.Errorf("%w: match %d is not watched", ErrNotFound, matchID)
	}
	return entry.currentSnapshot(), nil
}

// WatchedMatches lists the polled match IDs in ascending order.
func (s *FeedService) WatchedMatches(ctx context.Context) []int64 {
	_, span := startUsecaseSpan(ctx, "usecase.FeedService.WatchedMatches")
	defer span.End()

	s.mu.Lock()
	ids := make([]int64, 0, len(s.watched))
	for id := range s.watched {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CreateSession opens a viewer session against a watched match. Sessions
// start pinned to the live tail.
func (s *FeedService) CreateSession(ctx context.Context, matchID int64) (FeedSession, error) {
	_, span := startUsecaseSpan(ctx, "usecase.FeedService.CreateSession")
	defer span.End()

	if s.idGen == nil {
		return FeedSession{}, fmt.Errorf("%w: id generator is not configured", ErrDependencyUnavailable)
	}

	s.mu.Lock()
	_, watched := s.watched[matchID]
	s.mu.Unlock()
	if !watched {
		return FeedSession{}, fmt.Errorf("%w: match %d is not watched", ErrNotFound, matchID)
	}

	sessionID, err := s.idGen.NewID()
	if err != nil {
		return FeedSession{}, fmt.Errorf("generate session id: %w", err)
	}

	session := &feedSession{
		id:      sessionID,
		matchID: matchID,
		tracker: viewport.NewTracker(),
	}

	s.mu.Lock()
	session.expiresAt = s.now().Add(s.cfg.SessionTTL)
	s.sessions[sessionID] = session
	expiresAt := session.expiresAt
	s.mu.Unlock()

	session.mu.Lock()
	state := session.tracker.JumpToLive()
	session.mu.Unlock()

	return FeedSession{
		SessionID: sessionID,
		MatchID:   matchID,
		ExpiresAt: expiresAt,
		State:     state,
	}, nil
}

// ObserveViewport records a scroll measurement for a session and returns the
// resulting follow state. Each observation slides the session expiry forward.
func (s *FeedService) ObserveViewport(ctx context.Context, sessionID string, obs viewport.Observation) (viewport.State, error) {
	_, span := startUsecaseSpan(ctx, "usecase.FeedService.ObserveViewport")
	defer span.End()

	if obs.ContentHeight <= 0 || obs.ViewportHeight <= 0 || obs.Offset < 0 {
		return viewport.State{}, fmt.Errorf("%w: viewport measurements must be positive", ErrInvalidInput)
	}

	session, err := s.session(sessionID)
	if err != nil {
		return viewport.State{}, err
	}

	session.mu.Lock()
	state := session.tracker.Observe(obs)
	session.mu.Unlock()
	return state, nil
}

// JumpToLive re-pins a session to the live tail and clears its pending badge.
func (s *FeedService) JumpToLive(ctx context.Context, sessionID string) (viewport.State, error) {
	_, span := startUsecaseSpan(ctx, "usecase.FeedService.JumpToLive")
	defer span.End()

	session, err := s.session(sessionID)
	if err != nil {
		return viewport.State{}, err
	}

	session.mu.Lock()
	state := session.tracker.JumpToLive()
	session.mu.Unlock()
	return state, nil
}

// SessionState reports a session's current follow state without mutating it.
func (s *FeedService) SessionState(ctx context.Context, sessionID string) (viewport.State, error) {
	_, span := startUsecaseSpan(ctx, "usecase.FeedService.SessionState")
	defer span.End()

	session, err := s.session(sessionID)
	if err != nil {
		return viewport.State{}, err
	}

	session.mu.Lock()
	state := session.tracker.EventsArrived(0)
	session.mu.Unlock()
	return state, nil
}

// Run drives the polling loop until the context is cancelled. Refreshes run
// on a bounded worker pool so a large watch set cannot spawn unbounded
// goroutines.
func (s *FeedService) Run(ctx context.Context) error {
	workers, err := ants.NewPool(s.cfg.WorkerPoolSize)
	if err != nil {
		return fmt.Errorf("create refresh worker pool: %w", err)
	}
	defer workers.Release()

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "feed poller started",
		"interval", s.cfg.RefreshInterval.String(), "workers", s.cfg.WorkerPoolSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.expireSessions()
			s.dispatchRefreshes(ctx, workers)
		}
	}
}

func (s *FeedService) dispatchRefreshes(ctx context.Context, workers *ants.Pool) {
	s.mu.Lock()
	targets := make([]*watchedMatch, 0, len(s.watched))
	for _, entry := range s.watched {
		targets = append(targets, entry)
	}
	s.mu.Unlock()

	for _, entry := range targets {
		entry := entry
		if entry.isDone() {
			continue
		}
		// A refresh still in flight from the previous tick wins; this tick
		// skips the match instead of stacking a second request.
		if !entry.refreshing.CompareAndSwap(false, true) {
			continue
		}

		if err := workers.Submit(func() {
			defer entry.refreshing.Store(false)
			s.refreshOne(ctx, entry)
		}); err != nil {
			entry.refreshing.Store(false)
			s.logger.WarnContext(ctx, "submit refresh task failed", "match_id", entry.matchID, "error", err)
		}
	}
}

func (s *FeedService) refreshOne(ctx context.Context, entry *watchedMatch) {
	snapshot, err := s.refresher.Refresh(ctx, entry.matchID)
	if err != nil {
		entry.mu.Lock()
		entry.failures++
		failures := entry.failures
		entry.mu.Unlock()

		s.logger.WarnContext(ctx, "refresh failed, keeping last snapshot",
			"match_id", entry.matchID, "consecutive_failures", failures, "error", err)
		return
	}

	entry.mu.Lock()
	previous := len(entry.snapshot.Timeline)
	entry.snapshot = snapshot
	entry.failures = 0
	entry.done = matchDone(snapshot.Match.Status)
	entry.mu.Unlock()

	if delta := len(snapshot.Timeline) - previous; delta > 0 {
		s.notifySessions(entry.matchID, delta)
	}
}

func (s *FeedService) notifySessions(matchID int64, count int) {
	s.mu.Lock()
	targets := make([]*feedSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		if session.matchID == matchID {
			targets = append(targets, session)
		}
	}
	s.mu.Unlock()

	for _, session := range targets {
		session.mu.Lock()
		session.tracker.EventsArrived(count)
		session.mu.Unlock()
	}
}

func (s *FeedService) session(sessionID string) (*feedSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	if s.now().After(session.expiresAt) {
		delete(s.sessions, sessionID)
		return nil, fmt.Errorf("%w: session %s expired", ErrNotFound, sessionID)
	}

	session.expiresAt = s.now().Add(s.cfg.SessionTTL)
	return session, nil
}

func (s *FeedService) expireSessions() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if now.After(session.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

// matchDone reports whether a match needs no further polling.
func matchDone(status string) bool {
	return match.IsFinishedStatus(status) || match.IsCancelledLikeStatus(status)
}
