package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/match-center/internal/domain/match"
	"github.com/riskibarqy/match-center/internal/domain/rawdata"
	"github.com/riskibarqy/match-center/internal/domain/timeline"
	"github.com/riskibarqy/match-center/internal/platform/cache"
	"github.com/riskibarqy/match-center/internal/platform/logging"
)

// MatchDataProvider supplies one fixture's sections from the football data
// provider. Each call returns the mapped domain value plus the raw payload
// for archival.
type MatchDataProvider interface {
	FetchMatch(ctx context.Context, matchID int64) (match.Match, rawdata.Payload, error)
	FetchEvents(ctx context.Context, matchID int64) ([]timeline.RawEvent, rawdata.Payload, error)
	FetchStatistics(ctx context.Context, matchID int64) ([]match.Statistic, rawdata.Payload, error)
	FetchLineups(ctx context.Context, matchID int64) ([]match.Lineup, rawdata.Payload, error)
}

type rawPayloadArchiver interface {
	UpsertRawPayloads(ctx context.Context, source string, items []rawdata.Payload) error
}

// LiveMatchService assembles display-ready match snapshots. The header and
// events are mandatory; statistics and lineups degrade to empty sections when
// the provider cannot serve them.
type LiveMatchService struct {
	provider MatchDataProvider
	archiver rawPayloadArchiver
	cache    *cache.Store
	logger   *logging.Logger
	now      func() time.Time
}

func NewLiveMatchService(
	provider MatchDataProvider,
	archiver rawPayloadArchiver,
	store *cache.Store,
	logger *logging.Logger,
) *LiveMatchService {
	if logger == nil {
		logger = logging.Default()
	}

	return &LiveMatchService{
		provider: provider,
		archiver: archiver,
		cache:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// GetSnapshot returns the cached snapshot for a match, refreshing it on a
// cache miss. Concurrent misses for the same match collapse into one refresh.
func (s *LiveMatchService) GetSnapshot(ctx context.Context, matchID int64) (match.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveMatchService.GetSnapshot")
	defer span.End()

	if matchID <= 0 {
		return match.Snapshot{}, fmt.Errorf("%w: match id must be positive", ErrInvalidInput)
	}
	if s.cache == nil {
		return s.Refresh(ctx, matchID)
	}

	value, err := s.cache.GetOrLoad(ctx, snapshotCacheKey(matchID), func(ctx context.Context) (any, error) {
		return s.Refresh(ctx, matchID)
	})
	if err != nil {
		return match.Snapshot{}, err
	}

	snapshot, ok := value.(match.Snapshot)
	if !ok {
		return match.Snapshot{}, fmt.Errorf("unexpected cache entry for match %d", matchID)
	}
	return snapshot, nil
}

// GetTimeline returns the normalized event list for a match.
func (s *LiveMatchService) GetTimeline(ctx context.Context, matchID int64) ([]timeline.Event, error) {
	snapshot, err := s.GetSnapshot(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return snapshot.Timeline, nil
}

// GetStatistics returns the comparative stat rows for a match.
func (s *LiveMatchService) GetStatistics(ctx context.Context, matchID int64) ([]match.Statistic, error) {
	snapshot, err := s.GetSnapshot(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return snapshot.Statistics, nil
}

// GetLineups returns both teams' lineups for a match.
func (s *LiveMatchService) GetLineups(ctx context.Context, matchID int64) ([]match.Lineup, error) {
	snapshot, err := s.GetSnapshot(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return snapshot.Lineups, nil
}

// Refresh fetches all sections from the provider, normalizes the timeline and
// publishes a fresh snapshot to the cache. Callers that poll use this to
// bypass the cache TTL.
func (s *LiveMatchService) Refresh(ctx context.Context, matchID int64) (match.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveMatchService.Refresh")
	defer span.End()

	if matchID <= 0 {
		return match.Snapshot{}, fmt.Errorf("%w: match id must be positive", ErrInvalidInput)
	}
	if s.provider == nil {
		return match.Snapshot{}, fmt.Errorf("%w: football data provider is not configured", ErrDependencyUnavailable)
	}

	var (
		header  match.Match
		events  []timeline.RawEvent
		stats   []match.Statistic
		lineups []match.Lineup

		payloadMu sync.Mutex
		payloads  = make([]rawdata.Payload, 0, 4)
	)
	keep := func(payload rawdata.Payload) {
		payloadMu.Lock()
		payloads = append(payloads, payload)
		payloadMu.Unlock()
	}

	group := pool.New().WithContext(ctx)
	group.Go(func(ctx context.Context) error {
		item, payload, err := s.provider.FetchMatch(ctx, matchID)
		if err != nil {
			return fmt.Errorf("fetch match: %w", err)
		}
		header = item
		keep(payload)
		return nil
	})
	group.Go(func(ctx context.Context) error {
		items, payload, err := s.provider.FetchEvents(ctx, matchID)
		if err != nil {
			return fmt.Errorf("fetch events: %w", err)
		}
		events = items
		keep(payload)
		return nil
	})
	// Statistics and lineups are detail tabs; their failures degrade to an
	// empty section instead of failing the whole snapshot.
	group.Go(func(ctx context.Context) error {
		items, payload, err := s.provider.FetchStatistics(ctx, matchID)
		if err != nil {
			s.logger.WarnContext(ctx, "fetch statistics failed", "match_id", matchID, "error", err)
			return nil
		}
		stats = items
		keep(payload)
		return nil
	})
	group.Go(func(ctx context.Context) error {
		items, payload, err := s.provider.FetchLineups(ctx, matchID)
		if err != nil {
			s.logger.WarnContext(ctx, "fetch lineups failed", "match_id", matchID, "error", err)
			return nil
		}
		lineups = items
		keep(payload)
		return nil
	})
	if err := group.Wait(); err != nil {
		return match.Snapshot{}, err
	}

	snapshot := match.Snapshot{
		Match:      header,
		Timeline:   timeline.Normalize(events, header.Teams()),
		Statistics: stats,
		Lineups:    lineups,
		FetchedAt:  s.now().UTC(),
	}

	if s.archiver != nil {
		if err := s.archiver.UpsertRawPayloads(ctx, "apifootball", payloads); err != nil {
			s.logger.WarnContext(ctx, "archive raw payloads failed", "match_id", matchID, "error", err)
		}
	}
	if s.cache != nil {
		s.cache.Set(ctx, snapshotCacheKey(matchID), snapshot)
	}

	return snapshot, nil
}

func snapshotCacheKey(matchID int64) string {
	return fmt.Sprintf("match:snapshot:%d", matchID)
}
