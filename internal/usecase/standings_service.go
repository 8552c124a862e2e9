package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/match-center/internal/domain/rawdata"
	"github.com/riskibarqy/match-center/internal/domain/standings"
	"github.com/riskibarqy/match-center/internal/platform/cache"
	"github.com/riskibarqy/match-center/internal/platform/logging"
)

// StandingsProvider supplies league tables from the football data provider.
type StandingsProvider interface {
	FetchStandings(ctx context.Context, leagueID int64, season int) (standings.Table, rawdata.Payload, error)
}

type StandingsService struct {
	provider      StandingsProvider
	archiver      rawPayloadArchiver
	cache         *cache.Store
	logger        *logging.Logger
	defaultSeason int
}

func NewStandingsService(
	provider StandingsProvider,
	archiver rawPayloadArchiver,
	store *cache.Store,
	logger *logging.Logger,
	defaultSeason int,
) *StandingsService {
	if logger == nil {
		logger = logging.Default()
	}
	if defaultSeason <= 0 {
		defaultSeason = time.Now().UTC().Year()
	}

	return &StandingsService{
		provider:      provider,
		archiver:      archiver,
		cache:         store,
		logger:        logger,
		defaultSeason: defaultSeason,
	}
}

// GetTable returns a league table for the given season, falling back to the
// configured default season when the caller passes zero.
func (s *StandingsService) GetTable(ctx context.Context, leagueID int64, season int) (standings.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.GetTable")
	defer span.End()

	if leagueID <= 0 {
		return standings.Table{}, fmt.Errorf("%w: league id must be positive", ErrInvalidInput)
	}
	if season <= 0 {
		season = s.defaultSeason
	}
	if s.provider == nil {
		return standings.Table{}, fmt.Errorf("%w: football data provider is not configured", ErrDependencyUnavailable)
	}

	key := fmt.Sprintf("standings:%d:%d", leagueID, season)
	load := func(ctx context.Context) (any, error) {
		table, payload, err := s.provider.FetchStandings(ctx, leagueID, season)
		if err != nil {
			return nil, err
		}
		if s.archiver != nil {
			if err := s.archiver.UpsertRawPayloads(ctx, "apifootball", []rawdata.Payload{payload}); err != nil {
				s.logger.WarnContext(ctx, "archive standings payload failed", "league_id", leagueID, "error", err)
			}
		}
		return table, nil
	}

	if s.cache == nil {
		value, err := load(ctx)
		if err != nil {
			return standings.Table{}, err
		}
		return value.(standings.Table), nil
	}

	value, err := s.cache.GetOrLoad(ctx, key, load)
	if err != nil {
		return standings.Table{}, err
	}

	table, ok := value.(standings.Table)
	if !ok {
		return standings.Table{}, fmt.Errorf("unexpected cache entry for league %d", leagueID)
	}
	return table, nil
}
