package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/match-center/internal/domain/match"
	"github.com/riskibarqy/match-center/internal/domain/rawdata"
	"github.com/riskibarqy/match-center/internal/platform/cache"
	"github.com/riskibarqy/match-center/internal/platform/logging"
)

// TeamScheduleProvider supplies a team's season fixtures from the football
// data provider.
type TeamScheduleProvider interface {
	FetchTeamSchedule(ctx context.Context, teamID int64, season int) ([]match.Match, rawdata.Payload, error)
}

// TeamSchedule partitions a team's season fixtures around now.
type TeamSchedule struct {
	TeamID   int64         `json:"teamId"`
	Season   int           `json:"season"`
	Upcoming []match.Match `json:"upcoming"`
	Finished []match.Match `json:"finished"`
}

type TeamScheduleService struct {
	provider      TeamScheduleProvider
	archiver      rawPayloadArchiver
	cache         *cache.Store
	logger        *logging.Logger
	defaultSeason int
	now           func() time.Time
}

func NewTeamScheduleService(
	provider TeamScheduleProvider,
	archiver rawPayloadArchiver,
	store *cache.Store,
	logger *logging.Logger,
	defaultSeason int,
) *TeamScheduleService {
	if logger == nil {
		logger = logging.Default()
	}
	if defaultSeason <= 0 {
		defaultSeason = time.Now().UTC().Year()
	}

	return &TeamScheduleService{
		provider:      provider,
		archiver:      archiver,
		cache:         store,
		logger:        logger,
		defaultSeason: defaultSeason,
		now:           time.Now,
	}
}

// GetSchedule returns a team's fixtures for the season split into upcoming
// and finished buckets. Live fixtures count as upcoming until they finish.
func (s *TeamScheduleService) GetSchedule(ctx context.Context, teamID int64, season int) (TeamSchedule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamScheduleService.GetSchedule")
	defer span.End()

	if teamID <= 0 {
		return TeamSchedule{}, fmt.Errorf("%w: team id must be positive", ErrInvalidInput)
	}
	if season <= 0 {
		season = s.defaultSeason
	}
	if s.provider == nil {
		return TeamSchedule{}, fmt.Errorf("%w: football data provider is not configured", ErrDependencyUnavailable)
	}

	fixtures, err := s.loadFixtures(ctx, teamID, season)
	if err != nil {
		return TeamSchedule{}, err
	}

	schedule := TeamSchedule{
		TeamID:   teamID,
		Season:   season,
		Upcoming: make([]match.Match, 0, len(fixtures)),
		Finished: make([]match.Match, 0, len(fixtures)),
	}
	for _, item := range fixtures {
		if match.IsFinishedStatus(item.Status) || match.IsCancelledLikeStatus(item.Status) {
			schedule.Finished = append(schedule.Finished, item)
			continue
		}
		schedule.Upcoming = append(schedule.Upcoming, item)
	}

	return schedule, nil
}

func (s *TeamScheduleService) loadFixtures(ctx context.Context, teamID int64, season int) ([]match.Match, error) {
	load := func(ctx context.Context) (any, error) {
		fixtures, payload, err := s.provider.FetchTeamSchedule(ctx, teamID, season)
		if err != nil {
			return nil, err
		}
		if s.archiver != nil {
			if err := s.archiver.UpsertRawPayloads(ctx, "apifootball", []rawdata.Payload{payload}); err != nil {
				s.logger.WarnContext(ctx, "archive schedule payload failed", "team_id", teamID, "error", err)
			}
		}
		return fixtures, nil
	}

	if s.cache == nil {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]match.Match), nil
	}

	key := fmt.Sprintf("schedule:%d:%d", teamID, season)
	value, err := s.cache.GetOrLoad(ctx, key, load)
	if err != nil {
		return nil, err
	}

	fixtures, ok := value.([]match.Match)
	if !ok {
		return nil, fmt.Errorf("unexpected cache entry for team %d", teamID)
	}
	return fixtures, nil
}
