package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/match-center/internal/domain/match"
	"github.com/riskibarqy/match-center/internal/domain/rawdata"
	"github.com/riskibarqy/match-center/internal/platform/logging"
)

type stubScheduleProvider struct {
	fixtures []match.Match
	err      error
}

func (p *stubScheduleProvider) FetchTeamSchedule(_ context.Context, _ int64, _ int) ([]match.Match, rawdata.Payload, error) {
	if p.err != nil {
		return nil, rawdata.Payload{}, p.err
	}
	return p.fixtures, rawdata.Payload{EntityType: "schedule", EntityKey: "schedule:test", PayloadJSON: "{}"}, nil
}

func TestTeamScheduleService_GetSchedule_PartitionsFixtures(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, time.March, 8, 16, 30, 0, 0, time.UTC)
	provider := &stubScheduleProvider{
		fixtures: []match.Match{
			{ID: 1, Status: "FT", KickoffAt: kickoff.AddDate(0, -1, 0)},
			{ID: 2, Status: "2H", KickoffAt: kickoff},
			{ID: 3, Status: "SCHEDULED", KickoffAt: kickoff.AddDate(0, 0, 7)},
			{ID: 4, Status: "POSTPONED", KickoffAt: kickoff.AddDate(0, 0, 14)},
		},
	}
	svc := NewTeamScheduleService(provider, nil, nil, logging.NewNop(), 2025)

	schedule, err := svc.GetSchedule(context.Background(), 40, 2025)
	if err != nil {
		t.Fatalf("GetSchedule error: %v", err)
	}

	if len(schedule.Finished) != 2 {
		t.Fatalf("expected 2 finished fixtures, got=%d", len(schedule.Finished))
	}
	if len(schedule.Upcoming) != 2 {
		t.Fatalf("expected 2 upcoming fixtures, got=%d", len(schedule.Upcoming))
	}
	if schedule.Upcoming[0].ID != 2 {
		t.Fatalf("live fixture should stay in upcoming, got id=%d", schedule.Upcoming[0].ID)
	}
	if schedule.TeamID != 40 || schedule.Season != 2025 {
		t.Fatalf("unexpected schedule header: %+v", schedule)
	}
}

func TestTeamScheduleService_GetSchedule_RejectsNonPositiveTeam(t *testing.T) {
	t.Parallel()

	svc := NewTeamScheduleService(&stubScheduleProvider{}, nil, nil, logging.NewNop(), 2025)

	if _, err := svc.GetSchedule(context.Background(), 0, 2025); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}
