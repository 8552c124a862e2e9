package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/match-center/internal/domain/match"
	"github.com/riskibarqy/match-center/internal/domain/rawdata"
	"github.com/riskibarqy/match-center/internal/domain/timeline"
	"github.com/riskibarqy/match-center/internal/platform/cache"
	"github.com/riskibarqy/match-center/internal/platform/logging"
)

type stubMatchProvider struct {
	matchCalls atomic.Int32

	header     match.Match
	events     []timeline.RawEvent
	stats      []match.Statistic
	lineups    []match.Lineup
	headerErr  error
	eventsErr  error
	statsErr   error
	lineupsErr error
}

func (p *stubMatchProvider) FetchMatch(_ context.Context, _ int64) (match.Match, rawdata.Payload, error) {
	p.matchCalls.Add(1)
	if p.headerErr != nil {
		return match.Match{}, rawdata.Payload{}, p.headerErr
	}
	return p.header, rawdata.Payload{EntityType: "fixture", EntityKey: "fixture:1", PayloadJSON: "{}"}, nil
}

func (p *stubMatchProvider) FetchEvents(_ context.Context, _ int64) ([]timeline.RawEvent, rawdata.Payload, error) {
	if p.eventsErr != nil {
		return nil, rawdata.Payload{}, p.eventsErr
	}
	return p.events, rawdata.Payload{EntityType: "events", EntityKey: "events:1", PayloadJSON: "{}"}, nil
}

func (p *stubMatchProvider) FetchStatistics(_ context.Context, _ int64) ([]match.Statistic, rawdata.Payload, error) {
	if p.statsErr != nil {
		return nil, rawdata.Payload{}, p.statsErr
	}
	return p.stats, rawdata.Payload{EntityType: "statistics", EntityKey: "statistics:1", PayloadJSON: "{}"}, nil
}

func (p *stubMatchProvider) FetchLineups(_ context.Context, _ int64) ([]match.Lineup, rawdata.Payload, error) {
	if p.lineupsErr != nil {
		return nil, rawdata.Payload{}, p.lineupsErr
	}
	return p.lineups, rawdata.Payload{EntityType: "lineups", EntityKey: "lineups:1", PayloadJSON: "{}"}, nil
}

type recordingArchiver struct {
	calls   atomic.Int32
	sources []string
	items   []rawdata.Payload
}

func (a *recordingArchiver) UpsertRawPayloads(_ context.Context, source string, items []rawdata.Payload) error {
	a.calls.Add(1)
	a.sources = append(a.sources, source)
	a.items = append(a.items, items...)
	return nil
}

func liveTestHeader() match.Match {
	return match.Match{
		ID:       1035045,
		LeagueID: 39,
		Status:   "2H",
		Home:     match.Team{ID: 40, Name: "Liverpool"},
		Away:     match.Team{ID: 42, Name: "Arsenal"},
	}
}

func TestLiveMatchService_Refresh_BuildsSnapshot(t *testing.T) {
	t.Parallel()

	provider := &stubMatchProvider{
		header: liveTestHeader(),
		events: []timeline.RawEvent{
			{Minute: 23, Type: "Goal", Detail: "Normal Goal", TeamID: 40, PlayerName: "Salah"},
		},
		stats:   []match.Statistic{{Name: "Ball Possession", Home: "61%", Away: "39%"}},
		lineups: []match.Lineup{{TeamID: 40, TeamName: "Liverpool"}, {TeamID: 42, TeamName: "Arsenal"}},
	}
	archiver := &recordingArchiver{}
	svc := NewLiveMatchService(provider, archiver, nil, logging.NewNop())

	snapshot, err := svc.Refresh(context.Background(), 1035045)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	if snapshot.Match.ID != 1035045 {
		t.Fatalf("unexpected match id: %d", snapshot.Match.ID)
	}
	if len(snapshot.Timeline) != 1 {
		t.Fatalf("expected 1 timeline event, got=%d", len(snapshot.Timeline))
	}
	if snapshot.Timeline[0].Description != "Goal! Salah scores for Liverpool." {
		t.Fatalf("unexpected event description: %q", snapshot.Timeline[0].Description)
	}
	if len(snapshot.Statistics) != 1 || len(snapshot.Lineups) != 2 {
		t.Fatalf("unexpected sections: stats=%d lineups=%d", len(snapshot.Statistics), len(snapshot.Lineups))
	}
	if snapshot.FetchedAt.IsZero() {
		t.Fatal("expected FetchedAt to be stamped")
	}

	if archiver.calls.Load() != 1 {
		t.Fatalf("expected 1 archive call, got=%d", archiver.calls.Load())
	}
	if len(archiver.items) != 4 {
		t.Fatalf("expected 4 archived payloads, got=%d", len(archiver.items))
	}
	if archiver.sources[0] != "apifootball" {
		t.Fatalf("unexpected archive source: %q", archiver.sources[0])
	}
}

func TestLiveMatchService_Refresh_OptionalSectionsDegrade(t *testing.T) {
	t.Parallel()

	provider := &stubMatchProvider{
		header:     liveTestHeader(),
		statsErr:   errors.New("statistics unavailable"),
		lineupsErr: errors.New("lineups unavailable"),
	}
	svc := NewLiveMatchService(provider, nil, nil, logging.NewNop())

	snapshot, err := svc.Refresh(context.Background(), 1035045)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if len(snapshot.Statistics) != 0 || len(snapshot.Lineups) != 0 {
		t.Fatalf("expected empty sections, got stats=%d lineups=%d", len(snapshot.Statistics), len(snapshot.Lineups))
	}
}

func TestLiveMatchService_Refresh_EventsFailureFailsSnapshot(t *testing.T) {
	t.Parallel()

	provider := &stubMatchProvider{
		header:    liveTestHeader(),
		eventsErr: errors.New("events unavailable"),
	}
	svc := NewLiveMatchService(provider, nil, nil, logging.NewNop())

	if _, err := svc.Refresh(context.Background(), 1035045); err == nil {
		t.Fatal("expected error when events fetch fails")
	}
}

func TestLiveMatchService_GetSnapshot_ServesFromCache(t *testing.T) {
	t.Parallel()

	provider := &stubMatchProvider{header: liveTestHeader()}
	store := cache.NewStore(time.Minute)
	svc := NewLiveMatchService(provider, nil, store, logging.NewNop())

	first, err := svc.GetSnapshot(context.Background(), 1035045)
	if err != nil {
		t.Fatalf("first GetSnapshot error: %v", err)
	}
	second, err := svc.GetSnapshot(context.Background(), 1035045)
	if err != nil {
		t.Fatalf("second GetSnapshot error: %v", err)
	}

	if provider.matchCalls.Load() != 1 {
		t.Fatalf("expected 1 provider fetch, got=%d", provider.matchCalls.Load())
	}
	if !first.FetchedAt.Equal(second.FetchedAt) {
		t.Fatal("expected the cached snapshot on the second read")
	}
}

func TestLiveMatchService_GetSnapshot_RejectsNonPositiveID(t *testing.T) {
	t.Parallel()

	svc := NewLiveMatchService(&stubMatchProvider{}, nil, nil, logging.NewNop())

	if _, err := svc.GetSnapshot(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}
