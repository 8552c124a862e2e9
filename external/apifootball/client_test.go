package apifootball

import (
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
)

const fixtureJSON = `{
	"fixture": {
		"id": 1035045,
		"referee": "A. Taylor",
		"date": "2026-03-07T17:30:00+00:00",
		"timestamp": 1772991000,
		"venue": {"id": 550, "name": "Anfield", "city": "Liverpool"},
		"status": {"long": "Second Half", "short": "2H", "elapsed": 67}
	},
	"league": {"id": 39, "name": "Premier League", "season": 2025, "round": "Regular Season - 28"},
	"teams": {
		"home": {"id": 40, "name": "Liverpool", "logo": "https://media.example/40.png"},
		"away": {"id": 42, "name": "Arsenal", "logo": "https://media.example/42.png"}
	},
	"goals": {"home": 2, "away": 1}
}`

func TestMapFixture(t *testing.T) {
	t.Parallel()

	var item fixtureItem
	if err := sonic.Unmarshal([]byte(fixtureJSON), &item); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	mapped := mapFixture(item)
	if mapped.ID != 1035045 {
		t.Fatalf("expected id=1035045, got=%d", mapped.ID)
	}
	if mapped.LeagueID != 39 || mapped.Season != 2025 {
		t.Fatalf("unexpected league mapping: league=%d season=%d", mapped.LeagueID, mapped.Season)
	}
	if mapped.Status != "2H" {
		t.Fatalf("expected status=2H, got=%s", mapped.Status)
	}
	if mapped.Elapsed == nil || *mapped.Elapsed != 67 {
		t.Fatalf("unexpected elapsed: %v", mapped.Elapsed)
	}
	if mapped.Home.ID != 40 || mapped.Home.Name != "Liverpool" {
		t.Fatalf("unexpected home team: %+v", mapped.Home)
	}
	if mapped.HomeScore == nil || *mapped.HomeScore != 2 {
		t.Fatalf("unexpected home score: %v", mapped.HomeScore)
	}
	if mapped.KickoffAt != time.Unix(1772991000, 0).UTC() {
		t.Fatalf("unexpected kickoff: %s", mapped.KickoffAt)
	}
	if mapped.Venue != "Anfield" || mapped.Referee != "A. Taylor" {
		t.Fatalf("unexpected venue/referee: %q %q", mapped.Venue, mapped.Referee)
	}
}

func TestMapFixture_NotStartedNormalizesToScheduled(t *testing.T) {
	t.Parallel()

	var item fixtureItem
	item.Fixture.ID = 7
	item.Fixture.Status.Short = "NS"

	if got := mapFixture(item).Status; got != "SCHEDULED" {
		t.Fatalf("expected SCHEDULED, got=%s", got)
	}
}

func TestMapEvent(t *testing.T) {
	t.Parallel()

	raw := `{
		"time": {"elapsed": 45, "extra": 2},
		"team": {"id": 40, "name": "Liverpool"},
		"player": {"id": 306, "name": "Salah"},
		"assist": {"id": 289, "name": "Szoboszlai"},
		"type": "Goal",
		"detail": "Normal Goal",
		"comments": null
	}`

	var item eventItem
	if err := sonic.Unmarshal([]byte(raw), &item); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}

	mapped := mapEvent(item)
	if mapped.Minute != 45 {
		t.Fatalf("expected minute=45, got=%d", mapped.Minute)
	}
	if mapped.ExtraMinute == nil || *mapped.ExtraMinute != 2 {
		t.Fatalf("unexpected extra minute: %v", mapped.ExtraMinute)
	}
	if mapped.Type != "Goal" || mapped.Detail != "Normal Goal" {
		t.Fatalf("unexpected type/detail: %q %q", mapped.Type, mapped.Detail)
	}
	if mapped.TeamID != 40 || mapped.PlayerID != 306 || mapped.PlayerName != "Salah" {
		t.Fatalf("unexpected actor mapping: %+v", mapped)
	}
	if mapped.AssistName != "Szoboszlai" {
		t.Fatalf("unexpected assist: %q", mapped.AssistName)
	}
}

func TestMapStatistics_PivotsPerTeamLists(t *testing.T) {
	t.Parallel()

	items := []statisticsItem{
		{
			Team: teamRef{ID: 40, Name: "Liverpool"},
			Statistics: []struct {
				Type  string `json:"type"`
				Value any    `json:"value"`
			}{
				{Type: "Ball Possession", Value: "61%"},
				{Type: "Total Shots", Value: float64(14)},
				{Type: "expected_goals", Value: float64(1.82)},
			},
		},
		{
			Team: teamRef{ID: 42, Name: "Arsenal"},
			Statistics: []struct {
				Type  string `json:"type"`
				Value any    `json:"value"`
			}{
				{Type: "Ball Possession", Value: "39%"},
				{Type: "Total Shots", Value: float64(9)},
				{Type: "expected_goals", Value: nil},
			},
		},
	}

	rows := mapStatistics(items)
	if len(rows) != 3 {
		t.Fatalf("expected three stat rows, got=%d", len(rows))
	}
	if rows[0].Name != "Ball Possession" || rows[0].Home != "61%" || rows[0].Away != "39%" {
		t.Fatalf("unexpected possession row: %+v", rows[0])
	}
	if rows[1].Home != "14" || rows[1].Away != "9" {
		t.Fatalf("unexpected shots row: %+v", rows[1])
	}
	if rows[2].Home != "1.82" || rows[2].Away != "" {
		t.Fatalf("unexpected xg row: %+v", rows[2])
	}
}

func TestMapStandings_UsesOverallGroup(t *testing.T) {
	t.Parallel()

	raw := `{
		"league": {
			"id": 39,
			"name": "Premier League",
			"season": 2025,
			"standings": [[
				{
					"rank": 1,
					"team": {"id": 40, "name": "Liverpool", "logo": "l.png"},
					"points": 64,
					"goalsDiff": 31,
					"form": "WWDWW",
					"description": "Champions League",
					"all": {"played": 27, "win": 20, "draw": 4, "lose": 3, "goals": {"for": 58, "against": 27}}
				},
				{
					"rank": 2,
					"team": {"id": 42, "name": "Arsenal", "logo": "a.png"},
					"points": 60,
					"goalsDiff": 28,
					"form": "WDWWL",
					"all": {"played": 27, "win": 18, "draw": 6, "lose": 3, "goals": {"for": 51, "against": 23}}
				}
			]]
		}
	}`

	var item standingsItem
	if err := sonic.Unmarshal([]byte(raw), &item); err != nil {
		t.Fatalf("unmarshal standings: %v", err)
	}

	table := mapStandings(item)
	if table.LeagueID != 39 || table.Season != 2025 {
		t.Fatalf("unexpected table header: %+v", table)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected two rows, got=%d", len(table.Rows))
	}
	first := table.Rows[0]
	if first.Position != 1 || first.TeamID != 40 || first.Points != 64 {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.Played != 27 || first.Won != 20 || first.GoalsFor != 58 {
		t.Fatalf("unexpected first row record: %+v", first)
	}
	if first.GoalDifference != 31 || first.Description != "Champions League" {
		t.Fatalf("unexpected first row extras: %+v", first)
	}
}

func TestEnvelopeErrorText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		raw    string
		expect string
	}{
		{"clean array", `{"errors": []}`, ""},
		{"object form", `{"errors": {"token": "Error/Missing application key."}}`, "token: Error/Missing application key."},
		{"string array", `{"errors": ["requests limit reached"]}`, "requests limit reached"},
	}
	for _, tc := range cases {
		if got := envelopeErrorText([]byte(tc.raw)); got != tc.expect {
			t.Fatalf("%s: expected %q, got=%q", tc.name, tc.expect, got)
		}
	}
}
