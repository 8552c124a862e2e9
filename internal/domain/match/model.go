package match

import (
	"strings"
	"time"

	"github.com/riskibarqy/match-center/internal/domain/timeline"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
)

// Team identifies one side of a match.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// Match is the header-level view of a fixture, independent of its timeline.
type Match struct {
	ID         int64      `json:"id"`
	LeagueID   int64      `json:"leagueId"`
	LeagueName string     `json:"leagueName,omitempty"`
	Season     int        `json:"season,omitempty"`
	Round      string     `json:"round,omitempty"`
	KickoffAt  time.Time  `json:"kickoffAt"`
	Venue      string     `json:"venue,omitempty"`
	Referee    string     `json:"referee,omitempty"`
	Status     string     `json:"status"`
	Elapsed    *int       `json:"elapsed,omitempty"`
	Home       Team       `json:"home"`
	Away       Team       `json:"away"`
	HomeScore  *int       `json:"homeScore,omitempty"`
	AwayScore  *int       `json:"awayScore,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Teams adapts the match header into the normalizer's team mapping.
func (m Match) Teams() timeline.Teams {
	return timeline.Teams{
		HomeID:   m.Home.ID,
		AwayID:   m.Away.ID,
		HomeName: m.Home.Name,
		AwayName: m.Away.Name,
	}
}

// Statistic is one comparative stat row, values kept as provider strings
// since units vary ("54%", "12", "0.81").
type Statistic struct {
	Name string `json:"name"`
	Home string `json:"home"`
	Away string `json:"away"`
}

// LineupPlayer is a single entry in a starting eleven or bench list.
type LineupPlayer struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Number   int    `json:"number,omitempty"`
	Position string `json:"position,omitempty"`
	Grid     string `json:"grid,omitempty"`
}

// Lineup is one team's formation and player lists for a match.
type Lineup struct {
	TeamID      int64          `json:"teamId"`
	TeamName    string         `json:"teamName"`
	Formation   string         `json:"formation,omitempty"`
	Coach       string         `json:"coach,omitempty"`
	StartingXI  []LineupPlayer `json:"startingXI"`
	Substitutes []LineupPlayer `json:"substitutes"`
}

// Snapshot is the complete refreshed state of one match: header, normalized
// timeline, and the optional detail sections. A snapshot is immutable once
// published; each refresh replaces it wholesale.
type Snapshot struct {
	Match      Match            `json:"match"`
	Timeline   []timeline.Event `json:"timeline"`
	Statistics []Statistic      `json:"statistics,omitempty"`
	Lineups    []Lineup         `json:"lineups,omitempty"`
	FetchedAt  time.Time        `json:"fetchedAt"`
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusLive, "IN_PLAY", "HT", "1H", "2H", "ET", "BT", "P":
		return true
	default:
		return false
	}
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

func IsCancelledLikeStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusCancelled, StatusPostponed, "ABANDONED", "SUSP":
		return true
	default:
		return false
	}
}
