package standings

// Row represents a league table row for one team.
type Row struct {
	Position       int    `json:"position"`
	TeamID         int64  `json:"teamId"`
	TeamName       string `json:"teamName"`
	TeamLogo       string `json:"teamLogo,omitempty"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Draw           int    `json:"draw"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	Points         int    `json:"points"`
	Form           string `json:"form,omitempty"`
	Description    string `json:"description,omitempty"`
}

// Table is one league's full standings for a season.
type Table struct {
	LeagueID   int64  `json:"leagueId"`
	LeagueName string `json:"leagueName,omitempty"`
	Season     int    `json:"season"`
	Rows       []Row  `json:"rows"`
}
