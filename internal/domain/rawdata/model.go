package rawdata

import "time"

type Payload struct {
	Source      string
	EntityType  string
	EntityKey   string
	MatchID     int64
	LeagueID    int64
	TeamID      int64
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}
