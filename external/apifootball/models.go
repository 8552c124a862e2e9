package apifootball

// API-Football v3 wraps every endpoint in the same envelope; errors arrive as
// either an object keyed by field or an array of strings, so the field stays
// untyped and is flattened by envelopeErrors.
type envelope[T any] struct {
	Get        string         `json:"get"`
	Parameters map[string]any `json:"parameters"`
	Errors     any            `json:"errors"`
	Results    int            `json:"results"`
	Paging     paging         `json:"paging"`
	Response   []T            `json:"response"`
}

type paging struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type teamRef struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Logo   string `json:"logo"`
	Winner *bool  `json:"winner"`
}

type playerRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type fixtureItem struct {
	Fixture struct {
		ID        int64  `json:"id"`
		Referee   string `json:"referee"`
		Timezone  string `json:"timezone"`
		Date      string `json:"date"`
		Timestamp int64  `json:"timestamp"`
		Venue     struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
			City string `json:"city"`
		} `json:"venue"`
		Status struct {
			Long    string `json:"long"`
			Short   string `json:"short"`
			Elapsed *int   `json:"elapsed"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Country string `json:"country"`
		Season  int    `json:"season"`
		Round   string `json:"round"`
	} `json:"league"`
	Teams struct {
		Home teamRef `json:"home"`
		Away teamRef `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type eventItem struct {
	Time struct {
		Elapsed int  `json:"elapsed"`
		Extra   *int `json:"extra"`
	} `json:"time"`
	Team     teamRef   `json:"team"`
	Player   playerRef `json:"player"`
	Assist   playerRef `json:"assist"`
	Type     string    `json:"type"`
	Detail   string    `json:"detail"`
	Comments string    `json:"comments"`
}

type statisticsItem struct {
	Team       teamRef `json:"team"`
	Statistics []struct {
		Type  string `json:"type"`
		Value any    `json:"value"`
	} `json:"statistics"`
}

type lineupItem struct {
	Team  teamRef `json:"team"`
	Coach struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"coach"`
	Formation string       `json:"formation"`
	StartXI   []lineupSlot `json:"startXI"`
	Subs      []lineupSlot `json:"substitutes"`
}

type lineupSlot struct {
	Player struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Number int    `json:"number"`
		Pos    string `json:"pos"`
		Grid   string `json:"grid"`
	} `json:"player"`
}

type standingsItem struct {
	League struct {
		ID        int64            `json:"id"`
		Name      string           `json:"name"`
		Season    int              `json:"season"`
		Standings [][]standingsRow `json:"standings"`
	} `json:"league"`
}

type standingsRow struct {
	Rank        int     `json:"rank"`
	Team        teamRef `json:"team"`
	Points      int     `json:"points"`
	GoalsDiff   int     `json:"goalsDiff"`
	Form        string  `json:"form"`
	Description string  `json:"description"`
	All         struct {
		Played int `json:"played"`
		Win    int `json:"win"`
		Draw   int `json:"draw"`
		Lose   int `json:"lose"`
		Goals  struct {
			For     int `json:"for"`
			Against int `json:"against"`
		} `json:"goals"`
	} `json:"all"`
}
