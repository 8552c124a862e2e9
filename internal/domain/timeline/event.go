package timeline

// Side identifies which participant of a match an event belongs to.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
	SideNone Side = "none"
)

// Category is the closed set of event kinds the feed can render.
type Category string

const (
	CategoryGoal            Category = "goal"
	CategoryYellowCard      Category = "yellow_card"
	CategoryRedCard         Category = "red_card"
	CategorySubstitution    Category = "substitution"
	CategoryCorner          Category = "corner"
	CategoryShot            Category = "shot"
	CategoryShotOnTarget    Category = "shot_on_target"
	CategoryShotOffTarget   Category = "shot_off_target"
	CategoryBlockedShot     Category = "blocked_shot"
	CategorySave            Category = "save"
	CategoryOffside         Category = "offside"
	CategoryFoul            Category = "foul"
	CategoryVARCheck        Category = "var_check"
	CategoryKickoff         Category = "kickoff"
	CategoryHalfTime        Category = "half_time"
	CategorySecondHalfStart Category = "second_half_start"
	CategoryFullTime        Category = "full_time"
)

// Title returns the short display label for a category.
func (c Category) Title() string {
	switch c {
	case CategoryGoal:
		return "Goal"
	case CategoryYellowCard:
		return "Yellow Card"
	case CategoryRedCard:
		return "Red Card"
	case CategorySubstitution:
		return "Substitution"
	case CategoryCorner:
		return "Corner"
	case CategoryShot:
		return "Shot"
	case CategoryShotOnTarget:
		return "Shot on Target"
	case CategoryShotOffTarget:
		return "Shot off Target"
	case CategoryBlockedShot:
		return "Blocked Shot"
	case CategorySave:
		return "Save"
	case CategoryOffside:
		return "Offside"
	case CategoryFoul:
		return "Foul"
	case CategoryVARCheck:
		return "VAR Check"
	case CategoryKickoff:
		return "Kick-off"
	case CategoryHalfTime:
		return "Half-time"
	case CategorySecondHalfStart:
		return "Second Half"
	case CategoryFullTime:
		return "Full-time"
	default:
		return "Event"
	}
}

// RawEvent is a provider match-event record before normalization. Field order
// as received is not guaranteed to be chronological; every field besides the
// minute may be absent.
type RawEvent struct {
	ProviderID  int64
	Minute      int
	ExtraMinute *int
	Type        string
	Detail      string
	Comments    string
	TeamID      int64
	PlayerID    int64
	PlayerName  string
	AssistID    int64
	AssistName  string
}

// Score is a running goal tally at a point in the timeline.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Event is the canonical, display-ready representation of a match event.
type Event struct {
	ID           string   `json:"id"`
	Minute       int      `json:"minute"`
	ExtraMinute  *int     `json:"extraMinute,omitempty"`
	Side         Side     `json:"team"`
	Category     Category `json:"category"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	RunningScore *Score   `json:"runningScore,omitempty"`
}

// Teams carries the match participants the normalizer resolves sides against.
type Teams struct {
	HomeID   int64
	AwayID   int64
	HomeName string
	AwayName string
}

func (t Teams) side(teamID int64) Side {
	switch {
	case teamID > 0 && teamID == t.HomeID:
		return SideHome
	case teamID > 0 && teamID == t.AwayID:
		return SideAway
	default:
		return SideNone
	}
}

func (t Teams) name(side Side) string {
	switch side {
	case SideHome:
		return t.HomeName
	case SideAway:
		return t.AwayName
	default:
		return ""
	}
}
