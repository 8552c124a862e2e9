package timeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	placeholderScorer = "Unknown scorer"
	placeholderPlayer = "Player"
)

// Normalize converts an unordered provider event list into the display
// timeline: stable-sorted by (minute, extra minute), classified into the
// closed category set, with deterministic descriptions and a running score on
// goal events. The function is pure; malformed or partial records degrade to
// placeholder text instead of failing.
func Normalize(raw []RawEvent, teams Teams) []Event {
	ordered := make([]RawEvent, len(raw))
	copy(ordered, raw)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Minute != ordered[j].Minute {
			return ordered[i].Minute < ordered[j].Minute
		}
		return extraOrZero(ordered[i].ExtraMinute) < extraOrZero(ordered[j].ExtraMinute)
	})

	out := make([]Event, 0, len(ordered))
	score := Score{}
	for index, item := range ordered {
		category, ok := classify(item)
		if !ok {
			continue
		}

		side := teams.side(item.TeamID)
		event := Event{
			ID:          eventID(item, category, index),
			Minute:      maxInt(item.Minute, 0),
			ExtraMinute: normalizeExtra(item.ExtraMinute),
			Side:        side,
			Category:    category,
			Title:       category.Title(),
			Description: describe(item, category, side, teams),
		}

		if category == CategoryGoal {
			credit := side
			if isOwnGoal(item) {
				credit = opposite(side)
			}
			switch credit {
			case SideHome:
				score.Home++
			case SideAway:
				score.Away++
			}
			tally := score
			event.RunningScore = &tally
		}

		out = append(out, event)
	}

	return out
}

// classify maps a raw event onto the closed category set. The provider's
// structured type tag wins over keyword matches on the free-text detail;
// keywords only decide sub-kinds the tag leaves ambiguous. A bare "Shot" with
// no qualifying detail keyword is a generic shot. Events matching neither a
// tag nor a keyword are dropped from the timeline.
func classify(item RawEvent) (Category, bool) {
	tag := strings.ToLower(strings.TrimSpace(item.Type))
	detail := strings.ToLower(strings.TrimSpace(item.Detail))

	switch tag {
	case "goal":
		return CategoryGoal, true
	case "card":
		if strings.Contains(detail, "red") {
			return CategoryRedCard, true
		}
		return CategoryYellowCard, true
	case "subst", "substitution":
		return CategorySubstitution, true
	case "var":
		return CategoryVARCheck, true
	}

	if category, ok := classifyPeriodMarker(tag, detail); ok {
		return category, true
	}

	switch {
	case strings.Contains(detail, "corner"):
		return CategoryCorner, true
	case strings.Contains(detail, "var"):
		return CategoryVARCheck, true
	case strings.Contains(detail, "offside"):
		return CategoryOffside, true
	case strings.Contains(detail, "foul"):
		return CategoryFoul, true
	case strings.Contains(detail, "blocked shot"):
		return CategoryBlockedShot, true
	case strings.Contains(detail, "save"):
		return CategorySave, true
	case strings.Contains(detail, "on target"):
		return CategoryShotOnTarget, true
	case strings.Contains(detail, "off target"), strings.Contains(detail, "missed"):
		return CategoryShotOffTarget, true
	case strings.Contains(detail, "goal"):
		return CategoryGoal, true
	}

	if tag == "shot" {
		return CategoryShot, true
	}

	return "", false
}

func classifyPeriodMarker(tag, detail string) (Category, bool) {
	for _, value := range []string{tag, detail} {
		switch {
		case value == "":
			continue
		case strings.Contains(value, "kick-off"), strings.Contains(value, "kickoff"):
			return CategoryKickoff, true
		case strings.Contains(value, "half-time"), strings.Contains(value, "halftime"), value == "ht":
			return CategoryHalfTime, true
		case strings.Contains(value, "second half"), value == "2h":
			return CategorySecondHalfStart, true
		case strings.Contains(value, "full-time"), strings.Contains(value, "full time"), strings.Contains(value, "match finished"), value == "ft":
			return CategoryFullTime, true
		}
	}
	return "", false
}

// describe renders the fixed per-category description template. Missing names
// degrade to placeholders; optional clauses are omitted rather than rendered
// with empty values.
func describe(item RawEvent, category Category, side Side, teams Teams) string {
	teamName := strings.TrimSpace(teams.name(side))
	player := strings.TrimSpace(item.PlayerName)
	related := strings.TrimSpace(item.AssistName)

	switch category {
	case CategoryGoal:
		scorer := player
		if scorer == "" {
			scorer = placeholderScorer
		}
		text := "Goal! " + scorer + " scores"
		if teamName != "" {
			text += " for " + teamName
		}
		text += "."
		if related != "" {
			text += " Assisted by " + related + "."
		}
		return text
	case CategoryYellowCard:
		return cardDescription("Yellow card for ", player, teamName)
	case CategoryRedCard:
		who := player
		if who == "" {
			who = placeholderPlayer
		}
		if teamName != "" {
			who += " (" + teamName + ")"
		}
		return "Red card! " + who + " is sent off."
	case CategorySubstitution:
		in := fallback(player, placeholderPlayer)
		off := fallback(related, placeholderPlayer)
		if teamName != "" {
			return "Substitution for " + teamName + ": " + in + " replaces " + off + "."
		}
		return "Substitution: " + in + " replaces " + off + "."
	case CategoryCorner:
		if teamName != "" {
			return "Corner awarded to " + teamName + "."
		}
		return "Corner awarded."
	case CategoryShot:
		if player == "" {
			return "Shot."
		}
		return player + " attempts a shot."
	case CategoryShotOnTarget:
		text := "Shot on target by " + fallback(player, placeholderPlayer) + "."
		if related != "" {
			text += " Saved by " + related + "."
		}
		return text
	case CategoryShotOffTarget:
		return "Shot off target by " + fallback(player, placeholderPlayer) + "."
	case CategoryBlockedShot:
		return "Shot by " + fallback(player, placeholderPlayer) + " is blocked."
	case CategorySave:
		// Providers often omit a dedicated shooter on saves and reuse the
		// assist slot for the shooter name; tolerate it rather than reject.
		text := "Save by " + fallback(player, placeholderPlayer) + "."
		if related != "" {
			text += " Denies " + related + "."
		}
		return text
	case CategoryOffside:
		return fallback(player, placeholderPlayer) + " is caught offside."
	case CategoryFoul:
		text := "Foul by " + fallback(player, placeholderPlayer) + "."
		if related != "" {
			text += " Won by " + related + "."
		}
		return text
	case CategoryVARCheck:
		decision := strings.TrimSpace(item.Detail)
		if decision == "" {
			decision = strings.TrimSpace(item.Comments)
		}
		if decision == "" {
			return "VAR check in progress."
		}
		return "VAR check: " + decision + "."
	case CategoryKickoff:
		return "Kick-off!"
	case CategoryHalfTime:
		return "Half-time."
	case CategorySecondHalfStart:
		return "Second half begins."
	case CategoryFullTime:
		return "Full-time."
	default:
		return ""
	}
}

func cardDescription(prefix, player, teamName string) string {
	who := player
	if who == "" {
		who = placeholderPlayer
	}
	if teamName != "" {
		who += " (" + teamName + ")"
	}
	return prefix + who + "."
}

// eventID prefers the provider id; without one it synthesizes a composite key
// that stays unique even for duplicate-looking rows by including the position
// in the sorted sequence.
func eventID(item RawEvent, category Category, index int) string {
	if item.ProviderID > 0 {
		return strconv.FormatInt(item.ProviderID, 10)
	}

	playerRef := "event"
	switch {
	case item.PlayerID > 0:
		playerRef = strconv.FormatInt(item.PlayerID, 10)
	case strings.TrimSpace(item.PlayerName) != "":
		playerRef = strings.TrimSpace(item.PlayerName)
	}

	return fmt.Sprintf("%d:%d:%s:%s:%d", item.Minute, extraOrZero(item.ExtraMinute), category, playerRef, index)
}

func isOwnGoal(item RawEvent) bool {
	return strings.Contains(strings.ToLower(item.Detail), "own goal")
}

func opposite(side Side) Side {
	switch side {
	case SideHome:
		return SideAway
	case SideAway:
		return SideHome
	default:
		return SideNone
	}
}

func normalizeExtra(extra *int) *int {
	if extra == nil || *extra <= 0 {
		return nil
	}
	value := *extra
	return &value
}

func extraOrZero(extra *int) int {
	if extra == nil || *extra < 0 {
		return 0
	}
	return *extra
}

func fallback(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
