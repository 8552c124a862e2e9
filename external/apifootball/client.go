package apifootball

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/match-center/internal/domain/match"
	"github.com/riskibarqy/match-center/internal/domain/rawdata"
	"github.com/riskibarqy/match-center/internal/domain/standings"
	"github.com/riskibarqy/match-center/internal/domain/timeline"
	"github.com/riskibarqy/match-center/internal/platform/logging"
	"github.com/riskibarqy/match-center/internal/platform/resilience"
	"github.com/riskibarqy/match-center/internal/usecase"
)

const (
	defaultBaseURL = "https://v3.football.api-sports.io"
	apiKeyHeader   = "x-apisports-key"
)

var errAPIFootballTransient = crerr.New("apifootball transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) FetchMatch(ctx context.Context, matchID int64) (match.Match, rawdata.Payload, error) {
	if matchID <= 0 {
		return match.Match{}, rawdata.Payload{}, fmt.Errorf("%w: match id must be greater than zero", usecase.ErrInvalidInput)
	}

	query := map[string]string{"id": strconv.FormatInt(matchID, 10)}
	var env envelope[fixtureItem]
	raw, err := c.doJSON(ctx, "/fixtures", query, &env)
	if err != nil {
		return match.Match{}, rawdata.Payload{}, fmt.Errorf("fetch fixture match_id=%d: %w", matchID, err)
	}
	if len(env.Response) == 0 {
		return match.Match{}, rawdata.Payload{}, fmt.Errorf("%w: match %d", usecase.ErrNotFound, matchID)
	}

	mapped := mapFixture(env.Response[0])
	return mapped, buildAPIPayload("fixture", "/fixtures", query, raw, mapped.ID, mapped.LeagueID, 0), nil
}

func (c *Client) FetchEvents(ctx context.Context, matchID int64) ([]timeline.RawEvent, rawdata.Payload, error) {
	if matchID <= 0 {
		return nil, rawdata.Payload{}, fmt.Errorf("%w: match id must be greater than zero", usecase.ErrInvalidInput)
	}

	query := map[string]string{"fixture": strconv.FormatInt(matchID, 10)}
	var env envelope[eventItem]
	raw, err := c.doJSON(ctx, "/fixtures/events", query, &env)
	if err != nil {
		return nil, rawdata.Payload{}, fmt.Errorf("fetch events match_id=%d: %w", matchID, err)
	}

	out := make([]timeline.RawEvent, 0, len(env.Response))
	for _, item := range env.Response {
		out = append(out, mapEvent(item))
	}
	return out, buildAPIPayload("events", "/fixtures/events", query, raw, matchID, 0, 0), nil
}

func (c *Client) FetchStatistics(ctx context.Context, matchID int64) ([]match.Statistic, rawdata.Payload, error) {
	if matchID <= 0 {
		return nil, rawdata.Payload{}, fmt.Errorf("%w: match id must be greater than zero", usecase.ErrInvalidInput)
	}

	query := map[string]string{"fixture": strconv.FormatInt(matchID, 10)}
	var env envelope[statisticsItem]
	raw, err := c.doJSON(ctx, "/fixtures/statistics", query, &env)
	if err != nil {
		return nil, rawdata.Payload{}, fmt.Errorf("fetch statistics match_id=%d: %w", matchID, err)
	}

	return mapStatistics(env.Response), buildAPIPayload("statistics", "/fixtures/statistics", query, raw, matchID, 0, 0), nil
}

func (c *Client) FetchLineups(ctx context.Context, matchID int64) ([]match.Lineup, rawdata.Payload, error) {
	if matchID <= 0 {
		return nil, rawdata.Payload{}, fmt.Errorf("%w: match id must be greater than zero", usecase.ErrInvalidInput)
	}

	query := map[string]string{"fixture": strconv.FormatInt(matchID, 10)}
	var env envelope[lineupItem]
	raw, err := c.doJSON(ctx, "/fixtures/lineups", query, &env)
	if err != nil {
		return nil, rawdata.Payload{}, fmt.Errorf("fetch lineups match_id=%d: %w", matchID, err)
	}

	out := make([]match.Lineup, 0, len(env.Response))
	for _, item := range env.Response {
		out = append(out, mapLineup(item))
	}
	return out, buildAPIPayload("lineups", "/fixtures/lineups", query, raw, matchID, 0, 0), nil
}

func (c *Client) FetchStandings(ctx context.Context, leagueID int64, season int) (standings.Table, rawdata.Payload, error) {
	if leagueID <= 0 {
		return standings.Table{}, rawdata.Payload{}, fmt.Errorf("%w: league id must be greater than zero", usecase.ErrInvalidInput)
	}
	if season <= 0 {
		return standings.Table{}, rawdata.Payload{}, fmt.Errorf("%w: season must be greater than zero", usecase.ErrInvalidInput)
	}

	query := map[string]string{
		"league": strconv.FormatInt(leagueID, 10),
		"season": strconv.Itoa(season),
	}
	var env envelope[standingsItem]
	raw, err := c.doJSON(ctx, "/standings", query, &env)
	if err != nil {
		return standings.Table{}, rawdata.Payload{}, fmt.Errorf("fetch standings league_id=%d season=%d: %w", leagueID, season, err)
	}
	if len(env.Response) == 0 {
		return standings.Table{}, rawdata.Payload{}, fmt.Errorf("%w: standings for league %d season %d", usecase.ErrNotFound, leagueID, season)
	}

	table := mapStandings(env.Response[0])
	return table, buildAPIPayload("standings", "/standings", query, raw, 0, leagueID, 0), nil
}

func (c *Client) FetchTeamSchedule(ctx context.Context, teamID int64, season int) ([]match.Match, rawdata.Payload, error) {
	if teamID <= 0 {
		return nil, rawdata.Payload{}, fmt.Errorf("%w: team id must be greater than zero", usecase.ErrInvalidInput)
	}
	if season <= 0 {
		return nil, rawdata.Payload{}, fmt.Errorf("%w: season must be greater than zero", usecase.ErrInvalidInput)
	}

	query := map[string]string{
		"team":   strconv.FormatInt(teamID, 10),
		"season": strconv.Itoa(season),
	}
	var env envelope[fixtureItem]
	raw, err := c.doJSON(ctx, "/fixtures", query, &env)
	if err != nil {
		return nil, rawdata.Payload{}, fmt.Errorf("fetch schedule team_id=%d season=%d: %w", teamID, season, err)
	}

	out := make([]match.Match, 0, len(env.Response))
	for _, item := range env.Response {
		mapped := mapFixture(item)
		if mapped.ID <= 0 {
			continue
		}
		out = append(out, mapped)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, buildAPIPayload("schedule", "/fixtures", query, raw, 0, 0, teamID), nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "apifootball circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: football data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isAPIFootballCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}

	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set(apiKeyHeader, c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errAPIFootballTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errAPIFootballTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				if apiErr := envelopeErrorText(raw); apiErr != "" {
					return nil, fmt.Errorf("provider error: %s", apiErr)
				}
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errAPIFootballTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "apifootball request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// envelopeErrorText flattens the envelope's errors field, which the provider
// serializes as an empty array when clean and as an object or string array
// when something went wrong.
func envelopeErrorText(raw []byte) string {
	var probe struct {
		Errors any `json:"errors"`
	}
	if err := sonic.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	switch typed := probe.Errors.(type) {
	case map[string]any:
		parts := make([]string, 0, len(typed))
		for key, value := range typed {
			parts = append(parts, fmt.Sprintf("%s: %v", key, value))
		}
		sort.Strings(parts)
		return strings.Join(parts, "; ")
	case []any:
		parts := make([]string, 0, len(typed))
		for _, value := range typed {
			if text := strings.TrimSpace(fmt.Sprint(value)); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

func mapFixture(item fixtureItem) match.Match {
	out := match.Match{
		ID:         item.Fixture.ID,
		LeagueID:   item.League.ID,
		LeagueName: strings.TrimSpace(item.League.Name),
		Season:     item.League.Season,
		Round:      strings.TrimSpace(item.League.Round),
		Venue:      strings.TrimSpace(item.Fixture.Venue.Name),
		Referee:    strings.TrimSpace(item.Fixture.Referee),
		Status:     match.NormalizeStatus(item.Fixture.Status.Short),
		Elapsed:    item.Fixture.Status.Elapsed,
		Home: match.Team{
			ID:   item.Teams.Home.ID,
			Name: strings.TrimSpace(item.Teams.Home.Name),
			Logo: strings.TrimSpace(item.Teams.Home.Logo),
		},
		Away: match.Team{
			ID:   item.Teams.Away.ID,
			Name: strings.TrimSpace(item.Teams.Away.Name),
			Logo: strings.TrimSpace(item.Teams.Away.Logo),
		},
		HomeScore: item.Goals.Home,
		AwayScore: item.Goals.Away,
	}
	if out.Status == "NS" || out.Status == "TBD" {
		out.Status = match.StatusScheduled
	}

	if item.Fixture.Timestamp > 0 {
		out.KickoffAt = time.Unix(item.Fixture.Timestamp, 0).UTC()
	} else if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(item.Fixture.Date)); err == nil {
		out.KickoffAt = parsed.UTC()
	}

	return out
}

func mapEvent(item eventItem) timeline.RawEvent {
	return timeline.RawEvent{
		Minute:      item.Time.Elapsed,
		ExtraMinute: item.Time.Extra,
		Type:        strings.TrimSpace(item.Type),
		Detail:      strings.TrimSpace(item.Detail),
		Comments:    strings.TrimSpace(item.Comments),
		TeamID:      item.Team.ID,
		PlayerID:    item.Player.ID,
		PlayerName:  strings.TrimSpace(item.Player.Name),
		AssistID:    item.Assist.ID,
		AssistName:  strings.TrimSpace(item.Assist.Name),
	}
}

// mapStatistics pivots the provider's per-team stat lists into comparative
// rows ordered by stat name. Values stay provider strings since units vary.
func mapStatistics(items []statisticsItem) []match.Statistic {
	if len(items) == 0 {
		return nil
	}

	byName := make(map[string]*match.Statistic, 16)
	names := make([]string, 0, 16)
	for index, teamBlock := range items {
		for _, stat := range teamBlock.Statistics {
			name := strings.TrimSpace(stat.Type)
			if name == "" {
				continue
			}
			row, ok := byName[name]
			if !ok {
				row = &match.Statistic{Name: name}
				byName[name] = row
				names = append(names, name)
			}
			value := statValueString(stat.Value)
			if index == 0 {
				row.Home = value
			} else {
				row.Away = value
			}
		}
	}

	out := make([]match.Statistic, 0, len(names))
	for _, name := range names {
		out = append(out, *byName[name])
	}
	return out
}

func mapLineup(item lineupItem) match.Lineup {
	out := match.Lineup{
		TeamID:      item.Team.ID,
		TeamName:    strings.TrimSpace(item.Team.Name),
		Formation:   strings.TrimSpace(item.Formation),
		Coach:       strings.TrimSpace(item.Coach.Name),
		StartingXI:  make([]match.LineupPlayer, 0, len(item.StartXI)),
		Substitutes: make([]match.LineupPlayer, 0, len(item.Subs)),
	}
	for _, slot := range item.StartXI {
		out.StartingXI = append(out.StartingXI, mapLineupSlot(slot))
	}
	for _, slot := range item.Subs {
		out.Substitutes = append(out.Substitutes, mapLineupSlot(slot))
	}
	return out
}

func mapLineupSlot(slot lineupSlot) match.LineupPlayer {
	return match.LineupPlayer{
		ID:       slot.Player.ID,
		Name:     strings.TrimSpace(slot.Player.Name),
		Number:   slot.Player.Number,
		Position: strings.TrimSpace(slot.Player.Pos),
		Grid:     strings.TrimSpace(slot.Player.Grid),
	}
}

func mapStandings(item standingsItem) standings.Table {
	table := standings.Table{
		LeagueID:   item.League.ID,
		LeagueName: strings.TrimSpace(item.League.Name),
		Season:     item.League.Season,
	}

	// The provider nests groups (overall table, home/away splits); the first
	// group is the overall table.
	if len(item.League.Standings) == 0 {
		return table
	}
	rows := item.League.Standings[0]
	table.Rows = make([]standings.Row, 0, len(rows))
	for _, row := range rows {
		if row.Team.ID <= 0 || row.Rank <= 0 {
			continue
		}
		table.Rows = append(table.Rows, standings.Row{
			Position:       row.Rank,
			TeamID:         row.Team.ID,
			TeamName:       strings.TrimSpace(row.Team.Name),
			TeamLogo:       strings.TrimSpace(row.Team.Logo),
			Played:         row.All.Played,
			Won:            row.All.Win,
			Draw:           row.All.Draw,
			Lost:           row.All.Lose,
			GoalsFor:       row.All.Goals.For,
			GoalsAgainst:   row.All.Goals.Against,
			GoalDifference: row.GoalsDiff,
			Points:         row.Points,
			Form:           strings.TrimSpace(row.Form),
			Description:    strings.TrimSpace(row.Description),
		})
	}

	sort.SliceStable(table.Rows, func(i, j int) bool {
		if table.Rows[i].Position != table.Rows[j].Position {
			return table.Rows[i].Position < table.Rows[j].Position
		}
		if table.Rows[i].Points != table.Rows[j].Points {
			return table.Rows[i].Points > table.Rows[j].Points
		}
		return table.Rows[i].TeamID < table.Rows[j].TeamID
	})

	return table
}

func statValueString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case float64:
		if typed == float64(int64(typed)) {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}

func buildAPIPayload(entityType, path string, query map[string]string, raw []byte, matchID, leagueID, teamID int64) rawdata.Payload {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	entityKey := strings.TrimSpace(path)
	if encoded := values.Encode(); encoded != "" {
		entityKey += "?" + encoded
	}
	return rawdata.Payload{
		Source:      "apifootball",
		EntityType:  entityType,
		EntityKey:   entityKey,
		MatchID:     matchID,
		LeagueID:    leagueID,
		TeamID:      teamID,
		PayloadJSON: string(raw),
		FetchedAt:   time.Now().UTC(),
	}
}

func isAPIFootballCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errAPIFootballTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return value
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
