package newsapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/match-center/internal/domain/news"
	"github.com/riskibarqy/match-center/internal/domain/rawdata"
	"github.com/riskibarqy/match-center/internal/platform/logging"
	"github.com/riskibarqy/match-center/internal/platform/resilience"
	"github.com/riskibarqy/match-center/internal/usecase"
)

const (
	defaultBaseURL = "https://newsapi.org/v2"
	apiKeyHeader   = "X-Api-Key"
	maxPageSize    = 100
)

var errNewsAPITransient = crerr.New("newsapi transient failure")

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
		httpClient.Timeout = 10 * time.Second
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

// Search runs a full-text query against the everything endpoint. Rate-limit
// refusals surface as usecase.ErrRateLimited so callers can fall back to
// cached pages.
func (c *Client) Search(ctx context.Context, query string, page, pageSize int) (news.Page, rawdata.Payload, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return news.Page{}, rawdata.Payload{}, fmt.Errorf("%w: search query is required", usecase.ErrInvalidInput)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := map[string]string{
		"q":        query,
		"page":     strconv.Itoa(page),
		"pageSize": strconv.Itoa(pageSize),
		"language": "en",
		"sortBy":   "publishedAt",
	}

	var env searchEnvelope
	raw, err := c.doJSON(ctx, "/everything", params, &env)
	if err != nil {
		return news.Page{}, rawdata.Payload{}, fmt.Errorf("search news query=%q page=%d: %w", query, page, err)
	}
	if !strings.EqualFold(env.Status, "ok") {
		return news.Page{}, rawdata.Payload{}, fmt.Errorf("provider error code=%s: %s", env.Code, env.Message)
	}

	out := news.Page{
		Query:        query,
		Page:         page,
		PageSize:     pageSize,
		TotalResults: env.TotalResults,
		Articles:     make([]news.Article, 0, len(env.Articles)),
		FetchedAt:    time.Now().UTC(),
	}
	for _, item := range env.Articles {
		mapped := mapArticle(item)
		if mapped.URL == "" || mapped.Title == "" {
			continue
		}
		out.Articles = append(out.Articles, mapped)
	}

	return out, buildAPIPayload("/everything", params, raw), nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "newsapi circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: news provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
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
			if reqErr != nil && isNewsAPICircuitFailure(reqErr) {
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
			lastErr = fmt.Errorf("%w: send request: %s", errNewsAPITransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errNewsAPITransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusTooManyRequests:
				// Retrying against a quota refusal only burns more quota.
				return nil, fmt.Errorf("%w: provider status=429 body=%s", usecase.ErrRateLimited, abbreviateBody(raw))
			case resp.StatusCode >= http.StatusInternalServerError:
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errNewsAPITransient, resp.StatusCode, abbreviateBody(raw))
			default:
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
	c.logger.WarnContext(ctx, "newsapi request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func mapArticle(item articleItem) news.Article {
	out := news.Article{
		Source:      strings.TrimSpace(item.Source.Name),
		Author:      strings.TrimSpace(item.Author),
		Title:       strings.TrimSpace(item.Title),
		Description: strings.TrimSpace(item.Description),
		URL:         strings.TrimSpace(item.URL),
		ImageURL:    strings.TrimSpace(item.URLToImage),
	}
	if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(item.PublishedAt)); err == nil {
		out.PublishedAt = parsed.UTC()
	}
	return out
}

func buildAPIPayload(path string, query map[string]string, raw []byte) rawdata.Payload {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	entityKey := strings.TrimSpace(path)
	if encoded := values.Encode(); encoded != "" {
		entityKey += "?" + encoded
	}
	return rawdata.Payload{
		Source:      "newsapi",
		EntityType:  "news",
		EntityKey:   entityKey,
		PayloadJSON: string(raw),
		FetchedAt:   time.Now().UTC(),
	}
}

func isNewsAPICircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errNewsAPITransient)
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

type searchEnvelope struct {
	Status       string        `json:"status"`
	Code         string        `json:"code"`
	Message      string        `json:"message"`
	TotalResults int           `json:"totalResults"`
	Articles     []articleItem `json:"articles"`
}

type articleItem struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}
