// Package extractor fetches an article page and reduces it to readable text.
package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/match-center/internal/domain/news"
	"github.com/riskibarqy/match-center/internal/platform/logging"
	"github.com/riskibarqy/match-center/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const minParagraphRunes = 40

// Boilerplate containers stripped before paragraph scoring.
var strippedSelectors = []string{
	"script", "style", "noscript", "iframe", "svg",
	"nav", "header", "footer", "aside", "form",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]",
	".advert", ".advertisement", ".cookie-banner", ".newsletter-signup",
	".related-articles", ".social-share", ".comments",
}

type Config struct {
	HTTPClient   *http.Client
	Timeout      time.Duration
	MaxBodyBytes int
	UserAgent    string
	Logger       *logging.Logger
}

type Extractor struct {
	httpClient   *http.Client
	maxBodyBytes int64
	userAgent    string
	logger       *logging.Logger
}

func New(cfg Config) *Extractor {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	maxBody := int64(cfg.MaxBodyBytes)
	if maxBody <= 0 {
		maxBody = 5 << 20
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = "match-center/1.0"
	}

	return &Extractor{
		httpClient:   httpClient,
		maxBodyBytes: maxBody,
		userAgent:    userAgent,
		logger:       logger,
	}
}

// Extract downloads the page at rawURL and returns its readable text. Pages
// with no extractable paragraphs yield usecase.ErrExtractionEmpty.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (news.Extraction, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return news.Extraction{}, fmt.Errorf("%w: article url must be absolute http(s)", usecase.ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return news.Extraction{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return news.Extraction{}, fmt.Errorf("%w: fetch article page: %v", usecase.ErrDependencyUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return news.Extraction{}, fmt.Errorf("%w: article page status=%d", usecase.ErrDependencyUnavailable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, e.maxBodyBytes))
	if err != nil {
		return news.Extraction{}, fmt.Errorf("parse article html: %w", err)
	}

	out := FromDocument(doc, parsed.String())
	if len(out.Paragraphs) == 0 {
		e.logger.WarnContext(ctx, "article extraction produced no paragraphs", "url", parsed.String())
		return news.Extraction{}, fmt.Errorf("%w: %s", usecase.ErrExtractionEmpty, parsed.String())
	}

	return out, nil
}

// FromDocument runs readability over an already-parsed document. Split from
// Extract so it is testable without a live fetch.
func FromDocument(doc *goquery.Document, pageURL string) news.Extraction {
	for _, selector := range strippedSelectors {
		doc.Find(selector).Remove()
	}

	out := news.Extraction{
		URL:         pageURL,
		Title:       pageTitle(doc),
		Byline:      metaContent(doc, `meta[name="author"]`, `meta[property="article:author"]`),
		SiteName:    metaContent(doc, `meta[property="og:site_name"]`),
		ExtractedAt: time.Now().UTC(),
	}

	root := contentRoot(doc)
	out.Paragraphs = collectParagraphs(root)
	if len(out.Paragraphs) == 0 && root.Length() > 0 {
		// Fall back to the whole body when the picked container was a dud.
		out.Paragraphs = collectParagraphs(doc.Find("body"))
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for i, paragraph := range out.Paragraphs {
		if i > 0 {
			_, _ = buf.WriteString("\n\n")
		}
		_, _ = buf.WriteString(paragraph)
	}
	out.Text = buf.String()
	out.WordCount = len(strings.Fields(out.Text))

	return out
}

// contentRoot prefers a semantic article container and otherwise picks the
// element holding the most paragraph text.
func contentRoot(doc *goquery.Document) *goquery.Selection {
	for _, selector := range []string{"article", `[role=main]`, "main", ".article-body", ".post-content", ".entry-content"} {
		candidate := doc.Find(selector).First()
		if candidate.Length() > 0 && candidate.Find("p").Length() > 0 {
			return candidate
		}
	}

	best := doc.Find("body")
	bestScore := 0
	doc.Find("div, section").Each(func(_ int, sel *goquery.Selection) {
		score := 0
		sel.ChildrenFiltered("p").Each(func(_ int, p *goquery.Selection) {
			score += len(strings.TrimSpace(p.Text()))
		})
		if score > bestScore {
			best = sel
			bestScore = score
		}
	})
	return best
}

func collectParagraphs(root *goquery.Selection) []string {
	if root == nil || root.Length() == 0 {
		return nil
	}

	seen := make(map[string]struct{}, 32)
	out := make([]string, 0, 32)
	root.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := collapseWhitespace(sel.Text())
		if len([]rune(text)) < minParagraphRunes {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		out = append(out, text)
	})
	return out
}

func pageTitle(doc *goquery.Document) string {
	if title := metaContent(doc, `meta[property="og:title"]`); title != "" {
		return title
	}
	if heading := collapseWhitespace(doc.Find("h1").First().Text()); heading != "" {
		return heading
	}
	return collapseWhitespace(doc.Find("title").First().Text())
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if value, ok := doc.Find(selector).First().Attr("content"); ok {
			if trimmed := collapseWhitespace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func collapseWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
