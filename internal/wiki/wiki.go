// Package wiki looks up encyclopedia material for two purposes: gathering
// country context ahead of fact generation, and cross-checking candidate
// facts during validation. Both lookups are best effort and never fail the
// caller; the pipeline degrades to generic context or unverified facts.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"isthatstilltrue/internal/config"
	"isthatstilltrue/internal/logger"
)

// CheckResult is the outcome of cross-checking one statement.
type CheckResult struct {
	Found      bool    `json:"found"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
	Extract    string  `json:"extract,omitempty"`
}

// Client queries the MediaWiki search API with a fixed inter-call delay.
type Client struct {
	client    *http.Client
	baseURL   string
	userAgent string
	rateLimit time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient creates an encyclopedia client from configuration.
func NewClient(cfg config.Wikipedia) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://en.wikipedia.org"
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "isthatstilltrue/1.0 (educational fact research)"
	}

	return &Client{
		client: &http.Client{
			Timeout: config.Duration(cfg.Timeout, 10*time.Second),
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		rateLimit: config.Duration(cfg.RateLimit, 300*time.Millisecond),
	}
}

// throttle enforces the fixed delay between consecutive API calls. The next
// slot is reserved under the lock; the wait happens outside it so a canceled
// request neither blocks other callers nor waits out the window itself.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	slot := c.lastCall.Add(c.rateLimit)
	if now := time.Now(); slot.Before(now) {
		slot = now
	}
	c.lastCall = slot
	c.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CountryContext fetches background on schooling in the given country around
// the given year. Lookup failures return a generic description so fact
// generation can always proceed.
func (c *Client) CountryContext(ctx context.Context, country string, year int) string {
	query := fmt.Sprintf("Education in %s", country)

	snippets, err := c.search(ctx, query, 3)
	if err != nil || len(snippets) == 0 {
		if err != nil {
			logger.Warn("country context lookup failed, using generic context", "country", country, "error", err.Error())
		}
		return genericContext(country, year)
	}

	var parts []string
	for _, s := range snippets {
		if s.Extract != "" {
			parts = append(parts, s.Extract)
		}
	}
	if len(parts) == 0 {
		return genericContext(country, year)
	}

	logger.Debug("country context gathered", "country", country, "snippets", len(parts))
	return strings.Join(parts, " ")
}

func genericContext(country string, year int) string {
	return fmt.Sprintf("Schools in %s around %d taught the scientific and historical consensus of that era, much of which has since been revised.", country, year)
}

// CrossCheck searches the encyclopedia for material supporting a statement.
// It never returns an error; an unreachable or empty result degrades to a
// not-found check so validation can continue with heuristics alone.
func (c *Client) CrossCheck(ctx context.Context, statement string) CheckResult {
	query := searchQuery(statement)

	snippets, err := c.search(ctx, query, 1)
	if err != nil {
		logger.Debug("cross-check lookup failed", "query", query, "error", err.Error())
		return CheckResult{}
	}
	if len(snippets) == 0 {
		return CheckResult{}
	}

	top := snippets[0]
	return CheckResult{
		Found:      true,
		Confidence: overlapConfidence(statement, top.Title+" "+top.Extract),
		Source:     c.baseURL + "/wiki/" + url.PathEscape(strings.ReplaceAll(top.Title, " ", "_")),
		Extract:    top.Extract,
	}
}

type snippet struct {
	Title   string
	Extract string
}

// search runs a MediaWiki full-text search and returns cleaned snippets.
func (c *Client) search(ctx context.Context, query string, limit int) ([]snippet, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", fmt.Sprintf("%d", limit))
	params.Set("format", "json")

	searchURL := c.baseURL + "/w/api.php?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed struct {
		Query struct {
			Search []struct {
				Title   string `json:"title"`
				Snippet string `json:"snippet"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	var results []snippet
	for _, s := range parsed.Query.Search {
		results = append(results, snippet{
			Title:   s.Title,
			Extract: stripHTML(s.Snippet),
		})
	}
	return results, nil
}

// stripHTML removes the highlight markup MediaWiki embeds in snippets.
func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// searchQuery trims a statement down to a short search phrase.
func searchQuery(statement string) string {
	words := strings.Fields(statement)
	if len(words) > 8 {
		words = words[:8]
	}
	return strings.Join(words, " ")
}

// overlapConfidence scores how much of the statement's vocabulary appears in
// the found material. Short words carry no signal and are skipped.
func overlapConfidence(statement, material string) float64 {
	material = strings.ToLower(material)
	var total, matched int
	for _, w := range strings.Fields(strings.ToLower(statement)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) < 4 {
			continue
		}
		total++
		if strings.Contains(material, w) {
			matched++
		}
	}
	if total == 0 {
		return 0.3
	}
	conf := 0.3 + 0.6*float64(matched)/float64(total)
	if conf > 0.9 {
		conf = 0.9
	}
	return conf
}
