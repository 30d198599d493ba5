// Package websearch implements a DuckDuckGo instant-answer client used to
// augment a chosen candidate's descriptive text before synopsis generation.
// It never discovers new candidates and its failures never abort a run.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wattanit/wcm/internal/logger"
)

const (
	endpoint  = "https://api.duckduckgo.com"
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

	// maxRelatedTopics caps how many related topics feed the enrichment block
	maxRelatedTopics = 3
)

// Client is a DuckDuckGo instant-answer client
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

// NewClient creates a new web search client
func NewClient() *Client {
	return NewClientWithBaseURL(endpoint)
}

// NewClientWithBaseURL creates a client against a specific endpoint. Tests use
// this to point at a local server.
func NewClientWithBaseURL(baseURL string) *Client {
	log := logger.Get().With().
		Str("component", "websearch_client").
		Logger()

	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: &logger.Logger{Logger: log},
	}
}

// Result is a single enrichment snippet
type Result struct {
	Title   string
	URL     string
	Snippet string
}

type instantAnswer struct {
	Abstract       string         `json:"Abstract"`
	AbstractText   string         `json:"AbstractText"`
	AbstractSource string         `json:"AbstractSource"`
	AbstractURL    string         `json:"AbstractURL"`
	RelatedTopics  []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

// SearchBookInfo queries the instant-answer API for supplementary material
// about a book
func (c *Client) SearchBookInfo(ctx context.Context, title, author string) ([]Result, error) {
	query := fmt.Sprintf("%s by %s book synopsis review", title, author)
	log := c.logger.With().Str("query", query).Logger()

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_redirect", "1")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	log.Debug().Msg("Searching web for book information")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search returned status %d", resp.StatusCode)
	}

	var answer instantAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var results []Result
	if answer.AbstractText != "" {
		results = append(results, Result{
			Title:   fmt.Sprintf("%s - %s", title, answer.AbstractSource),
			URL:     answer.AbstractURL,
			Snippet: answer.AbstractText,
		})
	}
	for _, topic := range answer.RelatedTopics {
		if len(results) >= maxRelatedTopics+1 {
			break
		}
		if topic.Text != "" {
			results = append(results, Result{
				Title:   fmt.Sprintf("Related: %s", title),
				URL:     topic.FirstURL,
				Snippet: topic.Text,
			})
		}
	}

	log.Debug().Int("results", len(results)).Msg("Web search complete")
	return results, nil
}

// EnrichBookInfo builds the combined book-information block fed to the LLM:
// the sourced fields first, then whatever the web search produced. A failed
// or empty search degrades to the sourced information alone.
func (c *Client) EnrichBookInfo(ctx context.Context, title, author, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", title)
	fmt.Fprintf(&b, "Author: %s\n", author)
	fmt.Fprintf(&b, "Description: %s\n", description)

	results, err := c.SearchBookInfo(ctx, title, author)
	if err != nil {
		c.logger.Warn("Web search failed, continuing with sourced information", map[string]interface{}{
			"error": err.Error(),
		})
		return b.String()
	}
	if len(results) == 0 {
		return b.String()
	}

	b.WriteString("\nAdditional information from web search:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, r.Title, r.Snippet)
	}
	return b.String()
}
