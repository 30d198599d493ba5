// Package openlibrary implements the Open Library search API client used as
// the fallback book data source.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wattanit/wcm/internal/logger"
	"github.com/wattanit/wcm/internal/models"
)

const userAgent = "wcm/1.0 (personal collection manager)"

// Client is a client for the Open Library API
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

// NewClient creates a new Open Library client
func NewClient(baseURL string) *Client {
	log := logger.Get().With().
		Str("component", "openlibrary_client").
		Logger()

	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: &logger.Logger{Logger: log},
	}
}

// SearchResponse is the search.json response
type SearchResponse struct {
	NumFound int   `json:"numFound"`
	Start    int   `json:"start"`
	Docs     []Doc `json:"docs"`
}

// Doc is a single search result document
type Doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Subtitle         string   `json:"subtitle,omitempty"`
	AuthorName       []string `json:"author_name,omitempty"`
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	PublishYear      []int    `json:"publish_year,omitempty"`
	Publisher        []string `json:"publisher,omitempty"`
	ISBN             []string `json:"isbn,omitempty"`
	CoverI           int      `json:"cover_i,omitempty"`
	Subject          []string `json:"subject,omitempty"`
	FirstSentence    []string `json:"first_sentence,omitempty"`
	NumberOfPages    int      `json:"number_of_pages_median,omitempty"`
}

// SearchByISBN searches for books by ISBN
func (c *Client) SearchByISBN(ctx context.Context, isbn string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("isbn", isbn)
	return c.search(ctx, params)
}

// SearchByTitleAuthor searches for books by title and author
func (c *Client) SearchByTitleAuthor(ctx context.Context, title, author string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("title", title)
	params.Set("author", author)
	return c.search(ctx, params)
}

func (c *Client) search(ctx context.Context, params url.Values) (*SearchResponse, error) {
	reqURL := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())
	log := c.logger.With().Str("url", reqURL).Logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	log.Debug().Msg("Searching Open Library")
	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Request failed")
		return nil, fmt.Errorf("open library request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().
			Int("status", resp.StatusCode).
			Str("response", string(body)).
			Msg("Unexpected status code")
		return nil, fmt.Errorf("open library returned status %d: %s", resp.StatusCode, string(body))
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	log.Debug().Int("num_found", result.NumFound).Msg("Open Library search complete")
	return &result, nil
}

// CoverURL builds the large cover image URL from the cover ID
func (d Doc) CoverURL() string {
	if d.CoverI == 0 {
		return ""
	}
	return fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", d.CoverI)
}

// BestISBN prefers a 13-digit ISBN over a 10-digit one
func (d Doc) BestISBN() (isbn10, isbn13 string) {
	for _, isbn := range d.ISBN {
		switch len(isbn) {
		case 13:
			if isbn13 == "" {
				isbn13 = isbn
			}
		case 10:
			if isbn10 == "" {
				isbn10 = isbn
			}
		}
	}
	return isbn10, isbn13
}

// LatestPublishYear returns the most recent publish year, falling back to the
// first publish year
func (d Doc) LatestPublishYear() int {
	year := 0
	for _, y := range d.PublishYear {
		if y > year {
			year = y
		}
	}
	if year == 0 {
		year = d.FirstPublishYear
	}
	return year
}

// Candidate converts the doc into a pipeline candidate. Open Library search
// docs have no description field; the first sentence stands in when present.
func (d Doc) Candidate() models.BookCandidate {
	isbn10, isbn13 := d.BestISBN()

	description := ""
	if len(d.FirstSentence) > 0 {
		description = d.FirstSentence[0]
	}

	publisher := ""
	if len(d.Publisher) > 0 {
		publisher = d.Publisher[0]
	}

	published := ""
	if year := d.LatestPublishYear(); year > 0 {
		published = fmt.Sprintf("%d", year)
	}

	subjects := d.Subject
	if len(subjects) > 10 {
		subjects = subjects[:10]
	}

	return models.BookCandidate{
		Title:         d.Title,
		Subtitle:      d.Subtitle,
		Authors:       d.AuthorName,
		Description:   description,
		ISBN10:        isbn10,
		ISBN13:        isbn13,
		Publisher:     publisher,
		PublishedDate: published,
		PageCount:     d.NumberOfPages,
		CoverURL:      d.CoverURL(),
		Categories:    subjects,
		Source:        models.SourceOpenLibrary,
	}
}
