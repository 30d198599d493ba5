// Package googlebooks implements the Google Books volumes API client used as
// the primary book data source.
package googlebooks

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

// Client is a client for the Google Books API
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *logger.Logger
}

// NewClient creates a new Google Books client. The API key is optional; the
// volumes endpoint accepts unauthenticated requests at a lower quota.
func NewClient(baseURL, apiKey string) *Client {
	log := logger.Get().With().
		Str("component", "googlebooks_client").
		Logger()

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: &logger.Logger{Logger: log},
	}
}

// SearchResponse is the volumes list response
type SearchResponse struct {
	Kind       string   `json:"kind"`
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// Volume is a single volume entry
type Volume struct {
	Kind       string     `json:"kind"`
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
	SaleInfo   *SaleInfo  `json:"saleInfo,omitempty"`
}

// VolumeInfo holds the descriptive fields of a volume
type VolumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle,omitempty"`
	Authors             []string             `json:"authors,omitempty"`
	Publisher           string               `json:"publisher,omitempty"`
	PublishedDate       string               `json:"publishedDate,omitempty"`
	Description         string               `json:"description,omitempty"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers,omitempty"`
	PageCount           int                  `json:"pageCount,omitempty"`
	Categories          []string             `json:"categories,omitempty"`
	ImageLinks          *ImageLinks          `json:"imageLinks,omitempty"`
	Language            string               `json:"language,omitempty"`
}

// IndustryIdentifier is an ISBN (or other identifier) entry
type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// ImageLinks holds the cover image URLs by size
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail,omitempty"`
	Thumbnail      string `json:"thumbnail,omitempty"`
	Small          string `json:"small,omitempty"`
	Medium         string `json:"medium,omitempty"`
	Large          string `json:"large,omitempty"`
	ExtraLarge     string `json:"extraLarge,omitempty"`
}

// SaleInfo carries the ebook flag
type SaleInfo struct {
	Country  string `json:"country,omitempty"`
	IsEbook  *bool  `json:"isEbook,omitempty"`
}

// SearchByISBN searches volumes by ISBN
func (c *Client) SearchByISBN(ctx context.Context, isbn string) (*SearchResponse, error) {
	return c.search(ctx, fmt.Sprintf("isbn:%s", isbn))
}

// SearchByTitleAuthor searches volumes by title and author
func (c *Client) SearchByTitleAuthor(ctx context.Context, title, author string) (*SearchResponse, error) {
	return c.search(ctx, fmt.Sprintf("intitle:%q inauthor:%q", title, author))
}

func (c *Client) search(ctx context.Context, query string) (*SearchResponse, error) {
	log := c.logger.With().Str("query", query).Logger()

	params := url.Values{}
	params.Set("q", query)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	reqURL := fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Debug().Msg("Searching Google Books")
	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Request failed")
		return nil, fmt.Errorf("google books request failed: %w", err)
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
		return nil, fmt.Errorf("google books returned status %d: %s", resp.StatusCode, string(body))
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	log.Debug().Int("total_items", result.TotalItems).Msg("Google Books search complete")
	return &result, nil
}

// ISBN13 extracts the ISBN-13 identifier, if any
func (v Volume) ISBN13() string {
	for _, id := range v.VolumeInfo.IndustryIdentifiers {
		if id.Type == "ISBN_13" {
			return id.Identifier
		}
	}
	return ""
}

// ISBN10 extracts the ISBN-10 identifier, if any
func (v Volume) ISBN10() string {
	for _, id := range v.VolumeInfo.IndustryIdentifiers {
		if id.Type == "ISBN_10" {
			return id.Identifier
		}
	}
	return ""
}

// BestCoverURL returns the largest available cover image URL
func (v Volume) BestCoverURL() string {
	links := v.VolumeInfo.ImageLinks
	if links == nil {
		return ""
	}
	for _, u := range []string{
		links.ExtraLarge, links.Large, links.Medium,
		links.Small, links.Thumbnail, links.SmallThumbnail,
	} {
		if u != "" {
			return u
		}
	}
	return ""
}

// Candidate converts the volume into a pipeline candidate
func (v Volume) Candidate() models.BookCandidate {
	return models.BookCandidate{
		Title:         v.VolumeInfo.Title,
		Subtitle:      v.VolumeInfo.Subtitle,
		Authors:       v.VolumeInfo.Authors,
		Description:   v.VolumeInfo.Description,
		ISBN10:        v.ISBN10(),
		ISBN13:        v.ISBN13(),
		Publisher:     v.VolumeInfo.Publisher,
		PublishedDate: v.VolumeInfo.PublishedDate,
		PageCount:     v.VolumeInfo.PageCount,
		CoverURL:      v.BestCoverURL(),
		Categories:    v.VolumeInfo.Categories,
		Source:        models.SourceGoogleBooks,
	}
}
