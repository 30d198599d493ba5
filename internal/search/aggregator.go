// Package search runs book lookups across the configured data sources and
// resolves ambiguous results down to a single candidate.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/wattanit/wcm/internal/api/googlebooks"
	"github.com/wattanit/wcm/internal/api/openlibrary"
	"github.com/wattanit/wcm/internal/logger"
	"github.com/wattanit/wcm/internal/models"
)

// ErrNotFound means no source returned any candidate for the query.
var ErrNotFound = errors.New("no books found")

// Source is a single book data source.
type Source interface {
	Name() models.Source
	Search(ctx context.Context, query models.SearchQuery) ([]models.BookCandidate, error)
}

// GoogleSource adapts the Google Books client to the Source interface.
type GoogleSource struct {
	Client *googlebooks.Client
}

// Name returns the source tag
func (s *GoogleSource) Name() models.Source { return models.SourceGoogleBooks }

// Search runs the query against the volumes API
func (s *GoogleSource) Search(ctx context.Context, query models.SearchQuery) ([]models.BookCandidate, error) {
	var resp *googlebooks.SearchResponse
	var err error
	if query.ByISBN() {
		resp, err = s.Client.SearchByISBN(ctx, query.ISBN)
	} else {
		resp, err = s.Client.SearchByTitleAuthor(ctx, query.Title, query.Author)
	}
	if err != nil {
		return nil, err
	}

	candidates := make([]models.BookCandidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.VolumeInfo.Title == "" {
			continue
		}
		candidates = append(candidates, item.Candidate())
	}
	return candidates, nil
}

// OpenLibrarySource adapts the Open Library client to the Source interface.
type OpenLibrarySource struct {
	Client *openlibrary.Client
}

// Name returns the source tag
func (s *OpenLibrarySource) Name() models.Source { return models.SourceOpenLibrary }

// Search runs the query against the search API
func (s *OpenLibrarySource) Search(ctx context.Context, query models.SearchQuery) ([]models.BookCandidate, error) {
	var resp *openlibrary.SearchResponse
	var err error
	if query.ByISBN() {
		resp, err = s.Client.SearchByISBN(ctx, query.ISBN)
	} else {
		resp, err = s.Client.SearchByTitleAuthor(ctx, query.Title, query.Author)
	}
	if err != nil {
		return nil, err
	}

	candidates := make([]models.BookCandidate, 0, len(resp.Docs))
	for _, doc := range resp.Docs {
		if doc.Title == "" {
			continue
		}
		candidates = append(candidates, doc.Candidate())
	}
	return candidates, nil
}

// Aggregator queries the primary source first and falls back to the secondary
// source only when the primary fails or comes back empty.
type Aggregator struct {
	primary    Source
	fallback   Source
	maxResults int
	logger     *logger.Logger
}

// NewAggregator creates an aggregator over a primary and a fallback source
func NewAggregator(primary, fallback Source, maxResults int) *Aggregator {
	log := logger.Get().With().
		Str("component", "search_aggregator").
		Logger()

	if maxResults <= 0 {
		maxResults = 5
	}
	return &Aggregator{
		primary:    primary,
		fallback:   fallback,
		maxResults: maxResults,
		logger:     &logger.Logger{Logger: log},
	}
}

// Search runs the query through the source chain. A primary hit skips the
// fallback entirely; the fallback is consulted at most once. Results are
// capped at the configured maximum.
func (a *Aggregator) Search(ctx context.Context, query models.SearchQuery) ([]models.BookCandidate, error) {
	candidates, err := a.primary.Search(ctx, query)
	if err != nil {
		a.logger.Warn("Primary source failed, trying fallback", map[string]interface{}{
			"source": string(a.primary.Name()),
			"error":  err.Error(),
		})
	} else if len(candidates) > 0 {
		return a.cap(candidates), nil
	} else {
		a.logger.Info("Primary source returned no results, trying fallback", map[string]interface{}{
			"source": string(a.primary.Name()),
			"query":  query.String(),
		})
	}

	candidates, err = a.fallback.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("all sources failed: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNotFound, query.String())
	}
	return a.cap(candidates), nil
}

func (a *Aggregator) cap(candidates []models.BookCandidate) []models.BookCandidate {
	if len(candidates) > a.maxResults {
		return candidates[:a.maxResults]
	}
	return candidates
}
