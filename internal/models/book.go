// Package models holds the value types passed between the pipeline stages.
package models

import (
	"fmt"
	"strings"
)

// MediaType classifies how a book is held in the collection.
type MediaType string

const (
	MediaTypePhysical MediaType = "Physical"
	MediaTypeEbook    MediaType = "Ebook"
)

// Source tags where a candidate came from.
type Source string

const (
	SourceGoogleBooks Source = "google_books"
	SourceOpenLibrary Source = "open_library"
	SourceWebSearch   Source = "web_search"
)

// DisplayName returns a human-readable source name.
func (s Source) DisplayName() string {
	switch s {
	case SourceGoogleBooks:
		return "Google Books"
	case SourceOpenLibrary:
		return "Open Library"
	case SourceWebSearch:
		return "Web Search"
	default:
		return string(s)
	}
}

// SearchQuery is the canonical search request: either an ISBN or a
// title/author pair. Construct via NewISBNQuery or NewTitleAuthorQuery.
type SearchQuery struct {
	ISBN   string
	Title  string
	Author string
}

// NewISBNQuery builds a query for an ISBN lookup. Hyphens and spaces are
// stripped; ISBNs must be 10 or 13 digits long.
func NewISBNQuery(isbn string) (SearchQuery, error) {
	normalized := strings.ReplaceAll(isbn, "-", "")
	normalized = strings.ReplaceAll(normalized, " ", "")
	if len(normalized) != 10 && len(normalized) != 13 {
		return SearchQuery{}, fmt.Errorf("invalid ISBN: %q", isbn)
	}
	return SearchQuery{ISBN: normalized}, nil
}

// NewTitleAuthorQuery builds a query for a title/author search.
func NewTitleAuthorQuery(title, author string) (SearchQuery, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(author) == "" {
		return SearchQuery{}, fmt.Errorf("both title and author are required")
	}
	return SearchQuery{Title: strings.TrimSpace(title), Author: strings.TrimSpace(author)}, nil
}

// ByISBN reports whether this is an ISBN lookup.
func (q SearchQuery) ByISBN() bool {
	return q.ISBN != ""
}

func (q SearchQuery) String() string {
	if q.ByISBN() {
		return fmt.Sprintf("ISBN %s", q.ISBN)
	}
	return fmt.Sprintf("title %q, author %q", q.Title, q.Author)
}

// BookCandidate is one search result from a book data source. Candidates are
// never mutated after creation; exactly one survives ambiguity resolution.
type BookCandidate struct {
	Title         string
	Subtitle      string
	Authors       []string
	Description   string
	ISBN10        string
	ISBN13        string
	Publisher     string
	PublishedDate string
	PageCount     int
	CoverURL      string
	Categories    []string
	Source        Source
}

// FullTitle returns the title joined with its subtitle when present.
func (b BookCandidate) FullTitle() string {
	if b.Subtitle != "" {
		return b.Title + ": " + b.Subtitle
	}
	return b.Title
}

// AuthorLine returns the authors as a comma-separated line.
func (b BookCandidate) AuthorLine() string {
	if len(b.Authors) == 0 {
		return "Unknown Author"
	}
	return strings.Join(b.Authors, ", ")
}

// BestISBN prefers ISBN-13 over ISBN-10.
func (b BookCandidate) BestISBN() string {
	if b.ISBN13 != "" {
		return b.ISBN13
	}
	return b.ISBN10
}

// WordCount counts the words of the sourced description.
func (b BookCandidate) WordCount() int {
	return len(strings.Fields(b.Description))
}

// MediaRecord is the final composed row written to the destination store.
// Immutable once the confirmation gate passes.
type MediaRecord struct {
	Title       string
	Author      string
	ISBN        string
	Synopsis    string
	Categories  []CategorySelection
	MediaType   MediaType
	CoverURL    string
}

// CategorySelection pairs a resolved label with its destination row ID.
type CategorySelection struct {
	ID   int64
	Name string
}

// CategoryIDs returns the destination row IDs of the selected categories.
func (r MediaRecord) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(r.Categories))
	for _, c := range r.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// CategoryNames returns the display names of the selected categories.
func (r MediaRecord) CategoryNames() []string {
	names := make([]string, 0, len(r.Categories))
	for _, c := range r.Categories {
		names = append(names, c.Name)
	}
	return names
}
