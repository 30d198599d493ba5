// Package catalog drives the add-book pipeline: search, ambiguity
// resolution, synopsis and category enrichment, confirmation, and the final
// write to the collection store.
package catalog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wattanit/wcm/internal/api/baserow"
	"github.com/wattanit/wcm/internal/llm"
	"github.com/wattanit/wcm/internal/logger"
	"github.com/wattanit/wcm/internal/models"
	"github.com/wattanit/wcm/internal/search"
)

// ErrDeclined means the user answered the confirmation prompt with anything
// other than an explicit yes. Nothing was written.
var ErrDeclined = errors.New("not confirmed")

// Searcher finds candidates for a query.
type Searcher interface {
	Search(ctx context.Context, query models.SearchQuery) ([]models.BookCandidate, error)
}

// Store is the collection database the pipeline writes into.
type Store interface {
	FetchCategories(ctx context.Context) ([]baserow.Category, error)
	CreateMediaRow(ctx context.Context, row baserow.MediaRow) (*baserow.CreatedRow, error)
	UploadFileViaURL(ctx context.Context, sourceURL string) (*baserow.FileRef, error)
	UploadFile(ctx context.Context, data []byte, filename string) (*baserow.FileRef, error)
	AttachCover(ctx context.Context, rowID int64, file baserow.FileRef) error
}

// Enricher augments a book's descriptive text before synopsis generation.
type Enricher interface {
	EnrichBookInfo(ctx context.Context, title, author, description string) string
}

// Options tunes the pipeline thresholds.
type Options struct {
	// MinSynopsisWords is the description length below which a synopsis is
	// generated instead of stored verbatim.
	MinSynopsisWords int
	// TargetSynopsisWords is the length asked of the generator.
	TargetSynopsisWords int
}

// Service runs the add-book pipeline.
type Service struct {
	searcher Searcher
	store    Store
	provider llm.Provider
	enricher Enricher
	opts     Options

	in  *bufio.Reader
	out io.Writer

	// coverClient downloads cover images when the store cannot fetch the
	// URL itself.
	coverClient *http.Client

	logger *logger.Logger
}

// NewService wires the pipeline. in and out carry the interactive prompts;
// pass os.Stdin and os.Stdout outside of tests.
func NewService(searcher Searcher, store Store, provider llm.Provider, enricher Enricher, opts Options, in io.Reader, out io.Writer) *Service {
	log := logger.Get().With().
		Str("component", "catalog_service").
		Logger()

	if opts.MinSynopsisWords <= 0 {
		opts.MinSynopsisWords = 50
	}
	if opts.TargetSynopsisWords <= 0 {
		opts.TargetSynopsisWords = 200
	}
	return &Service{
		searcher: searcher,
		store:    store,
		provider: provider,
		enricher: enricher,
		opts:     opts,
		in:       bufio.NewReader(in),
		out:      out,
		coverClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: &logger.Logger{Logger: log},
	}
}

// AddBook runs the full pipeline for one book. The row is created only after
// the user confirms; a cover attachment failure after that point is reported
// but never rolls the row back.
func (s *Service) AddBook(ctx context.Context, query models.SearchQuery, mediaType models.MediaType) error {
	fmt.Fprintf(s.out, "Searching for %s...\n", query.String())

	candidates, err := s.searcher.Search(ctx, query)
	if err != nil {
		return err
	}

	book, err := search.SelectCandidate(candidates, s.in, s.out)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "\nSelected: %s by %s (%s)\n", book.FullTitle(), book.AuthorLine(), book.Source.DisplayName())

	synopsis, err := s.resolveSynopsis(ctx, book)
	if err != nil {
		return err
	}

	selections, err := s.resolveCategories(ctx, book, synopsis)
	if err != nil {
		return err
	}

	record := models.MediaRecord{
		Title:      book.FullTitle(),
		Author:     book.AuthorLine(),
		ISBN:       book.BestISBN(),
		Synopsis:   synopsis,
		Categories: selections,
		MediaType:  mediaType,
		CoverURL:   book.CoverURL,
	}

	s.printSummary(record)

	fmt.Fprint(s.out, "\nAdd this book to the collection? [y/N]: ")
	answer, err := s.readLine()
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !Affirmative(answer) {
		fmt.Fprintln(s.out, "Cancelled, nothing was added.")
		return ErrDeclined
	}

	created, err := s.store.CreateMediaRow(ctx, baserow.MediaRow{
		Title:     record.Title,
		Author:    record.Author,
		ISBN:      record.ISBN,
		Synopsis:  record.Synopsis,
		Category:  record.CategoryIDs(),
		MediaType: string(record.MediaType),
	})
	if err != nil {
		return fmt.Errorf("failed to create row: %w", err)
	}
	fmt.Fprintf(s.out, "\nAdded %q (row %d).\n", record.Title, created.ID)

	if record.CoverURL != "" {
		if err := s.attachCover(ctx, created.ID, record.CoverURL); err != nil {
			s.logger.Warn("Cover attachment failed", map[string]interface{}{
				"row_id": created.ID,
				"error":  err.Error(),
			})
			fmt.Fprintf(s.out, "Warning: the row was created but the cover could not be attached: %v\n", err)
		} else {
			fmt.Fprintln(s.out, "Cover attached.")
		}
	}
	return nil
}

// resolveSynopsis keeps a substantial sourced description verbatim and
// generates a fresh synopsis otherwise.
func (s *Service) resolveSynopsis(ctx context.Context, book models.BookCandidate) (string, error) {
	if book.WordCount() >= s.opts.MinSynopsisWords {
		s.logger.Debug("Using sourced description as synopsis", map[string]interface{}{
			"words": book.WordCount(),
		})
		return strings.TrimSpace(book.Description), nil
	}

	fmt.Fprintf(s.out, "Description is short (%d words), generating a synopsis...\n", book.WordCount())

	sourceInfo := s.enricher.EnrichBookInfo(ctx, book.FullTitle(), book.AuthorLine(), book.Description)
	return llm.GenerateSynopsis(ctx, s.provider, book.FullTitle(), book.AuthorLine(), sourceInfo, s.opts.TargetSynopsisWords)
}

// resolveCategories fetches the category table once, asks the backend to
// choose from it, and maps the validated labels back to row IDs.
func (s *Service) resolveCategories(ctx context.Context, book models.BookCandidate, synopsis string) ([]models.CategorySelection, error) {
	categories, err := s.store.FetchCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	allowed := make([]string, 0, len(categories))
	for _, c := range categories {
		if name := c.Name(); name != "" {
			allowed = append(allowed, name)
		}
	}

	fmt.Fprintln(s.out, "Selecting categories...")
	names, err := llm.SelectCategories(ctx, s.provider, book.FullTitle(), book.AuthorLine(), synopsis, allowed)
	if err != nil {
		return nil, err
	}

	ids, missing := baserow.FindCategoryIDs(names, categories)
	if len(missing) > 0 {
		return nil, fmt.Errorf("categories not found in store: %s", strings.Join(missing, ", "))
	}

	selections := make([]models.CategorySelection, len(names))
	for i, name := range names {
		selections[i] = models.CategorySelection{ID: ids[i], Name: name}
	}
	return selections, nil
}

// attachCover uploads the cover image and patches it onto the row. Upload by
// URL is tried first; if the store cannot fetch the URL the image is
// downloaded locally and uploaded as a file.
func (s *Service) attachCover(ctx context.Context, rowID int64, coverURL string) error {
	file, err := s.store.UploadFileViaURL(ctx, coverURL)
	if err != nil {
		s.logger.Debug("Upload via URL failed, downloading cover locally", map[string]interface{}{
			"error": err.Error(),
		})
		data, dlErr := s.downloadCover(ctx, coverURL)
		if dlErr != nil {
			return fmt.Errorf("upload via URL failed (%v) and download failed: %w", err, dlErr)
		}
		file, err = s.store.UploadFile(ctx, data, uuid.NewString()+".jpg")
		if err != nil {
			return fmt.Errorf("failed to upload cover: %w", err)
		}
	}
	return s.store.AttachCover(ctx, rowID, *file)
}

func (s *Service) downloadCover(ctx context.Context, coverURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.coverClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cover download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cover download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *Service) printSummary(record models.MediaRecord) {
	fmt.Fprintln(s.out, "\n--- Summary ---")
	fmt.Fprintf(s.out, "Title:      %s\n", record.Title)
	fmt.Fprintf(s.out, "Author:     %s\n", record.Author)
	if record.ISBN != "" {
		fmt.Fprintf(s.out, "ISBN:       %s\n", record.ISBN)
	}
	fmt.Fprintf(s.out, "Media type: %s\n", record.MediaType)
	fmt.Fprintf(s.out, "Categories: %s\n", strings.Join(record.CategoryNames(), ", "))
	if record.CoverURL != "" {
		fmt.Fprintf(s.out, "Cover:      %s\n", record.CoverURL)
	}
	fmt.Fprintf(s.out, "Synopsis:   %s\n", record.Synopsis)
}

func (s *Service) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
