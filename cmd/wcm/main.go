// wcm adds books to a personal Baserow collection. It looks a book up in
// Google Books (falling back to Open Library), resolves ambiguous matches
// interactively, enriches the record with LLM-selected categories and a
// synopsis, and writes the confirmed row with its cover image.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/wattanit/wcm/internal/api/baserow"
	"github.com/wattanit/wcm/internal/api/googlebooks"
	"github.com/wattanit/wcm/internal/api/openlibrary"
	"github.com/wattanit/wcm/internal/api/websearch"
	"github.com/wattanit/wcm/internal/catalog"
	"github.com/wattanit/wcm/internal/config"
	"github.com/wattanit/wcm/internal/llm"
	"github.com/wattanit/wcm/internal/logger"
	"github.com/wattanit/wcm/internal/models"
	"github.com/wattanit/wcm/internal/search"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	logger.Setup(logger.Config{
		Level:      "info",
		Format:     logger.FormatConsole,
		TimeFormat: time.RFC3339,
	})
}

func main() {
	app := &cli.App{
		Name:    "wcm",
		Usage:   "Add books to your Baserow collection",
		Version: fmt.Sprintf("%s (%s) %s", version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				Value:   "config.yaml",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Look up a book and add it to the collection",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "isbn",
						Usage: "Look up by ISBN (10 or 13 digits, hyphens allowed)",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Look up by title (requires --author)",
					},
					&cli.StringFlag{
						Name:  "author",
						Usage: "Author for a title lookup",
					},
					&cli.BoolFlag{
						Name:  "ebook",
						Usage: "Record the book as an ebook instead of a physical copy",
					},
				},
				Action: addBook,
			},
			{
				Name:   "categories",
				Usage:  "List the categories available in the collection",
				Action: listCategories,
			},
			{
				Name:   "test-connection",
				Usage:  "Verify the Baserow token and table configuration",
				Action: testConnection,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		if errors.Is(err, catalog.ErrDeclined) || errors.Is(err, search.ErrCancelled) {
			os.Exit(0)
		}
		logger.Get().Error("Error running application", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if c.Bool("verbose") {
		cfg.App.Verbose = true
	}

	level := cfg.Logging.Level
	if cfg.App.Verbose {
		level = "debug"
	}
	logger.ForceSetup(logger.Config{
		Level:      level,
		Format:     logger.ParseLogFormat(cfg.Logging.Format),
		TimeFormat: time.RFC3339,
	})
	return cfg, nil
}

func newStore(cfg *config.Config) *baserow.Client {
	return baserow.NewClient(baserow.Config{
		APIToken:          cfg.Baserow.APIToken,
		BaseURL:           cfg.Baserow.BaseURL,
		DatabaseID:        cfg.Baserow.DatabaseID,
		MediaTableID:      cfg.Baserow.MediaTableID,
		CategoriesTableID: cfg.Baserow.CategoriesTableID,
	})
}

func addBook(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	query, err := buildQuery(c)
	if err != nil {
		return err
	}

	mediaType := models.MediaTypePhysical
	if c.Bool("ebook") {
		mediaType = models.MediaTypeEbook
	}

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return err
	}

	aggregator := search.NewAggregator(
		&search.GoogleSource{Client: googlebooks.NewClient(cfg.GoogleBooks.BaseURL, cfg.GoogleBooks.APIKey)},
		&search.OpenLibrarySource{Client: openlibrary.NewClient(cfg.OpenLibrary.BaseURL)},
		cfg.App.MaxSearchResults,
	)

	service := catalog.NewService(
		aggregator,
		newStore(cfg),
		provider,
		websearch.NewClient(),
		catalog.Options{
			MinSynopsisWords:    cfg.App.MinSynopsisWords,
			TargetSynopsisWords: cfg.App.TargetSynopsisWords,
		},
		os.Stdin,
		os.Stdout,
	)

	return service.AddBook(context.Background(), query, mediaType)
}

func buildQuery(c *cli.Context) (models.SearchQuery, error) {
	isbn := c.String("isbn")
	title := c.String("title")
	author := c.String("author")

	switch {
	case isbn != "" && (title != "" || author != ""):
		return models.SearchQuery{}, fmt.Errorf("use either --isbn or --title/--author, not both")
	case isbn != "":
		return models.NewISBNQuery(isbn)
	case title != "" || author != "":
		return models.NewTitleAuthorQuery(title, author)
	default:
		return models.SearchQuery{}, fmt.Errorf("either --isbn or --title and --author are required")
	}
}

func listCategories(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	categories, err := newStore(cfg).FetchCategories(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("%d categories:\n", len(categories))
	for _, cat := range categories {
		if desc := cat.Description(); desc != "" {
			fmt.Printf("  %s - %s\n", cat.Name(), desc)
		} else {
			fmt.Printf("  %s\n", cat.Name())
		}
	}
	return nil
}

func testConnection(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if err := newStore(cfg).TestConnection(context.Background()); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	fmt.Println("Baserow connection OK.")
	return nil
}
