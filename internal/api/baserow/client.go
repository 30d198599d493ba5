// Package baserow implements the destination-store client: category reads,
// media-row creation, and cover file attachment against the Baserow REST API.
package baserow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/wattanit/wcm/internal/logger"
)

var (
	// ErrAuthenticationFailed indicates the API token was rejected
	ErrAuthenticationFailed = fmt.Errorf("baserow authentication failed")
	// ErrTableNotFound indicates a configured table ID does not exist
	ErrTableNotFound = fmt.Errorf("baserow table not found")
)

// Config holds the Baserow connection settings
type Config struct {
	APIToken          string
	BaseURL           string
	DatabaseID        int64
	MediaTableID      int64
	CategoriesTableID int64
}

// Client is a client for the Baserow API
type Client struct {
	cfg    Config
	client *http.Client
	logger *logger.Logger
}

// NewClient creates a new Baserow client
func NewClient(cfg Config) *Client {
	log := logger.Get().With().
		Str("component", "baserow_client").
		Logger()

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: &logger.Logger{Logger: log},
	}
}

// Category is one row of the categories table. Field values are addressed by
// user field name because table layouts differ between installations.
type Category struct {
	ID     int64
	Fields map[string]interface{}
}

// categoryRow mirrors the wire format: id plus arbitrary named fields.
type categoryRow struct {
	ID int64 `json:"id"`
}

// UnmarshalJSON decodes the row ID and keeps every other field by name
func (c *Category) UnmarshalJSON(data []byte) error {
	var row categoryRow
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	delete(fields, "id")
	delete(fields, "order")

	c.ID = row.ID
	c.Fields = make(map[string]interface{}, len(fields))
	for k, v := range fields {
		var value interface{}
		if err := json.Unmarshal(v, &value); err != nil {
			return err
		}
		c.Fields[k] = value
	}
	return nil
}

// Name probes the common field names for the category label
func (c Category) Name() string {
	return c.stringField("Name", "name", "Category", "category")
}

// Description probes the common field names for the category description
func (c Category) Description() string {
	return c.stringField("Description", "description")
}

func (c Category) stringField(names ...string) string {
	for _, name := range names {
		if v, ok := c.Fields[name]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

type listResponse struct {
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []json.RawMessage `json:"results"`
}

// MediaRow is the field-name-addressed payload for a new media row
type MediaRow struct {
	Title     string  `json:"Title"`
	Author    string  `json:"Author"`
	ISBN      string  `json:"ISBN,omitempty"`
	Synopsis  string  `json:"Synopsis"`
	Category  []int64 `json:"Category"`
	Read      bool    `json:"Read"`
	Rating    int     `json:"Rating"`
	MediaType string  `json:"Media Type,omitempty"`
}

// CreatedRow is the response to a row-create call
type CreatedRow struct {
	ID int64 `json:"id"`
}

// FileRef references an uploaded user file
type FileRef struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

func (c *Client) rowsURL(tableID int64) string {
	return fmt.Sprintf("%s/api/database/rows/table/%d/?user_field_names=true", c.cfg.BaseURL, tableID)
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	req.Header.Set("Authorization", "Token "+c.cfg.APIToken)
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// FetchCategories reads the complete category set from the categories table.
// A single page is requested; the admissible label set is expected to fit.
func (c *Client) FetchCategories(ctx context.Context) ([]Category, error) {
	log := c.logger.With().Int64("table_id", c.cfg.CategoriesTableID).Logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rowsURL(c.cfg.CategoriesTableID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	log.Debug().Msg("Fetching categories")
	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrAuthenticationFailed
	case http.StatusNotFound:
		return nil, ErrTableNotFound
	default:
		return nil, fmt.Errorf("baserow returned status %d: %s", status, string(body))
	}

	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	categories := make([]Category, 0, len(list.Results))
	for _, raw := range list.Results {
		var cat Category
		if err := json.Unmarshal(raw, &cat); err != nil {
			return nil, fmt.Errorf("failed to decode category row: %w", err)
		}
		categories = append(categories, cat)
	}

	log.Info().Int("count", len(categories)).Msg("Fetched categories")
	return categories, nil
}

// CreateMediaRow creates a new row in the media table
func (c *Client) CreateMediaRow(ctx context.Context, row MediaRow) (*CreatedRow, error) {
	log := c.logger.With().
		Int64("table_id", c.cfg.MediaTableID).
		Str("title", row.Title).
		Logger()

	payload, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("failed to encode row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rowsURL(c.cfg.MediaTableID), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	log.Debug().Msg("Creating media row")
	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, ErrAuthenticationFailed
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("failed to create row: status %d: %s", status, string(body))
	}

	var created CreatedRow
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to decode create response: %w", err)
	}

	log.Info().Int64("row_id", created.ID).Msg("Created media row")
	return &created, nil
}

// AttachCover sets the created row's Cover field to the uploaded file. A
// failure here leaves the created row without a cover; the caller reports it
// and does not roll the create back.
func (c *Client) AttachCover(ctx context.Context, rowID int64, file FileRef) error {
	log := c.logger.With().Int64("row_id", rowID).Str("file", file.Name).Logger()

	payload, err := json.Marshal(map[string]interface{}{
		"Cover": []FileRef{{Name: file.Name}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode cover payload: %w", err)
	}

	u := fmt.Sprintf("%s/api/database/rows/table/%d/%d/?user_field_names=true", c.cfg.BaseURL, c.cfg.MediaTableID, rowID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	log.Debug().Msg("Attaching cover to row")
	status, body, err := c.do(req)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("failed to attach cover: status %d: %s", status, string(body))
	}

	log.Info().Msg("Attached cover")
	return nil
}

// UploadFileViaURL asks Baserow to fetch and store a file from a source URL
func (c *Client) UploadFileViaURL(ctx context.Context, sourceURL string) (*FileRef, error) {
	log := c.logger.With().Str("url", sourceURL).Logger()

	payload, err := json.Marshal(map[string]string{"url": sourceURL})
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	u := c.cfg.BaseURL + "/api/user-files/upload-via-url/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	log.Debug().Msg("Uploading file via URL")
	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, ErrAuthenticationFailed
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("failed to upload file via URL: status %d: %s", status, string(body))
	}

	var file FileRef
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	log.Info().Str("file", file.Name).Msg("Uploaded file via URL")
	return &file, nil
}

// UploadFile uploads file bytes as a multipart form. Fallback for stores
// where upload-via-url is unavailable.
func (c *Client) UploadFile(ctx context.Context, data []byte, filename string) (*FileRef, error) {
	log := c.logger.With().Str("filename", filename).Logger()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	u := c.cfg.BaseURL + "/api/user-files/upload-file/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	log.Debug().Int("bytes", len(data)).Msg("Uploading file")
	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, ErrAuthenticationFailed
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("failed to upload file: status %d: %s", status, string(body))
	}

	var file FileRef
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	log.Info().Str("file", file.Name).Msg("Uploaded file")
	return &file, nil
}

// TestConnection verifies that the token and categories table are reachable
func (c *Client) TestConnection(ctx context.Context) error {
	log := c.logger.With().Int64("table_id", c.cfg.CategoriesTableID).Logger()

	u := c.rowsURL(c.cfg.CategoriesTableID) + "&size=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	log.Debug().Msg("Testing Baserow connection")
	status, body, err := c.do(req)
	if err != nil {
		return err
	}

	switch status {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return ErrAuthenticationFailed
	case http.StatusNotFound:
		return ErrTableNotFound
	default:
		return fmt.Errorf("baserow returned status %d: %s", status, string(body))
	}
}

// FindCategoryIDs maps label names (case-insensitive) onto rows of the
// fetched category set. Names without a match are returned separately; the
// caller decides whether that is fatal.
func FindCategoryIDs(names []string, categories []Category) (ids []int64, missing []string) {
	for _, name := range names {
		found := false
		for _, cat := range categories {
			if strings.EqualFold(cat.Name(), name) {
				ids = append(ids, cat.ID)
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	return ids, missing
}
