package googlebooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wattanit/wcm/internal/models"
)

func TestSearchByISBN(t *testing.T) {
	tests := []struct {
		name        string
		setupServer func() *httptest.Server
		expectError bool
		expectItems int
	}{
		{
			name: "successful response",
			setupServer: func() *httptest.Server {
				handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "/volumes", r.URL.Path)
					assert.Equal(t, "isbn:9780345391803", r.URL.Query().Get("q"))

					response := SearchResponse{
						Kind:       "books#volumes",
						TotalItems: 1,
						Items: []Volume{
							{
								ID: "vol1",
								VolumeInfo: VolumeInfo{
									Title:   "The Lord of the Rings",
									Authors: []string{"J.R.R. Tolkien"},
									IndustryIdentifiers: []IndustryIdentifier{
										{Type: "ISBN_13", Identifier: "9780345391803"},
									},
								},
							},
						},
					}
					w.Header().Set("Content-Type", "application/json")
					json.NewEncoder(w).Encode(response)
				})
				return httptest.NewServer(handler)
			},
			expectItems: 1,
		},
		{
			name: "server error",
			setupServer: func() *httptest.Server {
				handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
				})
				return httptest.NewServer(handler)
			},
			expectError: true,
		},
		{
			name: "malformed body",
			setupServer: func() *httptest.Server {
				handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte("not json"))
				})
				return httptest.NewServer(handler)
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := tt.setupServer()
			defer server.Close()

			client := NewClient(server.URL, "")
			resp, err := client.SearchByISBN(context.Background(), "9780345391803")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, resp.Items, tt.expectItems)
			}
		})
	}
}

func TestSearchByTitleAuthorQueryAndKey(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, `intitle:"The Hobbit" inauthor:"Tolkien"`, q.Get("q"))
		assert.Equal(t, "secret", q.Get("key"))
		json.NewEncoder(w).Encode(SearchResponse{Kind: "books#volumes"})
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	client := NewClient(server.URL, "secret")
	resp, err := client.SearchByTitleAuthor(context.Background(), "The Hobbit", "Tolkien")
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestVolumeHelpers(t *testing.T) {
	v := Volume{
		VolumeInfo: VolumeInfo{
			Title:    "Dune",
			Subtitle: "Deluxe Edition",
			Authors:  []string{"Frank Herbert"},
			IndustryIdentifiers: []IndustryIdentifier{
				{Type: "ISBN_10", Identifier: "0441172717"},
				{Type: "ISBN_13", Identifier: "9780441172719"},
			},
			ImageLinks: &ImageLinks{
				Thumbnail: "http://example.com/thumb.jpg",
				Large:     "http://example.com/large.jpg",
			},
		},
	}

	assert.Equal(t, "9780441172719", v.ISBN13())
	assert.Equal(t, "0441172717", v.ISBN10())
	// Larger image wins.
	assert.Equal(t, "http://example.com/large.jpg", v.BestCoverURL())

	c := v.Candidate()
	assert.Equal(t, "Dune: Deluxe Edition", c.FullTitle())
	assert.Equal(t, models.SourceGoogleBooks, c.Source)
	assert.Equal(t, "9780441172719", c.BestISBN())

	assert.Empty(t, Volume{}.BestCoverURL())
	assert.Empty(t, Volume{}.ISBN13())
}
