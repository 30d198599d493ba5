package openlibrary

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
		expectDocs  int
	}{
		{
			name: "successful response",
			setupServer: func() *httptest.Server {
				handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "/search.json", r.URL.Path)
					assert.Equal(t, "9780345391803", r.URL.Query().Get("isbn"))
					assert.NotEmpty(t, r.Header.Get("User-Agent"))

					response := SearchResponse{
						NumFound: 1,
						Docs: []Doc{
							{
								Key:        "/works/OL27448W",
								Title:      "The Lord of the Rings",
								AuthorName: []string{"J.R.R. Tolkien"},
								CoverI:     9255566,
							},
						},
					}
					w.Header().Set("Content-Type", "application/json")
					json.NewEncoder(w).Encode(response)
				})
				return httptest.NewServer(handler)
			},
			expectDocs: 1,
		},
		{
			name: "server error",
			setupServer: func() *httptest.Server {
				handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusBadGateway)
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

			client := NewClient(server.URL)
			resp, err := client.SearchByISBN(context.Background(), "9780345391803")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, resp.Docs, tt.expectDocs)
			}
		})
	}
}

func TestSearchByTitleAuthorParams(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "The Hobbit", q.Get("title"))
		assert.Equal(t, "Tolkien", q.Get("author"))
		json.NewEncoder(w).Encode(SearchResponse{})
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.SearchByTitleAuthor(context.Background(), "The Hobbit", "Tolkien")
	require.NoError(t, err)
	assert.Empty(t, resp.Docs)
}

func TestDocHelpers(t *testing.T) {
	doc := Doc{
		Title:            "The Hobbit",
		AuthorName:       []string{"J.R.R. Tolkien"},
		ISBN:             []string{"0345391802", "9780345391803"},
		CoverI:           12345,
		FirstPublishYear: 1937,
		PublishYear:      []int{1937, 1994, 2001},
		Publisher:        []string{"Houghton Mifflin"},
		FirstSentence:    []string{"In a hole in the ground there lived a hobbit."},
	}

	isbn10, isbn13 := doc.BestISBN()
	assert.Equal(t, "0345391802", isbn10)
	assert.Equal(t, "9780345391803", isbn13)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/12345-L.jpg", doc.CoverURL())
	assert.Equal(t, 2001, doc.LatestPublishYear())

	c := doc.Candidate()
	assert.Equal(t, models.SourceOpenLibrary, c.Source)
	assert.Equal(t, "9780345391803", c.BestISBN())
	assert.Equal(t, "2001", c.PublishedDate)
	assert.Equal(t, "In a hole in the ground there lived a hobbit.", c.Description)
	assert.Equal(t, "Houghton Mifflin", c.Publisher)
}

func TestDocHelpersEmpty(t *testing.T) {
	doc := Doc{Title: "Bare"}
	assert.Empty(t, doc.CoverURL())
	assert.Zero(t, doc.LatestPublishYear())

	c := doc.Candidate()
	assert.Empty(t, c.Description)
	assert.Empty(t, c.PublishedDate)
	assert.Empty(t, c.BestISBN())
}
