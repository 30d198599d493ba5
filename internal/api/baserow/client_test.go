package baserow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(serverURL string) *Client {
	return NewClient(Config{
		APIToken:          "test-token",
		BaseURL:           serverURL,
		DatabaseID:        1,
		MediaTableID:      100,
		CategoriesTableID: 200,
	})
}

func TestFetchCategories(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expectError error
		expectCount int
	}{
		{
			name:   "successful response",
			status: http.StatusOK,
			body: `{
				"count": 2,
				"next": null,
				"previous": null,
				"results": [
					{"id": 1, "order": "1.0", "Name": "Fantasy", "Description": "Fantasy books"},
					{"id": 2, "order": "2.0", "Name": "Science Fiction"}
				]
			}`,
			expectCount: 2,
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			body:        `{}`,
			expectError: ErrAuthenticationFailed,
		},
		{
			name:        "table missing",
			status:      http.StatusNotFound,
			body:        `{}`,
			expectError: ErrTableNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/database/rows/table/200/", r.URL.Path)
				assert.Equal(t, "true", r.URL.Query().Get("user_field_names"))
				assert.Equal(t, "Token test-token", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			categories, err := testClient(server.URL).FetchCategories(context.Background())

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			require.Len(t, categories, tt.expectCount)
			assert.Equal(t, int64(1), categories[0].ID)
			assert.Equal(t, "Fantasy", categories[0].Name())
			assert.Equal(t, "Fantasy books", categories[0].Description())
			assert.Equal(t, "Science Fiction", categories[1].Name())
			assert.Empty(t, categories[1].Description())
		})
	}
}

func TestCategoryFieldProbing(t *testing.T) {
	var cat Category
	require.NoError(t, json.Unmarshal([]byte(`{"id": 7, "category": "History"}`), &cat))
	assert.Equal(t, "History", cat.Name())

	require.NoError(t, json.Unmarshal([]byte(`{"id": 8, "Color": "blue"}`), &cat))
	assert.Empty(t, cat.Name())
}

func TestCreateMediaRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/database/rows/table/100/", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "The Lord of the Rings", payload["Title"])
		assert.Equal(t, "J.R.R. Tolkien", payload["Author"])
		assert.Equal(t, "Physical", payload["Media Type"])
		assert.Len(t, payload["Category"], 3)

		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"id": 42}`)
	}))
	defer server.Close()

	created, err := testClient(server.URL).CreateMediaRow(context.Background(), MediaRow{
		Title:     "The Lord of the Rings",
		Author:    "J.R.R. Tolkien",
		ISBN:      "9780345391803",
		Synopsis:  "An epic quest.",
		Category:  []int64{1, 2, 3},
		MediaType: "Physical",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
}

func TestCreateMediaRowFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "ERROR_REQUEST_BODY_VALIDATION"}`)
	}))
	defer server.Close()

	_, err := testClient(server.URL).CreateMediaRow(context.Background(), MediaRow{Title: "x"})
	require.Error(t, err)
	// The store's error body is surfaced verbatim.
	assert.Contains(t, err.Error(), "ERROR_REQUEST_BODY_VALIDATION")
}

func TestAttachCover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/database/rows/table/100/42/", r.URL.Path)

		var payload map[string][]map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload["Cover"], 1)
		assert.Equal(t, "abc123.jpg", payload["Cover"][0]["name"])

		fmt.Fprint(w, `{"id": 42}`)
	}))
	defer server.Close()

	err := testClient(server.URL).AttachCover(context.Background(), 42, FileRef{Name: "abc123.jpg"})
	assert.NoError(t, err)
}

func TestUploadFileViaURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user-files/upload-via-url/", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "https://example.com/cover.jpg", payload["url"])

		fmt.Fprint(w, `{"name": "uploaded_abc.jpg", "url": "https://cdn.example.com/abc.jpg"}`)
	}))
	defer server.Close()

	file, err := testClient(server.URL).UploadFileViaURL(context.Background(), "https://example.com/cover.jpg")
	require.NoError(t, err)
	assert.Equal(t, "uploaded_abc.jpg", file.Name)
}

func TestUploadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user-files/upload-file/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "cover.jpg", header.Filename)

		fmt.Fprint(w, `{"name": "uploaded_cover.jpg"}`)
	}))
	defer server.Close()

	file, err := testClient(server.URL).UploadFile(context.Background(), []byte{0xFF, 0xD8}, "cover.jpg")
	require.NoError(t, err)
	assert.Equal(t, "uploaded_cover.jpg", file.Name)
}

func TestTestConnection(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		expectError error
	}{
		{name: "ok", status: http.StatusOK},
		{name: "bad token", status: http.StatusUnauthorized, expectError: ErrAuthenticationFailed},
		{name: "bad table", status: http.StatusNotFound, expectError: ErrTableNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "1", r.URL.Query().Get("size"))
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{}`)
			}))
			defer server.Close()

			err := testClient(server.URL).TestConnection(context.Background())
			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFindCategoryIDs(t *testing.T) {
	categories := []Category{
		{ID: 1, Fields: map[string]interface{}{"Name": "Fantasy"}},
		{ID: 2, Fields: map[string]interface{}{"Name": "Science Fiction"}},
		{ID: 3, Fields: map[string]interface{}{"Name": "History"}},
	}

	ids, missing := FindCategoryIDs([]string{"fantasy", "History", "Cooking"}, categories)
	assert.Equal(t, []int64{1, 3}, ids)
	assert.Equal(t, []string{"Cooking"}, missing)

	ids, missing = FindCategoryIDs(nil, categories)
	assert.Empty(t, ids)
	assert.Empty(t, missing)
}
