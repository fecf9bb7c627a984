package openalex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "github.com/scribelab/paperforge/internal/logger"
)

func TestSearchWorks(t *testing.T) {
	var gotQuery, gotMailto, gotPerPage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/works", r.URL.Path)
		gotQuery = r.URL.Query().Get("search")
		gotMailto = r.URL.Query().Get("mailto")
		gotPerPage = r.URL.Query().Get("per-page")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"meta":{"count":1},"results":[{"id":"W1","title":"First","publication_year":2018}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "dev@example.org", applogger.New())
	got, err := client.SearchWorks(context.Background(), "quantum dots", 1, 25)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "W1", got[0].ID)
	assert.Equal(t, "First", got[0].Title)
	assert.Equal(t, 2018, got[0].PublicationYear)
	assert.Equal(t, "quantum dots", gotQuery)
	assert.Equal(t, "dev@example.org", gotMailto)
	assert.Equal(t, "25", gotPerPage)
}

func TestSearchWorksHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", applogger.New())
	_, err := client.SearchWorks(context.Background(), "anything", 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSearchWorksEmptyQuery(t *testing.T) {
	client := NewClient("http://unused", "", applogger.New())
	_, err := client.SearchWorks(context.Background(), "", 1, 10)
	require.Error(t, err)
}
