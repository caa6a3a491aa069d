package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource_FetchRoster(t *testing.T) {
	// GIVEN: An HR endpoint requiring a bearer token
	// WHEN: Fetching with the right token
	// THEN: The JSON array decodes into roster records

	records := []RosterRecord{
		{Email: "alice@example.com", Name: "Alice", CostCenters: []string{"hq"}},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(records)
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL, "secret")
	got, err := src.FetchRoster(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records, got)

	// Wrong token surfaces the HTTP status.
	src = NewHTTPSource(server.URL, "wrong")
	_, err = src.FetchRoster(context.Background())
	assert.Error(t, err)
}

func TestFileSource_FetchRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`[{"email":"bob@example.com","name":"Bob","costCenters":["ops"]}]`), 0o644))

	src := &FileSource{Path: path}
	got, err := src.FetchRoster(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bob@example.com", got[0].Email)
	assert.Equal(t, []string{"ops"}, got[0].CostCenters)

	src = &FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}
	_, err = src.FetchRoster(context.Background())
	assert.Error(t, err)
}
