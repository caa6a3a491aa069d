/*
source.go - External roster sources

PURPOSE:
  Abstracts where the HR roster snapshot comes from. Production talks to
  the HR system's REST endpoint; local development and tests read a JSON
  file or a fixed in-memory slice.
*/
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// RosterSource produces a point-in-time snapshot of the external roster.
type RosterSource interface {
	FetchRoster(ctx context.Context) ([]RosterRecord, error)
}

// =============================================================================
// HTTP SOURCE
// =============================================================================

// HTTPSource fetches the roster from the HR system as a JSON array.
type HTTPSource struct {
	URL    string
	Token  string // optional bearer token
	Client *http.Client
}

// NewHTTPSource creates an HTTP roster source with a sane timeout.
func NewHTTPSource(url, token string) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPSource) FetchRoster(ctx context.Context) ([]RosterRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("roster request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("roster fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("roster fetch: HR system returned %s", resp.Status)
	}

	var records []RosterRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("roster decode: %w", err)
	}
	return records, nil
}

// =============================================================================
// FILE SOURCE
// =============================================================================

// FileSource reads the roster from a JSON file. Used for local
// development and demos.
type FileSource struct {
	Path string
}

func (s *FileSource) FetchRoster(_ context.Context) ([]RosterRecord, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("roster file: %w", err)
	}
	var records []RosterRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("roster file decode: %w", err)
	}
	return records, nil
}

// =============================================================================
// STATIC SOURCE
// =============================================================================

// StaticSource returns a fixed snapshot. Tests only.
type StaticSource struct {
	Records []RosterRecord
	Err     error
}

func (s *StaticSource) FetchRoster(_ context.Context) ([]RosterRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Records, nil
}
