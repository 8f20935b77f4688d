package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const openLibraryBase = "https://openlibrary.org"

// OpenLibrary fetches book metadata from openlibrary.org by ISBN.
type OpenLibrary struct {
	baseURL string
	hc      *http.Client
}

// NewOpenLibrary creates an Open Library client. An empty baseURL uses
// the public endpoint.
func NewOpenLibrary(baseURL string, timeout time.Duration) *OpenLibrary {
	if baseURL == "" {
		baseURL = openLibraryBase
	}
	return &OpenLibrary{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      newHTTPClient(timeout),
	}
}

// Name implements Service.
func (s *OpenLibrary) Name() string { return "openlibrary" }

// openLibraryBook mirrors the /isbn/{isbn}.json response. The
// description field is either a plain string or a typed object with a
// value field, so it is decoded lazily.
type openLibraryBook struct {
	Title       string          `json:"title"`
	Publishers  []string        `json:"publishers"`
	Description json.RawMessage `json:"description"`
}

// Lookup implements Service.
func (s *OpenLibrary) Lookup(ctx context.Context, isbn string) (Metadata, error) {
	url := fmt.Sprintf("%s/isbn/%s.json", s.baseURL, isbn)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("openlibrary request: %w", err)
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("openlibrary fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Unknown ISBNs come back 404; treat any non-200 as a miss.
		return Metadata{}, nil
	}

	var book openLibraryBook
	if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
		return Metadata{}, fmt.Errorf("openlibrary decode: %w", err)
	}

	return Metadata{
		Title:     book.Title,
		Publisher: strings.Join(book.Publishers, ", "),
		Summary:   decodeDescription(book.Description),
	}, nil
}

// decodeDescription unwraps Open Library's two description shapes.
func decodeDescription(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}
	var typed struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &typed); err == nil {
		return typed.Value
	}
	return ""
}
