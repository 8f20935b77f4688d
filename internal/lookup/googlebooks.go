package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const googleBooksBase = "https://www.googleapis.com/books/v1"

// GoogleBooks queries the Google Books volumes API by ISBN.
type GoogleBooks struct {
	baseURL string
	hc      *http.Client
}

// NewGoogleBooks creates a Google Books client. An empty baseURL uses
// the public endpoint.
func NewGoogleBooks(baseURL string, timeout time.Duration) *GoogleBooks {
	if baseURL == "" {
		baseURL = googleBooksBase
	}
	return &GoogleBooks{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      newHTTPClient(timeout),
	}
}

// Name implements Service.
func (s *GoogleBooks) Name() string { return "googlebooks" }

type googleBooksResponse struct {
	Items []struct {
		VolumeInfo struct {
			Title       string   `json:"title"`
			Authors     []string `json:"authors"`
			Publisher   string   `json:"publisher"`
			Description string   `json:"description"`
			Categories  []string `json:"categories"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Lookup implements Service. The first matching volume wins.
func (s *GoogleBooks) Lookup(ctx context.Context, isbn string) (Metadata, error) {
	u := fmt.Sprintf("%s/volumes?q=%s", s.baseURL, url.QueryEscape("isbn:"+isbn))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("googlebooks request: %w", err)
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("googlebooks fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Metadata{}, nil
	}

	var out googleBooksResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Metadata{}, fmt.Errorf("googlebooks decode: %w", err)
	}
	if len(out.Items) == 0 {
		return Metadata{}, nil
	}

	info := out.Items[0].VolumeInfo
	return Metadata{
		Title:     info.Title,
		Author:    strings.Join(info.Authors, ", "),
		Publisher: info.Publisher,
		Summary:   info.Description,
		Keywords:  strings.Join(info.Categories, ", "),
	}, nil
}
