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

const upcItemDBBase = "https://api.upcitemdb.com"

// UPCItemDB resolves general retail barcodes through the UPCitemdb
// trial API. For books the brand field doubles as the publisher, and
// the product category becomes the keyword seed. The API never carries
// a summary.
type UPCItemDB struct {
	baseURL string
	hc      *http.Client
}

// NewUPCItemDB creates a UPCitemdb client. An empty baseURL uses the
// public trial endpoint.
func NewUPCItemDB(baseURL string, timeout time.Duration) *UPCItemDB {
	if baseURL == "" {
		baseURL = upcItemDBBase
	}
	return &UPCItemDB{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      newHTTPClient(timeout),
	}
}

// Name implements Service.
func (s *UPCItemDB) Name() string { return "upcitemdb" }

type upcItemDBResponse struct {
	Code  string `json:"code"`
	Items []struct {
		Title    string `json:"title"`
		Brand    string `json:"brand"`
		Category string `json:"category"`
	} `json:"items"`
}

// Lookup implements Service.
func (s *UPCItemDB) Lookup(ctx context.Context, upc string) (Metadata, error) {
	u := fmt.Sprintf("%s/prod/trial/lookup?upc=%s", s.baseURL, url.QueryEscape(strings.TrimSpace(upc)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("upcitemdb request: %w", err)
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("upcitemdb fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Metadata{}, fmt.Errorf("upcitemdb status %d for %s", resp.StatusCode, upc)
	}

	var out upcItemDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Metadata{}, fmt.Errorf("upcitemdb decode: %w", err)
	}
	if out.Code != "OK" || len(out.Items) == 0 {
		return Metadata{}, nil
	}

	item := out.Items[0]
	return Metadata{
		Title:     item.Title,
		Author:    item.Brand,
		Publisher: item.Brand,
		Keywords:  item.Category,
	}, nil
}
