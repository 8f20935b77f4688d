// Package lookup contains the HTTP clients for the external book-data
// services: EANSearch (code resolution), Open Library, Google Books,
// and UPCitemdb (metadata). Each client is a thin wrapper over a REST
// endpoint; a miss is an empty Metadata with a nil error, a transport
// or decoding failure is an error.
package lookup

import (
	"context"
	"net/http"
	"time"
)

// DefaultTimeout bounds every upstream request.
const DefaultTimeout = 5 * time.Second

// Metadata is the partial bibliographic record a lookup service can
// return. Empty fields mean the service had no data for them.
type Metadata struct {
	Title     string
	Author    string
	Publisher string
	Summary   string
	Keywords  string
}

// IsZero reports whether no field is populated.
func (m Metadata) IsZero() bool {
	return m == Metadata{}
}

// Service is a single external metadata source.
type Service interface {
	// Name identifies the service in logs.
	Name() string
	// Lookup fetches metadata for an ISBN or UPC code.
	Lookup(ctx context.Context, code string) (Metadata, error)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
