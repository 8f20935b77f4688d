package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"shelfscan/internal/isbn"
)

const eanSearchBase = "https://api.ean-search.org"

// ErrNoAPIKey is returned when the EANSearch client is constructed
// without a token.
var ErrNoAPIKey = errors.New("eansearch: API key not configured")

// ErrUnresolved is returned when a scanned code cannot be matched to a
// book by the EANSearch service.
var ErrUnresolved = errors.New("eansearch: code not resolved")

// EANSearch resolves scanned codes to (ISBN-10, title) pairs through
// the EAN-search.org API. It is the identification step that runs
// before the metadata pipeline: ISBN-13s are converted to ISBN-10
// locally, everything else goes through a barcode product search.
type EANSearch struct {
	baseURL string
	token   string
	hc      *http.Client
	log     *zap.Logger
}

// NewEANSearch creates an EANSearch client. An empty baseURL uses the
// public endpoint.
func NewEANSearch(baseURL, token string, timeout time.Duration, log *zap.Logger) (*EANSearch, error) {
	if token == "" {
		return nil, ErrNoAPIKey
	}
	if baseURL == "" {
		baseURL = eanSearchBase
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EANSearch{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		hc:      newHTTPClient(timeout),
		log:     log,
	}, nil
}

type eanProduct struct {
	EAN  string `json:"ean"`
	ISBN string `json:"isbn"`
	Name string `json:"name"`
}

// Identify maps a normalized scanned code to an ISBN-10 and a title.
// ISBN-13s are converted locally and looked up by ISBN; bare ISBN-10s
// are looked up directly; any other code is treated as a retail barcode
// and resolved through the product database. ErrUnresolved means the
// service had no match.
func (s *EANSearch) Identify(ctx context.Context, code string) (string, string, error) {
	code = isbn.Normalize(code)

	switch isbn.Classify(code) {
	case isbn.KindISBN13:
		isbn10, err := isbn.To10(code)
		if err != nil {
			return "", "", err
		}
		s.log.Debug("converted ISBN-13",
			zap.String("isbn13", code), zap.String("isbn10", isbn10))
		title, err := s.titleByISBN(ctx, isbn10)
		if err != nil {
			return "", "", err
		}
		return isbn10, title, nil

	case isbn.KindISBN10:
		title, err := s.titleByISBN(ctx, code)
		if err != nil {
			return "", "", err
		}
		return code, title, nil

	default:
		products, err := s.query(ctx, "ean", code)
		if err != nil {
			return "", "", err
		}
		if len(products) == 0 || products[0].ISBN == "" {
			return "", "", ErrUnresolved
		}
		return products[0].ISBN, products[0].Name, nil
	}
}

// titleByISBN returns the registered title for an ISBN-10, or "" when
// the service knows the number but not the book.
func (s *EANSearch) titleByISBN(ctx context.Context, isbn10 string) (string, error) {
	products, err := s.query(ctx, "isbn", isbn10)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "", nil
	}
	return products[0].Name, nil
}

func (s *EANSearch) query(ctx context.Context, param, value string) ([]eanProduct, error) {
	u := fmt.Sprintf("%s/api?token=%s&format=json&op=barcode-lookup&%s=%s",
		s.baseURL, url.QueryEscape(s.token), param, url.QueryEscape(value))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("eansearch request: %w", err)
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eansearch fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eansearch status %d", resp.StatusCode)
	}

	var products []eanProduct
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("eansearch decode: %w", err)
	}
	return products, nil
}
