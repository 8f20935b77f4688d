package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"
)

func TestOpenLibraryLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/isbn/0306406152.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{
			"title": "Flatland",
			"publishers": ["Seeley", "Dover"],
			"description": {"type": "/type/text", "value": "A romance of many dimensions."}
		}`))
	}))
	defer srv.Close()

	s := NewOpenLibrary(srv.URL, time.Second)
	got, err := s.Lookup(context.Background(), "0306406152")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	want := Metadata{
		Title:     "Flatland",
		Publisher: "Seeley, Dover",
		Summary:   "A romance of many dimensions.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenLibraryPlainStringDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "Flatland", "description": "Plain text blurb."}`))
	}))
	defer srv.Close()

	got, err := NewOpenLibrary(srv.URL, time.Second).Lookup(context.Background(), "0306406152")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Summary != "Plain text blurb." {
		t.Errorf("Summary = %q, want plain string decoded", got.Summary)
	}
}

func TestOpenLibraryMissIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	got, err := NewOpenLibrary(srv.URL, time.Second).Lookup(context.Background(), "0000000000")
	if err != nil {
		t.Fatalf("Lookup on 404: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("got %+v, want zero metadata on 404", got)
	}
}

func TestGoogleBooksLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "isbn:0306406152" {
			t.Errorf("query = %q, want isbn:0306406152", q)
		}
		w.Write([]byte(`{"items": [{"volumeInfo": {
			"title": "Flatland",
			"authors": ["Edwin Abbott", "A. Square"],
			"publisher": "Seeley",
			"description": "A romance of many dimensions.",
			"categories": ["Fiction", "Mathematics"]
		}}]}`))
	}))
	defer srv.Close()

	got, err := NewGoogleBooks(srv.URL, time.Second).Lookup(context.Background(), "0306406152")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	want := Metadata{
		Title:     "Flatland",
		Author:    "Edwin Abbott, A. Square",
		Publisher: "Seeley",
		Summary:   "A romance of many dimensions.",
		Keywords:  "Fiction, Mathematics",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestGoogleBooksNoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalItems": 0}`))
	}))
	defer srv.Close()

	got, err := NewGoogleBooks(srv.URL, time.Second).Lookup(context.Background(), "0306406152")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("got %+v, want zero metadata when no items", got)
	}
}

func TestUPCItemDBLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if upc := r.URL.Query().Get("upc"); upc != "036000291452" {
			t.Errorf("upc = %q, want 036000291452", upc)
		}
		w.Write([]byte(`{"code": "OK", "items": [
			{"title": "Board Book", "brand": "Little Press", "category": "Media > Books"}
		]}`))
	}))
	defer srv.Close()

	got, err := NewUPCItemDB(srv.URL, time.Second).Lookup(context.Background(), "036000291452")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	want := Metadata{
		Title:     "Board Book",
		Author:    "Little Press",
		Publisher: "Little Press",
		Keywords:  "Media > Books",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestUPCItemDBRateLimitIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := NewUPCItemDB(srv.URL, time.Second).Lookup(context.Background(), "036000291452"); err == nil {
		t.Error("Lookup on 429 succeeded, want error")
	}
}

func TestEANSearchIdentifyISBN13(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The client must convert to ISBN-10 before asking the service.
		if got := r.URL.Query().Get("isbn"); got != "0306406152" {
			t.Errorf("isbn param = %q, want 0306406152", got)
		}
		w.Write([]byte(`[{"ean": "9780306406157", "name": "Flatland"}]`))
	}))
	defer srv.Close()

	s, err := NewEANSearch(srv.URL, "token", time.Second, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewEANSearch: %v", err)
	}

	gotISBN, gotTitle, err := s.Identify(context.Background(), "978-0-306-40615-7")
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if gotISBN != "0306406152" || gotTitle != "Flatland" {
		t.Errorf("Identify = (%q, %q), want (0306406152, Flatland)", gotISBN, gotTitle)
	}
}

func TestEANSearchIdentifyUPC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ean"); got != "036000291452" {
			t.Errorf("ean param = %q, want 036000291452", got)
		}
		w.Write([]byte(`[{"ean": "036000291452", "isbn": "0140328726", "name": "Fantastic Mr Fox"}]`))
	}))
	defer srv.Close()

	s, err := NewEANSearch(srv.URL, "token", time.Second, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewEANSearch: %v", err)
	}

	gotISBN, gotTitle, err := s.Identify(context.Background(), "036000291452")
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if gotISBN != "0140328726" || gotTitle != "Fantastic Mr Fox" {
		t.Errorf("Identify = (%q, %q)", gotISBN, gotTitle)
	}
}

func TestEANSearchUnresolved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	s, err := NewEANSearch(srv.URL, "token", time.Second, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewEANSearch: %v", err)
	}

	if _, _, err := s.Identify(context.Background(), "036000291452"); err != ErrUnresolved {
		t.Errorf("Identify = %v, want ErrUnresolved", err)
	}
}

func TestEANSearchRequiresToken(t *testing.T) {
	if _, err := NewEANSearch("", "", time.Second, nil); err != ErrNoAPIKey {
		t.Errorf("NewEANSearch without token = %v, want ErrNoAPIKey", err)
	}
}
