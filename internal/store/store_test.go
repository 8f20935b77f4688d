package store

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Open(:memory:): %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBook() Book {
	return Book{
		Barcode:   "9780306406157",
		ISBN:      "0306406152",
		Title:     "Flatland",
		Author:    "Edwin Abbott",
		Publisher: "Seeley",
		Summary:   "A romance of many dimensions.",
		Keywords:  "geometry, satire",
	}
}

func TestInsertBookThenIncrement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	outcome, err := s.InsertBook(ctx, sampleBook())
	if err != nil {
		t.Fatalf("InsertBook: %v", err)
	}
	if outcome != Inserted {
		t.Errorf("first insert outcome = %q, want %q", outcome, Inserted)
	}

	outcome, err = s.InsertBook(ctx, sampleBook())
	if err != nil {
		t.Fatalf("second InsertBook: %v", err)
	}
	if outcome != Updated {
		t.Errorf("second insert outcome = %q, want %q", outcome, Updated)
	}

	b, err := s.FindBookByBarcode(ctx, "9780306406157")
	if err != nil {
		t.Fatalf("FindBookByBarcode: %v", err)
	}
	if b.Count != 2 {
		t.Errorf("Count = %d, want 2 after duplicate scan", b.Count)
	}
}

func TestFindBookByBarcodeNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.FindBookByBarcode(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListBooksOrderedByTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"Zebra Tales", "Aardvark Annual", "Middle March"} {
		b := sampleBook()
		b.Title = title
		b.Barcode = "bc-" + title
		if _, err := s.InsertBook(ctx, b); err != nil {
			t.Fatalf("InsertBook(%q): %v", title, err)
		}
	}

	books, err := s.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(books) != 3 {
		t.Fatalf("got %d books, want 3", len(books))
	}
	want := []string{"Aardvark Annual", "Middle March", "Zebra Tales"}
	for i, title := range want {
		if books[i].Title != title {
			t.Errorf("books[%d].Title = %q, want %q", i, books[i].Title, title)
		}
	}
}

func TestSearchBooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleBook()
	b := sampleBook()
	b.Barcode = "other"
	b.ISBN = "0140328726"
	b.Title = "Fantastic Mr Fox"
	b.Author = "Roald Dahl"
	c := sampleBook()
	c.Barcode = "third"
	c.ISBN = "050000000X"
	c.Title = "Quiet Book"
	c.Summary = "An expedition to the planet Zorbulon."
	for _, book := range []Book{a, b, c} {
		if _, err := s.InsertBook(ctx, book); err != nil {
			t.Fatalf("InsertBook: %v", err)
		}
	}

	got, err := s.SearchBooks(ctx, "DAHL")
	if err != nil {
		t.Fatalf("SearchBooks: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Fantastic Mr Fox" {
		t.Errorf("SearchBooks(DAHL) = %+v, want just Fantastic Mr Fox", got)
	}

	// A word that appears only in the summary still matches.
	got, err = s.SearchBooks(ctx, "zorbulon")
	if err != nil {
		t.Fatalf("SearchBooks: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Quiet Book" {
		t.Errorf("SearchBooks(zorbulon) = %+v, want just Quiet Book", got)
	}

	all, err := s.SearchBooks(ctx, "  ")
	if err != nil {
		t.Fatalf("SearchBooks(blank): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("blank search returned %d books, want all 3", len(all))
	}
}

func TestLoanAndReturnRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertBook(ctx, sampleBook()); err != nil {
		t.Fatalf("InsertBook: %v", err)
	}
	b, err := s.FindBookByBarcode(ctx, "9780306406157")
	if err != nil {
		t.Fatalf("FindBookByBarcode: %v", err)
	}

	if err := s.LoanBook(ctx, b.ID, "Ada"); err != nil {
		t.Fatalf("LoanBook: %v", err)
	}

	b, _ = s.FindBookByBarcode(ctx, "9780306406157")
	if b.Count != 0 {
		t.Errorf("Count after loan = %d, want 0", b.Count)
	}

	loans, err := s.ListLoans(ctx)
	if err != nil {
		t.Fatalf("ListLoans: %v", err)
	}
	if len(loans) != 1 || loans[0].Borrower != "Ada" || loans[0].Title != "Flatland" {
		t.Fatalf("loans = %+v, want one loan of Flatland to Ada", loans)
	}

	if err := s.ReturnLoan(ctx, loans[0].Title, loans[0].Borrower, loans[0].LoanDate); err != nil {
		t.Fatalf("ReturnLoan: %v", err)
	}

	b, _ = s.FindBookByBarcode(ctx, "9780306406157")
	if b.Count != 1 {
		t.Errorf("Count after return = %d, want 1", b.Count)
	}
	loans, _ = s.ListLoans(ctx)
	if len(loans) != 0 {
		t.Errorf("loans after return = %+v, want none", loans)
	}
}

func TestLoanBookNoCopies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertBook(ctx, sampleBook()); err != nil {
		t.Fatalf("InsertBook: %v", err)
	}
	b, _ := s.FindBookByBarcode(ctx, "9780306406157")

	if err := s.LoanBook(ctx, b.ID, "Ada"); err != nil {
		t.Fatalf("first LoanBook: %v", err)
	}
	if err := s.LoanBook(ctx, b.ID, "Grace"); !errors.Is(err, ErrNoCopies) {
		t.Errorf("second LoanBook = %v, want ErrNoCopies", err)
	}

	// The failed loan must not leave a row behind.
	loans, _ := s.ListLoans(ctx)
	if len(loans) != 1 {
		t.Errorf("loans = %d rows, want 1 (failed loan rolled back)", len(loans))
	}
}

func TestLoanBookUnknownBook(t *testing.T) {
	s := newTestStore(t)

	if err := s.LoanBook(context.Background(), 999, "Ada"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoanBook(999) = %v, want ErrNotFound", err)
	}
}

func TestDeleteLoanKeepsCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertBook(ctx, sampleBook()); err != nil {
		t.Fatalf("InsertBook: %v", err)
	}
	b, _ := s.FindBookByBarcode(ctx, "9780306406157")
	if err := s.LoanBook(ctx, b.ID, "Ada"); err != nil {
		t.Fatalf("LoanBook: %v", err)
	}

	loans, err := s.ListLoans(ctx)
	if err != nil {
		t.Fatalf("ListLoans: %v", err)
	}
	if len(loans) != 1 || loans[0].ID == 0 {
		t.Fatalf("loans = %+v, want one loan with a populated id", loans)
	}

	if err := s.DeleteLoan(ctx, loans[0].ID); err != nil {
		t.Fatalf("DeleteLoan: %v", err)
	}

	loans, _ = s.ListLoans(ctx)
	if len(loans) != 0 {
		t.Errorf("loans after delete = %+v, want none", loans)
	}

	// Unlike ReturnLoan, the copy count stays decremented.
	b, _ = s.FindBookByBarcode(ctx, "9780306406157")
	if b.Count != 0 {
		t.Errorf("Count = %d, want 0 (delete must not restore it)", b.Count)
	}

	if err := s.DeleteLoan(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteLoan(999) = %v, want ErrNotFound", err)
	}
}

func TestReturnLoanNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.ReturnLoan(context.Background(), "Ghost Book", "Nobody", "2026-01-01 00:00:00")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ReturnLoan = %v, want ErrNotFound", err)
	}
}

func TestSearchLoans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertBook(ctx, sampleBook()); err != nil {
		t.Fatalf("InsertBook: %v", err)
	}
	b, _ := s.FindBookByBarcode(ctx, "9780306406157")
	s.SetBookCount(ctx, b.ID, 2)
	if err := s.LoanBook(ctx, b.ID, "Ada"); err != nil {
		t.Fatalf("LoanBook: %v", err)
	}
	if err := s.LoanBook(ctx, b.ID, "Grace"); err != nil {
		t.Fatalf("LoanBook: %v", err)
	}

	got, err := s.SearchLoans(ctx, "grace")
	if err != nil {
		t.Fatalf("SearchLoans: %v", err)
	}
	if len(got) != 1 || got[0].Borrower != "Grace" {
		t.Errorf("SearchLoans(grace) = %+v, want just Grace's loan", got)
	}
}

func TestSetBookCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertBook(ctx, sampleBook()); err != nil {
		t.Fatalf("InsertBook: %v", err)
	}
	b, _ := s.FindBookByBarcode(ctx, "9780306406157")

	if err := s.SetBookCount(ctx, b.ID, 7); err != nil {
		t.Fatalf("SetBookCount: %v", err)
	}
	b, _ = s.FindBookByBarcode(ctx, "9780306406157")
	if b.Count != 7 {
		t.Errorf("Count = %d, want 7", b.Count)
	}

	if err := s.SetBookCount(ctx, b.ID, -1); err == nil {
		t.Error("SetBookCount(-1) succeeded, want error")
	}
	if err := s.SetBookCount(ctx, 999, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetBookCount(999) = %v, want ErrNotFound", err)
	}
}

func TestDeleteBookCascadesLoans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertBook(ctx, sampleBook()); err != nil {
		t.Fatalf("InsertBook: %v", err)
	}
	b, _ := s.FindBookByBarcode(ctx, "9780306406157")
	if err := s.LoanBook(ctx, b.ID, "Ada"); err != nil {
		t.Fatalf("LoanBook: %v", err)
	}

	if err := s.DeleteBook(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats["books"] != 0 || stats["loans"] != 0 {
		t.Errorf("stats = %v, want books and loans both empty", stats)
	}

	if err := s.DeleteBook(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteBook = %v, want ErrNotFound", err)
	}
}

func TestPatrons(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ada, err := s.AddPatron(ctx, "Ada Lovelace")
	if err != nil {
		t.Fatalf("AddPatron: %v", err)
	}
	if ada.CardCode == "" {
		t.Error("AddPatron assigned no card code")
	}
	if _, err := s.AddPatron(ctx, "Grace Hopper"); err != nil {
		t.Fatalf("AddPatron: %v", err)
	}

	// Names are unique.
	if _, err := s.AddPatron(ctx, "Ada Lovelace"); err == nil {
		t.Error("duplicate AddPatron succeeded, want error")
	}

	got, err := s.GetPatron(ctx, "Ada Lovelace")
	if err != nil {
		t.Fatalf("GetPatron: %v", err)
	}
	if got.CardCode != ada.CardCode {
		t.Errorf("CardCode = %q, want %q", got.CardCode, ada.CardCode)
	}

	patrons, err := s.ListPatrons(ctx)
	if err != nil {
		t.Fatalf("ListPatrons: %v", err)
	}
	if len(patrons) != 2 || patrons[0].Name != "Ada Lovelace" {
		t.Errorf("ListPatrons = %+v, want Ada then Grace", patrons)
	}

	if err := s.RemovePatron(ctx, "Grace Hopper"); err != nil {
		t.Fatalf("RemovePatron: %v", err)
	}
	if err := s.RemovePatron(ctx, "Grace Hopper"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemovePatron = %v, want ErrNotFound", err)
	}
}

func TestScanEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordScan(ctx, "9780306406157", ScanResolved, "Flatland"); err != nil {
		t.Fatalf("RecordScan: %v", err)
	}
	if err := s.RecordScan(ctx, "000", ScanUnresolved, ""); err != nil {
		t.Fatalf("RecordScan: %v", err)
	}

	events, err := s.ListScans(ctx, 10)
	if err != nil {
		t.Fatalf("ListScans: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	// Newest first.
	if events[0].Code != "000" || events[1].Code != "9780306406157" {
		t.Errorf("events out of order: %+v", events)
	}

	one, err := s.ListScans(ctx, 1)
	if err != nil {
		t.Fatalf("ListScans(1): %v", err)
	}
	if len(one) != 1 {
		t.Errorf("limit ignored: got %d events", len(one))
	}
}
