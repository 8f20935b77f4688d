// Package catalog wires the scan-processing flow together: resolve a
// scanned code through EANSearch, enrich the metadata through the
// pipeline, and persist the book. It also hosts the loan and return
// flows the desktop UI used to drive.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shelfscan/internal/lookup"
	"shelfscan/internal/pipeline"
	"shelfscan/internal/store"
)

// Identifier resolves a raw code to an (ISBN-10, title) pair.
// *lookup.EANSearch is the production implementation.
type Identifier interface {
	Identify(ctx context.Context, code string) (isbn, title string, err error)
}

// Catalog is the application service behind every scan, loan, and
// return operation.
type Catalog struct {
	store *store.Store
	ident Identifier
	pipe  *pipeline.Pipeline
	log   *zap.Logger
}

// New assembles a catalog service.
func New(st *store.Store, ident Identifier, pipe *pipeline.Pipeline, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{store: st, ident: ident, pipe: pipe, log: log}
}

// Result is the outcome of processing one scanned code.
type Result struct {
	Code    string
	ISBN    string
	Title   string
	Outcome store.InsertOutcome
	Err     error
}

// ProcessCodes runs ProcessCode over a batch sequentially, in scan
// order. Failures are recorded per code and never abort the batch.
func (c *Catalog) ProcessCodes(ctx context.Context, codes []string) []Result {
	results := make([]Result, 0, len(codes))
	for _, code := range codes {
		if ctx.Err() != nil {
			break
		}
		res := c.ProcessCode(ctx, code)
		results = append(results, res)
	}
	return results
}

// ProcessCode takes one scanned code through identification,
// enrichment, and insertion, recording a scan event either way.
func (c *Catalog) ProcessCode(ctx context.Context, code string) Result {
	res := Result{Code: code}
	c.log.Info("processing scan", zap.String("code", code))

	isbn10, title, err := c.ident.Identify(ctx, code)
	if err != nil || isbn10 == "" {
		if err == nil {
			err = lookup.ErrUnresolved
		}
		c.log.Warn("code not resolved", zap.String("code", code), zap.Error(err))
		if rerr := c.store.RecordScan(ctx, code, store.ScanUnresolved, err.Error()); rerr != nil {
			c.log.Warn("scan event not recorded", zap.Error(rerr))
		}
		res.Err = fmt.Errorf("resolve %s: %w", code, err)
		return res
	}
	res.ISBN = isbn10
	c.log.Debug("code resolved",
		zap.String("code", code), zap.String("isbn", isbn10), zap.String("title", title))

	meta := c.pipe.Enrich(ctx, isbn10, lookup.Metadata{Title: title})
	res.Title = meta.Title

	outcome, err := c.store.InsertBook(ctx, store.Book{
		Barcode:   code,
		ISBN:      isbn10,
		Title:     meta.Title,
		Author:    meta.Author,
		Publisher: meta.Publisher,
		Summary:   meta.Summary,
		Keywords:  meta.Keywords,
	})
	if err != nil {
		c.log.Error("book not stored", zap.String("code", code), zap.Error(err))
		if rerr := c.store.RecordScan(ctx, code, store.ScanFailed, err.Error()); rerr != nil {
			c.log.Warn("scan event not recorded", zap.Error(rerr))
		}
		res.Err = fmt.Errorf("store %s: %w", code, err)
		return res
	}
	res.Outcome = outcome

	if err := c.store.RecordScan(ctx, code, store.ScanResolved, meta.Title); err != nil {
		c.log.Warn("scan event not recorded", zap.Error(err))
	}
	c.log.Info("book stored",
		zap.String("title", meta.Title), zap.String("outcome", string(outcome)))
	return res
}

// Loan checks availability and records a loan of the book with the
// given barcode. It returns the title for confirmation messages.
func (c *Catalog) Loan(ctx context.Context, barcode, borrower string) (string, error) {
	book, err := c.store.FindBookByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("book not found in library: %s", barcode)
		}
		return "", err
	}
	if err := c.store.LoanBook(ctx, book.ID, borrower); err != nil {
		if errors.Is(err, store.ErrNoCopies) {
			return book.Title, fmt.Errorf("no available copies of %q: %w", book.Title, err)
		}
		return book.Title, err
	}
	return book.Title, nil
}

// Return closes the loan identified by (title, borrower, loanDate).
func (c *Catalog) Return(ctx context.Context, title, borrower, loanDate string) error {
	if err := c.store.ReturnLoan(ctx, title, borrower, loanDate); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no loan of %q to %s at %s", title, borrower, loanDate)
		}
		return err
	}
	return nil
}
