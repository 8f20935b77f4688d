package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Book is a row of the books table. Count is the number of copies
// currently on the shelf; loans decrement it, returns restore it.
type Book struct {
	ID        int64  `db:"id"`
	Barcode   string `db:"barcode"`
	ISBN      string `db:"isbn"`
	Title     string `db:"title"`
	Author    string `db:"author"`
	Publisher string `db:"publisher"`
	Summary   string `db:"summary"`
	Keywords  string `db:"keywords"`
	Count     int    `db:"count"`
}

// InsertOutcome reports what InsertBook did.
type InsertOutcome string

const (
	// Inserted means a new row was created.
	Inserted InsertOutcome = "inserted"
	// Updated means an existing (barcode, isbn) row had its count bumped.
	Updated InsertOutcome = "updated"
)

// InsertBook adds a book, or increments the copy count when a row with
// the same (barcode, isbn) pair already exists.
func (s *Store) InsertBook(ctx context.Context, b Book) (InsertOutcome, error) {
	outcome := Inserted

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := qb.From("books").
			Select("id").
			Where(goqu.Ex{"barcode": b.Barcode, "isbn": b.ISBN}).
			Prepared(true).ToSQL()
		if err != nil {
			return err
		}

		var id int64
		switch err := tx.GetContext(ctx, &id, query, args...); {
		case err == nil:
			update, uargs, err := qb.Update("books").
				Set(goqu.Record{"count": goqu.L("count + 1")}).
				Where(goqu.Ex{"id": id}).
				Prepared(true).ToSQL()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, update, uargs...); err != nil {
				return fmt.Errorf("increment count: %w", err)
			}
			outcome = Updated
			return nil

		case errors.Is(err, sql.ErrNoRows):
			insert, iargs, err := qb.Insert("books").
				Rows(goqu.Record{
					"barcode":   b.Barcode,
					"isbn":      b.ISBN,
					"title":     b.Title,
					"author":    b.Author,
					"publisher": b.Publisher,
					"summary":   b.Summary,
					"keywords":  b.Keywords,
					"count":     1,
				}).
				Prepared(true).ToSQL()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, insert, iargs...); err != nil {
				return fmt.Errorf("insert book: %w", err)
			}
			return nil

		default:
			return fmt.Errorf("find existing book: %w", err)
		}
	})
	if err != nil {
		return "", err
	}

	s.log.Debug("book stored",
		zap.String("title", b.Title),
		zap.String("barcode", b.Barcode),
		zap.String("outcome", string(outcome)))
	return outcome, nil
}

// FindBookByBarcode returns the book with the given barcode, or
// ErrNotFound.
func (s *Store) FindBookByBarcode(ctx context.Context, barcode string) (Book, error) {
	query, args, err := qb.From("books").
		Where(goqu.Ex{"barcode": barcode}).
		Limit(1).
		Prepared(true).ToSQL()
	if err != nil {
		return Book{}, err
	}

	var b Book
	if err := s.db.GetContext(ctx, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("find book: %w", err)
	}
	return b, nil
}

// ListBooks returns the whole library ordered by title.
func (s *Store) ListBooks(ctx context.Context) ([]Book, error) {
	query, args, err := qb.From("books").
		Order(goqu.I("title").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	var books []Book
	if err := s.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// SearchBooks returns books whose text columns contain the query,
// case-insensitively. An empty query returns everything.
func (s *Store) SearchBooks(ctx context.Context, q string) ([]Book, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.ListBooks(ctx)
	}

	pattern := "%" + strings.ToLower(q) + "%"
	ors := make([]goqu.Expression, 0, 7)
	for _, col := range []string{"title", "barcode", "isbn", "author", "publisher", "summary", "keywords"} {
		ors = append(ors, goqu.L("lower("+col+")").Like(pattern))
	}

	query, args, err := qb.From("books").
		Where(goqu.Or(ors...)).
		Order(goqu.I("title").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	var books []Book
	if err := s.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

// SetBookCount sets the copy count directly, for the admin surface.
func (s *Store) SetBookCount(ctx context.Context, bookID int64, count int) error {
	if count < 0 {
		return fmt.Errorf("count must be >= 0, got %d", count)
	}
	query, args, err := qb.Update("books").
		Set(goqu.Record{"count": count}).
		Where(goqu.Ex{"id": bookID}).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set count: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBook removes a book and its loans in one transaction.
func (s *Store) DeleteBook(ctx context.Context, bookID int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		delLoans, largs, err := qb.Delete("loans").
			Where(goqu.Ex{"book_id": bookID}).
			Prepared(true).ToSQL()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, delLoans, largs...); err != nil {
			return fmt.Errorf("delete loans: %w", err)
		}

		delBook, bargs, err := qb.Delete("books").
			Where(goqu.Ex{"id": bookID}).
			Prepared(true).ToSQL()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, delBook, bargs...)
		if err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
