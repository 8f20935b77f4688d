package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// loanDateFormat is how loan timestamps are stored and displayed.
const loanDateFormat = "2006-01-02 15:04:05"

// Loan is a joined view of an active loan, as shown in the loans table.
type Loan struct {
	ID       int64  `db:"id"`
	Title    string `db:"title"`
	Borrower string `db:"borrower"`
	LoanDate string `db:"loan_date"`
}

// LoanBook records a loan and decrements the book's copy count. A book
// with no available copies yields ErrNoCopies; an unknown book yields
// ErrNotFound.
func (s *Store) LoanBook(ctx context.Context, bookID int64, borrower string) error {
	loanDate := time.Now().Format(loanDateFormat)

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := qb.From("books").
			Select("count").
			Where(goqu.Ex{"id": bookID}).
			Prepared(true).ToSQL()
		if err != nil {
			return err
		}
		var count int
		if err := tx.GetContext(ctx, &count, query, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("check copies: %w", err)
		}
		if count <= 0 {
			return ErrNoCopies
		}

		insert, iargs, err := qb.Insert("loans").
			Rows(goqu.Record{
				"book_id":   bookID,
				"borrower":  borrower,
				"loan_date": loanDate,
			}).
			Prepared(true).ToSQL()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insert, iargs...); err != nil {
			return fmt.Errorf("insert loan: %w", err)
		}

		update, uargs, err := qb.Update("books").
			Set(goqu.Record{"count": goqu.L("count - 1")}).
			Where(goqu.Ex{"id": bookID}).
			Prepared(true).ToSQL()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, update, uargs...); err != nil {
			return fmt.Errorf("decrement count: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug("loan recorded",
		zap.Int64("book_id", bookID),
		zap.String("borrower", borrower))
	return nil
}

// ListLoans returns all active loans, newest first.
func (s *Store) ListLoans(ctx context.Context) ([]Loan, error) {
	query, args, err := qb.From(goqu.T("loans").As("l")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.Ex{"b.id": goqu.I("l.book_id")})).
		Select(goqu.I("l.id"), goqu.I("b.title"), goqu.I("l.borrower"), goqu.I("l.loan_date")).
		Order(goqu.I("l.loan_date").Desc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	var loans []Loan
	if err := s.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return loans, nil
}

// SearchLoans filters the loan list by a case-insensitive substring
// over title, borrower, and date.
func (s *Store) SearchLoans(ctx context.Context, q string) ([]Loan, error) {
	q = strings.TrimSpace(strings.ToLower(q))
	if q == "" {
		return s.ListLoans(ctx)
	}

	all, err := s.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Loan, 0, len(all))
	for _, l := range all {
		text := strings.ToLower(l.Title + " " + l.Borrower + " " + l.LoanDate)
		if strings.Contains(text, q) {
			out = append(out, l)
		}
	}
	return out, nil
}

// DeleteLoan removes a loan row by id without touching the book's copy
// count. ReturnLoan is the normal path; this is the admin escape hatch
// for bogus rows.
func (s *Store) DeleteLoan(ctx context.Context, loanID int64) error {
	query, args, err := qb.Delete("loans").
		Where(goqu.Ex{"id": loanID}).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReturnLoan deletes the loan identified by (title, borrower, loan
// date) and restores the book's copy count. ErrNotFound means no such
// loan exists.
func (s *Store) ReturnLoan(ctx context.Context, title, borrower, loanDate string) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := qb.From(goqu.T("books").As("b")).
			Join(goqu.T("loans").As("l"), goqu.On(goqu.Ex{"l.book_id": goqu.I("b.id")})).
			Select(goqu.I("b.id")).
			Where(goqu.Ex{
				"b.title":     title,
				"l.borrower":  borrower,
				"l.loan_date": loanDate,
			}).
			Limit(1).
			Prepared(true).ToSQL()
		if err != nil {
			return err
		}

		var bookID int64
		if err := tx.GetContext(ctx, &bookID, query, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("find loan: %w", err)
		}

		del, dargs, err := qb.Delete("loans").
			Where(goqu.Ex{
				"book_id":   bookID,
				"borrower":  borrower,
				"loan_date": loanDate,
			}).
			Prepared(true).ToSQL()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, del, dargs...); err != nil {
			return fmt.Errorf("delete loan: %w", err)
		}

		update, uargs, err := qb.Update("books").
			Set(goqu.Record{"count": goqu.L("count + 1")}).
			Where(goqu.Ex{"id": bookID}).
			Prepared(true).ToSQL()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, update, uargs...); err != nil {
			return fmt.Errorf("restore count: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug("loan returned",
		zap.String("title", title),
		zap.String("borrower", borrower))
	return nil
}
