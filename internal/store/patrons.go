package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

// Patron is a card-holder account. CardCode is the value encoded on
// the printed library card.
type Patron struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	CardCode  string `db:"card_code"`
	CreatedAt string `db:"created_at"`
}

// AddPatron registers a card-holder and assigns a card code.
func (s *Store) AddPatron(ctx context.Context, name string) (Patron, error) {
	p := Patron{
		Name:      name,
		CardCode:  uuid.NewString(),
		CreatedAt: time.Now().Format(loanDateFormat),
	}

	query, args, err := qb.Insert("patrons").
		Rows(goqu.Record{
			"name":       p.Name,
			"card_code":  p.CardCode,
			"created_at": p.CreatedAt,
		}).
		Prepared(true).ToSQL()
	if err != nil {
		return Patron{}, err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Patron{}, fmt.Errorf("add patron: %w", err)
	}
	p.ID, _ = res.LastInsertId()
	return p, nil
}

// GetPatron returns the patron with the given name, or ErrNotFound.
func (s *Store) GetPatron(ctx context.Context, name string) (Patron, error) {
	query, args, err := qb.From("patrons").
		Where(goqu.Ex{"name": name}).
		Prepared(true).ToSQL()
	if err != nil {
		return Patron{}, err
	}

	var p Patron
	if err := s.db.GetContext(ctx, &p, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Patron{}, ErrNotFound
		}
		return Patron{}, fmt.Errorf("get patron: %w", err)
	}
	return p, nil
}

// ListPatrons returns all card-holders ordered by name. This feeds the
// card printer.
func (s *Store) ListPatrons(ctx context.Context) ([]Patron, error) {
	query, args, err := qb.From("patrons").
		Order(goqu.I("name").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	var patrons []Patron
	if err := s.db.SelectContext(ctx, &patrons, query, args...); err != nil {
		return nil, fmt.Errorf("list patrons: %w", err)
	}
	return patrons, nil
}

// RemovePatron deletes a card-holder by name.
func (s *Store) RemovePatron(ctx context.Context, name string) error {
	query, args, err := qb.Delete("patrons").
		Where(goqu.Ex{"name": name}).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("remove patron: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
