// Package store persists books, loans, patrons, and scan events in a
// local SQLite database. Queries are built with goqu and scanned with
// sqlx; the database is opened with the pragmas a single-user desktop
// tool wants (WAL, busy timeout, relaxed synchronous).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a book, loan, or patron does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrNoCopies is returned when loaning a book with no available copies.
	ErrNoCopies = errors.New("store: no available copies")
)

// qb builds sqlite-flavored SQL.
var qb = goqu.Dialect("sqlite3")

// Store wraps the SQLite database.
type Store struct {
	db  *sqlx.DB
	log *zap.Logger
}

// Open opens (or creates) the database at path and initializes the
// schema. Pass ":memory:" for an ephemeral database in tests.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One writer, always. SQLite serializes writes anyway and a single
	// connection keeps :memory: databases coherent across queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			log.Debug("pragma failed", zap.String("pragma", pragma), zap.Error(err))
		}
	}

	s := &Store{db: db, log: log}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	log.Debug("store opened", zap.String("path", path))
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS books (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			barcode   TEXT NOT NULL DEFAULT '',
			isbn      TEXT NOT NULL DEFAULT '',
			title     TEXT NOT NULL DEFAULT '',
			author    TEXT NOT NULL DEFAULT '',
			publisher TEXT NOT NULL DEFAULT '',
			summary   TEXT NOT NULL DEFAULT '',
			keywords  TEXT NOT NULL DEFAULT '',
			count     INTEGER NOT NULL DEFAULT 1,
			UNIQUE(barcode, isbn)
		)`,
		`CREATE TABLE IF NOT EXISTS loans (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			book_id     INTEGER NOT NULL REFERENCES books(id),
			borrower    TEXT NOT NULL,
			loan_date   TEXT NOT NULL,
			return_date TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS patrons (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL UNIQUE,
			card_code  TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scan_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			code       TEXT NOT NULL,
			status     TEXT NOT NULL,
			detail     TEXT NOT NULL DEFAULT '',
			scanned_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_books_barcode ON books(barcode)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_book ON loans(book_id)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns row counts per table, for the admin surface.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, 4)
	for _, table := range []string{"books", "loans", "patrons", "scan_events"} {
		query, args, err := qb.From(table).Select(goqu.COUNT("*")).Prepared(true).ToSQL()
		if err != nil {
			return nil, err
		}
		var n int
		if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		out[table] = n
	}
	return out, nil
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.log.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	return tx.Commit()
}
