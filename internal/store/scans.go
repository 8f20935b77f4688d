package store

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
)

// Scan statuses recorded in the audit trail.
const (
	ScanResolved   = "resolved"
	ScanUnresolved = "unresolved"
	ScanFailed     = "failed"
)

// ScanEvent is one processed barcode in the audit trail, replacing the
// scrolling log window of the desktop UI.
type ScanEvent struct {
	ID        int64  `db:"id"`
	Code      string `db:"code"`
	Status    string `db:"status"`
	Detail    string `db:"detail"`
	ScannedAt string `db:"scanned_at"`
}

// RecordScan appends a scan event.
func (s *Store) RecordScan(ctx context.Context, code, status, detail string) error {
	query, args, err := qb.Insert("scan_events").
		Rows(goqu.Record{
			"code":       code,
			"status":     status,
			"detail":     detail,
			"scanned_at": time.Now().Format(loanDateFormat),
		}).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record scan: %w", err)
	}
	return nil
}

// ListScans returns the most recent scan events, newest first.
func (s *Store) ListScans(ctx context.Context, limit int) ([]ScanEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	query, args, err := qb.From("scan_events").
		Order(goqu.I("id").Desc()).
		Limit(uint(limit)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	var events []ScanEvent
	if err := s.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	return events, nil
}
