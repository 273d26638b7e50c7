package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrImportNotFound is returned when no import has the requested ID.
var ErrImportNotFound = errors.New("import not found")

// BeginImport records a new run in the running state.
func (d *Database) BeginImport(ctx context.Context, id string, startedAt time.Time) (err error) {
	start := time.Now()
	defer func() { recordQuery("begin_import", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx,
		"INSERT INTO imports (id, status, started_at) VALUES (?, ?, ?)",
		id, string(ImportRunning), startedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record import %s: %w", id, err)
	}
	return nil
}

// FinishImport stores the final state of a run started with BeginImport.
func (d *Database) FinishImport(ctx context.Context, rec *ImportRecord) (err error) {
	start := time.Now()
	defer func() { recordQuery("finish_import", start, err) }()

	finished := rec.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, `
		UPDATE imports
		SET status = ?, finished_at = ?, items = ?, groups_count = ?, images = ?,
			bytes = ?, error = ?, log = ?
		WHERE id = ?
	`,
		string(rec.Status), finished.UnixMilli(), rec.Items, rec.Groups, rec.Images,
		rec.Bytes, rec.Error, strings.Join(rec.Log, "\n"), rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish import %s: %w", rec.ID, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		err = fmt.Errorf("finish import %s: %w", rec.ID, ErrImportNotFound)
		return err
	}
	return nil
}

const importColumns = `id, status, started_at, finished_at, items, groups_count, images, bytes, error, log`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImport(row rowScanner) (*ImportRecord, error) {
	var (
		rec      ImportRecord
		status   string
		started  int64
		finished sql.NullInt64
		logText  string
	)
	if err := row.Scan(&rec.ID, &status, &started, &finished, &rec.Items, &rec.Groups,
		&rec.Images, &rec.Bytes, &rec.Error, &logText); err != nil {
		return nil, err
	}
	rec.Status = ImportStatus(status)
	rec.StartedAt = time.UnixMilli(started)
	if finished.Valid {
		rec.FinishedAt = time.UnixMilli(finished.Int64)
	}
	rec.Log = []string{}
	if logText != "" {
		rec.Log = strings.Split(logText, "\n")
	}
	return &rec, nil
}

// GetImport returns a single run by ID.
func (d *Database) GetImport(ctx context.Context, id string) (rec *ImportRecord, err error) {
	start := time.Now()
	defer func() { recordQuery("get_import", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx, "SELECT "+importColumns+" FROM imports WHERE id = ?", id)
	rec, err = scanImport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrImportNotFound
	}
	return rec, err
}

// RecentImports returns up to limit runs, newest first.
func (d *Database) RecentImports(ctx context.Context, limit int) (records []ImportRecord, err error) {
	start := time.Now()
	defer func() { recordQuery("recent_imports", start, err) }()

	if limit <= 0 {
		limit = 20
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT "+importColumns+" FROM imports ORDER BY started_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records = []ImportRecord{}
	for rows.Next() {
		rec, scanErr := scanImport(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		records = append(records, *rec)
	}
	err = rows.Err()
	return records, err
}

// CountImports returns the number of recorded runs.
func (d *Database) CountImports(ctx context.Context) (count int, err error) {
	start := time.Now()
	defer func() { recordQuery("count_imports", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM imports").Scan(&count)
	return count, err
}
