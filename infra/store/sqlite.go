package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	corestore "github.com/kilianp07/svitlosync/core/store"
	"github.com/kilianp07/svitlosync/core/timetable"
)

// SQLiteBackend persists week records in a SQLite database.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens or creates the database at path and ensures schema.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS week_records (
        week INTEGER PRIMARY KEY,
        record TEXT NOT NULL,
        updated_at INTEGER
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) Get(ctx context.Context, week int) (timetable.WeekRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM week_records WHERE week = ?`, week).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return timetable.WeekRecord{}, corestore.ErrNotFound
	}
	if err != nil {
		return timetable.WeekRecord{}, err
	}
	var rec timetable.WeekRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return timetable.WeekRecord{}, fmt.Errorf("%w: %v", corestore.ErrCorrupt, err)
	}
	return rec, nil
}

// Put inserts or replaces the record in a single statement.
func (s *SQLiteBackend) Put(ctx context.Context, rec timetable.WeekRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO week_records (week, record, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(week) DO UPDATE SET
            record = excluded.record,
            updated_at = excluded.updated_at`,
		rec.Week, string(b), time.Now().Unix())
	return err
}

// Close closes the underlying database.
func (s *SQLiteBackend) Close() error { return s.db.Close() }
