package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	corestore "github.com/kilianp07/svitlosync/core/store"
	"github.com/kilianp07/svitlosync/core/timetable"
)

// FileName returns the file or object name holding week.
func FileName(week int) string {
	return fmt.Sprintf("timetable_week_%d.json", week)
}

// FileBackend keeps one pretty-printed JSON file per week in a directory.
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

// NewFileBackend creates dir if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileBackend{dir: dir}, nil
}

// Path returns the file used for week.
func (b *FileBackend) Path(week int) string {
	return filepath.Join(b.dir, FileName(week))
}

func (b *FileBackend) Get(_ context.Context, week int) (timetable.WeekRecord, error) {
	data, err := os.ReadFile(b.Path(week))
	if errors.Is(err, fs.ErrNotExist) {
		return timetable.WeekRecord{}, corestore.ErrNotFound
	}
	if err != nil {
		return timetable.WeekRecord{}, err
	}
	var rec timetable.WeekRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return timetable.WeekRecord{}, fmt.Errorf("%w: %v", corestore.ErrCorrupt, err)
	}
	return rec, nil
}

// Put writes to a temporary file in the same directory, syncs it and renames
// it over the target.
func (b *FileBackend) Put(_ context.Context, rec timetable.WeekRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	tmp, err := os.CreateTemp(b.dir, ".week-*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), b.Path(rec.Week))
}

func (b *FileBackend) Close() error { return nil }
