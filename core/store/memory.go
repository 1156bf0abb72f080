package store

import (
	"context"
	"sync"

	"github.com/kilianp07/svitlosync/core/timetable"
)

// MemoryBackend stores records in memory for testing or dry runs.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[int]timetable.WeekRecord
	puts int
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: map[int]timetable.WeekRecord{}}
}

func (m *MemoryBackend) Get(_ context.Context, week int) (timetable.WeekRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.data[week]
	if !ok {
		return timetable.WeekRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryBackend) Put(_ context.Context, rec timetable.WeekRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[rec.Week] = rec
	m.puts++
	return nil
}

// Puts returns the number of successful writes.
func (m *MemoryBackend) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

func (m *MemoryBackend) Close() error { return nil }
