package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	corestore "github.com/kilianp07/svitlosync/core/store"
	"github.com/kilianp07/svitlosync/core/timetable"
)

// GCSBackend stores each week as an object in a Cloud Storage bucket.
type GCSBackend struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

// NewGCSBackend connects to bucket. Objects are named prefix+FileName(week).
func NewGCSBackend(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*GCSBackend, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCSBackend{client: client, bucket: client.Bucket(bucket), prefix: prefix}, nil
}

// ObjectName returns the object key for week.
func (g *GCSBackend) ObjectName(week int) string {
	return g.prefix + FileName(week)
}

func (g *GCSBackend) Get(ctx context.Context, week int) (timetable.WeekRecord, error) {
	r, err := g.bucket.Object(g.ObjectName(week)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return timetable.WeekRecord{}, corestore.ErrNotFound
	}
	if err != nil {
		return timetable.WeekRecord{}, err
	}
	defer func() { _ = r.Close() }()
	data, err := io.ReadAll(r)
	if err != nil {
		return timetable.WeekRecord{}, err
	}
	var rec timetable.WeekRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return timetable.WeekRecord{}, fmt.Errorf("%w: %v", corestore.ErrCorrupt, err)
	}
	return rec, nil
}

// Put uploads the record. The object only becomes visible once the writer
// is closed successfully.
func (g *GCSBackend) Put(ctx context.Context, rec timetable.WeekRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	w := g.bucket.Object(g.ObjectName(rec.Week)).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (g *GCSBackend) Close() error { return g.client.Close() }
