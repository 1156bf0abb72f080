package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/api/option"

	"github.com/kilianp07/svitlosync/config"
	corestore "github.com/kilianp07/svitlosync/core/store"
)

// NewBackend opens the backend selected by cfg.Backend.
func NewBackend(ctx context.Context, cfg config.StoreConfig) (corestore.Backend, error) {
	switch cfg.Backend {
	case "file", "":
		return NewFileBackend(cfg.Dir)
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return NewSQLiteBackend(cfg.SQLitePath)
	case "gcs":
		var opts []option.ClientOption
		if cfg.GCSCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
		}
		return NewGCSBackend(ctx, cfg.GCSBucket, cfg.GCSPrefix, opts...)
	case "memory":
		return corestore.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
