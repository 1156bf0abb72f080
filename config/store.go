package config

import "fmt"

// StoreConfig selects where week records are kept.
type StoreConfig struct {
	// Backend is one of "file", "sqlite", "gcs" or "memory".
	Backend    string `json:"backend"`
	Dir        string `json:"dir"`
	SQLitePath string `json:"sqlite_path"`
	GCSBucket  string `json:"gcs_bucket"`
	GCSPrefix  string `json:"gcs_prefix"`
	// GCSCredentialsFile is optional; application default credentials are used otherwise.
	GCSCredentialsFile string `json:"gcs_credentials_file"`
}

func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "file"
	}
	if c.Dir == "" {
		c.Dir = "data"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "data/timetable.db"
	}
}

func (c StoreConfig) Validate() error {
	switch c.Backend {
	case "file", "sqlite", "memory":
		return nil
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("gcs_bucket is required for the gcs backend")
		}
		return nil
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
}
