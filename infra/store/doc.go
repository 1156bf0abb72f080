// Package store provides the persistent WeekRecord backends: one JSON file per
// week on local disk, a SQLite table, or objects in a Google Cloud Storage
// bucket.
package store
