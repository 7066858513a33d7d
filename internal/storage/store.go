// Package storage writes exported time-series tables to local or cloud
// object storage.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ExportRef describes one exported table's location for a decoded task.
type ExportRef struct {
	TaskDataID string // identifies the source task-data directory
	TaskID     string // task identifier from the schema
	Table      string // "header_samples" | "channel_samples"
}

// Path returns the storage path for this table's parquet file.
func (r ExportRef) Path(prefix string) string {
	return fmt.Sprintf("%s%s/%s/%s.parquet", prefix, r.TaskDataID, r.TaskID, r.Table)
}

// ManifestPath returns the storage path for the task's manifest.
func (r ExportRef) ManifestPath(prefix string) string {
	return fmt.Sprintf("%s%s/%s/_manifest.json", prefix, r.TaskDataID, r.TaskID)
}

// Manifest describes the contents of one task's export directory.
type Manifest struct {
	Task      TaskInfo             `json:"task"`
	Tables    map[string]TableInfo `json:"tables"`
	Producer  ProducerInfo         `json:"producer"`
	CreatedAt time.Time            `json:"created_at"`
}

// TaskInfo identifies the exported task.
type TaskInfo struct {
	TaskDataID string `json:"taskdata_id"`
	TaskID     string `json:"task_id"`
	Name       string `json:"name,omitempty"`
}

// TableInfo describes a single table in the export.
type TableInfo struct {
	File     string `json:"file"`
	Checksum string `json:"checksum"`
	RowCount int64  `json:"row_count"`
	ByteSize int64  `json:"byte_size"`
}

// ProducerInfo describes the software that produced the export.
type ProducerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	GitSHA  string `json:"git_sha,omitempty"`
	BuildID string `json:"build_id,omitempty"`
}

// MarshalJSON returns the manifest as indented JSON bytes.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	type Alias Manifest
	return json.MarshalIndent((*Alias)(m), "", "  ")
}

// ExportStore abstracts writing parquet payloads and manifests to storage.
type ExportStore interface {
	// WriteParquet writes parquet bytes to storage.
	WriteParquet(ctx context.Context, ref ExportRef, parquetBytes []byte) error

	// WriteManifest writes a manifest file to storage.
	WriteManifest(ctx context.Context, ref ExportRef, manifest *Manifest) error

	// Exists checks if a table export already exists.
	Exists(ctx context.Context, ref ExportRef) (bool, error)

	// URI returns the canonical URI for the given key.
	// For local: file:///path, GCS: gs://bucket/path, S3: s3://bucket/path
	URI(key string) string

	// Close releases any resources.
	Close() error
}

// StorageConfig configures the storage backend.
type StorageConfig struct {
	Backend string // "local" | "gcs" | "s3"

	// Local filesystem
	LocalDir string

	// GCS
	GCSBucket string

	// S3 (also works for B2, R2, MinIO)
	S3Bucket   string
	S3Endpoint string // custom endpoint for B2/MinIO/R2
	S3Region   string

	// Common
	Prefix string // path prefix within bucket or local dir
}

// NewExportStore creates a storage backend based on configuration.
func NewExportStore(cfg StorageConfig) (ExportStore, error) {
	switch cfg.Backend {
	case "local":
		if cfg.LocalDir == "" {
			return nil, fmt.Errorf("LocalDir required for local backend")
		}
		return NewLocalStore(cfg.LocalDir, cfg.Prefix)
	case "gcs":
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCSBucket required for gcs backend")
		}
		return NewGCSStore(cfg.GCSBucket, cfg.Prefix)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3Bucket required for s3 backend")
		}
		return NewS3Store(cfg.S3Bucket, cfg.Prefix, cfg.S3Endpoint, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
