// Package metadata records decode runs in an optional Postgres catalog.
package metadata

import (
	"context"
)

type CatalogConfig struct {
	PostgresDSN string
	Namespace   string
}

// Writer persists decode-run records. Catalog failures are reported but the
// catalog is optional; callers log and continue.
type Writer interface {
	RecordRun(ctx context.Context, rec RunRecord) error
	Close()
}

// RunRecord describes one exported task decode.
type RunRecord struct {
	TaskDataID      string
	TaskID          string
	TaskName        string
	RunsDecoded     int
	RunsSkipped     int
	Checksums       map[string]string
	RowCounts       map[string]int64
	ProducerVersion string
}

// NewWriter returns a Postgres-backed writer when a DSN is configured and a
// no-op writer otherwise.
func NewWriter(cfg CatalogConfig) (Writer, error) {
	if cfg.PostgresDSN == "" {
		return noopWriter{}, nil
	}
	return NewPostgresWriter(cfg)
}

type noopWriter struct{}

func (noopWriter) RecordRun(context.Context, RunRecord) error { return nil }
func (noopWriter) Close()                                     {}
