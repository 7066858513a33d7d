package metadata

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// PostgresWriter implements Writer using PostgreSQL.
type PostgresWriter struct {
	pool *pgxpool.Pool
	cfg  CatalogConfig

	mu           sync.Mutex
	datasetCache map[string]int64 // cache dataset IDs by taskdata id
}

// NewPostgresWriter creates a new PostgreSQL catalog writer.
func NewPostgresWriter(cfg CatalogConfig) (*PostgresWriter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolCfg.MaxConns = 5
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	w := &PostgresWriter{
		pool:         pool,
		cfg:          cfg,
		datasetCache: make(map[string]int64),
	}

	if err := w.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return w, nil
}

func (w *PostgresWriter) initSchema(ctx context.Context) error {
	_, err := w.pool.Exec(ctx, schemaSQL)
	return err
}

// ensureDataset registers the task-data directory and returns its dataset ID.
func (w *PostgresWriter) ensureDataset(ctx context.Context, taskDataID string) (int64, error) {
	w.mu.Lock()
	if id, ok := w.datasetCache[taskDataID]; ok {
		w.mu.Unlock()
		return id, nil
	}
	w.mu.Unlock()

	var id int64
	err := w.pool.QueryRow(ctx, `
		INSERT INTO taskdata_datasets (namespace, taskdata_id)
		VALUES ($1, $2)
		ON CONFLICT (namespace, taskdata_id) DO UPDATE SET namespace = EXCLUDED.namespace
		RETURNING id`,
		w.cfg.Namespace, taskDataID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure dataset: %w", err)
	}

	w.mu.Lock()
	w.datasetCache[taskDataID] = id
	w.mu.Unlock()
	return id, nil
}

// RecordRun inserts one decode-run record.
func (w *PostgresWriter) RecordRun(ctx context.Context, rec RunRecord) error {
	datasetID, err := w.ensureDataset(ctx, rec.TaskDataID)
	if err != nil {
		return err
	}

	checksums, err := json.Marshal(rec.Checksums)
	if err != nil {
		return fmt.Errorf("marshal checksums: %w", err)
	}
	rowCounts, err := json.Marshal(rec.RowCounts)
	if err != nil {
		return fmt.Errorf("marshal row counts: %w", err)
	}

	_, err = w.pool.Exec(ctx, `
		INSERT INTO taskdata_decode_runs
			(dataset_id, task_id, task_name, runs_decoded, runs_skipped,
			 checksums, row_counts, producer_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		datasetID, rec.TaskID, rec.TaskName, rec.RunsDecoded, rec.RunsSkipped,
		checksums, rowCounts, rec.ProducerVersion,
	)
	if err != nil {
		return fmt.Errorf("insert decode run: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (w *PostgresWriter) Close() {
	if w.pool != nil {
		w.pool.Close()
	}
}
