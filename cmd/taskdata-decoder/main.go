package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/croplog/taskdata-decoder/internal/config"
	"github.com/croplog/taskdata-decoder/internal/export"
	"github.com/croplog/taskdata-decoder/internal/logging"
	"github.com/croplog/taskdata-decoder/internal/metadata"
	"github.com/croplog/taskdata-decoder/internal/metrics"
	"github.com/croplog/taskdata-decoder/internal/storage"
	"github.com/croplog/taskdata-decoder/internal/taskdata"
	"github.com/croplog/taskdata-decoder/internal/timelog"
)

func main() {
	cfg := config.MustLoad()
	logging.Setup(logging.Config{Format: cfg.Log.Format, Level: cfg.Log.Level})

	log := logging.Component("main")
	log.Info("taskdata decoder starting",
		"version", export.Version,
		"git_sha", export.GitSHA,
		"input_dir", cfg.Input.Dir,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown handler
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		sig := <-ch
		log.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	m := metrics.Init("")
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(metrics.Config(cfg.Metrics)); err != nil {
				log.Error("metrics server failed", "error", err)
			}
		}()
	}

	dir, err := taskdata.OpenDir(cfg.Input.Dir)
	if err != nil {
		log.Error("open task-data directory failed", "error", err)
		os.Exit(1)
	}
	taskDataID := filepath.Base(dir.Path())

	// A document or fragment that cannot be loaded is fatal to the whole
	// operation; anything after this degrades per task or per run instead.
	doc, err := dir.LoadDocument()
	if err != nil {
		log.Error("load task-data document failed", "error", err)
		os.Exit(1)
	}

	cat := taskdata.NewCatalog(doc)
	agg := timelog.NewAggregator(cat, dir)

	ctx = logging.WithCorrelationID(ctx, logging.GenerateCorrelationID())
	start := time.Now()
	results := agg.Aggregate(ctx)
	m.DecodeDuration.WithLabelValues(taskDataID).Observe(time.Since(start).Seconds())

	var samples int64
	for _, res := range results {
		if res.Planned {
			m.TasksPlanned.WithLabelValues(taskDataID).Inc()
		} else {
			m.TasksDecoded.WithLabelValues(taskDataID).Inc()
		}
		m.RunsDecoded.WithLabelValues(taskDataID).Add(float64(res.RunsDecoded))
		m.RunsSkipped.WithLabelValues(taskDataID).Add(float64(res.RunsSkipped))
		samples += res.Samples()
	}
	m.SamplesDecoded.WithLabelValues(taskDataID).Add(float64(samples))

	log.Info("decode complete",
		"tasks", len(results),
		"samples", samples,
		"duration", time.Since(start).String(),
	)

	if cfg.Export.Enabled {
		if err := exportResults(ctx, cfg, m, log, taskDataID, results); err != nil {
			log.Error("export failed", "error", err)
			os.Exit(1)
		}
	}

	log.Info("taskdata decoder stopped")
}

// exportResults writes each task's parquet tables and manifest to the
// configured store and records the runs in the optional catalog.
func exportResults(ctx context.Context, cfg config.Config, m *metrics.Metrics,
	log *slog.Logger, taskDataID string, results []*timelog.TaskResult) error {

	store, err := storage.NewExportStore(storage.StorageConfig(cfg.Storage))
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer store.Close()

	writer, err := metadata.NewWriter(metadata.CatalogConfig(cfg.Catalog))
	if err != nil {
		log.Warn("catalog unavailable, continuing without it", "error", err)
		writer, _ = metadata.NewWriter(metadata.CatalogConfig{})
	}
	defer writer.Close()

	for i, res := range results {
		taskID := res.TaskID
		if taskID == "" {
			taskID = fmt.Sprintf("task-%03d", i)
		}

		out, err := export.BuildTask(res, export.Config{Compression: cfg.Export.Compression})
		if err != nil {
			log.Warn("build export failed", "task_id", taskID, "error", err)
			continue
		}
		if len(out.Parquets) == 0 {
			continue
		}

		exportStart := time.Now()
		ref := storage.ExportRef{TaskDataID: taskDataID, TaskID: taskID}
		for table, data := range out.Parquets {
			ref.Table = table
			if err := store.WriteParquet(ctx, ref, data); err != nil {
				m.StorageErrors.WithLabelValues(cfg.Storage.Backend).Inc()
				log.Warn("write parquet failed", "task_id", taskID, "table", table, "error", err)
				continue
			}
			m.ExportBytes.WithLabelValues(taskDataID).Observe(float64(len(data)))
		}

		manifest := export.BuildManifest(res, out, taskDataID)
		if err := store.WriteManifest(ctx, ref, manifest); err != nil {
			m.StorageErrors.WithLabelValues(cfg.Storage.Backend).Inc()
			log.Warn("write manifest failed", "task_id", taskID, "error", err)
		}
		m.ExportDuration.WithLabelValues(taskDataID).Observe(time.Since(exportStart).Seconds())

		rec := metadata.RunRecord{
			TaskDataID:      taskDataID,
			TaskID:          taskID,
			TaskName:        res.Name,
			RunsDecoded:     res.RunsDecoded,
			RunsSkipped:     res.RunsSkipped,
			Checksums:       out.Checksums,
			RowCounts:       out.RowCounts,
			ProducerVersion: fmt.Sprintf("taskdata-decoder@%s", export.Version),
		}
		if err := writer.RecordRun(ctx, rec); err != nil {
			m.CatalogErrors.WithLabelValues(taskDataID).Inc()
			log.Warn("record run in catalog failed", "task_id", taskID, "error", err)
		}

		log.Info("task exported",
			"task_id", taskID,
			"tables", len(out.Parquets),
			"uri", store.URI(ref.ManifestPath(cfg.Storage.Prefix)),
		)
	}

	return nil
}
