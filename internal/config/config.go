package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Input   InputConfig   `yaml:"input"`
	Export  ExportConfig  `yaml:"export"`
	Storage StorageConfig `yaml:"storage"`
	Catalog CatalogConfig `yaml:"catalog"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

type InputConfig struct {
	// Dir is the task-data directory holding TASKDATA.XML and its
	// companion fragment and time-log files.
	Dir string `yaml:"dir"`
}

type ExportConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Compression string `yaml:"compression"` // "snappy" | "zstd" | "none"
}

type StorageConfig struct {
	Backend  string `yaml:"backend"` // "local" | "gcs" | "s3"
	LocalDir string `yaml:"local_dir"`

	GCSBucket string `yaml:"gcs_bucket"`

	// S3 settings also work for B2, R2 and MinIO.
	S3Bucket   string `yaml:"s3_bucket"`
	S3Endpoint string `yaml:"s3_endpoint"`
	S3Region   string `yaml:"s3_region"`

	Prefix string `yaml:"prefix"`
}

type CatalogConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
	Namespace   string `yaml:"namespace"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// MustLoad reads configuration from the environment, optionally seeded from a
// YAML file named by TDD_CONFIG. Environment variables win over file values.
func MustLoad() Config {
	cfg := Config{
		Export: ExportConfig{
			Compression: "snappy",
		},
		Storage: StorageConfig{
			Backend: "local",
			Prefix:  "timelogs/",
		},
		Catalog: CatalogConfig{
			Namespace: "taskdata",
		},
		Metrics: MetricsConfig{
			Address: ":9090",
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}

	if path := os.Getenv("TDD_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("[config] read %s: %v", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("[config] parse %s: %v", path, err)
		}
	}

	cfg.Input.Dir = envStr("TDD_INPUT_DIR", cfg.Input.Dir)

	cfg.Export.Enabled = envBool("TDD_EXPORT_ENABLED", cfg.Export.Enabled)
	cfg.Export.Compression = envStr("TDD_EXPORT_COMPRESSION", cfg.Export.Compression)

	cfg.Storage.Backend = envStr("TDD_STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.LocalDir = envStr("TDD_STORAGE_LOCAL_DIR", cfg.Storage.LocalDir)
	cfg.Storage.GCSBucket = envStr("TDD_STORAGE_GCS_BUCKET", cfg.Storage.GCSBucket)
	cfg.Storage.S3Bucket = envStr("TDD_STORAGE_S3_BUCKET", cfg.Storage.S3Bucket)
	cfg.Storage.S3Endpoint = envStr("TDD_STORAGE_S3_ENDPOINT", cfg.Storage.S3Endpoint)
	cfg.Storage.S3Region = envStr("TDD_STORAGE_S3_REGION", cfg.Storage.S3Region)
	cfg.Storage.Prefix = envStr("TDD_STORAGE_PREFIX", cfg.Storage.Prefix)

	cfg.Catalog.PostgresDSN = envStr("TDD_CATALOG_POSTGRES_DSN", cfg.Catalog.PostgresDSN)
	cfg.Catalog.Namespace = envStr("TDD_CATALOG_NAMESPACE", cfg.Catalog.Namespace)

	cfg.Metrics.Enabled = envBool("TDD_METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Address = envStr("TDD_METRICS_ADDRESS", cfg.Metrics.Address)

	cfg.Log.Format = envStr("TDD_LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Level = envStr("TDD_LOG_LEVEL", cfg.Log.Level)

	if cfg.Input.Dir == "" {
		log.Fatal("[config] TDD_INPUT_DIR is required")
	}

	return cfg
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("[config] %s: invalid bool %q", key, v)
	}
	return b
}
