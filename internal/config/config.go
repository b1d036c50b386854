package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/skyframe/internal/batch"
	"github.com/danmuck/skyframe/internal/firehose"
	"github.com/danmuck/skyframe/internal/logging"
)

// Config is the full skyframe runtime configuration.
type Config struct {
	Firehose firehose.Config
	Batch    batch.Options
	Log      logging.Config
	Metrics  MetricsConfig
}

type MetricsConfig struct {
	Listen string
}

func Default() Config {
	return Config{
		Firehose: firehose.DefaultConfig(),
		Log:      logging.DefaultConfig(logging.ProfileRuntime),
		Metrics:  MetricsConfig{Listen: "127.0.0.1:9464"},
	}
}

type fileConfig struct {
	Firehose fileFirehose `toml:"firehose"`
	Batch    fileBatch    `toml:"batch"`
	Log      fileLog      `toml:"log"`
	Metrics  fileMetrics  `toml:"metrics"`
}

type fileFirehose struct {
	URL              string      `toml:"url"`
	Cursor           int64       `toml:"cursor"`
	HandshakeTimeout string      `toml:"handshake_timeout"`
	ReadTimeout      string      `toml:"read_timeout"`
	BatchInterval    string      `toml:"batch_interval"`
	MaxBatch         int         `toml:"max_batch"`
	MaxReconnects    int         `toml:"max_reconnects"`
	Backoff          fileBackoff `toml:"backoff"`
}

type fileBackoff struct {
	InitialDelay string  `toml:"initial_delay"`
	Multiplier   float64 `toml:"multiplier"`
	MaxDelay     string  `toml:"max_delay"`
	Jitter       bool    `toml:"jitter"`
}

type fileBatch struct {
	StopOnError bool `toml:"stop_on_error"`
}

type fileLog struct {
	Level      string `toml:"level"`
	Timestamp  bool   `toml:"timestamp"`
	NoColor    bool   `toml:"no_color"`
	JSON       bool   `toml:"json"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

type fileMetrics struct {
	Listen string `toml:"listen"`
}

// Load reads path on top of Default. Keys absent from the file keep their
// defaults.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	cfg := Default()
	if err := applyFirehose(&cfg.Firehose, raw.Firehose, meta); err != nil {
		return Config{}, err
	}
	applyBatch(&cfg.Batch, raw.Batch, meta)
	if err := applyLog(&cfg.Log, raw.Log, meta); err != nil {
		return Config{}, err
	}
	if meta.IsDefined("metrics", "listen") {
		cfg.Metrics.Listen = strings.TrimSpace(raw.Metrics.Listen)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if err := cfg.Firehose.Validate(); err != nil {
		return fmt.Errorf("firehose config invalid: %w", err)
	}
	if cfg.Firehose.MaxBatch < 0 {
		return fmt.Errorf("firehose config invalid: max_batch must not be negative")
	}
	if cfg.Firehose.Backoff.Multiplier != 0 && cfg.Firehose.Backoff.Multiplier < 1 {
		return fmt.Errorf("firehose config invalid: backoff multiplier must be >= 1")
	}
	if cfg.Log.File.Path != "" && cfg.Log.File.MaxSizeMB < 0 {
		return fmt.Errorf("log config invalid: max_size_mb must not be negative")
	}
	return nil
}
