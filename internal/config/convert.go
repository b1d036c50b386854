package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/skyframe/internal/batch"
	"github.com/danmuck/skyframe/internal/firehose"
	"github.com/danmuck/skyframe/internal/logging"
)

func applyFirehose(cfg *firehose.Config, raw fileFirehose, meta toml.MetaData) error {
	if meta.IsDefined("firehose", "url") {
		cfg.URL = strings.TrimSpace(raw.URL)
	}
	if meta.IsDefined("firehose", "cursor") {
		cfg.Cursor = raw.Cursor
	}
	if meta.IsDefined("firehose", "max_batch") {
		cfg.MaxBatch = raw.MaxBatch
	}
	if meta.IsDefined("firehose", "max_reconnects") {
		cfg.MaxReconnects = raw.MaxReconnects
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"handshake_timeout", raw.HandshakeTimeout, &cfg.HandshakeTimeout},
		{"read_timeout", raw.ReadTimeout, &cfg.ReadTimeout},
		{"batch_interval", raw.BatchInterval, &cfg.BatchInterval},
	}
	for _, d := range durations {
		if !meta.IsDefined("firehose", d.key) {
			continue
		}
		v, err := parseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse firehose.%s: %w", d.key, err)
		}
		*d.dst = v
	}

	if meta.IsDefined("firehose", "backoff", "initial_delay") {
		v, err := parseDuration(raw.Backoff.InitialDelay)
		if err != nil {
			return fmt.Errorf("parse firehose.backoff.initial_delay: %w", err)
		}
		cfg.Backoff.InitialDelay = v
	}
	if meta.IsDefined("firehose", "backoff", "max_delay") {
		v, err := parseDuration(raw.Backoff.MaxDelay)
		if err != nil {
			return fmt.Errorf("parse firehose.backoff.max_delay: %w", err)
		}
		cfg.Backoff.MaxDelay = v
	}
	if meta.IsDefined("firehose", "backoff", "multiplier") {
		cfg.Backoff.Multiplier = raw.Backoff.Multiplier
	}
	if meta.IsDefined("firehose", "backoff", "jitter") {
		cfg.Backoff.Jitter = raw.Backoff.Jitter
	}
	return nil
}

func applyBatch(cfg *batch.Options, raw fileBatch, meta toml.MetaData) {
	if meta.IsDefined("batch", "stop_on_error") {
		cfg.StopOnError = raw.StopOnError
	}
}

func applyLog(cfg *logging.Config, raw fileLog, meta toml.MetaData) error {
	if meta.IsDefined("log", "level") {
		lvl, ok := logging.ParseLevel(raw.Level)
		if !ok {
			return fmt.Errorf("parse log.level: unknown level %q", raw.Level)
		}
		cfg.Level = lvl
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Timestamp = raw.Timestamp
	}
	if meta.IsDefined("log", "no_color") {
		cfg.NoColor = raw.NoColor
	}
	if meta.IsDefined("log", "json") {
		cfg.JSON = raw.JSON
	}
	if meta.IsDefined("log", "file") {
		cfg.File.Path = strings.TrimSpace(raw.File)
	}
	if meta.IsDefined("log", "max_size_mb") {
		cfg.File.MaxSizeMB = raw.MaxSizeMB
	}
	if meta.IsDefined("log", "max_backups") {
		cfg.File.MaxBackups = raw.MaxBackups
	}
	if meta.IsDefined("log", "max_age_days") {
		cfg.File.MaxAgeDays = raw.MaxAgeDays
	}
	if meta.IsDefined("log", "compress") {
		cfg.File.Compress = raw.Compress
	}
	return nil
}

func parseDuration(raw string) (time.Duration, error) {
	return time.ParseDuration(strings.TrimSpace(raw))
}
