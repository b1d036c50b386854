package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/skyframe/internal/firehose"
	"github.com/rs/zerolog"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skyframe.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadTemplateMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skyframe.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	def := Default()
	if cfg.Firehose != def.Firehose {
		t.Fatalf("firehose mismatch: got=%+v want=%+v", cfg.Firehose, def.Firehose)
	}
	if cfg.Metrics != def.Metrics {
		t.Fatalf("metrics mismatch: got=%+v want=%+v", cfg.Metrics, def.Metrics)
	}
	if cfg.Log.Level != zerolog.InfoLevel {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	path := writeConfig(t, "")
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected overwrite refusal")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[firehose]
url = "ws://127.0.0.1:2470/xrpc/com.atproto.sync.subscribeRepos"
cursor = 12345
batch_interval = "10ms"
max_batch = 64

[firehose.backoff]
initial_delay = "1s"
jitter = false

[batch]
stop_on_error = true

[log]
level = "debug"
json = true

[metrics]
listen = ":9999"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Firehose.URL != "ws://127.0.0.1:2470/xrpc/com.atproto.sync.subscribeRepos" {
		t.Fatalf("unexpected url: %q", cfg.Firehose.URL)
	}
	if cfg.Firehose.Cursor != 12345 {
		t.Fatalf("unexpected cursor: %d", cfg.Firehose.Cursor)
	}
	if cfg.Firehose.BatchInterval != 10*time.Millisecond {
		t.Fatalf("unexpected batch interval: %v", cfg.Firehose.BatchInterval)
	}
	if cfg.Firehose.MaxBatch != 64 {
		t.Fatalf("unexpected max batch: %d", cfg.Firehose.MaxBatch)
	}
	if cfg.Firehose.ReadTimeout != firehose.DefaultConfig().ReadTimeout {
		t.Fatalf("read timeout should keep default, got %v", cfg.Firehose.ReadTimeout)
	}
	if cfg.Firehose.Backoff.InitialDelay != time.Second || cfg.Firehose.Backoff.Jitter {
		t.Fatalf("unexpected backoff: %+v", cfg.Firehose.Backoff)
	}
	if cfg.Firehose.Backoff.Multiplier != 2.0 {
		t.Fatalf("backoff multiplier should keep default, got %v", cfg.Firehose.Backoff.Multiplier)
	}
	if !cfg.Batch.StopOnError {
		t.Fatalf("expected stop_on_error")
	}
	if cfg.Log.Level != zerolog.DebugLevel || !cfg.Log.JSON {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Metrics.Listen != ":9999" {
		t.Fatalf("unexpected metrics listen: %q", cfg.Metrics.Listen)
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, `
[firehose]
read_timeout = "abc"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[firehose]
urll = "wss://bsky.network"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestLoadRejectsBadURLAndLevel(t *testing.T) {
	path := writeConfig(t, `
[firehose]
url = "http://bsky.network"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected url validation error")
	}

	path = writeConfig(t, `
[log]
level = "chatty"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected level parse error")
	}
}
