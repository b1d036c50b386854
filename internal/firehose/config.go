package firehose

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const DefaultURL = "wss://bsky.network/xrpc/com.atproto.sync.subscribeRepos"

// Config defines subscriber connection and batching behavior.
type Config struct {
	URL              string
	Cursor           int64
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	BatchInterval    time.Duration
	MaxBatch         int
	// MaxReconnects caps consecutive failed reconnects. 0 retries forever,
	// a negative value never reconnects.
	MaxReconnects int
	Backoff       BackoffConfig
}

func DefaultConfig() Config {
	return Config{
		URL:              DefaultURL,
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      60 * time.Second,
		BatchInterval:    50 * time.Millisecond,
		MaxBatch:         512,
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     30 * time.Second,
			Jitter:       true,
		},
	}
}

// Validate checks the fields the subscriber cannot default.
func (c Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.URL))
	if err != nil {
		return fmt.Errorf("firehose: parse url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("firehose: url scheme must be ws or wss, got %q", u.Scheme)
	}
	if c.Cursor < 0 {
		return fmt.Errorf("firehose: cursor must not be negative")
	}
	return nil
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.BatchInterval <= 0 {
		c.BatchInterval = def.BatchInterval
	}
	if c.MaxBatch <= 0 {
		c.MaxBatch = def.MaxBatch
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	return c
}
