package firehose

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/danmuck/skyframe/internal/batch"
	"github.com/danmuck/skyframe/internal/observability"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler receives received messages in arrival order.
type Handler func(ctx context.Context, msgs []batch.Message) error

type handlerError struct{ err error }

func (e *handlerError) Error() string { return e.err.Error() }
func (e *handlerError) Unwrap() error { return e.err }

// Subscriber pumps binary websocket messages from a firehose endpoint into
// batches.
type Subscriber struct {
	cfg    Config
	logger zerolog.Logger
	dialer *websocket.Dialer
	rng    *rand.Rand
	cursor atomic.Int64
}

func NewSubscriber(cfg Config, logger zerolog.Logger) *Subscriber {
	cfg = cfg.withDefaults()
	s := &Subscriber{
		cfg:    cfg,
		logger: logger.With().Str("component", "firehose").Logger(),
		dialer: &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.cursor.Store(cfg.Cursor)
	return s
}

// SetCursor records the last fully processed sequence number. Reconnects
// resume after it.
func (s *Subscriber) SetCursor(seq int64) {
	s.cursor.Store(seq)
}

func (s *Subscriber) Cursor() int64 {
	return s.cursor.Load()
}

// Run reads until ctx is done, handle fails, or reconnects are exhausted.
func (s *Subscriber) Run(ctx context.Context, handle Handler) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	failures := 0
	for {
		received, err := s.session(ctx, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var he *handlerError
		if errors.As(err, &he) {
			return fmt.Errorf("firehose: handler: %w", he.err)
		}
		if received > 0 {
			failures = 0
		}
		failures++
		if s.cfg.MaxReconnects < 0 || (s.cfg.MaxReconnects > 0 && failures > s.cfg.MaxReconnects) {
			return fmt.Errorf("firehose: giving up after %d attempts: %w", failures, err)
		}

		delay := s.cfg.Backoff.Delay(failures, s.rng)
		s.logger.Warn().
			Err(err).
			Int("attempt", failures).
			Dur("delay", delay).
			Int64("cursor", s.Cursor()).
			Msg("firehose.Subscriber.Run reconnecting")
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Subscriber) endpoint() (string, error) {
	u, err := url.Parse(strings.TrimSpace(s.cfg.URL))
	if err != nil {
		return "", fmt.Errorf("firehose: parse url: %w", err)
	}
	if cursor := s.Cursor(); cursor > 0 {
		q := u.Query()
		q.Set("cursor", strconv.FormatInt(cursor, 10))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// session runs one connection and returns how many messages it received.
func (s *Subscriber) session(ctx context.Context, handle Handler) (int, error) {
	logger := s.logger.With().Str("session", uuid.NewString()).Logger()
	endpoint, err := s.endpoint()
	if err != nil {
		return 0, err
	}

	conn, resp, err := s.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		observability.RecordConnect(false)
		ev := logger.Error().Err(err).Str("url", endpoint)
		if resp != nil {
			ev = ev.Int("status", resp.StatusCode)
		}
		ev.Msg("firehose.Subscriber.session dial failed")
		return 0, fmt.Errorf("firehose: dial: %w", err)
	}
	observability.RecordConnect(true)
	logger.Info().Str("url", endpoint).Msg("firehose.Subscriber.session connected")
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	done := make(chan struct{})
	defer close(done)
	msgs := make(chan batch.Message, s.cfg.MaxBatch)
	readErr := make(chan error, 1)
	go s.read(conn, logger, msgs, readErr, done)

	ticker := time.NewTicker(s.cfg.BatchInterval)
	defer ticker.Stop()

	received := 0
	pending := make([]batch.Message, 0, s.cfg.MaxBatch)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		out := pending
		pending = make([]batch.Message, 0, s.cfg.MaxBatch)
		if err := handle(ctx, out); err != nil {
			return &handlerError{err: err}
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return received, ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return received, ctx.Err()
				}
				if err := flush(); err != nil {
					return received, err
				}
				err := <-readErr
				logger.Info().Err(err).Int("received", received).Msg("firehose.Subscriber.session closed")
				return received, err
			}
			received++
			pending = append(pending, m)
			if len(pending) >= s.cfg.MaxBatch {
				if err := flush(); err != nil {
					return received, err
				}
			}
		case <-ticker.C:
			if err := flush(); err != nil {
				return received, err
			}
		}
	}
}

func (s *Subscriber) read(conn *websocket.Conn, logger zerolog.Logger, out chan<- batch.Message, errc chan<- error, done <-chan struct{}) {
	defer close(out)
	for {
		if s.cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}
		kind, data, err := conn.ReadMessage()
		if err != nil {
			errc <- err
			return
		}
		received := time.Now()
		if kind != websocket.BinaryMessage {
			logger.Warn().Int("type", kind).Int("bytes", len(data)).Msg("firehose: ignoring non-binary message")
			continue
		}
		observability.RecordStreamMessage()
		select {
		case out <- batch.Message{Received: received, Data: data}:
		case <-done:
			errc <- nil
			return
		}
	}
}
