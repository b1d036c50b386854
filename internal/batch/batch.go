package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/skyframe/internal/observability"
	"github.com/danmuck/skyframe/internal/protocol/event"
	"github.com/danmuck/skyframe/internal/protocol/frame"
	"github.com/rs/zerolog"
)

var (
	ErrLengthMismatch = errors.New("batch: lengths and offsets differ in count")
	ErrShortBuffer    = errors.New("batch: lengths exceed buffer")
)

// List is a run of frames packed back to back in Buffer. Frame i occupies
// Lengths[i] bytes and was received Offsets[i] after frame i-1 (after
// Start for frame 0).
type List struct {
	Buffer  []byte
	Lengths []uint32
	Start   time.Time
	Offsets []time.Duration
}

// Len returns the number of frames in l.
func (l List) Len() int {
	return len(l.Lengths)
}

// Validate checks that l can be sliced into its frames.
func (l List) Validate() error {
	if len(l.Lengths) != len(l.Offsets) {
		return fmt.Errorf("%w: %d lengths, %d offsets", ErrLengthMismatch, len(l.Lengths), len(l.Offsets))
	}
	var total uint64
	for _, n := range l.Lengths {
		total += uint64(n)
	}
	if total > uint64(len(l.Buffer)) {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, total, len(l.Buffer))
	}
	return nil
}

// Record is the outcome for one frame of a List.
type Record struct {
	Index     int
	Offset    int
	Length    int
	Timestamp time.Time
	Frame     frame.Frame
	Summary   event.Summary
	Err       error
}

// OK reports whether the frame decoded and summarised cleanly.
func (r Record) OK() bool {
	return r.Err == nil
}

// FrameError is returned when processing stops at a failed frame.
type FrameError struct {
	Index int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("batch: frame %d: %v", e.Index, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Result summarises one processed List.
type Result struct {
	Frames   int
	Records  []Record
	Kinds    map[event.Kind]int
	Failed   int
	Last     time.Time
	LastSeq  int64
	HasSeq   bool
	Duration time.Duration
}

// Options controls failure handling.
type Options struct {
	// StopOnError ends the batch at the first failed frame. Otherwise the
	// failure is logged on its record and processing continues.
	StopOnError bool
	// KeepRecords retains every Record on the Result.
	KeepRecords bool
}

// Handler receives records in input order.
type Handler func(Record) error

// Processor decodes Lists. It holds no per-batch state, so one Processor
// may serve concurrent calls on different Lists.
type Processor struct {
	opts    Options
	logger  zerolog.Logger
	handler Handler
}

func NewProcessor(opts Options, logger zerolog.Logger, handler Handler) *Processor {
	return &Processor{
		opts:    opts,
		logger:  logger.With().Str("component", "batch").Logger(),
		handler: handler,
	}
}

// Process decodes every frame of l in order.
func (p *Processor) Process(ctx context.Context, l List) (Result, error) {
	if err := l.Validate(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	res := Result{Kinds: make(map[event.Kind]int)}
	if p.opts.KeepRecords {
		res.Records = make([]Record, 0, l.Len())
	}

	offset := 0
	ts := l.Start
	for i, n := range l.Lengths {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}
		end := offset + int(n)
		ts = ts.Add(l.Offsets[i])

		rec := processOne(i, offset, l.Buffer[offset:end], ts)
		offset = end
		res.Frames++
		res.Last = ts

		if p.opts.KeepRecords {
			res.Records = append(res.Records, rec)
		}
		if rec.Err != nil {
			res.Failed++
			observability.RecordFrameError(classOf(rec.Err), rec.Length)
			p.logger.Warn().
				Int("index", i).
				Int("offset", rec.Offset).
				Int("length", rec.Length).
				Str("class", classOf(rec.Err)).
				Err(rec.Err).
				Msg("batch.Processor.Process frame failed")
			if p.opts.StopOnError {
				res.Duration = time.Since(start)
				observability.RecordBatch(res.Frames, res.Duration)
				return res, &FrameError{Index: i, Err: rec.Err}
			}
		} else {
			res.Kinds[rec.Summary.Kind]++
			if rec.Summary.HasSeq {
				res.LastSeq = rec.Summary.Seq
				res.HasSeq = true
			}
			observability.RecordFrame(string(rec.Summary.Kind), rec.Length)
		}

		if p.handler != nil {
			if err := p.handler(rec); err != nil {
				res.Duration = time.Since(start)
				return res, fmt.Errorf("batch: handler at frame %d: %w", i, err)
			}
		}
	}

	res.Duration = time.Since(start)
	observability.RecordBatch(res.Frames, res.Duration)
	p.logger.Debug().
		Int("frames", res.Frames).
		Int("failed", res.Failed).
		Dur("elapsed", res.Duration).
		Msg("batch.Processor.Process complete")
	return res, nil
}

func processOne(index, offset int, data []byte, ts time.Time) Record {
	rec := Record{Index: index, Offset: offset, Length: len(data), Timestamp: ts}
	f, err := frame.Decode(data)
	if err != nil {
		rec.Err = err
		return rec
	}
	rec.Frame = f
	rec.Summary, rec.Err = event.Summarize(f)
	return rec
}

func classOf(err error) string {
	if errors.Is(err, event.ErrBody) {
		return "invalid_body"
	}
	return frame.Class(err)
}
