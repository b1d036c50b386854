package main

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"time"

	"github.com/danmuck/skyframe/internal/batch"
	"github.com/danmuck/skyframe/internal/firehose"
	"github.com/danmuck/skyframe/internal/observability"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newStreamCmd(opts *globalOpts) *cobra.Command {
	var (
		duration time.Duration
		record   string
	)
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Subscribe to the firehose and decode frames as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			var dump *os.File
			if record != "" {
				dump, err = os.Create(record)
				if err != nil {
					return err
				}
				defer dump.Close()
			}

			var frames, failed atomic.Int64
			sub := firehose.NewSubscriber(cfg.Firehose, logger)
			proc := batch.NewProcessor(cfg.Batch, logger, nil)
			status := func() map[string]any {
				return map[string]any{
					"frames": frames.Load(),
					"failed": failed.Load(),
					"cursor": sub.Cursor(),
				}
			}

			g, gctx := errgroup.WithContext(ctx)
			if cfg.Metrics.Listen != "" {
				g.Go(func() error {
					return observability.Serve(gctx, cfg.Metrics.Listen, logger, status)
				})
			}
			g.Go(func() error {
				return sub.Run(gctx, func(ctx context.Context, msgs []batch.Message) error {
					if dump != nil {
						if err := batch.WriteDump(dump, msgs); err != nil {
							return err
						}
					}
					res, err := proc.Process(ctx, batch.Pack(msgs))
					frames.Add(int64(res.Frames))
					failed.Add(int64(res.Failed))
					if res.HasSeq {
						sub.SetCursor(res.LastSeq)
					}
					return err
				})
			})

			err = g.Wait()
			logger.Info().
				Int64("frames", frames.Load()).
				Int64("failed", failed.Load()).
				Int64("cursor", sub.Cursor()).
				Msg("stream finished")
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	cmd.Flags().StringVar(&record, "record", "", "also write received frames to this dump file")
	return cmd
}
