package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/danmuck/skyframe/internal/batch"
	"github.com/danmuck/skyframe/internal/protocol/event"
	"github.com/spf13/cobra"
)

func newReplayCmd(opts *globalOpts) *cobra.Command {
	var maxRecord uint32
	cmd := &cobra.Command{
		Use:   "replay <dump>",
		Short: "Decode every frame of a recorded dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			msgs, err := batch.ReadDump(f, maxRecord)
			if err != nil {
				return fmt.Errorf("read dump %s: %w", args[0], err)
			}
			logger.Info().Str("dump", args[0]).Int("frames", len(msgs)).Msg("replay loaded")

			res, err := batch.NewProcessor(cfg.Batch, logger, nil).Process(cmd.Context(), batch.Pack(msgs))
			printResult(cmd.OutOrStdout(), res)
			return err
		},
	}
	cmd.Flags().Uint32Var(&maxRecord, "max-record", batch.DefaultMaxDumpRecord, "largest accepted dump record in bytes")
	return cmd
}

func printResult(w io.Writer, res batch.Result) {
	kinds := make([]event.Kind, 0, len(res.Kinds))
	for k := range res.Kinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	fmt.Fprintf(w, "frames:  %d\n", res.Frames)
	fmt.Fprintf(w, "failed:  %d\n", res.Failed)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-12s %d\n", k, res.Kinds[k])
	}
	if res.HasSeq {
		fmt.Fprintf(w, "last seq: %d\n", res.LastSeq)
	}
	fmt.Fprintf(w, "elapsed: %s\n", res.Duration)
}
