package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/skyframe/internal/protocol/event"
	"github.com/danmuck/skyframe/internal/protocol/frame"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	var asHex bool
	cmd := &cobra.Command{
		Use:   "decode [file|-]",
		Short: "Decode a single frame and print its header",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			if asHex {
				data, err = hex.DecodeString(strings.TrimSpace(string(data)))
				if err != nil {
					return fmt.Errorf("decode hex: %w", err)
				}
			}
			return printFrame(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().BoolVar(&asHex, "hex", false, "input is hex encoded")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func printFrame(w io.Writer, data []byte) error {
	f, err := frame.Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", frame.Class(err), err)
	}
	fmt.Fprintf(w, "op:    %s\n", f.Kind())
	if tag, ok := f.Header.TypeTag(); ok {
		fmt.Fprintf(w, "type:  %s\n", tag)
	}
	if f.IsMessage() {
		fmt.Fprintf(w, "body:  %d bytes\n", len(f.Message.Body))
	}

	s, err := event.Summarize(f)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "kind:  %s\n", s.Kind)
	fmt.Fprintf(w, "label: %s\n", s.Label())
	if s.HasSeq {
		fmt.Fprintf(w, "seq:   %d\n", s.Seq)
	}
	if actor := s.Actor(); actor != "" {
		fmt.Fprintf(w, "actor: %s\n", actor)
	}
	return nil
}
