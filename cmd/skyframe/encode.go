package main

import (
	"encoding/hex"
	"fmt"

	"github.com/danmuck/skyframe/internal/protocol/frame"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var (
		op      int64
		typeTag string
		bodyHex string
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a frame and print it as hex",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := hex.DecodeString(bodyHex)
			if err != nil {
				return fmt.Errorf("decode --body-hex: %w", err)
			}
			h := frame.Header{Op: frame.Op(op)}
			if cmd.Flags().Changed("type") {
				h.Type = typeTag
				h.HasType = true
			}
			buf, err := frame.Encode(h, body)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(buf))
			return nil
		},
	}
	cmd.Flags().Int64Var(&op, "op", int64(frame.OpMessage), "frame op (1 message, -1 error)")
	cmd.Flags().StringVar(&typeTag, "type", "", "message type tag, e.g. #commit")
	cmd.Flags().StringVar(&bodyHex, "body-hex", "", "frame body as hex")
	return cmd
}
