package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/speedy/internal/check"
)

func newVersionCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "speedy %s (%s)\n", version, commit)
			fmt.Fprintf(out, "ffmpeg %s\n", check.FFmpegVersion(cmd.Context(), cc.cfg.FFmpegBinary))
			return nil
		},
	}
}
