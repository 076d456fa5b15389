package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/speedy/internal/pipeline"
	"github.com/backmassage/speedy/internal/probe"
)

func newProbeCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe FILE...",
		Short: "Show media info for files or directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prober := probe.FFprobe{Binary: cc.cfg.FFprobeBinary}
			results, err := pipeline.Inspect(cmd.Context(), prober, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), pipeline.InspectTable(results))
			return err
		},
	}
}
