package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/backmassage/speedy/internal/display"
	"github.com/backmassage/speedy/internal/planner"
)

func newPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writePresets(cmd.OutOrStdout())
		},
	}
}

func writePresets(w io.Writer) error {
	rows := make([][]string, 0, len(planner.Presets))
	for _, p := range planner.Presets {
		rows = append(rows, []string{p.Name, strings.Join(p.Aliases, ", "), p.Description})
	}
	table := display.RenderTable([]string{"Preset", "Aliases", "Description"}, rows, nil)
	_, err := fmt.Fprintf(w, "%s\n\nUsage: speedy -i input.mp4 -o output.mp4 --preset dji-dlog\n", table)
	return err
}
