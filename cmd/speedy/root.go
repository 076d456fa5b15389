package main

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/backmassage/speedy/internal/check"
	"github.com/backmassage/speedy/internal/config"
	"github.com/backmassage/speedy/internal/display"
	"github.com/backmassage/speedy/internal/pipeline"
	"github.com/backmassage/speedy/internal/term"
)

func newRootCommand(cc *commandContext) *cobra.Command {
	jf := &jobFlags{}

	rootCmd := &cobra.Command{
		Use:           "speedy",
		Short:         "Change video speed and apply color grading with ffmpeg",
		Example:       "  speedy -i clip.mp4 -s 2\n  speedy -i footage/ -o out/ --preset dji-dlog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cc.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if jf.listPresets {
				return writePresets(cmd.OutOrStdout())
			}
			if strings.TrimSpace(jf.input) == "" {
				return errors.New("--input is required")
			}
			return runJob(cmd, cc, jf)
		},
	}

	cc.flags = config.BindFlags(rootCmd.PersistentFlags())
	jf.bind(rootCmd.Flags())

	rootCmd.AddCommand(newPresetsCommand())
	rootCmd.AddCommand(newCheckCommand(cc))
	rootCmd.AddCommand(newProbeCommand(cc))
	rootCmd.AddCommand(newVersionCommand(cc))
	return rootCmd
}

// runJob validates dependencies and hands the input to the pipeline.
func runJob(cmd *cobra.Command, cc *commandContext, jf *jobFlags) error {
	ctx := cmd.Context()
	cfg, log := cc.cfg, cc.log

	opts, err := jf.options(cmd.Flags(), cfg)
	if err != nil {
		return err
	}

	if term.IsTerminal(os.Stderr) {
		display.PrintBanner(os.Stderr)
	}
	if jf.preset != "" {
		log.Info("Preset: %s", jf.preset)
	}

	// A dry run never encodes, so the test encode is skipped.
	encoder := opts.Codec
	if cfg.DryRun {
		encoder = ""
	}
	if err := check.CheckDeps(ctx, cfg, encoder); err != nil {
		return err
	}
	log.Debug("ffmpeg %s", check.FFmpegVersion(ctx, cfg.FFmpegBinary))

	runner := pipeline.NewRunner(cfg, log)
	runner.Stdout = cmd.OutOrStdout()
	_, err = runner.Run(ctx, jf.input, jf.output, opts)
	return err
}
