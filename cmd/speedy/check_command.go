package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/backmassage/speedy/internal/check"
)

var errCheckFailed = errors.New("system check failed")

func newCheckCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify ffmpeg, encoders, filters and LUTs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !check.RunCheck(cmd.Context(), cc.cfg, cc.log) {
				return errCheckFailed
			}
			return nil
		},
	}
}
