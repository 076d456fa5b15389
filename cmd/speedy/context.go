package main

import (
	"strings"

	"github.com/backmassage/speedy/internal/config"
	"github.com/backmassage/speedy/internal/logging"
)

// commandContext carries the global flags and, once setup has run, the
// resolved config and logger shared by every subcommand.
type commandContext struct {
	flags *config.FlagValues
	cfg   *config.Config
	log   *logging.Logger
}

// setup loads the config file, overlays explicitly set global flags, and
// builds the logger.
func (c *commandContext) setup() error {
	var path string
	if c.flags != nil {
		path = strings.TrimSpace(c.flags.ConfigPath)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.flags != nil {
		if err := c.flags.Apply(cfg); err != nil {
			return err
		}
	}
	log, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = log
	return nil
}

func (c *commandContext) close() {
	if c.log != nil {
		_ = c.log.Close()
	}
}
