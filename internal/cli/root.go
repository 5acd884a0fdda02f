// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package cli implements the scenery command.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gviegas/scenery/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config  string
	Verbose bool
}

// NewRootCommand creates the root command for the scenery CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "scenery",
		Short: "Scene graph runner",
		Long: `Load scene descriptions into a scene graph, resolve their
transforms and hand draw-ready items to a renderer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "path to a TOML configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))

	return cmd
}

// load returns the configuration and the logger that
// opts ask for.
func (opts *RootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return nil, nil, err
		}
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
