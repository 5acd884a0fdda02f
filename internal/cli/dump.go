// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gviegas/scenery/render"
	"github.com/gviegas/scenery/scene"
	"github.com/gviegas/scenery/scenefile"
	"github.com/gviegas/scenery/system"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Frames int
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump <scene>",
		Short: "Print the resolved hierarchy of a scene",
		Long: `Print the hierarchy of a scene after a number of simulation
frames, one node per line with its world translation.

Constraints read world positions resolved by the previous frame,
so at least two frames are needed for them to settle.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpScene(opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&opts.Frames, "frames", "n", 2, "number of frames to simulate before dumping")

	return cmd
}

func dumpScene(opts *DumpOptions, path string, w io.Writer) error {
	if opts.Frames < 0 {
		return fmt.Errorf("invalid frame count %d", opts.Frames)
	}
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	defer log.Sync()

	f, err := scenefile.Load(path)
	if err != nil {
		return err
	}
	s := scene.New(scene.WithLogger(log), scene.WithConfig(cfg.Render()))
	var buffers render.Buffers
	built, err := f.Build(s, &buffers)
	if err != nil {
		return fmt.Errorf("build scene %s: %w", path, err)
	}
	s.AddSystem(system.NewLookAtSystem(s.Entities(), s.Graph(), log))
	q := s.Queue()
	for range opts.Frames {
		if _, err := s.Update(0); err != nil {
			return err
		}
		q.Swap()
		q.Drain()
		q.Release()
	}
	return scenefile.Dump(w, s, built)
}
