// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gviegas/scenery/frame"
	"github.com/gviegas/scenery/render"
	"github.com/gviegas/scenery/scene"
	"github.com/gviegas/scenery/scenefile"
	"github.com/gviegas/scenery/system"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Frames     int
	TickRate   time.Duration
	Profile    string // "", "cpu" or "mem"
	ProfileDir string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scene>",
		Short: "Run a scene through the frame loop",
		Long: `Run a scene through the simulation/render loop.

Frames are drawn by a recording backend. The loop stops after
the configured number of frames, or on interrupt when that
number is zero. Scenes are YAML descriptions or glTF files
(.gltf, .glb).

Example:
  scenery run --frames 600 ./scenes/demo.yaml
  scenery run -c scenery.toml --profile cpu ./scenes/demo.yaml
  scenery run ./assets/rig.glb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScene(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Frames, "frames", "n", -1, "number of frames to run (overrides engine.frames)")
	cmd.Flags().DurationVar(&opts.TickRate, "tick-rate", -1, "simulation tick rate (overrides engine.tick_rate)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "write a profile (cpu|mem)")
	cmd.Flags().StringVar(&opts.ProfileDir, "profile-dir", ".", "directory for profile output")

	return cmd
}

func runScene(opts *RunOptions, path string, cmd *cobra.Command) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	defer log.Sync()
	if opts.Frames >= 0 {
		cfg.Engine.Frames = opts.Frames
	}
	if opts.TickRate >= 0 {
		cfg.Engine.TickRate = opts.TickRate
	}

	switch opts.Profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(opts.ProfileDir), profile.Quiet, profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(opts.ProfileDir), profile.Quiet, profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("invalid profile %q: must be cpu or mem", opts.Profile)
	}

	log = log.With(zap.String("run", uuid.Must(uuid.NewV7()).String()))

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
	log.Info("scene loaded",
		zap.String("scene", built.Name),
		zap.Int("nodes", s.Graph().Len()),
		zap.Int("buffers", buffers.Len()))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rec render.Recorder
	loop := frame.Loop{
		Scene:    s,
		Renderer: render.NewRenderer(&buffers, &rec, log),
		TickRate: cfg.Engine.TickRate,
		Log:      log,
		// The recorder only needs to hold one frame.
		OnFrame: func(frame.Result) { rec.Reset() },
	}
	sum, err := loop.Run(ctx, cfg.Engine.Frames)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "scene %s: frames=%d resolved=%d pushed=%d drawn=%d skipped=%d\n",
		built.Name, sum.Frames, sum.Resolved, sum.Pushed, sum.Drawn, sum.Skipped)
	return nil
}
