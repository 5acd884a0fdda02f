// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package frame runs the simulation and the renderer on
// separate goroutines, handing frames from one to the
// other through a scene's render queue.
package frame

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gviegas/scenery/render"
	"github.com/gviegas/scenery/scene"
)

// Result describes one rendered frame.
type Result struct {
	Scene scene.Stats
	Draw  render.DrawStats
}

// Summary describes a whole run.
type Summary struct {
	Frames   int
	Resolved int
	Pushed   int
	Drawn    int
	Skipped  int
}

// Loop drives a scene and a renderer.
//
// The simulation goroutine updates the scene, which fills
// the back buffer of its queue, while the render goroutine
// draws the oldest swapped frame. The simulation may run
// ahead of the renderer by one frame less than the number
// of queue buffers. Past that, it waits for the renderer
// before swapping, so frames are never dropped and a slow
// renderer slows the simulation down.
type Loop struct {
	Scene    *scene.Scene
	Renderer *render.Renderer

	// TickRate paces the simulation.
	// Zero runs frames back to back.
	TickRate time.Duration

	// OnFrame, if not nil, is called from the render
	// goroutine after each frame is drawn.
	OnFrame func(Result)

	// Log may be nil.
	Log *zap.Logger
}

// Run runs frames frames, or until ctx is done if frames
// is not greater than zero.
// Cancellation of ctx stops both goroutines and is not
// reported as an error.
func (l *Loop) Run(ctx context.Context, frames int) (Summary, error) {
	if l.Scene == nil || l.Renderer == nil {
		panic("frame.Loop.Run: nil Scene or Renderer")
	}
	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}
	var sum Summary
	var simSum Summary
	q := l.Scene.Queue()
	// One token per frame that may be in flight.
	inflight := q.Frames() - 1
	swapped := make(chan scene.Stats, inflight)
	idle := make(chan struct{}, inflight)
	for range inflight {
		idle <- struct{}{}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(swapped)
		var tick <-chan time.Time
		if l.TickRate > 0 {
			t := time.NewTicker(l.TickRate)
			defer t.Stop()
			tick = t.C
		}
		prev := time.Now()
		for i := 0; frames <= 0 || i < frames; i++ {
			if tick != nil {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-tick:
				}
			}
			now := time.Now()
			st, err := l.Scene.Update(now.Sub(prev))
			prev = now
			switch {
			case errors.Is(err, render.ErrFull):
				log.Warn("frame truncated", zap.Uint64("frame", st.Frame), zap.Error(err))
			case err != nil:
				return err
			}
			simSum.Resolved += st.Transform.Resolved
			simSum.Pushed += st.Pushed

			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-idle:
			}
			q.Swap()
			select {
			case <-gctx.Done():
				return gctx.Err()
			case swapped <- st:
			}
		}
		return nil
	})

	g.Go(func() error {
		for {
			var st scene.Stats
			var ok bool
			select {
			case <-gctx.Done():
				return gctx.Err()
			case st, ok = <-swapped:
			}
			if !ok {
				return nil
			}
			ds, err := l.Renderer.Render(q)
			if err != nil {
				return err
			}
			sum.Frames++
			sum.Drawn += ds.Drawn
			sum.Skipped += ds.Skipped
			log.Debug("frame",
				zap.Uint64("frame", st.Frame),
				zap.Int("resolved", st.Transform.Resolved),
				zap.Int("drawn", ds.Drawn))
			if l.OnFrame != nil {
				l.OnFrame(Result{Scene: st, Draw: ds})
			}
			idle <- struct{}{}
		}
	})

	err := g.Wait()
	sum.Resolved = simSum.Resolved
	sum.Pushed = simSum.Pushed
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		err = nil
	}
	log.Info("frame loop stopped", zap.Int("frames", sum.Frames), zap.Error(err))
	return sum, err
}
