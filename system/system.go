// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package system runs per-frame systems in phase order.
package system

import (
	"slices"
	"time"
)

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput      Phase = iota // drain external input
	PhaseUpdate                  // logic that changes local transforms
	PhaseConstraint              // constraints over local transforms
	PhaseTransform               // world transform resolution
	PhaseRender                  // render queue fill
	PhaseCleanup                 // deferred entity destruction
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhaseConstraint:
		return "constraint"
	case PhaseTransform:
		return "transform"
	case PhaseRender:
		return "render"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Func adapts a function to the System interface.
type Func struct {
	P Phase
	F func(dt time.Duration)
}

func (f Func) Phase() Phase            { return f.P }
func (f Func) Update(dt time.Duration) { f.F(dt) }

// Runner executes systems in phase order each frame.
// Systems of the same phase run in registration order.
type Runner struct {
	systems []System
	sorted  bool
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Len returns the number of registered systems.
func (r *Runner) Len() int { return len(r.systems) }

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(dt)
	}
}

// TickPhase only runs the systems of the given phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		slices.SortStableFunc(r.systems, func(a, b System) int {
			return int(a.Phase() - b.Phase())
		})
		r.sorted = true
	}
}
