// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package render implements the hand-off of draw-ready
// items from the simulation to the renderer.
package render

import (
	"errors"

	"github.com/gviegas/scenery/ecs"
	"github.com/gviegas/scenery/linear"
)

func newRendErr(s string) error { return errors.New("render: " + s) }

var (
	// ErrFull is the panic value of Push when the write
	// buffer is at capacity.
	ErrFull = newRendErr("queue is full")

	// ErrDoubleSwap is the panic value of Swap when no
	// buffer is free because swapped buffers were never
	// drained.
	ErrDoubleSwap = newRendErr("swap without drain")

	// ErrDraining is the panic value of Swap when the
	// only buffer it could take is still being drained.
	ErrDraining = newRendErr("swap during drain")

	// ErrNoBuffer means that a Buffer does not refer to
	// a live buffer.
	ErrNoBuffer = newRendErr("no such buffer")
)

// Item is what the simulation hands to the renderer for
// each renderable entity, once per frame.
type Item struct {
	Entity ecs.Entity
	Buffer Buffer
	World  linear.M4

	// Inverse is only meaningful when HasInverse is set.
	// It is absent when not requested or when World is
	// singular.
	Inverse    linear.M4
	HasInverse bool
}

const (
	// The maximum number of buffers in a Queue.
	MaxFrame = 3

	dflMaxDrawable = 2048
)

// Config is used to configure the render side.
type Config struct {
	// Prefer double-buffering rather than the
	// default triple-buffering.
	//
	// Default is false.
	DoubleBuffered bool

	// The maximum number of drawables per frame.
	// This is the capacity of the render queue.
	//
	// Default is 2048.
	MaxDrawable int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DoubleBuffered: false,
		MaxDrawable:    dflMaxDrawable,
	}
}

// Frames returns the number of queue buffers that c asks
// for. The renderer may lag behind the simulation by one
// frame less than this.
func (c *Config) Frames() int {
	if c.DoubleBuffered {
		return 2
	}
	return MaxFrame
}
