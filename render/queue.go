// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package render

import (
	"fmt"
	"sync"
)

// State is the state of a Queue.
type State int

const (
	// No buffer awaits the renderer; only the back
	// buffer holds items.
	Accumulating State = iota
	// A swapped buffer awaits Drain.
	Swapped
	// A buffer was handed to the renderer and is not
	// released yet.
	Draining
)

func (s State) String() string {
	switch s {
	case Accumulating:
		return "accumulating"
	case Swapped:
		return "swapped"
	case Draining:
		return "draining"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Queue is a multi-buffered render queue.
//
// The simulation pushes into the back buffer and calls
// Swap at the frame boundary; the renderer then calls
// Drain to obtain the oldest swapped buffer and Release
// once it is done with it. Push and Swap must be called
// from the same goroutine. Drain and Release may be
// called from another one.
//
// A queue created by NewQueue has two buffers, so at most
// one frame waits for the renderer. NewQueueN allows for
// more frames in flight.
type Queue struct {
	mu    sync.Mutex
	bufs  [][]Item
	back  int   // written by Push
	ready []int // swapped, oldest first
	cur   int   // being drained, or -1
	free  []int
	cap   int
}

// NewQueue creates a double-buffered queue whose buffers
// hold at most capacity items each.
func NewQueue(capacity int) *Queue { return NewQueueN(capacity, 2) }

// NewQueueN creates a queue with n buffers holding at most
// capacity items each. n must be in the range [2, MaxFrame].
func NewQueueN(capacity, n int) *Queue {
	if capacity <= 0 {
		panic("render.NewQueue: capacity must be greater than zero")
	}
	if n < 2 || n > MaxFrame {
		panic("render.NewQueueN: invalid number of buffers")
	}
	q := &Queue{
		bufs:  make([][]Item, n),
		ready: make([]int, 0, n),
		cur:   -1,
		free:  make([]int, 0, n),
		cap:   capacity,
	}
	for i := range q.bufs {
		q.bufs[i] = make([]Item, 0, capacity)
		if i > 0 {
			q.free = append(q.free, i)
		}
	}
	return q
}

// Cap returns the capacity of each buffer.
func (q *Queue) Cap() int { return q.cap }

// Frames returns the number of buffers in q.
func (q *Queue) Frames() int { return len(q.bufs) }

// Push appends it to the back buffer.
// It panics with ErrFull if the buffer is at capacity.
func (q *Queue) Push(it Item) {
	// The back buffer only changes hands in Swap, which
	// runs on the caller's goroutine.
	b := q.bufs[q.back]
	if len(b) == q.cap {
		panic(ErrFull)
	}
	q.bufs[q.back] = append(b, it)
}

// Len returns the number of items in the back buffer.
func (q *Queue) Len() int { return len(q.bufs[q.back]) }

// Swap hands the back buffer to the renderer and takes an
// empty buffer as the new back buffer.
// It panics with ErrDraining if the only buffer left is
// still being drained, and with ErrDoubleSwap if every
// other buffer awaits Drain.
func (q *Queue) Swap() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.free) == 0 {
		if q.cur >= 0 {
			panic(ErrDraining)
		}
		panic(ErrDoubleSwap)
	}
	q.ready = append(q.ready, q.back)
	q.back = q.free[len(q.free)-1]
	q.free = q.free[:len(q.free)-1]
}

// Drain returns the oldest swapped buffer.
// The slice is valid until the matching call to Release
// and must not be retained beyond that. Drain returns nil
// while a previous drain was not released, or when no
// buffer was swapped since.
func (q *Queue) Drain() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cur >= 0 || len(q.ready) == 0 {
		return nil
	}
	q.cur = q.ready[0]
	q.ready = append(q.ready[:0], q.ready[1:]...)
	return q.bufs[q.cur]
}

// Release ends the current drain, making its buffer
// available to Swap again.
// It does nothing if no drain is in progress.
func (q *Queue) Release() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cur < 0 {
		return
	}
	clear(q.bufs[q.cur])
	q.bufs[q.cur] = q.bufs[q.cur][:0]
	q.free = append(q.free, q.cur)
	q.cur = -1
}

// State returns the current state of q.
func (q *Queue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch {
	case q.cur >= 0:
		return Draining
	case len(q.ready) > 0:
		return Swapped
	}
	return Accumulating
}
