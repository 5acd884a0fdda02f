// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package render

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Backend is the interface that a GPU API wrapper must
// implement to receive draw calls.
type Backend interface {
	// Upload copies the mesh of b to the GPU.
	// It is called once per buffer, before the first
	// Draw that uses it.
	Upload(b Buffer, m *Mesh) error

	// Draw issues a draw call for it.
	Draw(it *Item) error
}

// Recorder is a Backend that records the calls it receives.
// It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	uploads []Buffer
	draws   []Item
}

// Upload implements Backend.
func (r *Recorder) Upload(b Buffer, _ *Mesh) error {
	r.mu.Lock()
	r.uploads = append(r.uploads, b)
	r.mu.Unlock()
	return nil
}

// Draw implements Backend.
func (r *Recorder) Draw(it *Item) error {
	r.mu.Lock()
	r.draws = append(r.draws, *it)
	r.mu.Unlock()
	return nil
}

// Uploads returns the buffers uploaded so far, in order.
func (r *Recorder) Uploads() []Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Buffer(nil), r.uploads...)
}

// Draws returns the items drawn so far, in order.
func (r *Recorder) Draws() []Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Item(nil), r.draws...)
}

// Reset forgets every recorded call.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.uploads = r.uploads[:0]
	r.draws = r.draws[:0]
	r.mu.Unlock()
}

// DrawStats describes one call to Renderer.Render.
type DrawStats struct {
	Items    int
	Drawn    int
	Uploaded int
	Skipped  int
}

// Renderer drains a Queue and draws its items through
// a Backend.
type Renderer struct {
	buffers *Buffers
	backend Backend
	log     *zap.Logger
}

// NewRenderer creates a renderer that draws buffers of t
// using b.
// log may be nil.
func NewRenderer(t *Buffers, b Backend, log *zap.Logger) *Renderer {
	if t == nil || b == nil {
		panic("render.NewRenderer: nil Buffers or Backend")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{buffers: t, backend: b, log: log}
}

// Buffers returns the buffer table used by r.
func (r *Renderer) Buffers() *Buffers { return r.buffers }

// Render drains q, draws every item and releases the
// drained buffer.
// Items whose buffer no longer exists are skipped.
// It stops at the first backend failure.
func (r *Renderer) Render(q *Queue) (st DrawStats, err error) {
	items := q.Drain()
	defer q.Release()
	st.Items = len(items)
	for i := range items {
		it := &items[i]
		uploaded := false
		err = r.buffers.upload(it.Buffer, func(b Buffer, m *Mesh) error {
			uploaded = true
			return r.backend.Upload(b, m)
		})
		switch {
		case errors.Is(err, ErrNoBuffer):
			st.Skipped++
			r.log.Debug("item skipped", zap.Stringer("entity", it.Entity), zap.Error(err))
			err = nil
			continue
		case err != nil:
			return st, fmt.Errorf("render: upload of %v failed: %w", it.Buffer, err)
		}
		if uploaded {
			st.Uploaded++
		}
		if err = r.backend.Draw(it); err != nil {
			return st, fmt.Errorf("render: draw of %v failed: %w", it.Entity, err)
		}
		st.Drawn++
	}
	return st, nil
}
