// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package scene provides functionality for creating and
// updating scene graphs.
//
// A Scene ties together the entity world, the node graph,
// the transform resolver and the render queue. It is meant
// to be driven by the simulation goroutine; only the queue
// it exposes may be shared with a renderer.
package scene

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gviegas/scenery/ecs"
	"github.com/gviegas/scenery/node"
	"github.com/gviegas/scenery/render"
	"github.com/gviegas/scenery/system"
	"github.com/gviegas/scenery/transform"
)

// Renderable is the component that makes an entity
// produce a render.Item every frame.
type Renderable struct {
	Buffer render.Buffer
	// Whether items should carry the inverse of the
	// world matrix.
	Inverse bool
}

// Stats describes one call to Update.
type Stats struct {
	Frame     uint64
	Transform transform.Stats
	// Number of items pushed to the render queue.
	Pushed int
	// Number of renderables left out because their
	// transform is unresolved.
	Stale int
}

type options struct {
	log *zap.Logger
	cfg render.Config
}

// Option configures a Scene.
type Option func(*options)

// WithLogger sets the logger of the scene and of the
// systems it creates.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithQueueCapacity sets the capacity of the render queue.
func WithQueueCapacity(n int) Option {
	return func(o *options) { o.cfg.MaxDrawable = n }
}

// WithConfig sets the render configuration.
func WithConfig(cfg render.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// Scene defines a scene graph.
type Scene struct {
	world    *ecs.World
	graph    *node.Graph
	locals   *ecs.Storage[transform.Local]
	worlds   *ecs.Storage[transform.World]
	rends    *ecs.Storage[Renderable]
	resolver *transform.Resolver
	runner   *system.Runner
	queue    *render.Queue
	log      *zap.Logger

	stats Stats
	err   error
}

// New creates an initialized scene.
// The root node holds an entity with the identity
// transform.
func New(opts ...Option) *Scene {
	o := options{log: zap.NewNop(), cfg: render.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	w := ecs.NewWorld()
	s := &Scene{
		world:    w,
		locals:   ecs.Component[transform.Local](w),
		worlds:   ecs.Component[transform.World](w),
		rends:    ecs.Component[Renderable](w),
		resolver: transform.NewResolver(o.log),
		runner:   system.NewRunner(),
		queue:    render.NewQueueN(o.cfg.MaxDrawable, o.cfg.Frames()),
		log:      o.log,
	}
	root := w.Create()
	s.graph = node.New(root)
	s.locals.Set(root, transform.Identity())
	s.worlds.Set(root, transform.NewWorld())

	s.runner.Register(system.Func{P: system.PhaseTransform, F: s.resolve})
	s.runner.Register(system.Func{P: system.PhaseRender, F: s.fill})
	s.runner.Register(system.Func{P: system.PhaseCleanup, F: func(time.Duration) { s.world.Flush() }})
	return s
}

// Entities returns the entity world of s.
func (s *Scene) Entities() *ecs.World { return s.world }

// Graph returns the node graph of s.
func (s *Scene) Graph() *node.Graph { return s.graph }

// Queue returns the render queue of s.
func (s *Scene) Queue() *render.Queue { return s.queue }

// Logger returns the logger of s.
func (s *Scene) Logger() *zap.Logger { return s.log }

// AddSystem registers sys to run on every call to Update.
func (s *Scene) AddSystem(sys system.System) { s.runner.Register(sys) }

// Spawn creates an entity with local transform l as the
// last immediate descendant of parent.
// The new node is marked dirty.
func (s *Scene) Spawn(parent node.Node, l transform.Local) (ecs.Entity, node.Node, error) {
	e := s.world.Create()
	n, err := s.graph.Insert(parent, e)
	if err != nil {
		s.world.Destroy(e)
		return ecs.Nil, node.Nil, err
	}
	s.locals.Set(e, l)
	s.worlds.Set(e, transform.NewWorld())
	s.graph.Dirty().Mark(n)
	return e, n, nil
}

func (s *Scene) lookup(e ecs.Entity) (node.Node, error) {
	n, ok := s.graph.Lookup(e)
	if !ok {
		return node.Nil, fmt.Errorf("%w: entity %v", node.ErrMissingChild, e)
	}
	return n, nil
}

// SetLocal replaces the local transform of e and marks
// its node dirty.
func (s *Scene) SetLocal(e ecs.Entity, l transform.Local) error {
	n, err := s.lookup(e)
	if err != nil {
		return err
	}
	s.locals.Set(e, l)
	return s.graph.Dirty().Mark(n)
}

// Local returns the local transform of e.
// Changes through the returned pointer must be followed
// by a call to Touch.
func (s *Scene) Local(e ecs.Entity) (*transform.Local, bool) { return s.locals.Get(e) }

// Touch marks the node of e dirty.
func (s *Scene) Touch(e ecs.Entity) error {
	n, err := s.lookup(e)
	if err != nil {
		return err
	}
	return s.graph.Dirty().Mark(n)
}

// World returns the world transform of e.
// It is only up to date for entities whose node is clean.
func (s *Scene) World(e ecs.Entity) (*transform.World, bool) { return s.worlds.Get(e) }

// Reparent moves the node of e, along with its
// descendants, under the node of parent.
func (s *Scene) Reparent(e, parent ecs.Entity) error {
	n, err := s.lookup(e)
	if err != nil {
		return err
	}
	p, err := s.lookup(parent)
	if err != nil {
		return err
	}
	return s.graph.Reparent(n, p)
}

// Despawn removes node n according to policy p.
// The entities of every removed node are destroyed at the
// end of the next Update, so systems running before then
// may still read their components.
func (s *Scene) Despawn(n node.Node, p node.Policy) error {
	ents, err := s.graph.Remove(n, p)
	if err != nil {
		return err
	}
	for _, e := range ents {
		s.world.Defer(e)
	}
	return nil
}

// SetRenderable makes e produce render items drawing b.
func (s *Scene) SetRenderable(e ecs.Entity, b render.Buffer, inverse bool) error {
	if _, err := s.lookup(e); err != nil {
		return err
	}
	s.rends.Set(e, Renderable{Buffer: b, Inverse: inverse})
	return nil
}

// Update runs one simulation frame: the registered systems
// in phase order, transform resolution and the filling of
// the render queue's write buffer.
// It does not swap the queue.
func (s *Scene) Update(dt time.Duration) (Stats, error) {
	s.stats = Stats{Frame: s.stats.Frame + 1}
	s.err = nil
	s.runner.Tick(dt)
	return s.stats, s.err
}

func (s *Scene) resolve(time.Duration) {
	s.stats.Transform = s.resolver.Resolve(s.graph, s.locals, s.worlds)
}

func (s *Scene) fill(time.Duration) {
	for e, r := range s.rends.All() {
		n, ok := s.graph.Lookup(e)
		if !ok {
			// Despawned, awaiting destruction.
			continue
		}
		if s.graph.Dirty().IsDirty(n) {
			s.stats.Stale++
			continue
		}
		w, ok := s.worlds.Get(e)
		if !ok {
			s.stats.Stale++
			continue
		}
		if s.queue.Len() == s.queue.Cap() {
			s.err = fmt.Errorf("%w: %d pushed", render.ErrFull, s.stats.Pushed)
			s.log.Warn("render queue is full", zap.Int("capacity", s.queue.Cap()))
			return
		}
		it := render.Item{Entity: e, Buffer: r.Buffer, World: *w.Matrix()}
		if r.Inverse {
			it.Inverse, it.HasInverse = w.Inverse()
		}
		s.queue.Push(it)
		s.stats.Pushed++
	}
}
