// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scenefile

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chewxy/math32"

	"github.com/gviegas/scenery/ecs"
	"github.com/gviegas/scenery/node"
	"github.com/gviegas/scenery/scene"
)

// Dump writes the hierarchy of s, one node per line and
// in graph order, with the world translation of each node.
// Nodes not created by Build are written as their entity.
func Dump(w io.Writer, s *scene.Scene, b *Built) error {
	bw := bufio.NewWriter(w)
	g := s.Graph()
	rends := ecs.Component[scene.Renderable](s.Entities())
	fmt.Fprintf(bw, "%s (%d nodes, %d renderables)\n", b.Name, g.Len(), rends.Len())

	var dump func(n node.Node, depth int)
	dump = func(n node.Node, depth int) {
		e, _ := g.Entity(n)
		name, ok := b.EntityName(e)
		if !ok {
			name = "entity " + e.String()
		}
		var sb strings.Builder
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(name)
		if wt, ok := s.World(e); ok {
			m := wt.Matrix()
			fmt.Fprintf(&sb, " (%.3f, %.3f, %.3f)", round(m[3][0]), round(m[3][1]), round(m[3][2]))
		}
		if r, ok := rends.Get(e); ok {
			fmt.Fprintf(&sb, " mesh=%s", b.meshes[r.Buffer])
		}
		if g.Dirty().IsDirty(n) {
			sb.WriteString(" dirty")
		}
		sb.WriteByte('\n')
		bw.WriteString(sb.String())
		for c := range g.Children(n) {
			dump(c, depth+1)
		}
	}
	for c := range g.Children(g.Root()) {
		dump(c, 1)
	}
	return bw.Flush()
}

// round flushes values that would print as -0.000.
func round(x float32) float32 {
	if math32.Abs(x) < 5e-4 {
		return 0
	}
	return x
}
