// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scenefile

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gviegas/scenery/gltf"
)

func loadGLTF(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	defer file.Close()
	g, err := gltf.Load(file)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	f, err := FromGLTF(g)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return f, nil
}

// FromGLTF converts the node hierarchy of g into a
// description. Only the nodes reachable from g.Roots are
// kept. Meshes are referenced by name and carry no
// geometry. Unnamed or repeated names are made unique.
func FromGLTF(g *gltf.GLTF) (*File, error) {
	if err := g.Check(); err != nil {
		return nil, err
	}
	f := &File{}
	if g.Scene != nil {
		f.Name = g.Scenes[*g.Scene].Name
	} else if len(g.Scenes) > 0 {
		f.Name = g.Scenes[0].Name
	}
	if f.Name == "" {
		f.Name = "gltf"
	}

	used := make(map[string]bool)
	unique := func(name, prefix string, i int) string {
		if name == "" {
			name = prefix + strconv.Itoa(i)
		}
		s := name
		for k := 1; used[s]; k++ {
			s = name + "." + strconv.Itoa(k)
		}
		used[s] = true
		return s
	}
	meshes := make([]string, len(g.Meshes))
	for i := range g.Meshes {
		meshes[i] = unique(g.Meshes[i].Name, "mesh", i)
		f.Meshes = append(f.Meshes, Mesh{Name: meshes[i]})
	}
	clear(used)

	var conv func(i int64) Node
	conv = func(i int64) Node {
		gn := &g.Nodes[i]
		n := Node{
			Name:     unique(gn.Name, "node", int(i)),
			Position: gn.Translation,
			Scale:    gn.Scale,
			Quat:     gn.Rotation,
			Matrix:   gn.Matrix,
		}
		if gn.Mesh != nil {
			n.Mesh = meshes[*gn.Mesh]
		}
		for _, c := range gn.Children {
			n.Children = append(n.Children, conv(c))
		}
		return n
	}
	for _, i := range g.Roots() {
		f.Nodes = append(f.Nodes, conv(i))
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}
