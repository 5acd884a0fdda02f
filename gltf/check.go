// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"errors"
	"fmt"
)

func newErr(reason string) error {
	return errors.New("gltf: " + reason)
}

// Check checks that f is valid glTF.
// Besides index bounds, it checks that nodes form a
// forest: no node has more than one parent and no node
// is its own ancestor. Scene nodes must be roots, listed
// at most once per scene.
func (f *GLTF) Check() error {
	if f.Asset.Version == "" {
		return newErr("missing GLTF.Asset.Version")
	}
	if s := f.Scene; s != nil && (*s < 0 || *s >= int64(len(f.Scenes))) {
		return newErr("invalid GLTF.Scene index")
	}
	nnode := int64(len(f.Nodes))
	for i, s := range f.Scenes {
		for _, n := range s.Nodes {
			if n < 0 || n >= nnode {
				return newErr(fmt.Sprintf("invalid Scene.Nodes index in scenes[%d]", i))
			}
		}
	}
	parent := make([]int64, nnode)
	for i := range parent {
		parent[i] = -1
	}
	for i := range f.Nodes {
		if err := f.Nodes[i].Check(f); err != nil {
			return fmt.Errorf("%w (nodes[%d])", err, i)
		}
		for _, c := range f.Nodes[i].Children {
			if parent[c] != -1 {
				return newErr(fmt.Sprintf("nodes[%d] has more than one parent", c))
			}
			parent[c] = int64(i)
		}
	}
	for i := range parent {
		steps := int64(0)
		for p := parent[i]; p != -1; p = parent[p] {
			if steps++; p == int64(i) || steps > nnode {
				return newErr(fmt.Sprintf("nodes[%d] is its own ancestor", i))
			}
		}
	}
	for i, s := range f.Scenes {
		seen := make(map[int64]bool, len(s.Nodes))
		for _, n := range s.Nodes {
			switch {
			case parent[n] != -1:
				return newErr(fmt.Sprintf("nodes[%d] in scenes[%d] is not a root", n, i))
			case seen[n]:
				return newErr(fmt.Sprintf("nodes[%d] listed twice in scenes[%d]", n, i))
			}
			seen[n] = true
		}
	}
	return nil
}

// Check checks that n is valid glTF.nodes' element.
func (n *Node) Check(gltf *GLTF) error {
	if n.Mesh != nil && (*n.Mesh < 0 || *n.Mesh >= int64(len(gltf.Meshes))) {
		return newErr("invalid Node.Mesh index")
	}
	for _, c := range n.Children {
		if c < 0 || c >= int64(len(gltf.Nodes)) {
			return newErr("invalid Node.Children index")
		}
	}
	if n.Matrix != nil && (n.Rotation != nil || n.Scale != nil || n.Translation != nil) {
		return newErr("Node.Matrix and TRS properties are mutually exclusive")
	}
	return nil
}
