// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package scenefile reads scene descriptions in YAML and
// instantiates them into a scene.Scene.
//
// A description names its meshes and lays out a tree of
// nodes:
//
//	name: demo
//	meshes:
//	  - name: cube
//	nodes:
//	  - name: base
//	    position: [1, 0, 0]
//	    rotation: {axis: [0, 1, 0], angle: 90}
//	    children:
//	      - name: arm
//	        scale: [2, 2, 2]
//	        mesh: cube
//	  - name: camera
//	    position: [0, 0, 5]
//	    look_at: base
package scenefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"

	"github.com/gviegas/scenery/ecs"
	"github.com/gviegas/scenery/linear"
	"github.com/gviegas/scenery/node"
	"github.com/gviegas/scenery/render"
	"github.com/gviegas/scenery/scene"
	"github.com/gviegas/scenery/system"
	"github.com/gviegas/scenery/transform"
)

// File is a scene description.
type File struct {
	Name   string `yaml:"name"`
	Meshes []Mesh `yaml:"meshes"`
	Nodes  []Node `yaml:"nodes"`
}

// Mesh describes a mesh buffer.
type Mesh struct {
	Name      string       `yaml:"name"`
	Positions [][3]float32 `yaml:"positions,omitempty"`
	Indices   []uint32     `yaml:"indices,omitempty"`
}

// Rotation is an angle, in degrees, about an axis.
type Rotation struct {
	Axis  [3]float32 `yaml:"axis"`
	Angle float32    `yaml:"angle"`
}

// Node describes a node and its subtree.
type Node struct {
	Name     string       `yaml:"name"`
	Position *[3]float32  `yaml:"position,omitempty"`
	Rotation *Rotation    `yaml:"rotation,omitempty"`
	Quat     *[4]float32  `yaml:"quat,omitempty"` // x, y, z, w
	Scale    *[3]float32  `yaml:"scale,omitempty"`
	Matrix   *[16]float32 `yaml:"matrix,omitempty"` // column-major; excludes TRS
	Mesh     string       `yaml:"mesh,omitempty"`
	Inverse  bool         `yaml:"inverse,omitempty"` // render items carry the inverse
	LookAt   string       `yaml:"look_at,omitempty"` // name of another node
	Children []Node       `yaml:"children,omitempty"`
}

// Load reads the description at path.
// Files ending in .gltf or .glb are imported with FromGLTF.
func Load(path string) (*File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return loadGLTF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a description.
// Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("parse scene: empty document")
		}
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	meshes := make(map[string]bool, len(f.Meshes))
	for _, m := range f.Meshes {
		if m.Name == "" {
			return errors.New("mesh without name")
		}
		if meshes[m.Name] {
			return fmt.Errorf("duplicate mesh %q", m.Name)
		}
		meshes[m.Name] = true
	}
	names := make(map[string]bool)
	var check func(nodes []Node) error
	check = func(nodes []Node) error {
		for i := range nodes {
			n := &nodes[i]
			switch {
			case n.Name == "":
				return errors.New("node without name")
			case names[n.Name]:
				return fmt.Errorf("duplicate node %q", n.Name)
			case n.Mesh != "" && !meshes[n.Mesh]:
				return fmt.Errorf("node %q: unknown mesh %q", n.Name, n.Mesh)
			case n.Rotation != nil && n.Rotation.Axis == [3]float32{}:
				return fmt.Errorf("node %q: zero rotation axis", n.Name)
			case n.Rotation != nil && n.Quat != nil:
				return fmt.Errorf("node %q: rotation and quat are mutually exclusive", n.Name)
			case n.Quat != nil && *n.Quat == [4]float32{}:
				return fmt.Errorf("node %q: zero quat", n.Name)
			case n.Matrix != nil && (n.Position != nil || n.Rotation != nil || n.Quat != nil || n.Scale != nil):
				return fmt.Errorf("node %q: matrix and TRS are mutually exclusive", n.Name)
			}
			names[n.Name] = true
			if err := check(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(f.Nodes); err != nil {
		return err
	}
	var looks func(nodes []Node) error
	looks = func(nodes []Node) error {
		for i := range nodes {
			n := &nodes[i]
			if n.LookAt != "" && (!names[n.LookAt] || n.LookAt == n.Name) {
				return fmt.Errorf("node %q: invalid look_at %q", n.Name, n.LookAt)
			}
			if err := looks(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return looks(f.Nodes)
}

// Local returns the local transform described by n.
func (n *Node) Local() transform.Local {
	if n.Matrix != nil {
		var m linear.M4
		for i := range 4 {
			m[i] = linear.V4(n.Matrix[i*4 : i*4+4])
		}
		return transform.Raw(&m)
	}
	l := transform.Identity()
	if n.Position != nil {
		l.Position = linear.V3(*n.Position)
	}
	if n.Rotation != nil {
		axis := linear.V3(n.Rotation.Axis)
		axis.Norm(&axis)
		l.Rotation.Rotate(n.Rotation.Angle*math32.Pi/180, &axis)
	}
	if n.Quat != nil {
		q := linear.Q{V: linear.V3(n.Quat[:3]), R: n.Quat[3]}
		l.Rotation.Norm(&q)
	}
	if n.Scale != nil {
		l.Scale = linear.V3(*n.Scale)
	}
	return l
}

// Built records what Build created.
type Built struct {
	Name     string
	Entities map[string]ecs.Entity
	Buffers  map[string]render.Buffer

	names  map[ecs.Entity]string
	meshes map[render.Buffer]string
}

// EntityName returns the name of the node that holds e.
func (b *Built) EntityName(e ecs.Entity) (string, bool) {
	s, ok := b.names[e]
	return s, ok
}

// Build creates f's meshes in t and f's nodes in s, under
// the root node. Look-at targets become system.LookAt
// components; solving them is up to a system.LookAtSystem.
func (f *File) Build(s *scene.Scene, t *render.Buffers) (*Built, error) {
	b := &Built{
		Name:     f.Name,
		Entities: make(map[string]ecs.Entity),
		Buffers:  make(map[string]render.Buffer, len(f.Meshes)),
		names:    make(map[ecs.Entity]string),
		meshes:   make(map[render.Buffer]string, len(f.Meshes)),
	}
	for _, m := range f.Meshes {
		rm := render.Mesh{Name: m.Name, Indices: m.Indices}
		for _, p := range m.Positions {
			rm.Positions = append(rm.Positions, linear.V3(p))
		}
		buf := t.Create(rm)
		b.Buffers[m.Name] = buf
		b.meshes[buf] = m.Name
	}
	var build func(parent node.Node, nodes []Node) error
	build = func(parent node.Node, nodes []Node) error {
		for i := range nodes {
			n := &nodes[i]
			e, nd, err := s.Spawn(parent, n.Local())
			if err != nil {
				return fmt.Errorf("node %q: %w", n.Name, err)
			}
			b.Entities[n.Name] = e
			b.names[e] = n.Name
			if n.Mesh != "" {
				if err := s.SetRenderable(e, b.Buffers[n.Mesh], n.Inverse); err != nil {
					return fmt.Errorf("node %q: %w", n.Name, err)
				}
			}
			if err := build(nd, n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := build(s.Graph().Root(), f.Nodes); err != nil {
		return nil, err
	}
	looks := ecs.Component[system.LookAt](s.Entities())
	var look func(nodes []Node)
	look = func(nodes []Node) {
		for i := range nodes {
			if n := &nodes[i]; n.LookAt != "" {
				looks.Set(b.Entities[n.Name], system.LookAtEntity(b.Entities[n.LookAt]))
			}
			look(nodes[i].Children)
		}
	}
	look(f.Nodes)
	return b, nil
}
