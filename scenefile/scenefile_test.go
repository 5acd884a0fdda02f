// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scenefile

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/scenery/ecs"
	"github.com/gviegas/scenery/gltf"
	"github.com/gviegas/scenery/linear"
	"github.com/gviegas/scenery/render"
	"github.com/gviegas/scenery/scene"
	"github.com/gviegas/scenery/system"
)

const sample = `
name: sample
meshes:
  - name: tri
    positions: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
    indices: [0, 1, 2]
nodes:
  - name: a
    position: [1, 0, 0]
    children:
      - name: b
        position: [0, 1, 0]
        scale: [2, 2, 2]
        mesh: tri
        inverse: true
        children:
          - name: c
            position: [0, 0, 1]
  - name: eye
    position: [0, 0, 4]
    look_at: a
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "sample", f.Name)
	require.Len(t, f.Meshes, 1)
	assert.Len(t, f.Meshes[0].Positions, 3)
	require.Len(t, f.Nodes, 2)
	b := f.Nodes[0].Children[0]
	assert.Equal(t, "tri", b.Mesh)
	assert.True(t, b.Inverse)
	assert.Equal(t, "a", f.Nodes[1].LookAt)
}

func TestParse_Errors(t *testing.T) {
	for _, x := range []struct {
		doc  string
		want string
	}{
		{"", "empty document"},
		{"nodes: [{name: a, colour: red}]", "colour"},
		{"nodes: [{name: a}, {name: a}]", `duplicate node "a"`},
		{"nodes: [{name: a, children: [{name: a}]}]", `duplicate node "a"`},
		{"nodes: [{position: [1, 2, 3]}]", "node without name"},
		{"nodes: [{name: a, mesh: box}]", `unknown mesh "box"`},
		{"meshes: [{name: m}, {name: m}]", `duplicate mesh "m"`},
		{"nodes: [{name: a, look_at: b}]", `invalid look_at "b"`},
		{"nodes: [{name: a, look_at: a}]", `invalid look_at "a"`},
		{"nodes: [{name: a, rotation: {axis: [0, 0, 0], angle: 9}}]", "zero rotation axis"},
	} {
		_, err := Parse([]byte(x.doc))
		if assert.Error(t, err, "doc %q", x.doc) {
			assert.Contains(t, err.Error(), x.want, "doc %q", x.doc)
		}
	}
}

func TestLocal(t *testing.T) {
	n := Node{
		Position: &[3]float32{1, 2, 3},
		Rotation: &Rotation{Axis: [3]float32{0, 2, 0}, Angle: 90},
		Scale:    &[3]float32{4, 5, 6},
	}
	l := n.Local()
	assert.Equal(t, linear.V3{1, 2, 3}, l.Position)
	assert.Equal(t, linear.V3{4, 5, 6}, l.Scale)
	assert.InDelta(t, 0.70710677, l.Rotation.V[1], 1e-6)
	assert.InDelta(t, 0.70710677, l.Rotation.R, 1e-6)

	l = (&Node{}).Local()
	assert.Equal(t, linear.Q{R: 1}, l.Rotation)
	assert.Equal(t, linear.V3{1, 1, 1}, l.Scale)
}

func TestBuild(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	s := scene.New()
	var tab render.Buffers
	b, err := f.Build(s, &tab)
	require.NoError(t, err)
	assert.Equal(t, 1, tab.Len())
	assert.Len(t, b.Entities, 4)
	assert.Equal(t, 5, s.Graph().Len())

	m, ok := tab.Get(b.Buffers["tri"])
	require.True(t, ok)
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)

	look, ok := ecs.Component[system.LookAt](s.Entities()).Get(b.Entities["eye"])
	require.True(t, ok)
	assert.Equal(t, b.Entities["a"], look.Entity)

	_, err = s.Update(0)
	require.NoError(t, err)
	w, _ := s.World(b.Entities["c"])
	var want linear.M4
	want.Translate(1, 1, 2)
	want[0][0], want[1][1], want[2][2] = 2, 2, 2
	assert.True(t, w.Matrix().Near(&want, 1e-5), "world[c] = %v", *w.Matrix())

	name, ok := b.EntityName(b.Entities["b"])
	assert.True(t, ok)
	assert.Equal(t, "b", name)
}

func TestDump(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	s := scene.New()
	var tab render.Buffers
	b, err := f.Build(s, &tab)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, s, b))
	assert.Contains(t, buf.String(), "    b (0.000, 0.000, 0.000) mesh=tri dirty\n")

	s.Update(0)
	buf.Reset()
	require.NoError(t, Dump(&buf, s, b))
	want := strings.Join([]string{
		"sample (5 nodes, 1 renderables)",
		"  a (1.000, 0.000, 0.000)",
		"    b (1.000, 1.000, 0.000) mesh=tri",
		"      c (1.000, 1.000, 2.000)",
		"  eye (0.000, 0.000, 4.000)",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestLocal_QuatMatrix(t *testing.T) {
	n := Node{Quat: &[4]float32{0, 2, 0, 2}}
	l := n.Local()
	assert.InDelta(t, 0.70710677, l.Rotation.V[1], 1e-6)
	assert.InDelta(t, 0.70710677, l.Rotation.R, 1e-6)

	n = Node{Matrix: &[16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 7, 8, 9, 1}}
	l = n.Local()
	assert.True(t, l.Override)
	assert.Equal(t, linear.V4{7, 8, 9, 1}, l.Matrix[3])

	for _, doc := range []string{
		"nodes: [{name: a, matrix: [1,0,0,0, 0,1,0,0, 0,0,1,0, 0,0,0,1], scale: [1, 1, 1]}]",
		"nodes: [{name: a, quat: [0, 0, 0, 1], rotation: {axis: [0, 1, 0], angle: 9}}]",
		"nodes: [{name: a, quat: [0, 0, 0, 0]}]",
	} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, "doc %q", doc)
	}
}

func TestLoadGLTF(t *testing.T) {
	f, err := Load("testdata/rig.gltf")
	require.NoError(t, err)
	assert.Equal(t, "rig", f.Name)
	require.Len(t, f.Meshes, 1)
	assert.Equal(t, "cube", f.Meshes[0].Name)
	require.Len(t, f.Nodes, 2)
	assert.Equal(t, "node3", f.Nodes[1].Name)

	s := scene.New()
	var tab render.Buffers
	b, err := f.Build(s, &tab)
	require.NoError(t, err)
	_, err = s.Update(0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, s, b))
	want := strings.Join([]string{
		"rig (5 nodes, 2 renderables)",
		"  base (1.000, 0.000, 0.000)",
		"    arm (-1.000, 0.000, 0.000) mesh=cube",
		"      hand (-1.000, 2.000, 0.000) mesh=cube",
		"  node3 (0.000, 0.000, 5.000)",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())

	_, err = Load("testdata/none.glb")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromGLTF_Names(t *testing.T) {
	g := &gltf.GLTF{
		Meshes: []gltf.Mesh{{}, {Name: "m"}, {Name: "m"}},
		Nodes: []gltf.Node{
			{Name: "x", Children: []int64{1, 2}},
			{Name: "x"},
			{},
		},
	}
	g.Asset.Version = "2.0"
	f, err := FromGLTF(g)
	require.NoError(t, err)
	assert.Equal(t, "gltf", f.Name)
	assert.Equal(t, "mesh0", f.Meshes[0].Name)
	assert.Equal(t, "m", f.Meshes[1].Name)
	assert.Equal(t, "m.1", f.Meshes[2].Name)
	require.Len(t, f.Nodes, 1)
	assert.Equal(t, "x", f.Nodes[0].Name)
	assert.Equal(t, "x.1", f.Nodes[0].Children[0].Name)
	assert.Equal(t, "node2", f.Nodes[0].Children[1].Name)

	// A scene listing a child would build its subtree twice.
	g.Scenes = []gltf.Scene{{Nodes: []int64{0, 1}}}
	_, err = FromGLTF(g)
	assert.ErrorContains(t, err, "not a root")
	g.Scenes = nil

	g.Nodes[2].Children = []int64{0}
	_, err = FromGLTF(g)
	assert.ErrorContains(t, err, "own ancestor")
}
