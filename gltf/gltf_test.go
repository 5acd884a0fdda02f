// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"bytes"
	"encoding/binary"
	"os"
	"slices"
	"strings"
	"testing"
)

func load(t *testing.T) *GLTF {
	t.Helper()
	file, err := os.Open("testdata/rig.gltf")
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	gltf, err := Load(file)
	if err != nil {
		t.Fatal(err)
	}
	return gltf
}

func TestGLTF(t *testing.T) {
	gltf := load(t)
	if n := len(gltf.Nodes); n != 4 {
		t.Fatalf("len(gltf.Nodes):\nhave %d\nwant 4", n)
	}
	if m := gltf.Nodes[1].Mesh; m == nil || *m != 0 {
		t.Fatalf("gltf.Nodes[1].Mesh:\nhave %v\nwant 0", m)
	}
	if s := gltf.Nodes[2].Matrix; s == nil || s[13] != 1 {
		t.Fatalf("gltf.Nodes[2].Matrix:\nhave %v\nwant translation (0, 1, 0)", s)
	}
	if have := gltf.Roots(); !slices.Equal(have, []int64{0, 3}) {
		t.Fatalf("gltf.Roots:\nhave %v\nwant [0 3]", have)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, gltf); err != nil {
		t.Fatal(err)
	}
	again, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if again.Nodes[0].Name != "base" || len(again.Nodes[0].Children) != 1 {
		t.Fatalf("Decode(Encode(gltf)).Nodes[0]:\nhave %+v", again.Nodes[0])
	}
}

func TestRootsNoScene(t *testing.T) {
	gltf := load(t)
	gltf.Scene = nil
	gltf.Scenes = nil
	if have := gltf.Roots(); !slices.Equal(have, []int64{0, 3}) {
		t.Fatalf("gltf.Roots:\nhave %v\nwant [0 3]", have)
	}
}

// makeGLB wraps a JSON document in a GLB blob.
func makeGLB(doc []byte) []byte {
	for len(doc)%4 != 0 {
		doc = append(doc, ' ')
	}
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, glbHeader{magic, 2, uint32(12 + 8 + len(doc))})
	binary.Write(&buf, binary.LittleEndian, glbChunk{uint32(len(doc)), typeJSON})
	buf.Write(doc)
	return buf.Bytes()
}

func TestGLB(t *testing.T) {
	doc, err := os.ReadFile("testdata/rig.gltf")
	if err != nil {
		t.Fatal(err)
	}
	r := bytes.NewReader(makeGLB(doc))
	if !IsGLB(r) {
		t.Fatal("IsGLB(r):\nwant true\nhave false")
	}
	if IsGLB(bytes.NewReader([]byte(`{"asset":{"version":"2.0"}}`))) {
		t.Fatal("IsGLB(json):\nwant false\nhave true")
	}
	r.Seek(0, 0)
	gltf, err := Load(r)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(gltf.Nodes); n != 4 {
		t.Fatalf("len(gltf.Nodes):\nhave %d\nwant 4", n)
	}

	bad := makeGLB(doc)
	binary.LittleEndian.PutUint32(bad[16:], typeBIN)
	if _, err := Load(bytes.NewReader(bad)); err == nil {
		t.Fatal("Load(bad):\nhave nil\nwant error")
	}
}

func TestCheck(t *testing.T) {
	idx := func(i int64) *int64 { return &i }
	for _, x := range [...]struct {
		edit func(*GLTF)
		want string
	}{
		{func(f *GLTF) { f.Asset.Version = "" }, "Version"},
		{func(f *GLTF) { f.Scene = idx(1) }, "GLTF.Scene"},
		{func(f *GLTF) { f.Scenes[0].Nodes = append(f.Scenes[0].Nodes, 9) }, "Scene.Nodes"},
		{func(f *GLTF) { f.Nodes[3].Mesh = idx(1) }, "Node.Mesh"},
		{func(f *GLTF) { f.Nodes[3].Children = []int64{4} }, "Node.Children"},
		{func(f *GLTF) { f.Nodes[3].Children = []int64{2} }, "more than one parent"},
		{func(f *GLTF) { f.Nodes[2].Children = []int64{0} }, "own ancestor"},
		{func(f *GLTF) { f.Nodes[3].Children = []int64{3} }, "own ancestor"},
		{func(f *GLTF) { f.Nodes[2].Scale = &[3]float32{1, 1, 1} }, "mutually exclusive"},
		{func(f *GLTF) { f.Scenes[0].Nodes = append(f.Scenes[0].Nodes, 1) }, "not a root"},
		{func(f *GLTF) { f.Scenes[0].Nodes = append(f.Scenes[0].Nodes, 3) }, "listed twice"},
	} {
		gltf := load(t)
		x.edit(gltf)
		err := gltf.Check()
		if err == nil || !strings.Contains(err.Error(), x.want) {
			t.Fatalf("gltf.Check:\nhave %v\nwant error containing %q", err, x.want)
		}
	}
}
