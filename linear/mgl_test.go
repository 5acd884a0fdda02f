// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// mgl converts m to a mgl32.Mat4.
// Both types are column-major.
func (m *M4) mgl() (n mgl32.Mat4) {
	for i := range m {
		for j := range m[i] {
			n[i*4+j] = m[i][j]
		}
	}
	return
}

func near(m *M4, n mgl32.Mat4) bool {
	x := M4{}
	for i := range x {
		for j := range x[i] {
			x[i][j] = n[i*4+j]
		}
	}
	return m.Near(&x, 1e-5)
}

func TestM4Mgl(t *testing.T) {
	var q Q
	var r, s, x M4
	q.Rotate(0.75, &V3{0, 0.6, 0.8})
	r.RotateQ(&q)
	if g := mgl32.QuatRotate(0.75, mgl32.Vec3{0, 0.6, 0.8}).Mat4(); !near(&r, g) {
		t.Fatalf("M4.RotateQ\nhave %v\nwant %v", r, g)
	}

	x.Translate(3, -2, 7)
	s.Scale(2, 0.5, 4)
	x.Mul(&x, &r)
	x.Mul(&x, &s)
	g := mgl32.Translate3D(3, -2, 7).
		Mul4(mgl32.QuatRotate(0.75, mgl32.Vec3{0, 0.6, 0.8}).Mat4()).
		Mul4(mgl32.Scale3D(2, 0.5, 4))
	if !near(&x, g) {
		t.Fatalf("T*R*S\nhave %v\nwant %v", x, g)
	}

	var c M4
	c.Compose(&V3{3, -2, 7}, &q, &V3{2, 0.5, 4})
	if !c.Near(&x, 1e-5) {
		t.Fatalf("M4.Compose\nhave %v\nwant %v", c, x)
	}

	var inv M4
	if !inv.Invert(&x) {
		t.Fatal("M4.Invert: unexpected singular matrix")
	}
	if g := x.mgl().Inv(); !near(&inv, g) {
		t.Fatalf("M4.Invert\nhave %v\nwant %v", inv, g)
	}
	var id, one M4
	id.Mul(&x, &inv)
	one.I()
	if !id.Near(&one, 1e-5) {
		t.Fatalf("M4.Mul(x, x⁻¹)\nhave %v\nwant %v", id, one)
	}
}

func TestM4InvertSingular(t *testing.T) {
	var m, n M4
	m.I()
	z := m
	n.Scale(1, 0, 1)
	if m.Invert(&n) {
		t.Fatal("M4.Invert: singular matrix should not be invertible")
	}
	if m != z {
		t.Fatalf("M4.Invert: singular\nhave %v\nwant %v", m, z)
	}
	if !m.Invert(&z) || m != z {
		t.Fatalf("M4.Invert: identity\nhave %v\nwant %v", m, z)
	}
}

func TestLookAt(t *testing.T) {
	for _, x := range [...]struct {
		dir, up V3
		lh      bool
		fwd     V4
	}{
		{V3{1, 0, 0}, V3{0, 1, 0}, false, V4{0, 0, -1, 0}},
		{V3{0, 0, -5}, V3{0, 1, 0}, false, V4{0, 0, -1, 0}},
		{V3{1, 1, 1}, V3{0, 1, 0}, false, V4{0, 0, -1, 0}},
		{V3{-2, 0.5, 3}, V3{0, 1, 0}, true, V4{0, 0, 1, 0}},
		{V3{0, 0, 1}, V3{1, 0, 0}, true, V4{0, 0, 1, 0}},
	} {
		var q Q
		if !q.LookAt(&x.dir, &x.up, x.lh) {
			t.Fatalf("Q.LookAt(%v, %v): unexpected failure", x.dir, x.up)
		}
		var m M4
		var want V3
		m.RotateQ(&q)
		v := x.fwd
		v.Mul(&m, &v)
		want.Norm(&x.dir)
		have := V3{v[0], v[1], v[2]}
		var d V3
		if d.Sub(&have, &want); d.Len() > 1e-5 {
			t.Fatalf("Q.LookAt(%v, %v)\nhave %v\nwant %v", x.dir, x.up, have, want)
		}
	}

	var q Q
	q.I()
	if q.LookAt(&V3{0, 2, 0}, &V3{0, 1, 0}, false) || q != (Q{R: 1}) {
		t.Fatalf("Q.LookAt: parallel up\nhave %v\nwant %v", q, Q{R: 1})
	}
	if q.LookAt(&V3{}, &V3{0, 1, 0}, false) || q != (Q{R: 1}) {
		t.Fatalf("Q.LookAt: zero dir\nhave %v\nwant %v", q, Q{R: 1})
	}
}
