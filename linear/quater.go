// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"github.com/chewxy/math32"
)

// Q is a quaternion of float32.
type Q struct {
	V V3
	R float32
}

// I makes q an identity quaternion.
func (q *Q) I() { *q = Q{R: 1} }

// Mul sets q to contain l ⋅ r.
func (q *Q) Mul(l, r *Q) {
	var v, w V3
	v.Scale(r.R, &l.V)
	w.Scale(l.R, &r.V)
	v.Add(&v, &w)
	w.Cross(&l.V, &r.V)
	d := l.V.Dot(&r.V)
	q.V.Add(&v, &w)
	q.R = l.R*r.R - d
}

// Rotate sets q to contain a rotation of angle
// radians about axis.
// axis must be a unit vector.
func (q *Q) Rotate(angle float32, axis *V3) {
	s, c := math32.Sincos(angle * 0.5)
	q.V.Scale(s, axis)
	q.R = c
}

// Norm sets q to contain p normalized.
func (q *Q) Norm(p *Q) {
	n := math32.Sqrt(p.V.Dot(&p.V) + p.R*p.R)
	q.V.Scale(1/n, &p.V)
	q.R = p.R / n
}

// FromM3 sets q to contain the rotation described by
// the orthonormal matrix m.
func (q *Q) FromM3(m *M3) {
	// a(r, c) is m[c][r].
	switch tr := m[0][0] + m[1][1] + m[2][2]; {
	case tr > 0:
		s := 0.5 / math32.Sqrt(tr+1)
		q.R = 0.25 / s
		q.V = V3{
			(m[1][2] - m[2][1]) * s,
			(m[2][0] - m[0][2]) * s,
			(m[0][1] - m[1][0]) * s,
		}
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := 2 * math32.Sqrt(1+m[0][0]-m[1][1]-m[2][2])
		q.R = (m[1][2] - m[2][1]) / s
		q.V = V3{
			0.25 * s,
			(m[1][0] + m[0][1]) / s,
			(m[2][0] + m[0][2]) / s,
		}
	case m[1][1] > m[2][2]:
		s := 2 * math32.Sqrt(1+m[1][1]-m[0][0]-m[2][2])
		q.R = (m[2][0] - m[0][2]) / s
		q.V = V3{
			(m[1][0] + m[0][1]) / s,
			0.25 * s,
			(m[2][1] + m[1][2]) / s,
		}
	default:
		s := 2 * math32.Sqrt(1+m[2][2]-m[0][0]-m[1][1])
		q.R = (m[0][1] - m[1][0]) / s
		q.V = V3{
			(m[2][0] + m[0][2]) / s,
			(m[2][1] + m[1][2]) / s,
			0.25 * s,
		}
	}
}

// LookAt sets q to contain the rotation that points the
// forward axis along dir, keeping the +Y axis as close to
// up as possible.
// The forward axis is -Z, or +Z when lh is true.
// It returns false and leaves q unchanged when dir has
// zero length or is parallel to up.
func (q *Q) LookAt(dir, up *V3, lh bool) bool {
	if dir.Len() == 0 {
		return false
	}
	var x, y, z V3
	if lh {
		z.Norm(dir)
	} else {
		z.Scale(-1/dir.Len(), dir)
	}
	x.Cross(up, &z)
	if x.Len() < 1e-6 {
		return false
	}
	x.Norm(&x)
	y.Cross(&z, &x)
	q.FromM3(&M3{x, y, z})
	return true
}
