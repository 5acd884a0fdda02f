// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"github.com/chewxy/math32"
)

// M3 is a column-major 3x3 matrix of float32.
type M3 [3]V3

// I makes m an identity matrix.
func (m *M3) I() { *m = M3{{1}, {0, 1}, {0, 0, 1}} }

// Mul sets m to contain l ⋅ r.
func (m *M3) Mul(l, r *M3) {
	var x M3
	for i := range x {
		for j := range x {
			for k := range x {
				x[i][j] += l[k][j] * r[i][k]
			}
		}
	}
	*m = x
}

// Transpose sets m to contain the transpose of n.
func (m *M3) Transpose(n *M3) {
	for i := range m {
		m[i][i] = n[i][i]
		for j := i + 1; j < len(m); j++ {
			m[i][j], m[j][i] = n[j][i], n[i][j]
		}
	}
}

// Invert sets m to contain the inverse of n.
// If n is singular, m is left unchanged and
// Invert returns false.
func (m *M3) Invert(n *M3) bool {
	s0 := n[1][1]*n[2][2] - n[1][2]*n[2][1]
	s1 := n[1][0]*n[2][2] - n[1][2]*n[2][0]
	s2 := n[1][0]*n[2][1] - n[1][1]*n[2][0]
	det := n[0][0]*s0 - n[0][1]*s1 + n[0][2]*s2
	if det == 0 {
		return false
	}
	idet := 1 / det
	if math32.IsInf(idet, 0) || math32.IsNaN(idet) {
		return false
	}
	*m = M3{
		{
			s0 * idet,
			-(n[0][1]*n[2][2] - n[0][2]*n[2][1]) * idet,
			(n[0][1]*n[1][2] - n[0][2]*n[1][1]) * idet,
		},
		{
			-s1 * idet,
			(n[0][0]*n[2][2] - n[0][2]*n[2][0]) * idet,
			-(n[0][0]*n[1][2] - n[0][2]*n[1][0]) * idet,
		},
		{
			s2 * idet,
			-(n[0][0]*n[2][1] - n[0][1]*n[2][0]) * idet,
			(n[0][0]*n[1][1] - n[0][1]*n[1][0]) * idet,
		},
	}
	return true
}

// FromM4 sets m to contain the upper-left 3x3 of n.
func (m *M3) FromM4(n *M4) {
	for i := range m {
		m[i] = V3{n[i][0], n[i][1], n[i][2]}
	}
}

// M4 is a column-major 4x4 matrix of float32.
type M4 [4]V4

// I makes m an identity matrix.
func (m *M4) I() { *m = M4{{1}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}} }

// Mul sets m to contain l ⋅ r.
func (m *M4) Mul(l, r *M4) {
	var x M4
	for i := range x {
		for j := range x {
			for k := range x {
				x[i][j] += l[k][j] * r[i][k]
			}
		}
	}
	*m = x
}

// Transpose sets m to contain the transpose of n.
func (m *M4) Transpose(n *M4) {
	for i := range m {
		m[i][i] = n[i][i]
		for j := i + 1; j < len(m); j++ {
			m[i][j], m[j][i] = n[j][i], n[i][j]
		}
	}
}

// Invert sets m to contain the inverse of n.
// If n is singular, m is left unchanged and
// Invert returns false.
func (m *M4) Invert(n *M4) bool {
	s0 := n[0][0]*n[1][1] - n[0][1]*n[1][0]
	s1 := n[0][0]*n[1][2] - n[0][2]*n[1][0]
	s2 := n[0][0]*n[1][3] - n[0][3]*n[1][0]
	s3 := n[0][1]*n[1][2] - n[0][2]*n[1][1]
	s4 := n[0][1]*n[1][3] - n[0][3]*n[1][1]
	s5 := n[0][2]*n[1][3] - n[0][3]*n[1][2]
	c0 := n[2][0]*n[3][1] - n[2][1]*n[3][0]
	c1 := n[2][0]*n[3][2] - n[2][2]*n[3][0]
	c2 := n[2][0]*n[3][3] - n[2][3]*n[3][0]
	c3 := n[2][1]*n[3][2] - n[2][2]*n[3][1]
	c4 := n[2][1]*n[3][3] - n[2][3]*n[3][1]
	c5 := n[2][2]*n[3][3] - n[2][3]*n[3][2]
	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return false
	}
	idet := 1 / det
	if math32.IsInf(idet, 0) || math32.IsNaN(idet) {
		return false
	}
	*m = M4{
		{
			(c5*n[1][1] - c4*n[1][2] + c3*n[1][3]) * idet,
			(-c5*n[0][1] + c4*n[0][2] - c3*n[0][3]) * idet,
			(s5*n[3][1] - s4*n[3][2] + s3*n[3][3]) * idet,
			(-s5*n[2][1] + s4*n[2][2] - s3*n[2][3]) * idet,
		},
		{
			(-c5*n[1][0] + c2*n[1][2] - c1*n[1][3]) * idet,
			(c5*n[0][0] - c2*n[0][2] + c1*n[0][3]) * idet,
			(-s5*n[3][0] + s2*n[3][2] - s1*n[3][3]) * idet,
			(s5*n[2][0] - s2*n[2][2] + s1*n[2][3]) * idet,
		},
		{
			(c4*n[1][0] - c2*n[1][1] + c0*n[1][3]) * idet,
			(-c4*n[0][0] + c2*n[0][1] - c0*n[0][3]) * idet,
			(s4*n[3][0] - s2*n[3][1] + s0*n[3][3]) * idet,
			(-s4*n[2][0] + s2*n[2][1] - s0*n[2][3]) * idet,
		},
		{
			(-c3*n[1][0] + c1*n[1][1] - c0*n[1][2]) * idet,
			(c3*n[0][0] - c1*n[0][1] + c0*n[0][2]) * idet,
			(-s3*n[3][0] + s1*n[3][1] - s0*n[3][2]) * idet,
			(s3*n[2][0] - s1*n[2][1] + s0*n[2][2]) * idet,
		},
	}
	return true
}

// Translate sets m to contain a translation matrix.
func (m *M4) Translate(x, y, z float32) {
	m.I()
	m[3] = V4{x, y, z, 1}
}

// Scale sets m to contain a scale matrix.
func (m *M4) Scale(x, y, z float32) {
	*m = M4{{x}, {0, y}, {0, 0, z}, {0, 0, 0, 1}}
}

// RotateQ sets m to contain the rotation described
// by the unit quaternion q.
func (m *M4) RotateQ(q *Q) {
	x, y, z, w := q.V[0], q.V[1], q.V[2], q.R
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z
	*m = M4{
		{1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0},
		{2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0},
		{2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0},
		{0, 0, 0, 1},
	}
}

// Compose sets m to contain T ⋅ R ⋅ S, where T translates
// by t, R rotates by the unit quaternion r and S scales
// by s.
func (m *M4) Compose(t *V3, r *Q, s *V3) {
	m.RotateQ(r)
	for i := range 3 {
		for j := range 3 {
			m[i][j] *= s[i]
		}
	}
	m[3] = V4{t[0], t[1], t[2], 1}
}

// Near checks whether every element of m is within
// eps of the corresponding element of n.
func (m *M4) Near(n *M4, eps float32) bool {
	for i := range m {
		for j := range m[i] {
			if math32.Abs(m[i][j]-n[i][j]) > eps {
				return false
			}
		}
	}
	return true
}
