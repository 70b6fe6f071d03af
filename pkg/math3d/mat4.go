package math3d

import "math"

// Mat4 is a 4x4 matrix in column-major order, the layout glTF stores node
// matrices in. Element (row r, column c) lives at index c*4+r, so the
// translation of an affine transform sits in indices 12..14.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{0: 1, 5: 1, 10: 1, 15: 1}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{0: v.X, 5: v.Y, 10: v.Z, 15: 1}
}

// ScaleAbout scales by s around the pivot point p.
func ScaleAbout(p, s Vec3) Mat4 {
	return Translate(p).Mul(Scale(s)).Mul(Translate(p.Negate()))
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	m := Identity()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

// FromGLTF converts a glTF node matrix.
func FromGLTF(m [16]float64) Mat4 {
	return Mat4(m)
}

// FromTRS builds a transform from translation, rotation quaternion (x, y, z, w)
// and scale, applied in glTF order: T * R * S.
func FromTRS(t Vec3, q [4]float64, s Vec3) Mat4 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	rot := Mat4{
		1 - 2*(y*y+z*z), 2 * (x*y + z*w), 2 * (x*z - y*w), 0,
		2 * (x*y - z*w), 1 - 2*(x*x+z*z), 2 * (y*z + x*w), 0,
		2 * (x*z + y*w), 2 * (y*z - x*w), 1 - 2*(x*x+y*y), 0,
		0, 0, 0, 1,
	}
	return Translate(t).Mul(rot).Mul(Scale(s))
}

// LookAt creates a right-handed view matrix looking from eye towards center.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Perspective creates an OpenGL-style projection (NDC z in [-1, 1]).
// fovy is the vertical field of view in radians, aspect is width/height.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovy/2)
	nf := 1 / (near - far)
	return Mat4{
		0:  f / aspect,
		5:  f,
		10: (far + near) * nf,
		11: -1,
		14: 2 * far * near * nf,
	}
}

// column returns column c as a Vec4.
func (m Mat4) column(c int) Vec4 {
	return Vec4{m[c*4], m[c*4+1], m[c*4+2], m[c*4+3]}
}

// Mul returns m * n: n is applied first.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for c := range 4 {
		col := m.MulVec4(n.column(c))
		out[c*4], out[c*4+1], out[c*4+2], out[c*4+3] = col.X, col.Y, col.Z, col.W
	}
	return out
}

// MulVec4 transforms a homogeneous vector.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// MulVec3 transforms a point (w=1), dividing by the resulting w.
func (m Mat4) MulVec3(p Vec3) Vec3 {
	return m.MulVec4(Point(p)).PerspectiveDivide()
}

// MulVec3Dir transforms a direction (w=0): translation is ignored.
func (m Mat4) MulVec3Dir(d Vec3) Vec3 {
	return m.MulVec4(Vec4{d.X, d.Y, d.Z, 0}).Vec3()
}

// Transpose swaps rows and columns.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for c := range 4 {
		for r := range 4 {
			t[r*4+c] = m[c*4+r]
		}
	}
	return t
}

// Inverse returns the inverse of m. ok is false when m is singular.
func (m Mat4) Inverse() (inv Mat4, ok bool) {
	// 2x2 minors of the top and bottom halves (by storage index).
	s0 := m[0]*m[5] - m[1]*m[4]
	s1 := m[0]*m[6] - m[2]*m[4]
	s2 := m[0]*m[7] - m[3]*m[4]
	s3 := m[1]*m[6] - m[2]*m[5]
	s4 := m[1]*m[7] - m[3]*m[5]
	s5 := m[2]*m[7] - m[3]*m[6]

	c0 := m[8]*m[13] - m[9]*m[12]
	c1 := m[8]*m[14] - m[10]*m[12]
	c2 := m[8]*m[15] - m[11]*m[12]
	c3 := m[9]*m[14] - m[10]*m[13]
	c4 := m[9]*m[15] - m[11]*m[13]
	c5 := m[10]*m[15] - m[11]*m[14]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 || math.IsNaN(det) {
		return Identity(), false
	}
	d := 1 / det

	return Mat4{
		(m[5]*c5 - m[6]*c4 + m[7]*c3) * d,
		(m[2]*c4 - m[1]*c5 - m[3]*c3) * d,
		(m[13]*s5 - m[14]*s4 + m[15]*s3) * d,
		(m[10]*s4 - m[9]*s5 - m[11]*s3) * d,

		(m[6]*c2 - m[4]*c5 - m[7]*c1) * d,
		(m[0]*c5 - m[2]*c2 + m[3]*c1) * d,
		(m[14]*s2 - m[12]*s5 - m[15]*s1) * d,
		(m[8]*s5 - m[10]*s2 + m[11]*s1) * d,

		(m[4]*c4 - m[5]*c2 + m[7]*c0) * d,
		(m[1]*c2 - m[0]*c4 - m[3]*c0) * d,
		(m[12]*s4 - m[13]*s2 + m[15]*s0) * d,
		(m[9]*s2 - m[8]*s4 - m[11]*s0) * d,

		(m[5]*c1 - m[4]*c3 - m[6]*c0) * d,
		(m[0]*c3 - m[1]*c1 + m[2]*c0) * d,
		(m[13]*s1 - m[12]*s3 - m[14]*s0) * d,
		(m[8]*s3 - m[9]*s1 + m[10]*s0) * d,
	}, true
}

// NormalMatrix returns the matrix that carries surface normals through m:
// the inverse transpose, which keeps normals perpendicular under
// non-uniform scale. A singular m falls back to m itself.
func (m Mat4) NormalMatrix() Mat4 {
	inv, ok := m.Inverse()
	if !ok {
		return m
	}
	return inv.Transpose()
}
