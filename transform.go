package shapeview

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Matrices in this file are f64.Mat4 values in row-major order:
//
//	| m[0]  m[1]  m[2]  m[3]  |
//	| m[4]  m[5]  m[6]  m[7]  |
//	| m[8]  m[9]  m[10] m[11] |
//	| m[12] m[13] m[14] m[15] |
//
// Points are column vectors, so the translation lives in m[3], m[7], m[11].

// singularEpsilon is the determinant magnitude below which a matrix is
// treated as non-invertible.
const singularEpsilon = 1e-12

// Camera depth planes. near=2, far=0 gives z' = z+1, which keeps the
// projection invertible for the z=1 unprojection point.
const (
	cameraNear = 2.0
	cameraFar  = 0.0
)

// identityMat4 is the 4x4 identity matrix.
var identityMat4 = f64.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Ortho returns an orthographic projection mapping the box
// [left,right] x [bottom,top] x [-near,-far] to clip space [-1,1]^3.
// The convention matches the common OpenGL-style ortho used by cgmath.
// Returns the identity when any extent is zero.
func Ortho(left, right, bottom, top, near, far float64) f64.Mat4 {
	m, ok := orthoChecked(left, right, bottom, top, near, far)
	if !ok {
		return identityMat4
	}
	return m
}

// orthoChecked is Ortho without the identity fallback. It reports false
// when an extent is zero or an input is not finite.
func orthoChecked(left, right, bottom, top, near, far float64) (f64.Mat4, bool) {
	if !finite(left, right, bottom, top, near, far) {
		return f64.Mat4{}, false
	}
	rl := right - left
	tb := top - bottom
	fn := far - near
	if rl == 0 || tb == 0 || fn == 0 {
		return f64.Mat4{}, false
	}
	return f64.Mat4{
		2 / rl, 0, 0, -(right + left) / rl,
		0, 2 / tb, 0, -(top + bottom) / tb,
		0, 0, -2 / fn, -(far + near) / fn,
		0, 0, 0, 1,
	}, true
}

// finite reports whether every value is neither NaN nor infinite.
func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// multiplyMat4 returns a * b.
func multiplyMat4(a, b f64.Mat4) f64.Mat4 {
	var r f64.Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[row*4+k] * b[k*4+col]
			}
			r[row*4+col] = sum
		}
	}
	return r
}

// transformVec4 applies m to the column vector v.
func transformVec4(m f64.Mat4, v f64.Vec4) f64.Vec4 {
	return f64.Vec4{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3]*v[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7]*v[3],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11]*v[3],
		m[12]*v[0] + m[13]*v[1] + m[14]*v[2] + m[15]*v[3],
	}
}

// Invert returns the inverse of m and true, or the identity and false when
// m is singular.
func Invert(m f64.Mat4) (f64.Mat4, bool) {
	// 2x2 sub-determinants of the top two and bottom two rows.
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if math.Abs(det) < singularEpsilon || math.IsNaN(det) {
		return identityMat4, false
	}
	inv := 1 / det

	return f64.Mat4{
		(m[5]*c5 - m[6]*c4 + m[7]*c3) * inv,
		(-m[1]*c5 + m[2]*c4 - m[3]*c3) * inv,
		(m[13]*s5 - m[14]*s4 + m[15]*s3) * inv,
		(-m[9]*s5 + m[10]*s4 - m[11]*s3) * inv,

		(-m[4]*c5 + m[6]*c2 - m[7]*c1) * inv,
		(m[0]*c5 - m[2]*c2 + m[3]*c1) * inv,
		(-m[12]*s5 + m[14]*s2 - m[15]*s1) * inv,
		(m[8]*s5 - m[10]*s2 + m[11]*s1) * inv,

		(m[4]*c4 - m[5]*c2 + m[7]*c0) * inv,
		(-m[0]*c4 + m[1]*c2 - m[3]*c0) * inv,
		(m[12]*s4 - m[13]*s2 + m[15]*s0) * inv,
		(-m[8]*s4 + m[9]*s2 - m[11]*s0) * inv,

		(-m[4]*c3 + m[5]*c1 - m[6]*c0) * inv,
		(m[0]*c3 - m[1]*c1 + m[2]*c0) * inv,
		(-m[12]*s3 + m[13]*s1 - m[14]*s0) * inv,
		(m[8]*s3 - m[9]*s1 + m[10]*s0) * inv,
	}, true
}

// Unproject converts a screen-space position (pixels, origin top-left,
// Y down) into world space through the inverse of proj.
//
// The pixel is mapped to normalized device coordinates (x right, y up),
// lifted to (x, y, 1, 1), multiplied by the inverse projection, and the
// x and y components are returned. Fails with ErrDegenerateViewport for a
// zero-sized viewport and ErrSingularProjection when proj has no inverse.
func Unproject(sx, sy float64, proj f64.Mat4, width, height float64) (wx, wy float64, err error) {
	if width <= 0 || height <= 0 {
		return 0, 0, ErrDegenerateViewport
	}
	inv, ok := Invert(proj)
	if !ok {
		return 0, 0, ErrSingularProjection
	}
	wx, wy = unprojectWith(inv, sx, sy, width, height)
	return wx, wy, nil
}

// unprojectWith is Unproject with a precomputed inverse.
func unprojectWith(inv f64.Mat4, sx, sy, width, height float64) (float64, float64) {
	ndcX := 2*sx/width - 1
	ndcY := -(2*sy/height - 1)
	w := transformVec4(inv, f64.Vec4{ndcX, ndcY, 1, 1})
	return w[0], w[1]
}

// Project converts a world-space position into screen pixels through proj.
// It is the inverse of Unproject for orthographic projections.
func Project(wx, wy float64, proj f64.Mat4, width, height float64) (sx, sy float64) {
	c := transformVec4(proj, f64.Vec4{wx, wy, 0, 1})
	if c[3] != 0 {
		c[0] /= c[3]
		c[1] /= c[3]
	}
	sx = (c[0] + 1) * 0.5 * width
	sy = (1 - c[1]) * 0.5 * height
	return sx, sy
}

// columnMajor32 converts a row-major float64 matrix into the column-major
// float32 layout GPU uniform buffers expect.
func columnMajor32(m f64.Mat4) [16]float32 {
	var out [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out[col*4+row] = float32(m[row*4+col])
		}
	}
	return out
}
