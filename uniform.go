package shapeview

import (
	"encoding/binary"
	"math"
)

// CameraUniformSize is the byte size of a serialized CameraUniform.
const CameraUniformSize = 64

// CameraUniform is the GPU-side snapshot of the camera: one 4x4 float32
// view-projection matrix in column-major order, bound at group 0,
// binding 0 by every shape pipeline.
type CameraUniform struct {
	ViewProj [16]float32
}

// NewCameraUniform returns a uniform holding the identity matrix.
func NewCameraUniform() CameraUniform {
	return CameraUniform{ViewProj: columnMajor32(identityMat4)}
}

// Refresh recomputes the matrix from the camera's current projection.
func (u *CameraUniform) Refresh(cam Camera) {
	u.ViewProj = columnMajor32(cam.Projection())
}

// AppendBytes appends the little-endian encoding of u to dst.
func (u *CameraUniform) AppendBytes(dst []byte) []byte {
	for _, v := range u.ViewProj {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// Bytes returns the 64-byte little-endian encoding of u.
func (u *CameraUniform) Bytes() []byte {
	return u.AppendBytes(make([]byte, 0, CameraUniformSize))
}

// decodeViewProj reads a column-major matrix written by AppendBytes.
// Returns false when b is too short.
func decodeViewProj(b []byte) ([16]float32, bool) {
	var m [16]float32
	if len(b) < CameraUniformSize {
		return m, false
	}
	for i := range m {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return m, true
}
