package shapeview

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"
)

// Shape is a per-instance record that a ShapePipeline can upload and draw.
// Rect, Circle and Line implement it.
type Shape interface {
	// AppendInstance appends the record's GPU encoding to dst. The result
	// must match Descriptor().Instance.
	AppendInstance(dst []byte) []byte
	// Descriptor describes the pipeline for this shape kind. It must not
	// depend on the receiver's field values.
	Descriptor() ShapeDescriptor
}

// ShapeDescriptor is the static description of one shape kind.
type ShapeDescriptor struct {
	Label string
	// Shader is the WGSL source with vs_main and fs_main entry points.
	Shader string
	// Instance is the per-instance vertex buffer layout, bound at slot 1
	// when Quad is set and slot 0 otherwise.
	Instance gputypes.VertexBufferLayout
	// Quad selects the shared unit quad as static geometry (slot 0, indexed
	// draw). Without it the pipeline issues a non-indexed draw of
	// VerticesPerInstance vertices per instance.
	Quad                bool
	VerticesPerInstance uint32
	// Expand turns one encoded instance into world-space quads for
	// backends that rasterize on the CPU side of the draw call.
	Expand ExpandFunc
}

// ExpandFunc appends the quads for one encoded instance to dst.
type ExpandFunc func(instance []byte, dst []QuadLayer) []QuadLayer

// QuadLayer is one filled rounded box in world space. Corners and Local are
// in the same order; Local is the position inside the box relative to its
// center, so the box covers |Local| <= HalfSize.
type QuadLayer struct {
	Corners  [4]f32.Vec2
	Local    [4]f32.Vec2
	HalfSize f32.Vec2
	Radius   float32
	Color    f32.Vec4
}

// --- Static geometry ---

// QuadVertices is the shared unit quad: (-1,-1), (-1,1), (1,1), (1,-1).
var QuadVertices = [4]f32.Vec2{{-1, -1}, {-1, 1}, {1, 1}, {1, -1}}

// QuadIndices draws QuadVertices as two triangles.
var QuadIndices = [6]uint16{0, 1, 2, 2, 3, 0}

// QuadVertexLayout is the layout of QuadVertices: one Float32x2 position
// at location 0, stepped per vertex.
var QuadVertexLayout = gputypes.VertexBufferLayout{
	ArrayStride: 8,
	StepMode:    gputypes.VertexStepModeVertex,
	Attributes: []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
	},
}

func quadVertexBytes() []byte {
	b := make([]byte, 0, len(QuadVertices)*8)
	for _, v := range QuadVertices {
		b = appendF32(b, v[0], v[1])
	}
	return b
}

func quadIndexBytes() []byte {
	b := make([]byte, 0, len(QuadIndices)*2)
	for _, i := range QuadIndices {
		b = binary.LittleEndian.AppendUint16(b, i)
	}
	return b
}

// --- Encoding helpers ---

func appendF32(dst []byte, vs ...float32) []byte {
	for _, v := range vs {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

func readF32(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func readVec2(b []byte, off int) f32.Vec2 {
	return f32.Vec2{readF32(b, off), readF32(b, off+4)}
}

func readVec4(b []byte, off int) f32.Vec4 {
	return f32.Vec4{readF32(b, off), readF32(b, off+4), readF32(b, off+8), readF32(b, off+12)}
}

// layoutStride sums the attribute sizes of a tightly packed layout.
func layoutStride(attrs []gputypes.VertexAttribute) uint64 {
	var n uint64
	for _, a := range attrs {
		n += a.Format.Size()
	}
	return n
}

// --- Rect ---

// Rect is a rotated, optionally rounded and bordered rectangle. Position is
// the center; Rotation is in radians around the center. BorderRadius holds
// the corner radii as (top-left, top-right, bottom-right, bottom-left).
// Border is the border width in world units.
type Rect struct {
	Position     f32.Vec2
	Rotation     float32
	Color        f32.Vec4
	Size         f32.Vec2
	BorderRadius f32.Vec4
	Border       float32
	BorderColor  f32.Vec4
}

// NewRect returns a white 100x100 rect at the origin with a white border
// color and no border.
func NewRect() Rect {
	return Rect{
		Color:       f32.Vec4{1, 1, 1, 1},
		Size:        f32.Vec2{100, 100},
		BorderColor: f32.Vec4{1, 1, 1, 1},
	}
}

var rectLayout = gputypes.VertexBufferLayout{
	ArrayStride: 72,
	StepMode:    gputypes.VertexStepModeInstance,
	Attributes: []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1},
		{Format: gputypes.VertexFormatFloat32, Offset: 8, ShaderLocation: 2},
		{Format: gputypes.VertexFormatFloat32x4, Offset: 12, ShaderLocation: 3},
		{Format: gputypes.VertexFormatFloat32x2, Offset: 28, ShaderLocation: 4},
		{Format: gputypes.VertexFormatFloat32x4, Offset: 36, ShaderLocation: 5},
		{Format: gputypes.VertexFormatFloat32, Offset: 52, ShaderLocation: 6},
		{Format: gputypes.VertexFormatFloat32x4, Offset: 56, ShaderLocation: 7},
	},
}

// AppendInstance implements Shape.
func (r Rect) AppendInstance(dst []byte) []byte {
	dst = appendF32(dst, r.Position[0], r.Position[1], r.Rotation)
	dst = appendF32(dst, r.Color[:]...)
	dst = appendF32(dst, r.Size[0], r.Size[1])
	dst = appendF32(dst, r.BorderRadius[:]...)
	dst = appendF32(dst, r.Border)
	return appendF32(dst, r.BorderColor[:]...)
}

// Descriptor implements Shape.
func (Rect) Descriptor() ShapeDescriptor {
	return ShapeDescriptor{
		Label:    "rect",
		Shader:   rectShader,
		Instance: rectLayout,
		Quad:     true,
		Expand:   expandRect,
	}
}

func decodeRect(b []byte) Rect {
	return Rect{
		Position:     readVec2(b, 0),
		Rotation:     readF32(b, 8),
		Color:        readVec4(b, 12),
		Size:         readVec2(b, 28),
		BorderRadius: readVec4(b, 36),
		Border:       readF32(b, 52),
		BorderColor:  readVec4(b, 56),
	}
}

// expandRect emits the border box first and the fill box inset by the
// border width on top of it. Both share the outer quad; the rounded-box
// test trims the fill. Corner radii collapse to the largest one.
func expandRect(b []byte, dst []QuadLayer) []QuadLayer {
	r := decodeRect(b)
	hx, hy := math32.Abs(r.Size[0])/2, math32.Abs(r.Size[1])/2
	if hx == 0 || hy == 0 {
		return dst
	}
	radius := math32.Max(math32.Max(r.BorderRadius[0], r.BorderRadius[1]),
		math32.Max(r.BorderRadius[2], r.BorderRadius[3]))

	local := [4]f32.Vec2{{-hx, -hy}, {hx, -hy}, {hx, hy}, {-hx, hy}}
	sin, cos := math32.Sincos(r.Rotation)
	var corners [4]f32.Vec2
	for i, p := range local {
		corners[i] = f32.Vec2{
			r.Position[0] + p[0]*cos - p[1]*sin,
			r.Position[1] + p[0]*sin + p[1]*cos,
		}
	}

	fill := QuadLayer{Corners: corners, Local: local, HalfSize: f32.Vec2{hx, hy}, Radius: radius, Color: r.Color}
	if r.Border <= 0 || r.BorderColor[3] <= 0 {
		return append(dst, fill)
	}
	border := fill
	border.Color = r.BorderColor
	dst = append(dst, border)

	fill.HalfSize = f32.Vec2{hx - r.Border, hy - r.Border}
	fill.Radius = math32.Max(radius-r.Border, 0)
	if fill.HalfSize[0] <= 0 || fill.HalfSize[1] <= 0 {
		return dst
	}
	return append(dst, fill)
}

// --- Circle ---

// Circle is a filled circle with an optional border. Position is the
// center; Border is the border width in world units.
type Circle struct {
	Position    f32.Vec2
	Color       f32.Vec4
	Radius      float32
	Border      float32
	BorderColor f32.Vec4
}

// NewCircle returns a white circle of radius 50 at the origin.
func NewCircle() Circle {
	return Circle{
		Color:       f32.Vec4{1, 1, 1, 1},
		Radius:      50,
		BorderColor: f32.Vec4{1, 1, 1, 1},
	}
}

var circleLayout = gputypes.VertexBufferLayout{
	ArrayStride: 48,
	StepMode:    gputypes.VertexStepModeInstance,
	Attributes: []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1},
		{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 2},
		{Format: gputypes.VertexFormatFloat32, Offset: 24, ShaderLocation: 3},
		{Format: gputypes.VertexFormatFloat32, Offset: 28, ShaderLocation: 4},
		{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 5},
	},
}

// AppendInstance implements Shape.
func (c Circle) AppendInstance(dst []byte) []byte {
	dst = appendF32(dst, c.Position[0], c.Position[1])
	dst = appendF32(dst, c.Color[:]...)
	dst = appendF32(dst, c.Radius, c.Border)
	return appendF32(dst, c.BorderColor[:]...)
}

// Descriptor implements Shape.
func (Circle) Descriptor() ShapeDescriptor {
	return ShapeDescriptor{
		Label:    "circle",
		Shader:   circleShader,
		Instance: circleLayout,
		Quad:     true,
		Expand:   expandCircle,
	}
}

func decodeCircle(b []byte) Circle {
	return Circle{
		Position:    readVec2(b, 0),
		Color:       readVec4(b, 8),
		Radius:      readF32(b, 24),
		Border:      readF32(b, 28),
		BorderColor: readVec4(b, 32),
	}
}

func expandCircle(b []byte, dst []QuadLayer) []QuadLayer {
	c := decodeCircle(b)
	r := math32.Abs(c.Radius)
	if r == 0 {
		return dst
	}
	local := [4]f32.Vec2{{-r, -r}, {r, -r}, {r, r}, {-r, r}}
	var corners [4]f32.Vec2
	for i, p := range local {
		corners[i] = f32.Vec2{c.Position[0] + p[0], c.Position[1] + p[1]}
	}

	fill := QuadLayer{Corners: corners, Local: local, HalfSize: f32.Vec2{r, r}, Radius: r, Color: c.Color}
	if c.Border <= 0 || c.BorderColor[3] <= 0 {
		return append(dst, fill)
	}
	border := fill
	border.Color = c.BorderColor
	dst = append(dst, border)

	inner := r - c.Border
	if inner <= 0 {
		return dst
	}
	fill.HalfSize = f32.Vec2{inner, inner}
	fill.Radius = inner
	return append(dst, fill)
}

// --- Line ---

// Line is a straight segment from Start to End drawn Thickness world units
// wide.
type Line struct {
	Start     f32.Vec2
	End       f32.Vec2
	Color     f32.Vec4
	Thickness float32
}

// NewLine returns a white zero-length line 100 units thick.
func NewLine() Line {
	return Line{
		Color:     f32.Vec4{1, 1, 1, 1},
		Thickness: 100,
	}
}

var lineLayout = gputypes.VertexBufferLayout{
	ArrayStride: 36,
	StepMode:    gputypes.VertexStepModeInstance,
	Attributes: []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 1},
		{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 2},
		{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 3},
		{Format: gputypes.VertexFormatFloat32, Offset: 32, ShaderLocation: 4},
	},
}

// AppendInstance implements Shape.
func (l Line) AppendInstance(dst []byte) []byte {
	dst = appendF32(dst, l.Start[0], l.Start[1], l.End[0], l.End[1])
	dst = appendF32(dst, l.Color[:]...)
	return appendF32(dst, l.Thickness)
}

// Descriptor implements Shape. Lines have no static geometry: the shader
// builds each quad from the vertex index.
func (Line) Descriptor() ShapeDescriptor {
	return ShapeDescriptor{
		Label:               "line",
		Shader:              lineShader,
		Instance:            lineLayout,
		VerticesPerInstance: 6,
		Expand:              expandLine,
	}
}

func decodeLine(b []byte) Line {
	return Line{
		Start:     readVec2(b, 0),
		End:       readVec2(b, 8),
		Color:     readVec4(b, 16),
		Thickness: readF32(b, 32),
	}
}

func expandLine(b []byte, dst []QuadLayer) []QuadLayer {
	l := decodeLine(b)
	dx, dy := l.End[0]-l.Start[0], l.End[1]-l.Start[1]
	length := math32.Hypot(dx, dy)
	half := math32.Abs(l.Thickness) / 2
	if length == 0 || half == 0 {
		return dst
	}
	nx, ny := -dy/length*half, dx/length*half
	hl := length / 2
	return append(dst, QuadLayer{
		Corners: [4]f32.Vec2{
			{l.Start[0] + nx, l.Start[1] + ny},
			{l.End[0] + nx, l.End[1] + ny},
			{l.End[0] - nx, l.End[1] - ny},
			{l.Start[0] - nx, l.Start[1] - ny},
		},
		Local:    [4]f32.Vec2{{-hl, half}, {hl, half}, {hl, -half}, {-hl, -half}},
		HalfSize: f32.Vec2{hl, half},
		Color:    l.Color,
	})
}
