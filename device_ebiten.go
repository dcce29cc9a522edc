package shapeview

import (
	"fmt"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/math/f32"
)

// EbitenDevice renders shape pipelines with ebiten. Buffers live in host
// memory. Each draw call reads the bound instance buffer, expands every
// instance into world-space quads with the pipeline's Expand hook,
// projects them through the bound camera uniform and submits them in a
// single DrawTrianglesShader32 call with a shared rounded-box shader.
type EbitenDevice struct {
	shader *ebiten.Shader

	layers []QuadLayer
	verts  []ebiten.Vertex
	inds   []uint32

	drawCalls int
	quads     int
}

// NewEbitenDevice returns a device. The Kage shader is compiled on first
// pipeline creation.
func NewEbitenDevice() *EbitenDevice {
	return &EbitenDevice{}
}

// CreateBuffer implements Device.
func (d *EbitenDevice) CreateBuffer(desc BufferDescriptor, contents []byte) (Buffer, error) {
	b, err := newHostBuffer(desc, contents)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// WriteBuffer implements Device.
func (d *EbitenDevice) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	return writeHostBuffer(buf, offset, data)
}

// DestroyBuffer implements Device.
func (d *EbitenDevice) DestroyBuffer(buf Buffer) {
	destroyHostBuffer(buf)
}

// CreateRenderPipeline implements Device. The descriptor must carry an
// Expand hook and exactly one per-instance layout.
func (d *EbitenDevice) CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error) {
	if err := validatePipeline(desc); err != nil {
		return nil, err
	}
	if desc.Expand == nil {
		return nil, fmt.Errorf("create pipeline %q: no expand hook", desc.Label)
	}
	p := &hostPipeline{desc: desc}
	if p.instanceSlot() < 0 {
		return nil, fmt.Errorf("create pipeline %q: no per-instance layout", desc.Label)
	}
	if d.shader == nil {
		s, err := ebiten.NewShader(roundBoxShader)
		if err != nil {
			return nil, fmt.Errorf("create pipeline %q: compile kage shader: %w", desc.Label, err)
		}
		d.shader = s
	}
	p.shader = d.shader
	return p, nil
}

// DestroyRenderPipeline implements Device. The shared shader outlives
// individual pipelines.
func (d *EbitenDevice) DestroyRenderPipeline(RenderPipeline) {}

// BeginRenderPass implements Device.
func (d *EbitenDevice) BeginRenderPass(desc RenderPassDescriptor) (RenderPass, error) {
	if desc.Target == nil {
		return nil, fmt.Errorf("begin pass %q: nil target", desc.Label)
	}
	if desc.LoadOp == gputypes.LoadOpClear {
		desc.Target.Fill(toNRGBA(desc.ClearColor))
	}
	d.drawCalls, d.quads = 0, 0
	return &ebitenPass{dev: d, target: desc.Target, label: desc.Label, state: newPassState()}, nil
}

// FrameStats returns the draw calls and quads submitted since the last
// BeginRenderPass.
func (d *EbitenDevice) FrameStats() (drawCalls, quads int) {
	return d.drawCalls, d.quads
}

type ebitenPass struct {
	dev    *EbitenDevice
	target *ebiten.Image
	label  string
	state  passState
	ended  bool
}

func (p *ebitenPass) SetPipeline(pl RenderPipeline)           { p.state.setPipeline(pl) }
func (p *ebitenPass) SetUniformBuffer(group uint32, b Buffer) { p.state.setUniform(group, b) }
func (p *ebitenPass) SetVertexBuffer(slot uint32, b Buffer)   { p.state.setVertex(slot, b) }
func (p *ebitenPass) SetIndexBuffer(b Buffer, f gputypes.IndexFormat) {
	p.state.setIndex(b, f)
}

func (p *ebitenPass) Draw(vertexCount, instanceCount uint32) {
	if p.state.checkDraw(vertexCount, instanceCount, false) {
		p.submit(instanceCount)
	}
}

func (p *ebitenPass) DrawIndexed(indexCount, instanceCount uint32) {
	if p.state.checkDraw(indexCount, instanceCount, true) {
		p.submit(instanceCount)
	}
}

func (p *ebitenPass) End() error {
	if p.ended {
		return fmt.Errorf("end pass %q: already ended", p.label)
	}
	p.ended = true
	if p.state.err != nil {
		return fmt.Errorf("pass %q: %w", p.label, p.state.err)
	}
	return nil
}

// submit expands instanceCount instances and draws them in one call.
func (p *ebitenPass) submit(instanceCount uint32) {
	if instanceCount == 0 {
		return
	}
	d := p.dev
	pl := p.state.pipeline
	slot := pl.instanceSlot()
	stride := pl.desc.Buffers[slot].ArrayStride
	data := p.state.vertices[uint32(slot)].data
	vp, _ := decodeViewProj(p.state.uniforms[0].data)

	b := p.target.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())

	d.verts = d.verts[:0]
	d.inds = d.inds[:0]
	for i := uint64(0); i < uint64(instanceCount); i++ {
		d.layers = pl.desc.Expand(data[i*stride:(i+1)*stride], d.layers[:0])
		for j := range d.layers {
			d.verts, d.inds = appendLayer(d.verts, d.inds, &d.layers[j], vp, w, h)
		}
	}
	if len(d.inds) == 0 {
		return
	}
	p.target.DrawTrianglesShader32(d.verts, d.inds, pl.shader, &ebiten.DrawTrianglesShaderOptions{})
	d.drawCalls++
	d.quads += len(d.inds) / 6
}

// appendLayer appends four vertices and six indices for one layer.
func appendLayer(verts []ebiten.Vertex, inds []uint32, l *QuadLayer, vp [16]float32, w, h float32) ([]ebiten.Vertex, []uint32) {
	aa := pixelWorldSize(vp, w)
	a := l.Color[3]
	base := uint32(len(verts))
	for i := 0; i < 4; i++ {
		x, y := projectPoint(vp, l.Corners[i], w, h)
		verts = append(verts, ebiten.Vertex{
			DstX:    x,
			DstY:    y,
			SrcX:    l.Radius,
			SrcY:    aa,
			ColorR:  l.Color[0] * a,
			ColorG:  l.Color[1] * a,
			ColorB:  l.Color[2] * a,
			ColorA:  a,
			Custom0: l.Local[i][0],
			Custom1: l.Local[i][1],
			Custom2: l.HalfSize[0],
			Custom3: l.HalfSize[1],
		})
	}
	return verts, append(inds, base, base+1, base+2, base+2, base+3, base)
}

// projectPoint maps a world point through a column-major view-projection
// matrix into target pixels (origin top-left, Y down).
func projectPoint(vp [16]float32, p f32.Vec2, w, h float32) (float32, float32) {
	cx := vp[0]*p[0] + vp[4]*p[1] + vp[12]
	cy := vp[1]*p[0] + vp[5]*p[1] + vp[13]
	cw := vp[3]*p[0] + vp[7]*p[1] + vp[15]
	if cw != 0 {
		cx /= cw
		cy /= cw
	}
	return (cx + 1) * 0.5 * w, (1 - cy) * 0.5 * h
}

// pixelWorldSize returns the world distance covered by one horizontal
// pixel, used as the anti-aliasing width.
func pixelWorldSize(vp [16]float32, w float32) float32 {
	scale := math32.Abs(vp[0]) * w / 2
	if scale == 0 {
		return 1
	}
	return 1 / scale
}

func toNRGBA(c gputypes.Color) color.NRGBA {
	ch := func(v float64) uint8 {
		return uint8(math32.Round(float32(max(0, min(v, 1))) * 255))
	}
	return color.NRGBA{R: ch(c.R), G: ch(c.G), B: ch(c.B), A: ch(c.A)}
}
