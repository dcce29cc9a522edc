package shapeview

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"
)

// Device is the GPU boundary: buffer and pipeline creation plus render
// pass recording. EbitenDevice draws to an ebiten image; RecordingDevice
// records commands for headless use and tests.
type Device interface {
	CreateBuffer(desc BufferDescriptor, contents []byte) (Buffer, error)
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
	DestroyBuffer(buf Buffer)
	CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error)
	DestroyRenderPipeline(p RenderPipeline)
	BeginRenderPass(desc RenderPassDescriptor) (RenderPass, error)
}

// Buffer is a device buffer handle.
type Buffer interface {
	Label() string
	Size() uint64
	Usage() gputypes.BufferUsage
}

// RenderPipeline is a device pipeline handle.
type RenderPipeline interface {
	Label() string
}

// RenderPass records draw commands. Command errors are deferred and
// reported by End.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	// SetUniformBuffer binds buf at binding 0 of bind group group.
	SetUniformBuffer(group uint32, buf Buffer)
	SetVertexBuffer(slot uint32, buf Buffer)
	SetIndexBuffer(buf Buffer, format gputypes.IndexFormat)
	Draw(vertexCount, instanceCount uint32)
	DrawIndexed(indexCount, instanceCount uint32)
	End() error
}

// BufferDescriptor describes a buffer to create. When contents are given
// the buffer is at least len(contents) bytes.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage gputypes.BufferUsage
}

// RenderPipelineDescriptor describes a render pipeline.
type RenderPipelineDescriptor struct {
	Label string
	// Shader is WGSL source; VertexEntry and FragmentEntry name its stages.
	Shader        string
	VertexEntry   string
	FragmentEntry string
	// Buffers are the vertex buffer layouts, indexed by slot.
	Buffers []gputypes.VertexBufferLayout
	// Expand is used by devices that expand instances on the CPU.
	Expand ExpandFunc
}

// RenderPassDescriptor describes a render pass. Target is the ebiten image
// to draw into; RecordingDevice ignores it.
type RenderPassDescriptor struct {
	Label      string
	Target     *ebiten.Image
	LoadOp     gputypes.LoadOp
	ClearColor gputypes.Color
}

// --- Host buffers and pipelines shared by the CPU-side devices ---

type hostBuffer struct {
	label     string
	usage     gputypes.BufferUsage
	data      []byte
	destroyed bool
}

func (b *hostBuffer) Label() string               { return b.label }
func (b *hostBuffer) Size() uint64                { return uint64(len(b.data)) }
func (b *hostBuffer) Usage() gputypes.BufferUsage { return b.usage }

func newHostBuffer(desc BufferDescriptor, contents []byte) (*hostBuffer, error) {
	if desc.Usage == 0 || desc.Usage.ContainsUnknownBits() {
		return nil, fmt.Errorf("create buffer %q: invalid usage %#x", desc.Label, uint64(desc.Usage))
	}
	size := max(desc.Size, uint64(len(contents)))
	b := &hostBuffer{label: desc.Label, usage: desc.Usage, data: make([]byte, size)}
	copy(b.data, contents)
	return b, nil
}

func writeHostBuffer(buf Buffer, offset uint64, data []byte) error {
	hb, ok := buf.(*hostBuffer)
	if !ok || hb == nil {
		return fmt.Errorf("write buffer: foreign buffer %T", buf)
	}
	if hb.destroyed {
		return fmt.Errorf("write buffer %q: destroyed", hb.label)
	}
	if !hb.usage.Contains(gputypes.BufferUsageCopyDst) {
		return fmt.Errorf("write buffer %q: missing CopyDst usage", hb.label)
	}
	if offset+uint64(len(data)) > uint64(len(hb.data)) {
		return fmt.Errorf("write buffer %q: %d bytes at %d into %d: %w",
			hb.label, len(data), offset, len(hb.data), ErrBufferOverflow)
	}
	copy(hb.data[offset:], data)
	return nil
}

func destroyHostBuffer(buf Buffer) {
	if hb, ok := buf.(*hostBuffer); ok && hb != nil {
		hb.destroyed = true
		hb.data = nil
	}
}

type hostPipeline struct {
	desc   RenderPipelineDescriptor
	shader *ebiten.Shader
}

func (p *hostPipeline) Label() string { return p.desc.Label }

// validatePipeline checks the parts of a descriptor every device relies on.
func validatePipeline(desc RenderPipelineDescriptor) error {
	if desc.Shader == "" {
		return fmt.Errorf("create pipeline %q: empty shader", desc.Label)
	}
	for slot, l := range desc.Buffers {
		if l.ArrayStride == 0 {
			return fmt.Errorf("create pipeline %q: slot %d has zero stride", desc.Label, slot)
		}
		for _, a := range l.Attributes {
			if a.Offset+a.Format.Size() > l.ArrayStride {
				return fmt.Errorf("create pipeline %q: location %d overruns stride %d",
					desc.Label, a.ShaderLocation, l.ArrayStride)
			}
		}
	}
	return nil
}

// instanceSlot returns the slot of the per-instance layout, or -1.
func (p *hostPipeline) instanceSlot() int {
	for i, l := range p.desc.Buffers {
		if l.StepMode == gputypes.VertexStepModeInstance {
			return i
		}
	}
	return -1
}

// passState is the binding state shared by the CPU-side render passes.
type passState struct {
	pipeline *hostPipeline
	uniforms map[uint32]*hostBuffer
	vertices map[uint32]*hostBuffer
	index    *hostBuffer
	format   gputypes.IndexFormat
	err      error
}

func newPassState() passState {
	return passState{
		uniforms: make(map[uint32]*hostBuffer),
		vertices: make(map[uint32]*hostBuffer),
	}
}

func (s *passState) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *passState) setPipeline(p RenderPipeline) {
	hp, ok := p.(*hostPipeline)
	if !ok || hp == nil {
		s.fail(fmt.Errorf("set pipeline: foreign pipeline %T", p))
		return
	}
	s.pipeline = hp
}

func (s *passState) buffer(buf Buffer, want gputypes.BufferUsage, what string) *hostBuffer {
	hb, ok := buf.(*hostBuffer)
	switch {
	case !ok || hb == nil:
		s.fail(fmt.Errorf("set %s: foreign buffer %T", what, buf))
		return nil
	case hb.destroyed:
		s.fail(fmt.Errorf("set %s %q: destroyed", what, hb.label))
		return nil
	case !hb.usage.Contains(want):
		s.fail(fmt.Errorf("set %s %q: missing usage %#x", what, hb.label, uint64(want)))
		return nil
	}
	return hb
}

func (s *passState) setUniform(group uint32, buf Buffer) {
	if hb := s.buffer(buf, gputypes.BufferUsageUniform, "uniform buffer"); hb != nil {
		s.uniforms[group] = hb
	}
}

func (s *passState) setVertex(slot uint32, buf Buffer) {
	if hb := s.buffer(buf, gputypes.BufferUsageVertex, "vertex buffer"); hb != nil {
		s.vertices[slot] = hb
	}
}

func (s *passState) setIndex(buf Buffer, format gputypes.IndexFormat) {
	if hb := s.buffer(buf, gputypes.BufferUsageIndex, "index buffer"); hb != nil {
		s.index = hb
		s.format = format
	}
}

// checkDraw validates the bindings a draw needs: a pipeline, a uniform at
// group 0, a vertex buffer for every layout large enough for the counts,
// and an index buffer for indexed draws.
func (s *passState) checkDraw(count, instances uint32, indexed bool) bool {
	if s.err != nil {
		return false
	}
	if s.pipeline == nil {
		s.fail(fmt.Errorf("draw: no pipeline set"))
		return false
	}
	label := s.pipeline.desc.Label
	if _, ok := s.uniforms[0]; !ok {
		s.fail(fmt.Errorf("draw %q: no uniform buffer at group 0", label))
		return false
	}
	for slot, l := range s.pipeline.desc.Buffers {
		vb, ok := s.vertices[uint32(slot)]
		if !ok {
			s.fail(fmt.Errorf("draw %q: no vertex buffer at slot %d", label, slot))
			return false
		}
		n := uint64(instances)
		if l.StepMode == gputypes.VertexStepModeVertex {
			n = s.maxVertex(count, indexed)
		}
		if n*l.ArrayStride > vb.Size() {
			s.fail(fmt.Errorf("draw %q: slot %d needs %d bytes, buffer has %d",
				label, slot, n*l.ArrayStride, vb.Size()))
			return false
		}
	}
	if indexed {
		if s.index == nil {
			s.fail(fmt.Errorf("draw %q: no index buffer", label))
			return false
		}
		if uint64(count)*uint64(s.format.Size()) > s.index.Size() {
			s.fail(fmt.Errorf("draw %q: %d indices exceed index buffer", label, count))
			return false
		}
	}
	return true
}

// maxVertex returns the number of per-vertex elements a draw reads.
func (s *passState) maxVertex(count uint32, indexed bool) uint64 {
	if !indexed || s.index == nil {
		return uint64(count)
	}
	var hi uint64
	for i := uint32(0); i < count; i++ {
		if v := s.indexAt(i) + 1; v > hi {
			hi = v
		}
	}
	return hi
}

func (s *passState) indexAt(i uint32) uint64 {
	d := s.index.data
	switch s.format {
	case gputypes.IndexFormatUint32:
		off := int(i) * 4
		if off+4 > len(d) {
			return 0
		}
		return uint64(d[off]) | uint64(d[off+1])<<8 | uint64(d[off+2])<<16 | uint64(d[off+3])<<24
	default:
		off := int(i) * 2
		if off+2 > len(d) {
			return 0
		}
		return uint64(d[off]) | uint64(d[off+1])<<8
	}
}
