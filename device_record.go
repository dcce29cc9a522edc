package shapeview

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
)

// CommandKind identifies a recorded render pass command.
type CommandKind uint8

const (
	CmdSetPipeline CommandKind = iota
	CmdSetUniformBuffer
	CmdSetVertexBuffer
	CmdSetIndexBuffer
	CmdDraw
	CmdDrawIndexed
)

var commandKindNames = [...]string{
	"SetPipeline", "SetUniformBuffer", "SetVertexBuffer",
	"SetIndexBuffer", "Draw", "DrawIndexed",
}

func (k CommandKind) String() string {
	if int(k) < len(commandKindNames) {
		return commandKindNames[k]
	}
	return fmt.Sprintf("CommandKind(%d)", k)
}

// Command is one recorded render pass command. Label names the pipeline
// or buffer involved. Draw commands carry the pipeline label and a copy of
// the view-projection matrix bound at group 0 when the draw was issued.
type Command struct {
	Kind      CommandKind
	Label     string
	Slot      uint32
	Count     uint32
	Instances uint32
	ViewProj  [16]float32
}

// RecordedPass is a finished or in-progress render pass.
type RecordedPass struct {
	Label      string
	LoadOp     gputypes.LoadOp
	ClearColor gputypes.Color
	Commands   []Command
	Ended      bool

	state passState
}

// Draws returns the Draw and DrawIndexed commands in order.
func (p *RecordedPass) Draws() []Command {
	var out []Command
	for _, c := range p.Commands {
		if c.Kind == CmdDraw || c.Kind == CmdDrawIndexed {
			out = append(out, c)
		}
	}
	return out
}

// RecordingDevice is a headless Device. Buffers live in host memory and
// render passes are recorded with the same binding validation a GPU
// backend performs, so tests can assert on exact command streams.
type RecordingDevice struct {
	// ValidateShaders compiles every pipeline's WGSL to SPIR-V with naga
	// and fails pipeline creation on errors.
	ValidateShaders bool

	Passes []*RecordedPass

	buffers   int
	pipelines int
}

// NewRecordingDevice returns an empty RecordingDevice.
func NewRecordingDevice() *RecordingDevice {
	return &RecordingDevice{}
}

// LiveBuffers returns the number of created and not yet destroyed buffers.
func (d *RecordingDevice) LiveBuffers() int { return d.buffers }

// LivePipelines returns the number of created and not yet destroyed
// pipelines.
func (d *RecordingDevice) LivePipelines() int { return d.pipelines }

// LastPass returns the most recent pass, or nil.
func (d *RecordingDevice) LastPass() *RecordedPass {
	if len(d.Passes) == 0 {
		return nil
	}
	return d.Passes[len(d.Passes)-1]
}

// CreateBuffer implements Device.
func (d *RecordingDevice) CreateBuffer(desc BufferDescriptor, contents []byte) (Buffer, error) {
	b, err := newHostBuffer(desc, contents)
	if err != nil {
		return nil, err
	}
	d.buffers++
	return b, nil
}

// WriteBuffer implements Device.
func (d *RecordingDevice) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	return writeHostBuffer(buf, offset, data)
}

// DestroyBuffer implements Device.
func (d *RecordingDevice) DestroyBuffer(buf Buffer) {
	if hb, ok := buf.(*hostBuffer); ok && hb != nil && !hb.destroyed {
		d.buffers--
	}
	destroyHostBuffer(buf)
}

// CreateRenderPipeline implements Device.
func (d *RecordingDevice) CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error) {
	if err := validatePipeline(desc); err != nil {
		return nil, err
	}
	if d.ValidateShaders {
		if _, err := naga.Compile(desc.Shader); err != nil {
			return nil, fmt.Errorf("create pipeline %q: compile shader: %w", desc.Label, err)
		}
	}
	d.pipelines++
	return &hostPipeline{desc: desc}, nil
}

// DestroyRenderPipeline implements Device.
func (d *RecordingDevice) DestroyRenderPipeline(p RenderPipeline) {
	if _, ok := p.(*hostPipeline); ok {
		d.pipelines--
	}
}

// BeginRenderPass implements Device.
func (d *RecordingDevice) BeginRenderPass(desc RenderPassDescriptor) (RenderPass, error) {
	if last := d.LastPass(); last != nil && !last.Ended {
		return nil, fmt.Errorf("begin pass %q: pass %q still open", desc.Label, last.Label)
	}
	p := &RecordedPass{
		Label:      desc.Label,
		LoadOp:     desc.LoadOp,
		ClearColor: desc.ClearColor,
		state:      newPassState(),
	}
	d.Passes = append(d.Passes, p)
	return p, nil
}

// SetPipeline implements RenderPass.
func (p *RecordedPass) SetPipeline(pl RenderPipeline) {
	p.state.setPipeline(pl)
	p.Commands = append(p.Commands, Command{Kind: CmdSetPipeline, Label: labelOf(pl)})
}

// SetUniformBuffer implements RenderPass.
func (p *RecordedPass) SetUniformBuffer(group uint32, buf Buffer) {
	p.state.setUniform(group, buf)
	p.Commands = append(p.Commands, Command{Kind: CmdSetUniformBuffer, Label: labelOf(buf), Slot: group})
}

// SetVertexBuffer implements RenderPass.
func (p *RecordedPass) SetVertexBuffer(slot uint32, buf Buffer) {
	p.state.setVertex(slot, buf)
	p.Commands = append(p.Commands, Command{Kind: CmdSetVertexBuffer, Label: labelOf(buf), Slot: slot})
}

// SetIndexBuffer implements RenderPass.
func (p *RecordedPass) SetIndexBuffer(buf Buffer, format gputypes.IndexFormat) {
	p.state.setIndex(buf, format)
	p.Commands = append(p.Commands, Command{Kind: CmdSetIndexBuffer, Label: labelOf(buf)})
}

// Draw implements RenderPass.
func (p *RecordedPass) Draw(vertexCount, instanceCount uint32) {
	p.draw(CmdDraw, vertexCount, instanceCount)
}

// DrawIndexed implements RenderPass.
func (p *RecordedPass) DrawIndexed(indexCount, instanceCount uint32) {
	p.draw(CmdDrawIndexed, indexCount, instanceCount)
}

func (p *RecordedPass) draw(kind CommandKind, count, instances uint32) {
	if !p.state.checkDraw(count, instances, kind == CmdDrawIndexed) {
		return
	}
	vp, _ := decodeViewProj(p.state.uniforms[0].data)
	p.Commands = append(p.Commands, Command{
		Kind:      kind,
		Label:     p.state.pipeline.desc.Label,
		Count:     count,
		Instances: instances,
		ViewProj:  vp,
	})
}

// End implements RenderPass.
func (p *RecordedPass) End() error {
	if p.Ended {
		return fmt.Errorf("end pass %q: already ended", p.Label)
	}
	p.Ended = true
	if p.state.err != nil {
		return fmt.Errorf("pass %q: %w", p.Label, p.state.err)
	}
	return nil
}

type labeled interface{ Label() string }

func labelOf(v any) string {
	if l, ok := v.(labeled); ok && l != nil {
		return l.Label()
	}
	return ""
}
