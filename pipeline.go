package shapeview

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// ShapePipeline draws every instance of one shape kind with a single
// instanced draw call. It owns the device pipeline, the shared unit quad
// (for shapes that use it), the instance collection and the instance
// buffer mirroring it.
type ShapePipeline[T Shape] struct {
	desc   ShapeDescriptor
	device Device

	pipeline    RenderPipeline
	vertexBuf   Buffer
	indexBuf    Buffer
	instanceBuf Buffer

	instances *Instances[T]
	scratch   []byte

	synced      bool
	syncedRev   uint64
	uploaded    uint32
	reallocated int
}

// NewShapePipeline creates the device resources for shape kind T.
func NewShapePipeline[T Shape](device Device) (*ShapePipeline[T], error) {
	var zero T
	desc := zero.Descriptor()
	if stride := layoutStride(desc.Instance.Attributes); stride != desc.Instance.ArrayStride {
		return nil, fmt.Errorf("new %s pipeline: attributes cover %d bytes, stride is %d",
			desc.Label, stride, desc.Instance.ArrayStride)
	}

	p := &ShapePipeline[T]{
		desc:      desc,
		device:    device,
		instances: NewInstances[T](),
	}

	buffers := []gputypes.VertexBufferLayout{desc.Instance}
	if desc.Quad {
		buffers = []gputypes.VertexBufferLayout{QuadVertexLayout, desc.Instance}
	}
	pl, err := device.CreateRenderPipeline(RenderPipelineDescriptor{
		Label:         desc.Label,
		Shader:        desc.Shader,
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		Buffers:       buffers,
		Expand:        desc.Expand,
	})
	if err != nil {
		return nil, fmt.Errorf("new %s pipeline: %w", desc.Label, err)
	}
	p.pipeline = pl

	if desc.Quad {
		p.vertexBuf, err = device.CreateBuffer(BufferDescriptor{
			Label: desc.Label + " quad vertices",
			Usage: gputypes.BufferUsageVertex,
		}, quadVertexBytes())
		if err != nil {
			p.Release()
			return nil, fmt.Errorf("new %s pipeline: %w", desc.Label, err)
		}
		p.indexBuf, err = device.CreateBuffer(BufferDescriptor{
			Label: desc.Label + " quad indices",
			Usage: gputypes.BufferUsageIndex,
		}, quadIndexBytes())
		if err != nil {
			p.Release()
			return nil, fmt.Errorf("new %s pipeline: %w", desc.Label, err)
		}
	}

	p.instanceBuf, err = p.createInstanceBuffer(desc.Instance.ArrayStride*defaultInstanceCapacity, nil)
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("new %s pipeline: %w", desc.Label, err)
	}

	Logger().Info("pipeline created", "shape", desc.Label, "stride", desc.Instance.ArrayStride)
	return p, nil
}

func (p *ShapePipeline[T]) createInstanceBuffer(size uint64, contents []byte) (Buffer, error) {
	return p.device.CreateBuffer(BufferDescriptor{
		Label: p.desc.Label + " instances",
		Size:  size,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	}, contents)
}

// Label returns the shape kind name.
func (p *ShapePipeline[T]) Label() string { return p.desc.Label }

// Instances returns the collection drawn by this pipeline.
func (p *ShapePipeline[T]) Instances() *Instances[T] { return p.instances }

// Add appends an instance. Shorthand for Instances().Add.
func (p *ShapePipeline[T]) Add(v T) { p.instances.Add(v) }

// Uploaded returns the number of instances in the device buffer.
func (p *ShapePipeline[T]) Uploaded() int { return int(p.uploaded) }

// Sync uploads the instance collection when it changed since the last
// Sync. The instance buffer grows by reallocation, at least doubling.
func (p *ShapePipeline[T]) Sync() error {
	rev := p.instances.Revision()
	if p.synced && rev == p.syncedRev {
		return nil
	}

	p.scratch = p.scratch[:0]
	for _, v := range p.instances.All() {
		p.scratch = v.AppendInstance(p.scratch)
	}
	need := uint64(len(p.scratch))
	if want := uint64(p.instances.Len()) * p.desc.Instance.ArrayStride; need != want {
		return fmt.Errorf("sync %s: encoded %d bytes, layout needs %d", p.desc.Label, need, want)
	}

	if need > p.instanceBuf.Size() {
		size := max(need, 2*p.instanceBuf.Size())
		buf, err := p.createInstanceBuffer(size, p.scratch)
		if err != nil {
			return fmt.Errorf("sync %s: %w", p.desc.Label, err)
		}
		p.device.DestroyBuffer(p.instanceBuf)
		p.instanceBuf = buf
		p.reallocated++
		Logger().Debug("instance buffer grown", "shape", p.desc.Label, "bytes", size)
	} else if need > 0 {
		if err := p.device.WriteBuffer(p.instanceBuf, 0, p.scratch); err != nil {
			return fmt.Errorf("sync %s: %w", p.desc.Label, err)
		}
	}

	p.uploaded = uint32(p.instances.Len())
	p.syncedRev = rev
	p.synced = true
	return nil
}

// Record binds the camera uniform at group 0 and the pipeline's buffers,
// then issues one draw covering every uploaded instance. Nothing is
// recorded when there are no instances.
func (p *ShapePipeline[T]) Record(pass RenderPass, camera Buffer) {
	if p.uploaded == 0 {
		return
	}
	pass.SetPipeline(p.pipeline)
	pass.SetUniformBuffer(0, camera)
	if p.desc.Quad {
		pass.SetVertexBuffer(0, p.vertexBuf)
		pass.SetVertexBuffer(1, p.instanceBuf)
		pass.SetIndexBuffer(p.indexBuf, gputypes.IndexFormatUint16)
		pass.DrawIndexed(uint32(len(QuadIndices)), p.uploaded)
		return
	}
	pass.SetVertexBuffer(0, p.instanceBuf)
	pass.Draw(p.desc.VerticesPerInstance, p.uploaded)
}

// Draw syncs and records in one step.
func (p *ShapePipeline[T]) Draw(pass RenderPass, camera Buffer) error {
	if err := p.Sync(); err != nil {
		return err
	}
	p.Record(pass, camera)
	return nil
}

// Release destroys the device resources. The pipeline must not be used
// afterwards.
func (p *ShapePipeline[T]) Release() {
	for _, b := range []Buffer{p.vertexBuf, p.indexBuf, p.instanceBuf} {
		if b != nil {
			p.device.DestroyBuffer(b)
		}
	}
	p.vertexBuf, p.indexBuf, p.instanceBuf = nil, nil, nil
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
}
