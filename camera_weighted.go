package shapeview

import (
	"fmt"

	"github.com/tanema/gween/ease"
	"golang.org/x/image/math/f64"
)

// Weight sets how far each edge of the visible region extends from the
// anchor, as a fraction of the viewport size. Each component is in [0, 1]
// and the components are independent.
type Weight struct {
	Top    float64 `toml:"top" yaml:"top"`
	Left   float64 `toml:"left" yaml:"left"`
	Right  float64 `toml:"right" yaml:"right"`
	Bottom float64 `toml:"bottom" yaml:"bottom"`
}

// DefaultWeight centers the anchor in the viewport.
var DefaultWeight = Weight{Top: 0.5, Left: 0.5, Right: 0.5, Bottom: 0.5}

func (w Weight) validate() error {
	for _, v := range [...]float64{w.Top, w.Left, w.Right, w.Bottom} {
		if !finite(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %+v", ErrWeightRange, w)
		}
	}
	if w.Left+w.Right == 0 || w.Top+w.Bottom == 0 {
		return fmt.Errorf("weight %+v: %w", w, ErrDegenerateViewport)
	}
	return nil
}

// WeightedCamera derives the visible region from an offset, a zoom factor
// and per-edge weights:
//
//	anchor = offset + (width/2, height/2)
//	left   = anchor.X - width*Left*zoom
//	right  = anchor.X + width*Right*zoom
//	top    = anchor.Y - height*Top*zoom
//	bottom = anchor.Y + height*Bottom*zoom
//
// With DefaultWeight and zoom 1 the region is pixel-matched with its
// top-left corner at the offset. Zoom is not anchored to the cursor.
type WeightedCamera struct {
	offset Vec2
	weight Weight

	width, height float64
	zoom          float64

	minZoom, maxZoom float64
	sensitivity      float64

	cache       projectionCache
	scrollTween *scrollAnim
}

// NewWeightedCamera creates a weighted camera at offset (0, 0) with the
// weights from cfg.
func NewWeightedCamera(cfg CameraConfig, width, height float64) (*WeightedCamera, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new weighted camera: %w", err)
	}
	if !validSize(width, height) {
		return nil, fmt.Errorf("new weighted camera %gx%g: %w", width, height, ErrDegenerateViewport)
	}
	c := &WeightedCamera{
		weight:      cfg.Weight,
		width:       width,
		height:      height,
		zoom:        1,
		minZoom:     cfg.MinZoom,
		maxZoom:     cfg.MaxZoom,
		sensitivity: cfg.ZoomSensitivity,
	}
	c.cache.touch()
	return c, nil
}

// Edges returns the world-space edges of the visible region.
func (c *WeightedCamera) Edges() (left, right, bottom, top float64) {
	ax := c.offset.X + c.width/2
	ay := c.offset.Y + c.height/2
	left = ax - c.width*c.weight.Left*c.zoom
	right = ax + c.width*c.weight.Right*c.zoom
	top = ay - c.height*c.weight.Top*c.zoom
	bottom = ay + c.height*c.weight.Bottom*c.zoom
	return left, right, bottom, top
}

// Offset returns the world-space translation of the viewport.
func (c *WeightedCamera) Offset() Vec2 { return c.offset }

// SetOffset moves the viewport to offset. Non-finite offsets are ignored.
func (c *WeightedCamera) SetOffset(offset Vec2) {
	if offset == c.offset || !finite(offset.X, offset.Y) {
		return
	}
	c.offset = offset
	c.cache.touch()
}

// Weight returns the current edge weights.
func (c *WeightedCamera) Weight() Weight { return c.weight }

// SetWeight replaces the edge weights. Fails with ErrWeightRange when a
// component is outside [0, 1] and with ErrDegenerateViewport when opposite
// weights sum to zero; the camera is unchanged on error.
func (c *WeightedCamera) SetWeight(w Weight) error {
	if err := w.validate(); err != nil {
		return fmt.Errorf("set weight: %w", err)
	}
	c.weight = w
	c.cache.touch()
	return nil
}

func (c *WeightedCamera) build() (f64.Mat4, bool) {
	left, right, bottom, top := c.Edges()
	return orthoChecked(left, right, bottom, top, cameraNear, cameraFar)
}

// Projection implements Camera.
func (c *WeightedCamera) Projection() f64.Mat4 {
	c.cache.refresh(c.build)
	return c.cache.proj
}

// ScreenToWorld implements Camera.
func (c *WeightedCamera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.cache.refresh(c.build)
	return unprojectWith(c.cache.inv, sx, sy, c.width, c.height)
}

// WorldToScreen implements Camera.
func (c *WeightedCamera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return Project(wx, wy, c.Projection(), c.width, c.height)
}

// Zoom implements Camera. The anchor is ignored.
func (c *WeightedCamera) Zoom(delta, _, _ float64) {
	if !finite(delta) {
		return
	}
	next := clampZoom(c.zoom-delta*c.sensitivity, c.minZoom, c.maxZoom)
	if next == c.zoom {
		return
	}
	c.zoom = next
	c.cache.touch()
}

// Pan implements Camera. The offset shifts by the movement in pixels,
// regardless of zoom.
func (c *WeightedCamera) Pan(dx, dy float64) {
	if (dx == 0 && dy == 0) || !finite(dx, dy) {
		return
	}
	c.offset.X -= dx
	c.offset.Y -= dy
	c.cache.touch()
}

// Resize implements Camera. The edges are recomputed from the new size.
func (c *WeightedCamera) Resize(width, height float64) error {
	if !validSize(width, height) {
		return fmt.Errorf("resize %gx%g: %w", width, height, ErrDegenerateViewport)
	}
	c.width, c.height = width, height
	c.cache.touch()
	return nil
}

// Size implements Camera.
func (c *WeightedCamera) Size() (width, height float64) { return c.width, c.height }

// ZoomFactor implements Camera.
func (c *WeightedCamera) ZoomFactor() float64 { return c.zoom }

// Revision implements Camera.
func (c *WeightedCamera) Revision() uint64 { return c.cache.revision }

// VisibleBounds implements Camera.
func (c *WeightedCamera) VisibleBounds() Bounds {
	left, right, bottom, top := c.Edges()
	return Bounds{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// ScrollTo implements Camera. The anchor is offset + (width/2, height/2).
func (c *WeightedCamera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if !finite(x, y) {
		return
	}
	c.scrollTween = newScrollAnim(c.offset.X, c.offset.Y,
		x-c.width/2, y-c.height/2, duration, easeFn)
}

// Update implements Camera.
func (c *WeightedCamera) Update(dt float32) {
	if c.scrollTween == nil {
		return
	}
	x, y, done := c.scrollTween.step(dt, c.offset.X, c.offset.Y)
	if done {
		c.scrollTween = nil
	}
	c.SetOffset(Vec2{X: x, Y: y})
}
