package shapeview

import (
	"fmt"
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/math/f64"
)

// Camera maps between screen pixels and world space and owns the
// projection used to render the scene. Screen coordinates have their origin
// at the top-left of the viewport with Y increasing downward.
type Camera interface {
	// Projection returns the orthographic projection for the current state.
	Projection() f64.Mat4
	// ScreenToWorld converts a pixel position into world coordinates.
	ScreenToWorld(sx, sy float64) (wx, wy float64)
	// WorldToScreen converts world coordinates into a pixel position.
	WorldToScreen(wx, wy float64) (sx, sy float64)
	// Zoom applies one scroll step. Positive delta zooms in. anchorX and
	// anchorY are the cursor position in pixels. Non-finite inputs are
	// ignored, as they are by Pan and ScrollTo.
	Zoom(delta, anchorX, anchorY float64)
	// Pan moves the view by a cursor movement of (dx, dy) pixels so the
	// world follows the cursor.
	Pan(dx, dy float64)
	// Resize records a new viewport size. Zero, negative or non-finite sizes
	// are rejected with ErrDegenerateViewport and leave the camera unchanged.
	Resize(width, height float64) error
	// Size returns the viewport size in pixels.
	Size() (width, height float64)
	// ZoomFactor returns the current zoom multiplier. 1 is the initial
	// state; smaller values show less of the world.
	ZoomFactor() float64
	// VisibleBounds returns the world-space rectangle currently in view.
	VisibleBounds() Bounds
	// Revision increases every time the projection may have changed.
	Revision() uint64
	// ScrollTo animates the view so (x, y) ends up at the viewport anchor.
	ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc)
	// Update advances running animations by dt seconds.
	Update(dt float32)
}

// NewCamera creates the camera selected by cfg.Model for a viewport of
// width x height pixels.
func NewCamera(cfg CameraConfig, width, height float64) (Camera, error) {
	switch cfg.Model {
	case CameraLimits:
		return NewLimitsCamera(cfg, width, height)
	case CameraWeighted:
		return NewWeightedCamera(cfg, width, height)
	default:
		return nil, fmt.Errorf("%w: camera model %d", ErrInvalidConfig, cfg.Model)
	}
}

// scrollAnim holds active scroll-to tweens for X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

func newScrollAnim(fromX, fromY, toX, toY float64, duration float32, easeFn ease.TweenFunc) *scrollAnim {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	return &scrollAnim{
		tweenX: gween.New(float32(fromX), float32(toX), duration, easeFn),
		tweenY: gween.New(float32(fromY), float32(toY), duration, easeFn),
	}
}

// step advances both tweens and returns the current values and whether the
// animation has finished.
func (a *scrollAnim) step(dt float32, x, y float64) (float64, float64, bool) {
	if !a.doneX {
		val, done := a.tweenX.Update(dt)
		x = float64(val)
		a.doneX = done
	}
	if !a.doneY {
		val, done := a.tweenY.Update(dt)
		y = float64(val)
		a.doneY = done
	}
	return x, y, a.doneX && a.doneY
}

// clampZoom restricts z to [lo, hi].
func clampZoom(z, lo, hi float64) float64 {
	return math.Max(lo, math.Min(z, hi))
}

// validSize reports whether a viewport size is finite and positive.
func validSize(width, height float64) bool {
	return finite(width, height) && width > 0 && height > 0
}

// projectionCache keeps a projection and its inverse, rebuilt lazily.
type projectionCache struct {
	proj     f64.Mat4
	inv      f64.Mat4
	dirty    bool
	revision uint64
}

// touch invalidates the cache and bumps the revision.
func (p *projectionCache) touch() {
	p.dirty = true
	p.revision++
}

// refresh rebuilds the cache with build when dirty. Cameras reject
// degenerate and non-finite state at their boundaries, so a projection that
// cannot be built or inverted is a bug.
func (p *projectionCache) refresh(build func() (f64.Mat4, bool)) {
	if !p.dirty {
		return
	}
	proj, ok := build()
	if !ok {
		panic("shapeview: camera produced a degenerate projection")
	}
	inv, ok := Invert(proj)
	if !ok {
		panic("shapeview: camera produced a singular projection")
	}
	p.proj = proj
	p.inv = inv
	p.dirty = false
}

// --- Limits camera ---

// LimitsCamera stores the visible region as four world-space edges and
// zooms around the cursor: the world point under the cursor stays under the
// cursor across a zoom step.
type LimitsCamera struct {
	left, right, bottom, top float64

	width, height float64
	zoom          float64

	minZoom, maxZoom float64
	sensitivity      float64
	resize           ResizePolicy

	cache       projectionCache
	scrollTween *scrollAnim
}

// NewLimitsCamera creates a camera whose visible region matches the
// viewport in pixels: left=0, right=width, top=0, bottom=height. cfg must
// pass CameraConfig.Validate.
func NewLimitsCamera(cfg CameraConfig, width, height float64) (*LimitsCamera, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new limits camera: %w", err)
	}
	if !validSize(width, height) {
		return nil, fmt.Errorf("new limits camera %gx%g: %w", width, height, ErrDegenerateViewport)
	}
	c := &LimitsCamera{
		left:        0,
		right:       width,
		bottom:      height,
		top:         0,
		width:       width,
		height:      height,
		zoom:        1,
		minZoom:     cfg.MinZoom,
		maxZoom:     cfg.MaxZoom,
		sensitivity: cfg.ZoomSensitivity,
		resize:      cfg.Resize,
	}
	c.cache.touch()
	return c, nil
}

// Limits returns the world-space edges of the visible region.
func (c *LimitsCamera) Limits() (left, right, bottom, top float64) {
	return c.left, c.right, c.bottom, c.top
}

// SetLimits replaces the visible region. Fails with ErrDegenerateViewport
// when left == right, bottom == top or an edge is not finite.
func (c *LimitsCamera) SetLimits(left, right, bottom, top float64) error {
	if !finite(left, right, bottom, top) || left == right || bottom == top {
		return fmt.Errorf("set limits: %w", ErrDegenerateViewport)
	}
	c.left, c.right, c.bottom, c.top = left, right, bottom, top
	c.cache.touch()
	return nil
}

func (c *LimitsCamera) build() (f64.Mat4, bool) {
	return orthoChecked(c.left, c.right, c.bottom, c.top, cameraNear, cameraFar)
}

// Projection implements Camera.
func (c *LimitsCamera) Projection() f64.Mat4 {
	c.cache.refresh(c.build)
	return c.cache.proj
}

// ScreenToWorld implements Camera.
func (c *LimitsCamera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.cache.refresh(c.build)
	return unprojectWith(c.cache.inv, sx, sy, c.width, c.height)
}

// WorldToScreen implements Camera.
func (c *LimitsCamera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return Project(wx, wy, c.Projection(), c.width, c.height)
}

// Zoom implements Camera. The zoom factor moves by -delta*sensitivity and
// is clamped to the configured range; every edge is then scaled toward the
// world point under the anchor by the ratio of new to old zoom. A step that
// is fully absorbed by the clamp changes nothing, and so does a
// non-finite delta or anchor.
func (c *LimitsCamera) Zoom(delta, anchorX, anchorY float64) {
	if !finite(delta, anchorX, anchorY) {
		return
	}
	wx, wy := c.ScreenToWorld(anchorX, anchorY)
	old := c.zoom
	next := clampZoom(old-delta*c.sensitivity, c.minZoom, c.maxZoom)
	if next == old {
		return
	}
	ratio := next / old
	c.left = wx - (wx-c.left)*ratio
	c.right = wx - (wx-c.right)*ratio
	c.top = wy - (wy-c.top)*ratio
	c.bottom = wy - (wy-c.bottom)*ratio
	c.zoom = next
	c.cache.touch()
}

// Pan implements Camera. All four edges shift by the movement scaled by
// the zoom factor.
func (c *LimitsCamera) Pan(dx, dy float64) {
	if (dx == 0 && dy == 0) || !finite(dx, dy) {
		return
	}
	sx, sy := dx*c.zoom, dy*c.zoom
	c.left -= sx
	c.right -= sx
	c.top -= sy
	c.bottom -= sy
	c.cache.touch()
}

// Resize implements Camera. Under ResizeKeepDensity the right and bottom
// edges move so a pixel keeps covering the same world distance; under
// ResizeKeepLimits the edges are left alone.
func (c *LimitsCamera) Resize(width, height float64) error {
	if !validSize(width, height) {
		return fmt.Errorf("resize %gx%g: %w", width, height, ErrDegenerateViewport)
	}
	if c.resize == ResizeKeepDensity {
		c.right = c.left + (c.right-c.left)/c.width*width
		c.bottom = c.top + (c.bottom-c.top)/c.height*height
	}
	c.width, c.height = width, height
	c.cache.touch()
	return nil
}

// Size implements Camera.
func (c *LimitsCamera) Size() (width, height float64) { return c.width, c.height }

// ZoomFactor implements Camera.
func (c *LimitsCamera) ZoomFactor() float64 { return c.zoom }

// Revision implements Camera.
func (c *LimitsCamera) Revision() uint64 { return c.cache.revision }

// VisibleBounds implements Camera.
func (c *LimitsCamera) VisibleBounds() Bounds {
	return Bounds{
		X:      math.Min(c.left, c.right),
		Y:      math.Min(c.top, c.bottom),
		Width:  math.Abs(c.right - c.left),
		Height: math.Abs(c.bottom - c.top),
	}
}

// center returns the midpoint of the visible region.
func (c *LimitsCamera) center() (float64, float64) {
	return (c.left + c.right) / 2, (c.top + c.bottom) / 2
}

// ScrollTo implements Camera. The anchor is the center of the visible
// region.
func (c *LimitsCamera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if !finite(x, y) {
		return
	}
	cx, cy := c.center()
	c.scrollTween = newScrollAnim(cx, cy, x, y, duration, easeFn)
}

// Update implements Camera.
func (c *LimitsCamera) Update(dt float32) {
	if c.scrollTween == nil {
		return
	}
	cx, cy := c.center()
	nx, ny, done := c.scrollTween.step(dt, cx, cy)
	if done {
		c.scrollTween = nil
	}
	dx, dy := nx-cx, ny-cy
	if dx == 0 && dy == 0 {
		return
	}
	c.left += dx
	c.right += dx
	c.top += dy
	c.bottom += dy
	c.cache.touch()
}
