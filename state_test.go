package shapeview

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f32"
)

func newTestState(t *testing.T, mutate func(*Config)) (*State, *RecordingDevice) {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	dev := NewRecordingDevice()
	s, err := NewState(dev, cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, dev
}

func seedShapes(s *State) {
	for i := 0; i < 10; i++ {
		r := NewRect()
		r.Position = f32.Vec2{float32(i) * 220, 200}
		r.Color = f32.Vec4{0, 1, 0, 1}
		s.Rects.Add(r)
	}
	for i := 0; i < 4; i++ {
		c := NewCircle()
		c.Position = f32.Vec2{float32(i) * 150, 500}
		s.Circles.Add(c)
	}
	l := NewLine()
	l.End = f32.Vec2{800, 600}
	l.Thickness = 4
	s.Lines.Add(l)
}

func TestNewStateRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Camera.MinZoom = 0
	_, err := NewState(NewRecordingDevice(), cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewStateUsesConfiguredModel(t *testing.T) {
	s, _ := newTestState(t, func(c *Config) { c.Camera.Model = CameraWeighted })
	_, ok := s.Camera().(*WeightedCamera)
	assert.True(t, ok)
	assert.Equal(t, CameraWeighted, s.Config().Camera.Model)
}

func TestStateCloseReleasesEverything(t *testing.T) {
	dev := NewRecordingDevice()
	s, err := NewState(dev, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, dev.LivePipelines())
	assert.Equal(t, 1+3+3+1, dev.LiveBuffers())

	s.Close()
	assert.Equal(t, 0, dev.LivePipelines())
	assert.Equal(t, 0, dev.LiveBuffers())
}

// --- Rendering ---

func TestRenderEmptyScene(t *testing.T) {
	s, dev := newTestState(t, func(c *Config) { c.ClearColor = Color{R: 0.2, G: 0.3, B: 0.4, A: 1} })
	require.NoError(t, s.Render(nil))

	require.Len(t, dev.Passes, 1)
	pass := dev.Passes[0]
	assert.True(t, pass.Ended)
	assert.Equal(t, gputypes.LoadOpClear, pass.LoadOp)
	assert.Equal(t, gputypes.Color{R: 0.2, G: 0.3, B: 0.4, A: 1}, pass.ClearColor)
	assert.Empty(t, pass.Draws())
}

func TestRenderOneDrawPerPipelineInOrder(t *testing.T) {
	s, dev := newTestState(t, nil)
	seedShapes(s)
	require.NoError(t, s.Render(nil))

	draws := dev.LastPass().Draws()
	require.Len(t, draws, 3)
	assert.Equal(t, "rect", draws[0].Label)
	assert.Equal(t, uint32(10), draws[0].Instances)
	assert.Equal(t, "circle", draws[1].Label)
	assert.Equal(t, uint32(4), draws[1].Instances)
	assert.Equal(t, "line", draws[2].Label)
	assert.Equal(t, uint32(1), draws[2].Instances)
}

func TestRenderSkipsEmptyPipelines(t *testing.T) {
	s, dev := newTestState(t, nil)
	s.Circles.Add(NewCircle())
	require.NoError(t, s.Render(nil))

	draws := dev.LastPass().Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, "circle", draws[0].Label)
}

func TestRenderUsesCurrentCamera(t *testing.T) {
	s, dev := newTestState(t, nil)
	seedShapes(s)
	require.NoError(t, s.Render(nil))
	first := dev.LastPass().Draws()[0].ViewProj
	assert.Equal(t, columnMajor32(s.Camera().Projection()), first)

	s.HandlePointerMove(200, 150)
	require.True(t, s.HandleScroll(ScrollEvent{Delta: 100, Axis: ScrollVertical, Unit: ScrollPixels}))
	require.NoError(t, s.Render(nil))

	want := columnMajor32(s.Camera().Projection())
	for _, d := range dev.LastPass().Draws() {
		assert.Equal(t, want, d.ViewProj, "%s drawn with a stale camera", d.Label)
	}
	assert.NotEqual(t, first, want)
}

func TestRenderReflectsInstanceChanges(t *testing.T) {
	s, dev := newTestState(t, nil)
	seedShapes(s)
	require.NoError(t, s.Render(nil))

	require.NoError(t, s.Rects.Instances().Remove(0))
	s.Lines.Instances().Clear()
	require.NoError(t, s.Render(nil))

	draws := dev.LastPass().Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, uint32(9), draws[0].Instances)
	assert.Equal(t, "circle", draws[1].Label)
}

// --- Input routing ---

func TestHandleEventRouting(t *testing.T) {
	s, _ := newTestState(t, nil)
	assert.True(t, s.HandleEvent(PointerMoveEvent{X: 10, Y: 10}))
	assert.True(t, s.HandleEvent(PointerButtonEvent{Button: MouseButtonLeft, Pressed: true}))
	assert.False(t, s.HandleEvent(PointerButtonEvent{Button: MouseButtonRight, Pressed: true}))
	assert.True(t, s.HandleEvent(ScrollEvent{Delta: 1, Axis: ScrollVertical, Unit: ScrollLines}))
	assert.False(t, s.HandleEvent(ScrollEvent{Delta: 1, Axis: ScrollHorizontal}))
	assert.True(t, s.HandleEvent(ResizeEvent{Width: 640, Height: 480}))
	assert.False(t, s.HandleEvent(ResizeEvent{Width: 0, Height: 480}))
	assert.False(t, s.HandleEvent(KeyEvent{Key: ebiten.KeySpace, Pressed: true}))
	assert.False(t, s.HandleEvent(nil))
}

func TestPanRequiresButton(t *testing.T) {
	s, _ := newTestState(t, nil)
	rev := s.Camera().Revision()
	s.HandlePointerMove(100, 100)
	s.HandlePointerMove(150, 120)
	assert.Equal(t, rev, s.Camera().Revision(), "moving without the pan button held must not pan")

	s.HandlePointerButton(MouseButtonLeft, true)
	s.HandlePointerMove(200, 140)
	wx, wy := s.Camera().ScreenToWorld(400, 300)
	assert.InDelta(t, 350, wx, 1e-9)
	assert.InDelta(t, 280, wy, 1e-9)

	s.HandlePointerButton(MouseButtonLeft, false)
	s.HandlePointerMove(0, 0)
	wx, _ = s.Camera().ScreenToWorld(400, 300)
	assert.InDelta(t, 350, wx, 1e-9)
}

func TestPanFirstMoveNeverPans(t *testing.T) {
	s, _ := newTestState(t, nil)
	s.HandlePointerButton(MouseButtonLeft, true)
	rev := s.Camera().Revision()
	s.HandlePointerMove(500, 500)
	assert.Equal(t, rev, s.Camera().Revision())
}

func TestPanButtonFromConfig(t *testing.T) {
	s, _ := newTestState(t, func(c *Config) { c.Input.PanButton = MouseButtonMiddle })
	assert.False(t, s.HandlePointerButton(MouseButtonLeft, true))
	assert.True(t, s.HandlePointerButton(MouseButtonMiddle, true))
}

func TestScrollZoomsAroundCursor(t *testing.T) {
	s, _ := newTestState(t, nil)
	s.HandlePointerMove(600, 100)
	bx, by := s.Camera().ScreenToWorld(600, 100)

	s.HandleScroll(ScrollEvent{Delta: 2, Axis: ScrollVertical, Unit: ScrollLines})
	assert.InDelta(t, 1-2*DefaultLinePixels*DefaultZoomSensitivity, s.Camera().ZoomFactor(), 1e-12)

	ax, ay := s.Camera().ScreenToWorld(600, 100)
	assert.InDelta(t, bx, ax, 1e-6)
	assert.InDelta(t, by, ay, 1e-6)
}

func TestResizeRejectedKeepsCamera(t *testing.T) {
	s, _ := newTestState(t, nil)
	rev := s.Camera().Revision()
	assert.False(t, s.HandleResize(0, 0))
	assert.False(t, s.HandleResize(-1, 300))
	assert.Equal(t, rev, s.Camera().Revision())

	assert.True(t, s.HandleResize(1024, 768))
	w, h := s.Camera().Size()
	assert.Equal(t, 1024.0, w)
	assert.Equal(t, 768.0, h)
}

func TestLayoutForwardsResize(t *testing.T) {
	s, _ := newTestState(t, nil)
	rev := s.Camera().Revision()
	w, h := s.Layout(800, 600)
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.Equal(t, rev, s.Camera().Revision(), "same size is not a resize")

	s.Layout(1200, 600)
	cw, _ := s.Camera().Size()
	assert.Equal(t, 1200.0, cw)
}

// --- Uniform upload and notifications ---

func TestCameraChangeUploadsUniform(t *testing.T) {
	s, _ := newTestState(t, nil)
	s.HandlePointerMove(400, 300)
	s.HandleScroll(ScrollEvent{Delta: 100, Axis: ScrollVertical})

	want := columnMajor32(s.Camera().Projection())
	assert.Equal(t, want, s.Uniform().ViewProj)

	onDevice, ok := decodeViewProj(s.cameraBuf.(*hostBuffer).data)
	require.True(t, ok)
	assert.Equal(t, want, onDevice)
}

func TestOnCameraChange(t *testing.T) {
	s, _ := newTestState(t, nil)
	var calls int
	var seen Camera
	h := s.OnCameraChange(func(c Camera) {
		calls++
		seen = c
	})

	s.HandlePointerMove(10, 10)
	assert.Equal(t, 0, calls, "moves without panning do not change the camera")

	s.HandleScroll(ScrollEvent{Delta: 10, Axis: ScrollVertical})
	assert.Equal(t, 1, calls)
	assert.Same(t, s.Camera(), seen)

	s.HandleResize(640, 480)
	assert.Equal(t, 2, calls)

	// A zoom step swallowed by the clamp is not a change.
	s.HandleScroll(ScrollEvent{Delta: -1e9, Axis: ScrollVertical})
	calls = 0
	s.HandleScroll(ScrollEvent{Delta: -1, Axis: ScrollVertical})
	assert.Equal(t, 0, calls)

	h.Remove()
	s.HandleScroll(ScrollEvent{Delta: 10, Axis: ScrollVertical})
	assert.Equal(t, 0, calls)
	h.Remove()
}

func TestUpdateAdvancesScrollTo(t *testing.T) {
	s, _ := newTestState(t, nil)
	var calls int
	s.OnCameraChange(func(Camera) { calls++ })

	s.Camera().ScrollTo(0, 0, 0.5, nil)
	require.NoError(t, s.update(0.25, nil))
	require.NoError(t, s.update(0.25, nil))
	assert.Equal(t, 2, calls)

	cx, cy := s.Camera().VisibleBounds().Center()
	assert.InDelta(t, 0, cx, 1e-3)
	assert.InDelta(t, 0, cy, 1e-3)
	assert.Equal(t, columnMajor32(s.Camera().Projection()), s.Uniform().ViewProj)
}

func TestUpdatePollsWhenQueueEmpty(t *testing.T) {
	s, _ := newTestState(t, nil)
	var polled int
	poll := func() { polled++ }

	require.NoError(t, s.update(1.0/60, poll))
	assert.Equal(t, 1, polled)

	s.InjectMove(5, 5)
	require.NoError(t, s.update(1.0/60, poll))
	assert.Equal(t, 1, polled, "injected input replaces polling for the frame")
}
