package shapeview

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"
)

// State is the single owner of everything the application mutates: the
// configuration, the camera and its uniform buffer, the three shape
// pipelines, and the input state. It implements ebiten.Game.
type State struct {
	cfg    Config
	device Device
	camera Camera

	uniform      CameraUniform
	cameraBuf    Buffer
	uploadedRev  uint64
	uploadedOnce bool

	// Rects, Circles and Lines are drawn in that order every frame.
	Rects   *ShapePipeline[Rect]
	Circles *ShapePipeline[Circle]
	Lines   *ShapePipeline[Line]

	pointer  pointerState
	handlers handlerRegistry

	injectQueue     []syntheticEvent
	testRunner      *TestRunner
	screenshotQueue []string

	// err holds the first render failure; Update returns it so the game
	// loop stops.
	err error
}

// NewState validates cfg and creates the camera, its uniform buffer and
// the shape pipelines on device.
func NewState(device Device, cfg Config) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cam, err := NewCamera(cfg.Camera, float64(cfg.Window.Width), float64(cfg.Window.Height))
	if err != nil {
		return nil, err
	}

	s := &State{
		cfg:     cfg,
		device:  device,
		camera:  cam,
		uniform: NewCameraUniform(),
	}
	s.uniform.Refresh(cam)
	s.cameraBuf, err = device.CreateBuffer(BufferDescriptor{
		Label: "camera uniform",
		Size:  CameraUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	}, s.uniform.Bytes())
	if err != nil {
		return nil, fmt.Errorf("new state: %w", err)
	}
	s.uploadedRev = cam.Revision()
	s.uploadedOnce = true

	if s.Rects, err = NewShapePipeline[Rect](device); err != nil {
		s.Close()
		return nil, fmt.Errorf("new state: %w", err)
	}
	if s.Circles, err = NewShapePipeline[Circle](device); err != nil {
		s.Close()
		return nil, fmt.Errorf("new state: %w", err)
	}
	if s.Lines, err = NewShapePipeline[Line](device); err != nil {
		s.Close()
		return nil, fmt.Errorf("new state: %w", err)
	}
	return s, nil
}

// Config returns the configuration the state was created with.
func (s *State) Config() Config { return s.cfg }

// Camera returns the active camera.
func (s *State) Camera() Camera { return s.camera }

// Uniform returns the last camera uniform written to the device.
func (s *State) Uniform() CameraUniform { return s.uniform }

// Close releases every device resource.
func (s *State) Close() {
	if s.Rects != nil {
		s.Rects.Release()
	}
	if s.Circles != nil {
		s.Circles.Release()
	}
	if s.Lines != nil {
		s.Lines.Release()
	}
	if s.cameraBuf != nil {
		s.device.DestroyBuffer(s.cameraBuf)
		s.cameraBuf = nil
	}
}

// --- ebiten.Game ---

// Update advances the test runner and camera animations and routes input.
// It returns the first render error so ebiten.RunGame terminates.
func (s *State) Update() error {
	return s.update(float32(1.0/float64(ebiten.TPS())), s.pollInput)
}

func (s *State) update(dt float32, poll func()) error {
	if s.err != nil {
		return s.err
	}
	if s.testRunner != nil {
		s.testRunner.step(s)
	}

	before := s.camera.Revision()
	s.camera.Update(dt)
	if s.camera.Revision() != before {
		s.cameraChanged()
	}

	if !s.processInjectedInput() && poll != nil {
		poll()
	}
	return s.err
}

// Draw renders the frame. Failures are kept and returned by the next
// Update.
func (s *State) Draw(screen *ebiten.Image) {
	if err := s.Render(screen); err != nil && s.err == nil {
		s.err = err
		Logger().Error("render failed", "err", err)
	}
	if s.cfg.Window.ShowFPS {
		s.drawFPS(screen)
	}
	s.flushScreenshots(screen)
}

// Layout forwards window size changes to HandleResize. A zero size, as
// reported while the window is minimized, keeps the last camera size.
func (s *State) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := s.camera.Size()
	if outsideWidth <= 0 || outsideHeight <= 0 {
		return int(w), int(h)
	}
	if float64(outsideWidth) != w || float64(outsideHeight) != h {
		s.HandleResize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// --- Rendering ---

// Render records one pass into target: the camera uniform is uploaded if
// stale, then rects, circles and lines are drawn in that order.
func (s *State) Render(target *ebiten.Image) error {
	var stats frameStats
	t0 := time.Now()

	if err := s.uploadCamera(); err != nil {
		return err
	}
	stats.uploadTime = time.Since(t0)

	pass, err := s.device.BeginRenderPass(RenderPassDescriptor{
		Label:      "shapes",
		Target:     target,
		LoadOp:     gputypes.LoadOpClear,
		ClearColor: s.cfg.ClearColor.gpu(),
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	t0 = time.Now()
	drawErr := s.Rects.Draw(pass, s.cameraBuf)
	if drawErr == nil {
		drawErr = s.Circles.Draw(pass, s.cameraBuf)
	}
	if drawErr == nil {
		drawErr = s.Lines.Draw(pass, s.cameraBuf)
	}
	endErr := pass.End()
	stats.recordTime = time.Since(t0)

	if drawErr != nil {
		return fmt.Errorf("render: %w", drawErr)
	}
	if endErr != nil {
		return fmt.Errorf("render: %w", endErr)
	}

	if s.cfg.Debug {
		stats.rects = s.Rects.Uploaded()
		stats.circles = s.Circles.Uploaded()
		stats.lines = s.Lines.Uploaded()
		stats.zoom = s.camera.ZoomFactor()
		s.debugLog(stats)
	}
	return nil
}

// uploadCamera recomputes the uniform and writes it to the device when the
// camera changed since the last upload.
func (s *State) uploadCamera() error {
	rev := s.camera.Revision()
	if s.uploadedOnce && rev == s.uploadedRev {
		return nil
	}
	s.uniform.Refresh(s.camera)
	if err := s.device.WriteBuffer(s.cameraBuf, 0, s.uniform.Bytes()); err != nil {
		return fmt.Errorf("upload camera: %w", err)
	}
	s.uploadedRev = rev
	s.uploadedOnce = true
	return nil
}

// cameraChanged uploads the uniform right away and notifies listeners.
func (s *State) cameraChanged() {
	if err := s.uploadCamera(); err != nil && s.err == nil {
		s.err = err
	}
	s.handlers.emitCameraChange(s.camera)
}
