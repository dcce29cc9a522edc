package shapeview

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// --- Events ---

// Event is a windowing event delivered to State.HandleEvent.
type Event interface {
	isEvent()
}

// PointerMoveEvent reports the cursor position in pixels.
type PointerMoveEvent struct {
	X, Y float64
}

// PointerButtonEvent reports a mouse button press or release.
type PointerButtonEvent struct {
	Button  MouseButton
	Pressed bool
}

// ScrollEvent reports a wheel or trackpad scroll. Positive vertical deltas
// scroll up.
type ScrollEvent struct {
	Delta float64
	Axis  ScrollAxis
	Unit  ScrollUnit
}

// ResizeEvent reports a new viewport size in pixels.
type ResizeEvent struct {
	Width, Height int
}

// KeyEvent reports a key press or release. The camera does not use keys,
// so these always fall through.
type KeyEvent struct {
	Key     ebiten.Key
	Pressed bool
}

func (PointerMoveEvent) isEvent()   {}
func (PointerButtonEvent) isEvent() {}
func (ScrollEvent) isEvent()        {}
func (ResizeEvent) isEvent()        {}
func (KeyEvent) isEvent()           {}

// --- Pointer state ---

type pointerState struct {
	x, y float64
	has  bool // a position has been seen
	down bool // the pan button is held
}

// --- Handler registry ---

type cameraHandler struct {
	id uint32
	fn func(Camera)
}

type handlerRegistry struct {
	cameraChange []cameraHandler
	nextID       uint32
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id  uint32
	reg *handlerRegistry
}

// Remove unregisters the callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	s := h.reg.cameraChange
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = cameraHandler{}
			h.reg.cameraChange = s[:len(s)-1]
			return
		}
	}
}

func (r *handlerRegistry) emitCameraChange(cam Camera) {
	for _, h := range r.cameraChange {
		h.fn(cam)
	}
}

// OnCameraChange registers fn to run after every camera change caused by
// input, resizes or animations. The uniform is already uploaded when fn
// runs.
func (s *State) OnCameraChange(fn func(Camera)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.cameraChange = append(s.handlers.cameraChange, cameraHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers}
}

// --- Routing ---

// HandleEvent routes ev to the matching handler and reports whether the
// camera consumed it. Unknown events return false.
func (s *State) HandleEvent(ev Event) bool {
	switch e := ev.(type) {
	case PointerMoveEvent:
		return s.HandlePointerMove(e.X, e.Y)
	case PointerButtonEvent:
		return s.HandlePointerButton(e.Button, e.Pressed)
	case ScrollEvent:
		return s.HandleScroll(e)
	case ResizeEvent:
		return s.HandleResize(e.Width, e.Height)
	default:
		return false
	}
}

// HandlePointerMove records the cursor position and pans by the movement
// since the previous position while the pan button is held. The first
// position seen never pans. Non-finite positions are not consumed.
func (s *State) HandlePointerMove(x, y float64) bool {
	if !finite(x, y) {
		return false
	}
	ps := &s.pointer
	prevX, prevY, had := ps.x, ps.y, ps.has
	ps.x, ps.y, ps.has = x, y, true
	if !ps.down || !had {
		return true
	}
	before := s.camera.Revision()
	s.camera.Pan(x-prevX, y-prevY)
	if s.camera.Revision() != before {
		s.cameraChanged()
	}
	return true
}

// HandlePointerButton tracks the pan button. Other buttons are not
// consumed.
func (s *State) HandlePointerButton(button MouseButton, pressed bool) bool {
	if button != s.cfg.Input.PanButton {
		return false
	}
	s.pointer.down = pressed
	return true
}

// HandleScroll zooms around the last cursor position on vertical scrolls.
// Line deltas are converted to pixels first. Horizontal scrolls and
// non-finite deltas are not consumed.
func (s *State) HandleScroll(ev ScrollEvent) bool {
	if ev.Axis != ScrollVertical || !finite(ev.Delta) {
		return false
	}
	delta := ev.Delta
	if ev.Unit == ScrollLines {
		delta *= s.cfg.Input.LinePixels
	}
	before := s.camera.Revision()
	s.camera.Zoom(delta, s.pointer.x, s.pointer.y)
	if s.camera.Revision() != before {
		s.cameraChanged()
	}
	return true
}

// HandleResize forwards a new viewport size to the camera. A zero or
// negative dimension is ignored and reported as not consumed.
func (s *State) HandleResize(width, height int) bool {
	if err := s.camera.Resize(float64(width), float64(height)); err != nil {
		Logger().Warn("resize ignored", "width", width, "height", height, "err", err)
		return false
	}
	s.cameraChanged()
	return true
}

// pollInput reads the mouse from ebiten and feeds the handlers.
func (s *State) pollInput() {
	mx, my := ebiten.CursorPosition()
	fx, fy := float64(mx), float64(my)
	if !s.pointer.has || fx != s.pointer.x || fy != s.pointer.y {
		s.HandlePointerMove(fx, fy)
	}

	pan := s.cfg.Input.PanButton
	if inpututil.IsMouseButtonJustPressed(pan.ebiten()) {
		s.HandlePointerButton(pan, true)
	}
	if inpututil.IsMouseButtonJustReleased(pan.ebiten()) {
		s.HandlePointerButton(pan, false)
	}

	if wx, wy := ebiten.Wheel(); wy != 0 || wx != 0 {
		if wy != 0 {
			s.HandleScroll(ScrollEvent{Delta: wy, Axis: ScrollVertical, Unit: ScrollLines})
		}
		if wx != 0 {
			s.HandleScroll(ScrollEvent{Delta: wx, Axis: ScrollHorizontal, Unit: ScrollLines})
		}
	}
}
