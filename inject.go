package shapeview

// syntheticEvent is a single injected input event. Screen coordinates are
// used, matching what a screenshot shows, and they travel through the same
// handlers as real mouse input.
type syntheticEvent struct {
	screenX, screenY float64
	button           bool // press or release of the pan button
	pressed          bool
	scroll           float64
	isScroll         bool
}

// InjectPress queues a pan button press at the given screen coordinates.
// The event is consumed on the next frame's Update.
func (s *State) InjectPress(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{
		screenX: x, screenY: y,
		button: true, pressed: true,
	})
}

// InjectMove queues a cursor move to the given screen coordinates. Use this
// between InjectPress and InjectRelease to simulate a pan drag.
func (s *State) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{screenX: x, screenY: y})
}

// InjectRelease queues a pan button release at the given screen
// coordinates.
func (s *State) InjectRelease(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{
		screenX: x, screenY: y,
		button: true, pressed: false,
	})
}

// InjectDrag queues a full pan sequence: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate frames, and release at
// (toX, toY). The sequence consumes frames frames, at least 2.
func (s *State) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	s.InjectRelease(toX, toY)
}

// InjectScroll queues a vertical scroll of delta pixels with the cursor at
// the given screen coordinates.
func (s *State) InjectScroll(x, y, delta float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{
		screenX: x, screenY: y,
		scroll: delta, isScroll: true,
	})
}

// processInjectedInput pops one event from the inject queue and feeds it
// through the handlers: the cursor moves first, then the button or scroll
// applies. Returns true if an event was consumed, in which case real input
// is skipped for the frame.
func (s *State) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	s.HandlePointerMove(evt.screenX, evt.screenY)
	switch {
	case evt.isScroll:
		s.HandleScroll(ScrollEvent{Delta: evt.scroll, Axis: ScrollVertical, Unit: ScrollPixels})
	case evt.button:
		s.HandlePointerButton(s.cfg.Input.PanButton, evt.pressed)
	}
	return true
}
