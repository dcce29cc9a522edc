package shapeview

import "testing"

func TestLoadTestScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "screenshot", "label": "initial"},
			{"action": "scroll", "x": 100, "y": 200, "delta": 50},
			{"action": "wait", "frames": 3},
			{"action": "resize", "width": 1024, "height": 768}
		]
	}`)

	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(runner.steps))
	}
	if runner.steps[0].Action != "screenshot" || runner.steps[0].Label != "initial" {
		t.Error("step 0 mismatch")
	}
	if st := runner.steps[1]; st.Action != "scroll" || st.X != 100 || st.Y != 200 || st.Delta != 50 {
		t.Error("step 1 mismatch")
	}
	if runner.steps[2].Action != "wait" || runner.steps[2].Frames != 3 {
		t.Error("step 2 mismatch")
	}
	if st := runner.steps[3]; st.Width != 1024 || st.Height != 768 {
		t.Error("step 3 mismatch")
	}
}

func TestLoadTestScript_Invalid(t *testing.T) {
	if _, err := LoadTestScript([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadTestScript_Empty(t *testing.T) {
	if _, err := LoadTestScript([]byte(`{"steps": []}`)); err == nil {
		t.Error("expected error for empty steps")
	}
}

func TestLoadTestScript_UnknownAction(t *testing.T) {
	if _, err := LoadTestScript([]byte(`{"steps": [{"action": "click"}]}`)); err == nil {
		t.Error("expected error for unknown action")
	}
}

func runUntilDone(t *testing.T, s *State, r *TestRunner) int {
	t.Helper()
	for frame := 1; frame <= 100; frame++ {
		if err := s.update(1.0/60, nil); err != nil {
			t.Fatal(err)
		}
		if r.Done() {
			return frame
		}
	}
	t.Fatal("runner did not finish in 100 frames")
	return 0
}

func TestRunnerScrollWaitResize(t *testing.T) {
	s, _ := newTestState(t, nil)
	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "scroll", "x": 400, "y": 300, "delta": 100},
		{"action": "wait", "frames": 2},
		{"action": "resize", "width": 1000, "height": 700}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetTestRunner(runner)

	frames := runUntilDone(t, s, runner)
	if frames != 4 {
		t.Errorf("finished after %d frames, want 4", frames)
	}
	if !approxEqual(s.Camera().ZoomFactor(), 0.8, 1e-12) {
		t.Errorf("ZoomFactor = %v, want 0.8", s.Camera().ZoomFactor())
	}
	if w, h := s.Camera().Size(); w != 1000 || h != 700 {
		t.Errorf("Size = %vx%v, want 1000x700", w, h)
	}
}

func TestRunnerDrag(t *testing.T) {
	s, _ := newTestState(t, nil)
	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "drag", "fromX": 400, "fromY": 300, "toX": 400, "toY": 200, "frames": 4},
		{"action": "screenshot", "label": "after_pan"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetTestRunner(runner)
	runUntilDone(t, s, runner)

	_, wy := s.Camera().ScreenToWorld(400, 300)
	if !approxEqual(wy, 400, 1e-9) {
		t.Errorf("center y = %v, want 400", wy)
	}
	if len(s.screenshotQueue) != 1 || s.screenshotQueue[0] != "after_pan" {
		t.Errorf("screenshot queue = %v, want [after_pan]", s.screenshotQueue)
	}
}

func TestRunnerPressMoveRelease(t *testing.T) {
	s, _ := newTestState(t, nil)
	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "press", "x": 100, "y": 100},
		{"action": "move", "x": 130, "y": 100},
		{"action": "release", "x": 130, "y": 100},
		{"action": "move", "x": 500, "y": 500}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetTestRunner(runner)
	runUntilDone(t, s, runner)

	wx, _ := s.Camera().ScreenToWorld(400, 300)
	if !approxEqual(wx, 370, 1e-9) {
		t.Errorf("center x = %v, want 370", wx)
	}
}
