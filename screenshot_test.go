package shapeview

import "testing"

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-zoom", "after-zoom"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"back\\slash", "back_slash"},
		{"special!@#$%", "special_____"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"MixedCase123", "MixedCase123"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueueAppend(t *testing.T) {
	s, _ := newTestState(t, nil)
	s.Screenshot("a")
	s.Screenshot("b")
	if len(s.screenshotQueue) != 2 || s.screenshotQueue[0] != "a" || s.screenshotQueue[1] != "b" {
		t.Errorf("queue = %v, want [a b]", s.screenshotQueue)
	}
}

func TestScreenshotDirFromConfig(t *testing.T) {
	s, _ := newTestState(t, func(c *Config) { c.ScreenshotDir = "out/shots" })
	if s.Config().ScreenshotDir != "out/shots" {
		t.Errorf("ScreenshotDir = %q", s.Config().ScreenshotDir)
	}
}

func TestUnpremultiply(t *testing.T) {
	img := unpremultiply([]byte{
		64, 32, 0, 128,
		255, 255, 255, 255,
		0, 0, 0, 0,
	}, 3, 1)
	want := []byte{127, 63, 0, 128, 255, 255, 255, 255, 0, 0, 0, 0}
	for i := range want {
		if img.Pix[i] != want[i] {
			t.Fatalf("Pix = %v, want %v", img.Pix, want)
		}
	}
}
