package shapeview

import "time"

// frameStats holds per-frame timing and instance counts. Only populated
// when Config.Debug is set.
type frameStats struct {
	uploadTime time.Duration
	recordTime time.Duration
	rects      int
	circles    int
	lines      int
	zoom       float64
}

// debugLog reports frame stats at debug level, plus draw call counts when
// the device is an EbitenDevice.
func (s *State) debugLog(stats frameStats) {
	if !s.cfg.Debug {
		return
	}
	attrs := []any{
		"upload", stats.uploadTime,
		"record", stats.recordTime,
		"rects", stats.rects,
		"circles", stats.circles,
		"lines", stats.lines,
		"zoom", stats.zoom,
	}
	if ed, ok := s.device.(*EbitenDevice); ok {
		calls, quads := ed.FrameStats()
		attrs = append(attrs, "draw_calls", calls, "quads", quads)
	}
	Logger().Debug("frame", attrs...)
}
