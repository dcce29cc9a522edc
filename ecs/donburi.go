// Package ecs provides ECS adapters for shapeview.
package ecs

import (
	"github.com/phanxgames/shapeview"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// CameraEvent describes the camera right after a pan, zoom, resize or
// scroll animation step.
type CameraEvent struct {
	Zoom     float64
	Visible  shapeview.Bounds
	Width    float64
	Height   float64
	Revision uint64
}

// CameraEventType is the Donburi event type for camera changes. Subscribe
// to this in your ECS systems to react to the view, for example to cull or
// spawn entities near the visible region.
var CameraEventType = events.NewEventType[CameraEvent]()

// NewCameraEvent snapshots cam.
func NewCameraEvent(cam shapeview.Camera) CameraEvent {
	w, h := cam.Size()
	return CameraEvent{
		Zoom:     cam.ZoomFactor(),
		Visible:  cam.VisibleBounds(),
		Width:    w,
		Height:   h,
		Revision: cam.Revision(),
	}
}

// PublishCameraChanges publishes a CameraEvent into world after every
// camera change of s. Events are queued until ProcessEvents runs. Remove
// the returned handle to stop publishing.
func PublishCameraChanges(s *shapeview.State, world donburi.World) shapeview.CallbackHandle {
	return s.OnCameraChange(func(cam shapeview.Camera) {
		CameraEventType.Publish(world, NewCameraEvent(cam))
	})
}
