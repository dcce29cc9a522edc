// Package ecs bridges shapeview camera changes into a [Donburi] world as
// typed events.
//
// Usage:
//
//	ecs.PublishCameraChanges(state, world)
//	ecs.CameraEventType.Subscribe(world, func(w donburi.World, e ecs.CameraEvent) {
//		// react to e.Visible
//	})
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
