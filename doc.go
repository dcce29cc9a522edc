// Package shapeview draws large numbers of rectangles, circles and lines
// through a pannable, zoomable 2D camera, on top of [Ebitengine].
//
// # Quick start
//
//	cfg := shapeview.DefaultConfig()
//	s, err := shapeview.NewState(shapeview.NewEbitenDevice(), cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	r := shapeview.NewRect()
//	r.Position = shapeview.Vec2{X: 400, Y: 300}
//	s.Rects.Add(r)
//	if err := shapeview.Run(s); err != nil {
//		log.Fatal(err)
//	}
//
// # Camera
//
// A [Camera] maps between screen pixels and world units through an
// orthographic projection. Two models are available:
//
//   - [LimitsCamera] stores the visible world rectangle directly. Scrolling
//     zooms around the cursor so the world point under it stays fixed.
//     This is the default.
//   - [WeightedCamera] stores an offset, a zoom factor and a [Weight] that
//     controls how the visible area is distributed around the viewport
//     center.
//
// Both clamp the zoom factor to the configured range, pan by the cursor
// movement while the pan button is held, and animate [Camera.ScrollTo]
// with [gween] easing functions.
//
// # Shapes and pipelines
//
// Each shape kind has a [ShapePipeline] that owns its instance collection
// and issues a single instanced draw per frame. [State.Render] draws rects,
// then circles, then lines, with the [CameraUniform] bound at group 0.
//
// Drawing goes through the small [Device] interface. [EbitenDevice]
// renders with ebiten and a Kage shader; [RecordingDevice] records command
// streams for tests and can validate the WGSL shaders with naga.
//
// # Input
//
// [State] implements [ebiten.Game] and polls the mouse itself. Embedders
// that own the event loop call [State.HandleEvent] instead; it returns
// true when the camera consumed the event.
//
// # Configuration
//
// [LoadConfig] reads TOML or YAML files. See [Config] for the fields and
// [DefaultConfig] for their defaults.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package shapeview
