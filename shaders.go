package shapeview

import _ "embed"

var (
	//go:embed shaders/rect.wgsl
	rectShader string

	//go:embed shaders/circle.wgsl
	circleShader string

	//go:embed shaders/line.wgsl
	lineShader string

	// roundBoxShader is the Kage fragment shader EbitenDevice uses for
	// every QuadLayer.
	//go:embed shaders/roundbox.kage
	roundBoxShader []byte
)
