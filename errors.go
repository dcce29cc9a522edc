package shapeview

import "errors"

var (
	// ErrIndexOutOfRange is returned when an instance index is outside the
	// collection. The collection is left untouched.
	ErrIndexOutOfRange = errors.New("shapeview: index out of range")

	// ErrDegenerateViewport is returned when a viewport or visible region
	// has zero width or height.
	ErrDegenerateViewport = errors.New("shapeview: degenerate viewport")

	// ErrSingularProjection is returned when a projection matrix cannot be
	// inverted.
	ErrSingularProjection = errors.New("shapeview: singular projection")

	// ErrWeightRange is returned when a viewport weight lies outside [0, 1].
	ErrWeightRange = errors.New("shapeview: weight out of range")

	// ErrInvalidConfig is returned by Config.Validate and LoadConfig.
	ErrInvalidConfig = errors.New("shapeview: invalid config")

	// ErrBufferOverflow is returned when a buffer write does not fit.
	ErrBufferOverflow = errors.New("shapeview: buffer overflow")
)
