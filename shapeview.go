package shapeview

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R float64 `toml:"r" yaml:"r"`
	G float64 `toml:"g" yaml:"g"`
	B float64 `toml:"b" yaml:"b"`
	A float64 `toml:"a" yaml:"a"`
}

// ColorBlack is the default clear color.
var ColorBlack = Color{0, 0, 0, 1}

// gpu converts c to the gputypes color used by render pass descriptors.
func (c Color) gpu() gputypes.Color {
	return gputypes.NewColor(c.R, c.G, c.B, c.A)
}

// Vec2 is a 2D vector used for screen and world positions.
type Vec2 struct {
	X, Y float64
}

// Bounds is an axis-aligned rectangle in world space. The coordinate system
// has its origin at the top-left, with Y increasing downward.
type Bounds struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.Width &&
		y >= b.Y && y <= b.Y+b.Height
}

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() (x, y float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

var mouseButtonNames = [...]string{"left", "right", "middle"}

// String returns the lower-case button name.
func (b MouseButton) String() string {
	if int(b) < len(mouseButtonNames) {
		return mouseButtonNames[b]
	}
	return fmt.Sprintf("MouseButton(%d)", b)
}

// MarshalText implements encoding.TextMarshaler.
func (b MouseButton) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Accepts "left",
// "right" and "middle" in any case.
func (b *MouseButton) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range mouseButtonNames {
		if n == name {
			*b = MouseButton(i)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown mouse button %q", ErrInvalidConfig, text)
}

// ebiten maps the button to its ebiten equivalent.
func (b MouseButton) ebiten() ebiten.MouseButton {
	switch b {
	case MouseButtonRight:
		return ebiten.MouseButtonRight
	case MouseButtonMiddle:
		return ebiten.MouseButtonMiddle
	default:
		return ebiten.MouseButtonLeft
	}
}

// ScrollAxis identifies the direction of a scroll event.
type ScrollAxis uint8

const (
	ScrollVertical   ScrollAxis = iota // wheel up/down
	ScrollHorizontal                   // wheel tilt or trackpad sideways swipe
)

// ScrollUnit identifies how a scroll delta is measured.
type ScrollUnit uint8

const (
	ScrollPixels ScrollUnit = iota // precise deltas from trackpads
	ScrollLines                    // notched wheel deltas, converted with InputConfig.LinePixels
)
