package shapeview

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// drawFPS prints FPS, TPS and the zoom factor in the top-left corner.
func (s *State) drawFPS(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nZoom: %.2f",
		ebiten.ActualFPS(), ebiten.ActualTPS(), s.camera.ZoomFactor()))
}
