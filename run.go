package shapeview

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// Run opens a window sized and titled from the state's configuration and
// runs the game loop until the window closes or a frame fails. Resources
// are released on return.
func Run(s *State) error {
	defer s.Close()

	win := s.cfg.Window
	ebiten.SetWindowTitle(win.Title)
	ebiten.SetWindowSize(win.Width, win.Height)
	if win.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	Logger().Info("starting", "title", win.Title, "width", win.Width, "height", win.Height,
		"camera", s.cfg.Camera.Model)

	if err := ebiten.RunGame(s); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
