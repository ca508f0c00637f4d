package screens

import (
	"github.com/rook-computer/scratchcard/internal/render"
	"github.com/rook-computer/scratchcard/internal/state"
)

// FailedScreen replaces the loading indicator when a layer cannot be loaded.
type FailedScreen struct{}

func (FailedScreen) Draw(drawer render.Drawer, currentState state.State) {
	drawer.FillBackground()
	drawer.DrawTextCentered("could not load card", -40, render.TextStyle{Color: render.Accent})
	if msg := currentState.Load.Err; msg != "" {
		drawer.DrawTextCentered(msg, 20, render.TextStyle{Color: render.Muted, Size: 20})
	}
}
