//go:build gocv

package main

import (
	"github.com/san-kum/spirograph/internal/sim"
	"github.com/san-kum/spirograph/internal/sink"
)

func newWindowDisplay(title string, width, height int) (sim.Display, func(), error) {
	w := sink.NewWindow(title, width, height)
	return w, func() { _ = w.Close() }, nil
}
