//go:build !gocv

package main

import (
	"errors"

	"github.com/san-kum/spirograph/internal/sim"
)

func newWindowDisplay(string, int, int) (sim.Display, func(), error) {
	return nil, nil, errors.New("cv preview needs a build with -tags gocv")
}
