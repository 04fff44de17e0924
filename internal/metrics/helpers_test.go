package metrics

import (
	"image"
	"math/rand"

	"github.com/san-kum/spirograph/internal/palette"
)

type nullSink struct{}

func (nullSink) WriteFrame(*image.RGBA) error { return nil }
func (nullSink) Close() error                 { return nil }

func newBlack() palette.Policy { return palette.NewStatic(palette.Black) }

func newRand() *rand.Rand { return rand.New(rand.NewSource(7)) }
