//go:build gocv

package experiment

import (
	"context"

	"github.com/san-kum/spirograph/internal/sim"
	"github.com/san-kum/spirograph/internal/sink"
)

func init() {
	builtinSinks["cv"] = SinkFactory{
		Ext: "mp4",
		New: func(_ context.Context, opts sink.Options) (sim.FrameSink, error) {
			return sink.NewVideoWriter(opts)
		},
	}
}
