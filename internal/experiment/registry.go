package experiment

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/spirograph/internal/sim"
	"github.com/san-kum/spirograph/internal/sink"
)

// SinkFactory opens a frame sink at a path ending in Ext. An empty Ext means
// the path names a directory or is unused. ctx bounds opening only; a sink
// must outlive it so Close can finalize after cancellation.
type SinkFactory struct {
	Ext string
	New func(ctx context.Context, opts sink.Options) (sim.FrameSink, error)
}

// builtinSinks may be extended by build-tagged files.
var builtinSinks = map[string]SinkFactory{
	"mp4": {
		Ext: "mp4",
		New: func(_ context.Context, opts sink.Options) (sim.FrameSink, error) {
			return sink.NewFFmpeg(opts)
		},
	},
	"gif": {
		Ext: "gif",
		New: func(_ context.Context, opts sink.Options) (sim.FrameSink, error) {
			every := max(opts.FPS/gifFPS, 1)
			return sink.NewGIF(opts, every)
		},
	},
	"png": {
		New: func(_ context.Context, opts sink.Options) (sim.FrameSink, error) {
			return sink.NewPNGSequence(opts)
		},
	},
	"null": {
		New: func(context.Context, sink.Options) (sim.FrameSink, error) {
			return &sink.Null{}, nil
		},
	},
}

const gifFPS = 15

type Registry struct {
	sinks map[string]SinkFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		sinks: make(map[string]SinkFactory, len(builtinSinks)),
	}
	for name, f := range builtinSinks {
		r.sinks[name] = f
	}
	return r
}

func (r *Registry) RegisterSink(name string, f SinkFactory) {
	r.sinks[name] = f
}

func (r *Registry) GetSink(name string) (SinkFactory, error) {
	f, ok := r.sinks[name]
	if !ok {
		return SinkFactory{}, fmt.Errorf("unknown output format: %s", name)
	}
	return f, nil
}

func (r *Registry) ListSinks() []string {
	names := make([]string, 0, len(r.sinks))
	for name := range r.sinks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
