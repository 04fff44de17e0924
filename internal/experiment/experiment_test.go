package experiment

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/spirograph/internal/config"
	"github.com/san-kum/spirograph/internal/sim"
	"github.com/san-kum/spirograph/internal/sink"
	"github.com/san-kum/spirograph/internal/storage"
)

func smallConfig(t *testing.T) *config.Config {
	cfg := config.GetPreset("rainbow")
	cfg.Width, cfg.Height = 160, 120
	cfg.FrameCap = 120
	cfg.Seed = 7
	cfg.Output = config.OutputConfig{Dir: t.TempDir(), Format: "null", Prefix: "test"}
	return cfg
}

func quiet() Option { return WithLogger(zerolog.Nop()) }

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"gif", "mp4", "null", "png"} {
		_, err := reg.GetSink(name)
		assert.NoError(t, err, name)
	}
	_, err := reg.GetSink("avi")
	assert.Error(t, err)

	names := reg.ListSinks()
	assert.IsIncreasing(t, names)
}

func TestExperimentRun(t *testing.T) {
	cfg := smallConfig(t)
	clock := time.Unix(1700000000, 0)
	exp, err := New(cfg, NewRegistry(), quiet(), WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	out, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(7), exp.Seed())
	assert.Equal(t, out.Result.Frames, out.Meta.Frames)
	assert.Len(t, out.Trace, out.Result.Frames)
	assert.Equal(t, "rainbow", out.Meta.Preset)
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "test_1700000000"), out.Meta.Video)
	assert.Contains(t, out.Meta.Metrics, "path_length")
	assert.Contains(t, out.Meta.Metrics, "closures")

	st := storage.New(cfg.Output.Dir)
	meta, err := st.Load(out.Meta.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Meta.Frames, meta.Frames)

	trace, err := st.LoadTrace(meta)
	require.NoError(t, err)
	assert.Len(t, trace, out.Result.Frames)
}

func TestExperimentDeterministic(t *testing.T) {
	run := func() *Outcome {
		exp, err := New(smallConfig(t), NewRegistry(), quiet(), WithoutSidecar())
		require.NoError(t, err)
		out, err := exp.Run(context.Background())
		require.NoError(t, err)
		return out
	}

	a, b := run(), run()
	assert.Equal(t, a.Meta.Patterns, b.Meta.Patterns)
	assert.Equal(t, a.Trace, b.Trace)
}

func TestExperimentRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Width = 0
	_, err := New(cfg, NewRegistry())
	assert.ErrorIs(t, err, config.ErrInvalid)

	cfg = smallConfig(t)
	cfg.Output.Format = "avi"
	_, err = New(cfg, NewRegistry())
	assert.Error(t, err)
}

type failingSink struct{ closed int }

func (f *failingSink) WriteFrame(*image.RGBA) error { return errors.New("disk full") }

func (f *failingSink) Close() error {
	f.closed++
	return nil
}

func TestExperimentSinkFailure(t *testing.T) {
	fs := &failingSink{}
	reg := NewRegistry()
	reg.RegisterSink("broken", SinkFactory{
		New: func(context.Context, sink.Options) (sim.FrameSink, error) { return fs, nil },
	})

	cfg := smallConfig(t)
	cfg.Output.Format = "broken"
	exp, err := New(cfg, reg, quiet())
	require.NoError(t, err)

	out, err := exp.Run(context.Background())
	var fe *sim.FrameError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 0, fe.Frame)
	assert.Equal(t, 1, fs.closed)
	require.NotNil(t, out)

	entries, err := os.ReadDir(cfg.Output.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no sidecar for a failed run")
}

func TestExperimentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exp, err := New(smallConfig(t), NewRegistry(), quiet())
	require.NoError(t, err)
	out, err := exp.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", out.Meta.Reason)
	assert.Zero(t, out.Meta.Frames)
}

// stubFFmpeg installs a shell ffmpeg that writes the raw stream to
// <out>.partial and renames it to <out> only after stdin is closed.
func stubFFmpeg(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	dir := t.TempDir()
	script := "#!/bin/sh\nfor a in \"$@\"; do out=\"$a\"; done\ncat > \"$out.partial\" && mv \"$out.partial\" \"$out\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ffmpeg"), []byte(script), 0755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

type cancelAt struct {
	frame  int
	cancel context.CancelFunc
}

func (c cancelAt) OnFrame(f sim.FrameInfo) {
	if f.Index == c.frame {
		c.cancel()
	}
}

func TestExperimentCancelledVideoIsFinalized(t *testing.T) {
	stubFFmpeg(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := smallConfig(t)
	cfg.Output.Format = "mp4"
	exp, err := New(cfg, NewRegistry(), quiet(), WithObserver(cancelAt{frame: 10, cancel: cancel}))
	require.NoError(t, err)

	out, err := exp.Run(ctx)
	require.NoError(t, err, "cancellation is not a failure")
	assert.Equal(t, "cancelled", out.Meta.Reason)
	assert.Equal(t, 11, out.Meta.Frames)
	assert.Equal(t, ".mp4", filepath.Ext(out.Meta.Video))

	info, err := os.Stat(out.Meta.Video)
	require.NoError(t, err, "the encoder must be allowed to finish")
	assert.Equal(t, int64(11*cfg.Width*cfg.Height*3), info.Size())

	meta, err := storage.New(cfg.Output.Dir).Load(out.Meta.ID)
	require.NoError(t, err, "a cancelled run keeps its sidecar")
	assert.Equal(t, "cancelled", meta.Reason)
}

func TestVariants(t *testing.T) {
	base := smallConfig(t)
	cfgs := Variants(base, 3)
	require.Len(t, cfgs, 3)
	assert.Equal(t, "test_002", cfgs[2].Output.Prefix)
	assert.Equal(t, int64(9), cfgs[2].Seed)
	assert.Equal(t, "test", base.Output.Prefix)

	base.Seed = 0
	unseeded := Variants(base, 3)
	assert.NotZero(t, unseeded[0].Seed)
	assert.Equal(t, unseeded[0].Seed+1, unseeded[1].Seed)
	assert.Equal(t, unseeded[0].Seed+2, unseeded[2].Seed)
}

func TestAssignSeeds(t *testing.T) {
	a, b, c := smallConfig(t), smallConfig(t), smallConfig(t)
	a.Seed, b.Seed = 0, 0

	out := assignSeeds([]*config.Config{a, b, c}, 100)
	assert.Equal(t, int64(100), out[0].Seed)
	assert.Equal(t, int64(101), out[1].Seed)
	assert.Equal(t, int64(7), out[2].Seed)
	assert.Same(t, c, out[2])
	assert.Zero(t, a.Seed, "callers' configs are not modified")
}

func TestRunBatchUnseededRunsDiffer(t *testing.T) {
	a, b := smallConfig(t), smallConfig(t)
	a.Seed, b.Seed = 0, 0
	b.Output.Prefix = "other"

	outcomes, err := RunBatch(context.Background(), []*config.Config{a, b}, NewRegistry(), 2, quiet())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.NotEqual(t, outcomes[0].Meta.Seed, outcomes[1].Meta.Seed)
	assert.NotEqual(t, outcomes[0].Meta.Patterns, outcomes[1].Meta.Patterns)
}

func TestRunBatch(t *testing.T) {
	cfgs := Variants(smallConfig(t), 4)
	outcomes, err := RunBatch(context.Background(), cfgs, NewRegistry(), 2, quiet())
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	videos := map[string]bool{}
	for _, o := range outcomes {
		require.NotNil(t, o)
		videos[o.Meta.Video] = true
	}
	assert.Len(t, videos, 4, "each run needs its own output")

	runs, err := storage.New(cfgs[0].Output.Dir).List()
	require.NoError(t, err)
	assert.Len(t, runs, 4)
}

func TestRunBatchError(t *testing.T) {
	cfgs := Variants(smallConfig(t), 2)
	cfgs[1].Output.Format = "avi"
	_, err := RunBatch(context.Background(), cfgs, NewRegistry(), 1, quiet())
	assert.ErrorContains(t, err, "run 1")
}
