package sink

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestOutputPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "videos", "nested")
	path, err := OutputPath(dir, "output_video", "mp4", time.Unix(1700000000, 0))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "output_video_1700000000.mp4"), path)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	path, err = OutputPath(dir, "frames", "", time.Unix(5, 0))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "frames_5"), path)
}

func TestNull(t *testing.T) {
	n := &Null{}
	for i := 0; i < 5; i++ {
		require.NoError(t, n.WriteFrame(nil))
	}
	require.NoError(t, n.Close())
	assert.Equal(t, 5, n.Frames())
	assert.ErrorIs(t, n.WriteFrame(nil), ErrClosed)
	assert.ErrorIs(t, n.Close(), ErrClosed)
}

func TestPNGSequence(t *testing.T) {
	opts := Options{Path: filepath.Join(t.TempDir(), "frames"), Width: 8, Height: 4, FPS: 30}
	s, err := NewPNGSequence(opts)
	require.NoError(t, err)

	red := color.RGBA{R: 255, A: 255}
	require.NoError(t, s.WriteFrame(testFrame(8, 4, red)))
	require.NoError(t, s.WriteFrame(testFrame(8, 4, red)))
	require.NoError(t, s.Close())
	assert.Equal(t, 2, s.Frames())

	f, err := os.Open(s.FramePath(1))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
	r, _, _, _ := img.At(3, 2).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestFrameSizeMismatch(t *testing.T) {
	s, err := NewPNGSequence(Options{Path: t.TempDir(), Width: 8, Height: 4, FPS: 30})
	require.NoError(t, err)
	assert.ErrorIs(t, s.WriteFrame(testFrame(4, 4, color.RGBA{A: 255})), ErrFrameSize)
}

func TestBadOptions(t *testing.T) {
	_, err := NewGIF(Options{Width: 0, Height: 4, FPS: 30}, 1)
	assert.ErrorIs(t, err, ErrBadOptions)
	_, err = NewPNGSequence(Options{Path: t.TempDir(), Width: 4, Height: 4})
	assert.ErrorIs(t, err, ErrBadOptions)
}

func TestGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gif")
	g, err := NewGIF(Options{Path: path, Width: 16, Height: 16, FPS: 25}, 2)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, g.WriteFrame(testFrame(16, 16, color.RGBA{R: uint8(i * 40), A: 255})))
	}
	require.NoError(t, g.Close())
	assert.Equal(t, 3, g.Frames())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 3)
	assert.Equal(t, 8, anim.Delay[0])
}

func TestRGB24Layout(t *testing.T) {
	img := testFrame(2, 1, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	var sb strings.Builder
	require.NoError(t, writeRGB24(&sb, img, make([]byte, 6)))
	assert.Equal(t, []byte{1, 2, 3, 1, 2, 3}, []byte(sb.String()))
}

func TestFFmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	path := filepath.Join(t.TempDir(), "out.mp4")
	f, err := NewFFmpeg(Options{Path: path, Width: 64, Height: 64, FPS: 30})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, f.WriteFrame(testFrame(64, 64, color.RGBA{G: 200, A: 255})))
	}
	require.NoError(t, f.Close())
	assert.ErrorIs(t, f.Close(), ErrClosed)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

// stubFFmpeg puts a shell script named ffmpeg first on PATH. It copies the
// raw stream to <out>.partial and renames it to <out> once stdin closes, so
// the output only exists if the encoder was allowed to finish.
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

func TestFFmpegFinalizesOnClose(t *testing.T) {
	stubFFmpeg(t)
	path := filepath.Join(t.TempDir(), "out.mp4")
	f, err := NewFFmpeg(Options{Path: path, Width: 8, Height: 6, FPS: 30})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.WriteFrame(testFrame(8, 6, color.RGBA{R: 9, A: 255})))
	}
	require.NoError(t, f.Close())
	assert.Equal(t, 3, f.Frames())

	info, err := os.Stat(path)
	require.NoError(t, err, "encoder must finish and produce the file")
	assert.Equal(t, int64(3*8*6*3), info.Size())
	_, err = os.Stat(path + ".partial")
	assert.True(t, os.IsNotExist(err))
}
