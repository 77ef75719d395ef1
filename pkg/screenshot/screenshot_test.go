package screenshot

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseViewport(t *testing.T) {
	tests := []struct {
		in      string
		want    Viewport
		wantErr bool
	}{
		{"mobile", Viewport{"mobile", 375, 812}, false},
		{" Tablet ", Viewport{"tablet", 768, 1024}, false},
		{"", Viewport{"desktop", 1920, 1080}, false},
		{"1280x720", Viewport{"1280x720", 1280, 720}, false},
		{"1280X720", Viewport{"1280x720", 1280, 720}, false},
		{"watch", Viewport{}, true},
		{"100x720", Viewport{}, true},
		{"1280x9999", Viewport{}, true},
		{"axb", Viewport{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseViewport(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	got, err := NormalizeURL("example.com/pricing")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/pricing", got)

	got, err = NormalizeURL("http://localhost:3000")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", got)

	_, err = NormalizeURL("ftp://example.com")
	assert.Error(t, err)

	_, err = NormalizeURL("  ")
	assert.Error(t, err)
}

type fakeRunner struct {
	name  string
	args  []string
	out   string
	err   error
	write []byte
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	f.name = name
	f.args = args
	if f.write != nil {
		if err := os.WriteFile(args[2], f.write, 0o644); err != nil {
			return "", err
		}
	}
	return f.out, f.err
}

func TestCaptureBuildsArguments(t *testing.T) {
	output := filepath.Join(t.TempDir(), "shot.png")
	runner := &fakeRunner{write: []byte("png")}
	c := NewCapturerWithRunner("", time.Second, runner)

	err := c.Capture(context.Background(), "https://example.com/?q=a b", Viewport{"mobile", 375, 812}, output)
	require.NoError(t, err)

	assert.Equal(t, "shot-scraper", runner.name)
	assert.Equal(t, []string{"https://example.com/?q=a b", "-o", output, "--width", "375", "--height", "812"}, runner.args)
}

func TestCaptureFailures(t *testing.T) {
	output := filepath.Join(t.TempDir(), "shot.png")

	c := NewCapturerWithRunner("", time.Second, &fakeRunner{out: "browser crashed\n", err: errors.New("exit status 1")})
	err := c.Capture(context.Background(), "https://example.com", Viewport{"desktop", 1920, 1080}, output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser crashed")

	c = NewCapturerWithRunner("", time.Second, &fakeRunner{})
	err = c.Capture(context.Background(), "https://example.com", Viewport{"desktop", 1920, 1080}, output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "produced no image")

	c = NewCapturerWithRunner("capture-tool {url}", time.Second, &fakeRunner{})
	err = c.Capture(context.Background(), "https://example.com", Viewport{"desktop", 1920, 1080}, output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{output}")
}

func writePNG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestFileSourceScalesWideImages(t *testing.T) {
	path := writePNG(t, 400, 100)

	data, mimeType, err := FileSource{MaxWidth: 200}.ReadImage(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestFileSourceKeepsSmallImages(t *testing.T) {
	path := writePNG(t, 100, 100)
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	data, mimeType, err := FileSource{MaxWidth: DefaultMaxWidth}.ReadImage(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, original, data)
}

func TestFileSourceErrors(t *testing.T) {
	_, _, err := FileSource{}.ReadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	text := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o644))
	_, _, err = FileSource{}.ReadImage(text)
	assert.ErrorContains(t, err, "unsupported image type")

	empty := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, _, err = FileSource{}.ReadImage(empty)
	assert.Error(t, err)
}
