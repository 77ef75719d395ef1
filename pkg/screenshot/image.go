package screenshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultMaxWidth bounds the width of uploaded screenshots.
const DefaultMaxWidth = 2048

var supportedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// FileSource reads screenshots from disk. Images wider than MaxWidth are
// scaled down and re-encoded as PNG; zero disables scaling.
type FileSource struct {
	MaxWidth int
}

func (s FileSource) ReadImage(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", errors.New("image file is empty")
	}

	mimeType := http.DetectContentType(data)
	if !supportedTypes[mimeType] {
		return nil, "", fmt.Errorf("unsupported image type %s", mimeType)
	}
	if s.MaxWidth <= 0 {
		return data, mimeType, nil
	}

	scaled, err := downscale(data, s.MaxWidth)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Could not scale image, sending original")
		return data, mimeType, nil
	}
	if scaled == nil {
		return data, mimeType, nil
	}
	log.Debug().Str("path", path).Int("from_bytes", len(data)).Int("to_bytes", len(scaled)).Msg("Scaled screenshot")
	return scaled, "image/png", nil
}

// downscale returns nil when the image already fits.
func downscale(data []byte, maxWidth int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Width <= maxWidth {
		return nil, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	height := cfg.Height * maxWidth / cfg.Width
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
