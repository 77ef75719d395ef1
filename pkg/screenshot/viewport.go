package screenshot

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	minWidth  = 200
	maxWidth  = 7680
	minHeight = 200
	maxHeight = 4320
)

// Viewport is the simulated screen a page is captured at. Label is what the
// user asked for and what the model is told.
type Viewport struct {
	Label  string
	Width  int
	Height int
}

var presets = map[string]Viewport{
	"mobile":  {Label: "mobile", Width: 375, Height: 812},
	"tablet":  {Label: "tablet", Width: 768, Height: 1024},
	"desktop": {Label: "desktop", Width: 1920, Height: 1080},
}

// ParseViewport accepts a preset name or WIDTHxHEIGHT.
func ParseViewport(s string) (Viewport, error) {
	label := strings.ToLower(strings.TrimSpace(s))
	if label == "" {
		return presets["desktop"], nil
	}
	if vp, ok := presets[label]; ok {
		return vp, nil
	}

	w, h, ok := strings.Cut(label, "x")
	if !ok {
		return Viewport{}, fmt.Errorf("invalid viewport %q: use mobile, tablet, desktop or WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Viewport{}, fmt.Errorf("invalid viewport width %q", w)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Viewport{}, fmt.Errorf("invalid viewport height %q", h)
	}
	if width < minWidth || width > maxWidth {
		return Viewport{}, fmt.Errorf("viewport width %d out of range %d-%d", width, minWidth, maxWidth)
	}
	if height < minHeight || height > maxHeight {
		return Viewport{}, fmt.Errorf("viewport height %d out of range %d-%d", height, minHeight, maxHeight)
	}
	return Viewport{Label: label, Width: width, Height: height}, nil
}

func (v Viewport) String() string {
	return fmt.Sprintf("%s (%dx%d)", v.Label, v.Width, v.Height)
}
