package window

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
)

const (
	minButtonHeight = 40
	buttonPadding   = 24
)

// ParseColor accepts a CSS color name ("green", "orange") or a #rgb / #rrggbb
// hex value.
func ParseColor(s string) (color.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, false
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	c, ok := colornames.Map[s]
	if !ok {
		return nil, false
	}
	return c, true
}

func parseHex(hex string) (color.Color, bool) {
	var r, g, b uint8
	switch len(hex) {
	case 6:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
			return nil, false
		}
	case 3:
		if _, err := fmt.Sscanf(hex, "%1x%1x%1x", &r, &g, &b); err != nil {
			return nil, false
		}
		r, g, b = r*17, g*17, b*17
	default:
		return nil, false
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, true
}

// textColorFor picks black or white, whichever reads better on bg.
func textColorFor(bg color.Color) color.Color {
	r, g, b, _ := bg.RGBA()
	// ITU-R BT.601 luma on 16-bit channels
	luma := (299*r + 587*g + 114*b) / 1000
	if luma > 0x8000 {
		return color.Black
	}
	return color.White
}

// labelMeasurer sizes button labels with the configured font so the grid
// leaves room for the longest name.
type labelMeasurer struct {
	mu    sync.Mutex
	font  *truetype.Font
	faces map[float64]font.Face
}

func newLabelMeasurer(fontBytes []byte) (*labelMeasurer, error) {
	f, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &labelMeasurer{font: f, faces: map[float64]font.Face{}}, nil
}

func (m *labelMeasurer) face(size float64) font.Face {
	if face, ok := m.faces[size]; ok {
		return face
	}
	face := truetype.NewFace(m.font, &truetype.Options{Size: size, DPI: 72})
	m.faces[size] = face
	return face
}

// Width returns the advance width of text at size points.
func (m *labelMeasurer) Width(text string, size float64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	face := m.face(size)
	width := 0
	prev := rune(-1)
	for _, r := range text {
		if prev >= 0 {
			width += face.Kern(prev, r).Round()
		}
		adv, ok := face.GlyphAdvance(r)
		if ok {
			width += adv.Round()
		}
		prev = r
	}
	return width
}

// Height returns the line height at size points.
func (m *labelMeasurer) Height(size float64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics := m.face(size).Metrics()
	return (metrics.Ascent + metrics.Descent).Ceil()
}

// buttonSize returns the minimum size of a button showing any of labels.
func (m *labelMeasurer) buttonSize(labels []string, size float64) (w, h float32) {
	widest := 0
	for _, l := range labels {
		if lw := m.Width(l, size); lw > widest {
			widest = lw
		}
	}
	h = float32(m.Height(size) + buttonPadding/2)
	if h < minButtonHeight {
		h = minButtonHeight
	}
	return float32(widest + buttonPadding), h
}

func (m *labelMeasurer) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for size, face := range m.faces {
		if err := face.Close(); err != nil {
			slog.Debug("font face close failed", "size", size, "err", err)
		}
	}
	m.faces = map[float64]font.Face{}
}
