package window

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.Color
		ok   bool
	}{
		{"green", color.RGBA{0x00, 0x80, 0x00, 0xff}, true},
		{" Orange ", color.RGBA{0xff, 0xa5, 0x00, 0xff}, true},
		{"#ff0000", color.NRGBA{0xff, 0x00, 0x00, 0xff}, true},
		{"#0F0", color.NRGBA{0x00, 0xff, 0x00, 0xff}, true},
		{"", nil, false},
		{"notacolor", nil, false},
		{"#12345", nil, false},
		{"#zzzzzz", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseColor(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTextColorFor(t *testing.T) {
	assert.Equal(t, color.Black, textColorFor(color.RGBA{0xff, 0xff, 0x00, 0xff}))
	assert.Equal(t, color.White, textColorFor(color.RGBA{0x00, 0x00, 0x80, 0xff}))
}

func TestLabelMeasurer(t *testing.T) {
	m, err := newLabelMeasurer(goregular.TTF)
	require.NoError(t, err)
	defer m.Close()

	short := m.Width("clean", 12)
	long := m.Width("clean boost lead", 12)
	assert.Greater(t, short, 0)
	assert.Greater(t, long, short)
	assert.Greater(t, m.Width("clean", 24), short)
	assert.Equal(t, 0, m.Width("", 12))

	w, h := m.buttonSize([]string{"clean", "clean boost lead"}, 12)
	assert.Equal(t, float32(long+buttonPadding), w)
	assert.GreaterOrEqual(t, h, float32(minButtonHeight))
}

func TestLabelMeasurerRejectsGarbage(t *testing.T) {
	_, err := newLabelMeasurer([]byte("not a font"))
	assert.Error(t, err)
}

func TestJSONName(t *testing.T) {
	assert.Equal(t, "rig.json", jsonName("rig"))
	assert.Equal(t, "rig.json", jsonName(" rig.json "))
	assert.Equal(t, "Rig.JSON", jsonName("Rig.JSON"))
	assert.Equal(t, "x.json", jsonName("../x.json"))
	assert.Equal(t, "", jsonName("  "))
}
