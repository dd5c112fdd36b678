package window

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// ============ AMP BUTTON WIDGET ============

var pressedColor = color.Black

// ampButton is a rounded, colored pad showing a button name.
type ampButton struct {
	widget.BaseWidget
	rect  *canvas.Rectangle
	label *canvas.Text
	fill  color.Color
	onTap func()
}

func newAmpButton(name string, fill color.Color, textSize float32, minSize fyne.Size, onTap func()) *ampButton {
	textColor := theme.Color(theme.ColorNameForeground)
	if fill == nil {
		fill = theme.Color(theme.ColorNameButton)
	} else {
		textColor = textColorFor(fill)
	}

	rect := canvas.NewRectangle(fill)
	rect.CornerRadius = 10
	rect.StrokeColor = color.NRGBA{R: 0x8f, G: 0x8f, B: 0x91, A: 0xff}
	rect.StrokeWidth = 1
	rect.SetMinSize(minSize)

	label := canvas.NewText(name, textColor)
	label.TextSize = textSize
	label.Alignment = fyne.TextAlignCenter

	b := &ampButton{rect: rect, label: label, fill: fill, onTap: onTap}
	b.ExtendBaseWidget(b)
	return b
}

func (b *ampButton) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(b.rect, container.NewCenter(b.label)))
}

func (b *ampButton) Tapped(_ *fyne.PointEvent) {
	if b.onTap != nil {
		b.onTap()
	}
}

func (b *ampButton) TappedSecondary(_ *fyne.PointEvent) {}

func (b *ampButton) MouseDown(_ *desktop.MouseEvent) {
	b.rect.FillColor = pressedColor
	b.rect.Refresh()
}

func (b *ampButton) MouseUp(_ *desktop.MouseEvent) {
	b.rect.FillColor = b.fill
	b.rect.Refresh()
}
