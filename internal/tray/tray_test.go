package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PixPMusic/ampswitcher/internal/profile"
)

func TestMenuListsButtonsInLayoutOrder(t *testing.T) {
	var pressed []int
	tr := &Tray{callbacks: Callbacks{OnPress: func(i int) { pressed = append(pressed, i) }}}

	p := &profile.Profile{Name: "Live", Buttons: []profile.ButtonSpec{
		{Order: 1, Name: "lead", ProgramChange: profile.Int(3)},
		{Order: 0, Name: "clean", ProgramChange: profile.Int(1)},
		{Order: 2, Name: "label"},
	}}
	menu := tr.menu(p)

	assert.Equal(t, "Live", menu.Label)
	var labels []string
	for _, item := range menu.Items {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{"Open ampswitcher", "", "clean", "lead", "label", "", "Quit"}, labels)

	require.NotNil(t, menu.Items[3].Action)
	menu.Items[3].Action()
	assert.Equal(t, []int{1}, pressed)
	assert.True(t, menu.Items[4].Disabled)
	assert.True(t, menu.Items[6].IsQuit)
}

func TestMenuWithoutProfile(t *testing.T) {
	quit := false
	tr := &Tray{callbacks: Callbacks{OnQuit: func() { quit = true }}}

	menu := tr.menu(nil)
	require.Len(t, menu.Items, 3)
	menu.Items[2].Action()
	assert.True(t, quit)
}

func TestUpdateOnNilTray(t *testing.T) {
	var tr *Tray
	assert.NotPanics(t, func() { tr.Update(profile.New()) })
}
