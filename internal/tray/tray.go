package tray

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"

	"github.com/PixPMusic/ampswitcher/internal/profile"
)

// Callbacks for tray menu actions
type Callbacks struct {
	OnOpen  func()
	OnPress func(index int)
	OnQuit  func()
}

// Tray is the system tray menu. It lists the active profile's buttons so
// presets can be switched without opening the window.
type Tray struct {
	desk      desktop.App
	callbacks Callbacks
}

// Setup initializes the system tray using Fyne's built-in support. It
// returns nil when the app is not running on a desktop driver.
func Setup(app fyne.App, callbacks Callbacks) *Tray {
	desk, ok := app.(desktop.App)
	if !ok {
		return nil
	}
	t := &Tray{desk: desk, callbacks: callbacks}
	t.Update(nil)
	desk.SetSystemTrayIcon(theme.MediaPlayIcon())
	return t
}

// Update rebuilds the menu for p. Safe on a nil Tray.
func (t *Tray) Update(p *profile.Profile) {
	if t == nil {
		return
	}
	t.desk.SetSystemTrayMenu(t.menu(p))
}

func (t *Tray) menu(p *profile.Profile) *fyne.Menu {
	title := "ampswitcher"
	items := []*fyne.MenuItem{
		fyne.NewMenuItem("Open ampswitcher", func() {
			if t.callbacks.OnOpen != nil {
				t.callbacks.OnOpen()
			}
		}),
	}

	if p != nil {
		title = p.Name
		buttons := p.SortedButtons()
		if len(buttons) > 0 {
			items = append(items, fyne.NewMenuItemSeparator())
		}
		for i, b := range buttons {
			item := fyne.NewMenuItem(b.Name, func() {
				if t.callbacks.OnPress != nil {
					t.callbacks.OnPress(i)
				}
			})
			item.Disabled = b.Inert()
			items = append(items, item)
		}
	}

	quit := fyne.NewMenuItem("Quit", func() {
		if t.callbacks.OnQuit != nil {
			t.callbacks.OnQuit()
		}
	})
	quit.IsQuit = true
	items = append(items, fyne.NewMenuItemSeparator(), quit)
	return fyne.NewMenu(title, items...)
}
