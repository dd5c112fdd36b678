package window

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/PixPMusic/ampswitcher/internal/config"
	"github.com/PixPMusic/ampswitcher/internal/controller"
	"github.com/PixPMusic/ampswitcher/internal/profile"
	"github.com/PixPMusic/ampswitcher/internal/startup"
)

const statusTimeout = 2 * time.Second

// Options configures the main window.
type Options struct {
	// DataDir resolves relative icon and font paths from the settings.
	DataDir string
	Version string

	// OnApply is called after the window applied a new state.
	OnApply func(p *profile.Profile, s *config.Settings)

	// LoginItem adds a "Launch at Login" toggle when set.
	LoginItem *startup.Entry
}

// MainWindow is the button panel. It implements controller.Listener; every
// method must run on the fyne main goroutine.
type MainWindow struct {
	app    fyne.App
	window fyne.Window
	ctl    *controller.Controller
	opts   Options

	outputSelect  *widget.Select
	channelSelect *widget.Select
	buttons       *fyne.Container
	status        *widget.Label
	statusTimer   *time.Timer
	updating      bool

	measurer *labelMeasurer
	fontPath string
	recorder *recorderWindow
}

// NewMainWindow builds the window. It shows nothing until ApplyState is
// called, normally by the controller's Start.
func NewMainWindow(app fyne.App, ctl *controller.Controller, opts Options) *MainWindow {
	win := app.NewWindow("ampswitcher")

	mw := &MainWindow{
		app:    app,
		window: win,
		ctl:    ctl,
		opts:   opts,
	}
	mw.setupUI()

	win.Resize(fyne.NewSize(600, 400))
	win.CenterOnScreen()

	if _, ok := app.(desktop.App); ok {
		win.SetCloseIntercept(func() {
			win.Hide()
		})
	}
	return mw
}

func (mw *MainWindow) setupUI() {
	mw.window.SetMainMenu(mw.createMainMenu())

	mw.outputSelect = widget.NewSelect(nil, func(name string) {
		if mw.updating {
			return
		}
		mw.report(mw.ctl.SelectOutput(name))
	})
	mw.outputSelect.PlaceHolder = "Select..."

	refreshBtn := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), func() {
		mw.setOutputs(mw.ctl.RefreshOutputs())
	})

	channels := make([]string, 0, profile.MaxChannel+1)
	for ch := 0; ch <= profile.MaxChannel; ch++ {
		channels = append(channels, strconv.Itoa(ch))
	}
	mw.channelSelect = widget.NewSelect(channels, func(s string) {
		if mw.updating {
			return
		}
		ch, err := strconv.Atoi(s)
		if err != nil {
			return
		}
		mw.report(mw.ctl.SelectChannel(ch))
	})

	saveBtn := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() {
		mw.report(mw.ctl.SaveChannel())
	})

	midiRow := container.NewBorder(nil, nil,
		widget.NewLabel("MIDI Output:"),
		container.NewHBox(refreshBtn, widget.NewLabel("Channel:"), mw.channelSelect, saveBtn),
		mw.outputSelect,
	)

	mw.buttons = container.NewStack()
	mw.status = widget.NewLabel("")

	mw.window.SetContent(container.NewBorder(
		container.NewVBox(midiRow, widget.NewSeparator()),
		container.NewVBox(widget.NewSeparator(), mw.status),
		nil, nil,
		container.NewVScroll(mw.buttons),
	))
}

func (mw *MainWindow) createMainMenu() *fyne.MainMenu {
	profileMenu := fyne.NewMenu("Profile",
		fyne.NewMenuItem("New", mw.newProfile),
		fyne.NewMenuItem("Edit", mw.editProfile),
		fyne.NewMenuItem("Load", mw.loadProfile),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Record", mw.showRecorder),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import", mw.importProfile),
		fyne.NewMenuItem("Export", mw.exportProfile),
	)
	settingsMenu := fyne.NewMenu("Settings",
		fyne.NewMenuItem("Edit", mw.editSettings),
	)
	if login := mw.opts.LoginItem; login != nil {
		item := fyne.NewMenuItem("Launch at Login", nil)
		item.Checked = login.Enabled()
		item.Action = func() {
			if err := login.Set(!item.Checked); err != nil {
				mw.report(err)
				return
			}
			item.Checked = login.Enabled()
			settingsMenu.Refresh()
		}
		settingsMenu.Items = append(settingsMenu.Items, fyne.NewMenuItemSeparator(), item)
	}
	aboutMenu := fyne.NewMenu("About",
		fyne.NewMenuItem("Version", mw.showAbout),
	)
	return fyne.NewMainMenu(profileMenu, settingsMenu, aboutMenu)
}

// ApplyState refreshes the title, channel, outputs and button grid.
func (mw *MainWindow) ApplyState(p *profile.Profile, s *config.Settings) {
	mw.window.SetTitle(p.Name)

	mw.updating = true
	mw.channelSelect.SetSelected(strconv.Itoa(p.Channel))
	mw.updating = false
	mw.setOutputs(mw.ctl.Outputs())

	mw.loadFont(s.Font)
	mw.buttons.Objects = []fyne.CanvasObject{mw.buildGrid(p.SortedButtons(), s)}
	mw.buttons.Refresh()

	mw.setIcon(s.Icon)

	if mw.opts.OnApply != nil {
		mw.opts.OnApply(p, s)
	}
}

// Status shows msg in the status bar for a couple of seconds.
func (mw *MainWindow) Status(msg string) {
	mw.status.SetText(msg)
	if mw.statusTimer != nil {
		mw.statusTimer.Stop()
	}
	mw.statusTimer = time.AfterFunc(statusTimeout, func() {
		fyne.Do(func() {
			if mw.status.Text == msg {
				mw.status.SetText("")
			}
		})
	})
	if mw.recorder != nil {
		mw.recorder.setStatus(msg)
	}
}

func (mw *MainWindow) setOutputs(outputs []string) {
	mw.updating = true
	defer func() { mw.updating = false }()

	mw.outputSelect.Options = outputs
	if current := mw.ctl.Output(); current != "" {
		mw.outputSelect.SetSelected(current)
	} else {
		mw.outputSelect.ClearSelected()
	}
	mw.outputSelect.Refresh()
}

func (mw *MainWindow) buildGrid(buttons []profile.ButtonSpec, s *config.Settings) fyne.CanvasObject {
	perRow := s.ButtonsPerRow
	if perRow <= 0 {
		perRow = config.Default().ButtonsPerRow
	}

	labels := make([]string, len(buttons))
	for i, b := range buttons {
		labels[i] = b.Name
	}
	minSize := fyne.NewSize(0, minButtonHeight)
	if mw.measurer != nil {
		w, h := mw.measurer.buttonSize(labels, float64(s.Size))
		minSize = fyne.NewSize(w, h)
	}

	objects := make([]fyne.CanvasObject, 0, len(buttons))
	for i, b := range buttons {
		fill, ok := ParseColor(b.Color)
		if !ok && b.Color != "" {
			slog.Warn("unknown button color", "button", b.Name, "color", b.Color)
		}
		objects = append(objects, newAmpButton(b.Name, fill, float32(s.Size), minSize, func() {
			mw.report(mw.ctl.Press(i))
		}))
	}
	return container.NewGridWithColumns(perRow, objects...)
}

// loadFont prepares the label measurer from a TTF file named by the
// settings, falling back to the theme font.
func (mw *MainWindow) loadFont(name string) {
	path := mw.resolve(name)
	if mw.measurer != nil && path == mw.fontPath {
		return
	}

	data := theme.DefaultTextFont().Content()
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			data = b
		}
	}
	m, err := newLabelMeasurer(data)
	if err != nil {
		slog.Warn("font not usable, using theme font", "font", name, "err", err)
		if m, err = newLabelMeasurer(theme.DefaultTextFont().Content()); err != nil {
			slog.Error("failed to parse theme font", "err", err)
			return
		}
	}
	if mw.measurer != nil {
		mw.measurer.Close()
	}
	mw.measurer, mw.fontPath = m, path
}

func (mw *MainWindow) setIcon(name string) {
	path := mw.resolve(name)
	if path == "" {
		return
	}
	res, err := fyne.LoadResourceFromPath(path)
	if err != nil {
		slog.Debug("window icon not loaded", "icon", path, "err", err)
		return
	}
	mw.window.SetIcon(res)
}

func (mw *MainWindow) resolve(name string) string {
	if name == "" {
		return ""
	}
	if !filepath.IsAbs(name) && mw.opts.DataDir != "" {
		name = filepath.Join(mw.opts.DataDir, name)
	}
	if _, err := os.Stat(name); err != nil {
		return ""
	}
	return name
}

// report shows an error dialog. The controller has already set the status.
func (mw *MainWindow) report(err error) {
	if err == nil {
		return
	}
	slog.Debug("user action failed", "err", err)
	dialog.ShowError(err, mw.window)
}

// PumpEvents forwards MIDI input to the controller on the main goroutine
// until the session's queue is closed.
func (mw *MainWindow) PumpEvents() {
	go func() {
		for ev := range mw.ctl.Events() {
			fyne.Do(func() {
				if mw.ctl.HandleEvent(ev) && mw.recorder != nil {
					mw.recorder.appendEvent(ev)
				}
			})
		}
	}()
}

func (mw *MainWindow) showAbout() {
	dialog.ShowInformation("About ampswitcher",
		fmt.Sprintf("ampswitcher v%s\n\nSwitch amp channels and presets with MIDI program\nand control changes.", mw.opts.Version),
		mw.window)
}

// Show brings the window to front
func (mw *MainWindow) Show() {
	mw.window.Show()
	mw.window.RequestFocus()
}

// Window returns the underlying fyne window
func (mw *MainWindow) Window() fyne.Window {
	return mw.window
}

// Close releases fonts held by the window.
func (mw *MainWindow) Close() {
	if mw.measurer != nil {
		mw.measurer.Close()
	}
}

var _ controller.Listener = (*MainWindow)(nil)
