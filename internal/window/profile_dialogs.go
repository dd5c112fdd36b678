package window

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/PixPMusic/ampswitcher/internal/config"
	"github.com/PixPMusic/ampswitcher/internal/controller"
	"github.com/PixPMusic/ampswitcher/internal/profile"
)

// ============ PROFILE MENU ============

func (mw *MainWindow) newProfile() {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("my-rig.json")

	dialog.ShowForm("New Profile", "Create", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("File name", nameEntry)},
		func(ok bool) {
			if !ok {
				return
			}
			name := jsonName(nameEntry.Text)
			if name == "" {
				return
			}
			mw.report(mw.ctl.NewProfile(name))
		}, mw.window)
}

func (mw *MainWindow) editProfile() {
	p := mw.ctl.Profile()
	data, err := p.Marshal()
	if err != nil {
		mw.report(err)
		return
	}
	mw.showJSONEditor("Edit Profile", string(data), func(text string) error {
		edited, err := profile.Parse([]byte(text))
		if err != nil {
			return err
		}
		return mw.ctl.UpdateProfile(edited)
	}, nil)
}

func (mw *MainWindow) editSettings() {
	s, err := mw.ctl.EditSettings()
	if err != nil {
		mw.report(err)
		return
	}
	data, err := config.Marshal(s)
	if err != nil {
		mw.ctl.CancelSettings()
		mw.report(err)
		return
	}
	mw.showJSONEditor("Edit Settings", string(data), func(text string) error {
		edited, err := config.Parse([]byte(text))
		if err != nil {
			return err
		}
		err = mw.ctl.UpdateSettings(edited)
		if err != nil && mw.ctl.State() == controller.Ready {
			// the editor reopens, so editing resumes
			_, _ = mw.ctl.EditSettings()
		}
		return err
	}, mw.ctl.CancelSettings)
}

// showJSONEditor shows text in an editable dialog. onSave errors reopen the
// editor with the user's text so nothing typed is lost.
func (mw *MainWindow) showJSONEditor(title, text string, onSave func(string) error, onCancel func()) {
	entry := widget.NewMultiLineEntry()
	entry.SetText(text)
	entry.Wrapping = fyne.TextWrapOff

	d := dialog.NewCustomConfirm(title, "Save", "Cancel", container.NewStack(entry), func(ok bool) {
		if !ok {
			if onCancel != nil {
				onCancel()
			}
			return
		}
		if err := onSave(entry.Text); err != nil {
			slog.Warn("edit rejected", "dialog", title, "err", err)
			errDialog := dialog.NewError(fmt.Errorf("invalid JSON: %w", err), mw.window)
			errDialog.SetOnClosed(func() {
				mw.showJSONEditor(title, entry.Text, onSave, onCancel)
			})
			errDialog.Show()
		}
	}, mw.window)
	d.Resize(fyne.NewSize(600, 400))
	d.Show()
}

func (mw *MainWindow) loadProfile() {
	mw.openJSONFile(func(path string) {
		if filepath.Dir(path) == filepath.Clean(mw.ctl.ProfilesDir()) {
			mw.report(mw.ctl.ChangeProfile(filepath.Base(path)))
			return
		}
		mw.report(mw.ctl.ImportProfile(path))
	})
}

func (mw *MainWindow) importProfile() {
	mw.openJSONFile(func(path string) {
		mw.report(mw.ctl.ImportProfile(path))
	})
}

func (mw *MainWindow) exportProfile() {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			mw.report(err)
			return
		}
		if w == nil {
			mw.Status("No profile selected")
			return
		}
		path := w.URI().Path()
		if err := w.Close(); err != nil {
			slog.Warn("closing export target failed", "path", path, "err", err)
		}
		mw.report(mw.ctl.ExportProfile(path))
	}, mw.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.SetFileName(jsonName(mw.ctl.Profile().Name))
	mw.setDialogLocation(d)
	d.Show()
}

func (mw *MainWindow) openJSONFile(onPick func(path string)) {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			mw.report(err)
			return
		}
		if r == nil {
			mw.Status("No profile selected")
			return
		}
		path := r.URI().Path()
		_ = r.Close()
		onPick(path)
	}, mw.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	mw.setDialogLocation(d)
	d.Show()
}

func (mw *MainWindow) setDialogLocation(d *dialog.FileDialog) {
	lister, err := storage.ListerForURI(storage.NewFileURI(mw.ctl.ProfilesDir()))
	if err != nil {
		slog.Debug("profiles dir not listable", "dir", mw.ctl.ProfilesDir(), "err", err)
		return
	}
	d.SetLocation(lister)
}

// jsonName turns user input into a profile file name.
func jsonName(s string) string {
	s = strings.TrimSpace(filepath.Base(strings.TrimSpace(s)))
	if s == "" || s == "." || s == string(filepath.Separator) {
		return ""
	}
	if !strings.EqualFold(filepath.Ext(s), ".json") {
		s += ".json"
	}
	return s
}
