package window

import (
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/PixPMusic/ampswitcher/internal/midi"
)

// recorderWindow captures incoming MIDI and turns it into a profile.
type recorderWindow struct {
	mw        *MainWindow
	window    fyne.Window
	log       *widget.Entry
	candidate *widget.Entry
	status    *widget.Label
	lines     []string
}

func (mw *MainWindow) showRecorder() {
	if mw.recorder == nil {
		mw.recorder = newRecorderWindow(mw)
	}
	mw.recorder.window.Show()
	mw.recorder.window.RequestFocus()
}

func newRecorderWindow(mw *MainWindow) *recorderWindow {
	rw := &recorderWindow{
		mw:        mw,
		window:    mw.app.NewWindow("MIDI Profile Recorder"),
		log:       widget.NewMultiLineEntry(),
		candidate: widget.NewMultiLineEntry(),
		status:    widget.NewLabel(""),
	}
	rw.log.Disable()
	rw.candidate.Disable()

	startBtn := widget.NewButtonWithIcon("Start", theme.MediaRecordIcon(), rw.start)
	stopBtn := widget.NewButtonWithIcon("Stop and Generate", theme.MediaStopIcon(), rw.stop)
	clearBtn := widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), rw.clear)
	saveBtn := widget.NewButtonWithIcon("Save As Profile", theme.DocumentSaveIcon(), rw.save)

	rw.window.SetContent(container.NewBorder(
		container.NewGridWithColumns(2, startBtn, stopBtn),
		container.NewVBox(container.NewGridWithColumns(2, clearBtn, saveBtn), rw.status),
		nil, nil,
		container.NewHSplit(rw.log, rw.candidate),
	))
	rw.window.Resize(fyne.NewSize(700, 420))
	rw.window.SetCloseIntercept(func() {
		// leaving the window ends the take
		mw.ctl.StopRecording()
		rw.window.Hide()
	})
	return rw
}

func (rw *recorderWindow) start() {
	if _, err := rw.mw.ctl.StartRecording(); err != nil {
		rw.setStatus(err.Error())
	}
}

func (rw *recorderWindow) stop() {
	p := rw.mw.ctl.StopRecording()
	if p == nil {
		rw.setStatus("Nothing recorded")
		return
	}
	data, err := p.Marshal()
	if err != nil {
		rw.setStatus(err.Error())
		return
	}
	rw.candidate.SetText(string(data))
}

func (rw *recorderWindow) clear() {
	rw.mw.ctl.ClearRecording()
	rw.lines = nil
	rw.log.SetText("")
	rw.candidate.SetText("")
}

func (rw *recorderWindow) save() {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(rw.mw.ctl.RecordingName())

	dialog.ShowForm("Save Recorded Profile", "Save", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("File name", nameEntry)},
		func(ok bool) {
			if !ok {
				return
			}
			name := jsonName(nameEntry.Text)
			if name == "" {
				return
			}
			if err := rw.mw.ctl.SaveRecording(name); err != nil {
				dialog.ShowError(err, rw.window)
			}
		}, rw.window)
}

func (rw *recorderWindow) appendEvent(ev midi.Event) {
	rw.lines = append(rw.lines, time.Now().Format("15:04:05.000")+"  "+ev.String())
	rw.log.SetText(strings.Join(rw.lines, "\n"))
}

func (rw *recorderWindow) setStatus(msg string) {
	rw.status.SetText(msg)
}
