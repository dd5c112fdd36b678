package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/PixPMusic/ampswitcher/internal/config"
	"github.com/PixPMusic/ampswitcher/internal/profile"
	"github.com/PixPMusic/ampswitcher/internal/startup"
	"github.com/PixPMusic/ampswitcher/internal/tray"
	"github.com/PixPMusic/ampswitcher/internal/window"
)

// runGUI shows the button panel and blocks until the app quits.
func runGUI() error {
	dir, err := dataDir()
	if err != nil {
		return err
	}

	fyneApp := app.NewWithID("com.pixpmusic.ampswitcher")

	ctl, shutdown, err := newController()
	if err != nil {
		return err
	}
	defer shutdown()

	login := startup.Default()
	var systray *tray.Tray
	mainWindow := window.NewMainWindow(fyneApp, ctl, window.Options{
		DataDir:   dir,
		Version:   version,
		LoginItem: &login,
		OnApply: func(p *profile.Profile, _ *config.Settings) {
			systray.Update(p)
		},
	})
	defer mainWindow.Close()

	systray = tray.Setup(fyneApp, tray.Callbacks{
		OnOpen: func() {
			mainWindow.Show()
		},
		OnPress: func(index int) {
			if err := ctl.Press(index); err != nil {
				slog.Warn("tray press failed", "index", index, "err", err)
			}
		},
		OnQuit: func() {
			fyneApp.Quit()
		},
	})

	ctl.SetListener(mainWindow)
	if err := ctl.Start(); err != nil {
		return err
	}
	mainWindow.PumpEvents()
	mainWindow.Show()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	finished := make(chan struct{})
	defer close(finished)
	go quitOnSignal(ctx, finished, func() { fyne.Do(fyneApp.Quit) })

	fyneApp.Run()
	return nil
}

// quitOnSignal calls quit when ctx ends before finished closes, so a signal
// unwinds runGUI's defers.
func quitOnSignal(ctx context.Context, finished <-chan struct{}, quit func()) {
	select {
	case <-ctx.Done():
		select {
		case <-finished:
			return
		default:
		}
		slog.Info("signal received, quitting")
		quit()
	case <-finished:
	}
}
