// Package startup registers ampswitcher to launch at login.
package startup

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrUnsupported is returned on platforms without a login item mechanism.
var ErrUnsupported = errors.New("launch at login not supported on this platform")

// Entry describes the login item.
type Entry struct {
	// ID is the reverse-DNS identifier used for the LaunchAgent label.
	ID string
	// Name is the display name and the Windows Run value name.
	Name string
	// Exec is the program to start; defaults to the running executable.
	Exec string
	// Args are appended to Exec.
	Args []string
}

// Default returns the entry for the running ampswitcher binary.
func Default() Entry {
	return Entry{ID: "com.pixpmusic.ampswitcher", Name: "ampswitcher"}
}

func (e Entry) command() (string, error) {
	if e.Exec != "" {
		return e.Exec, nil
	}
	path, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	return path, nil
}

// Enable registers the entry to launch at login.
func (e Entry) Enable() error {
	execPath, err := e.command()
	if err != nil {
		return err
	}
	switch runtime.GOOS {
	case "darwin":
		err = writeFile(e.launchAgentPath(), e.launchAgent(execPath))
	case "linux":
		err = writeFile(e.desktopPath(), e.desktopEntry(execPath))
	case "windows":
		err = exec.Command("reg", "add", windowsRunKey,
			"/v", e.Name, "/t", "REG_SZ", "/d", e.commandLine(execPath), "/f").Run()
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, runtime.GOOS)
	}
	if err != nil {
		return fmt.Errorf("enabling launch at login: %w", err)
	}
	slog.Info("launch at login enabled", "exec", execPath)
	return nil
}

// Disable removes the login item. Removing an absent item is not an error.
func (e Entry) Disable() error {
	var err error
	switch runtime.GOOS {
	case "darwin":
		err = removeFile(e.launchAgentPath())
	case "linux":
		err = removeFile(e.desktopPath())
	case "windows":
		out, regErr := exec.Command("reg", "delete", windowsRunKey, "/v", e.Name, "/f").CombinedOutput()
		if regErr != nil && !strings.Contains(string(out), "unable to find") {
			err = regErr
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, runtime.GOOS)
	}
	if err != nil {
		return fmt.Errorf("disabling launch at login: %w", err)
	}
	slog.Info("launch at login disabled")
	return nil
}

// Enabled reports whether the login item is registered.
func (e Entry) Enabled() bool {
	switch runtime.GOOS {
	case "darwin":
		return exists(e.launchAgentPath())
	case "linux":
		return exists(e.desktopPath())
	case "windows":
		return exec.Command("reg", "query", windowsRunKey, "/v", e.Name).Run() == nil
	default:
		return false
	}
}

// Set enables or disables the login item.
func (e Entry) Set(on bool) error {
	if on {
		return e.Enable()
	}
	return e.Disable()
}

const windowsRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (e Entry) commandLine(execPath string) string {
	parts := []string{quote(execPath)}
	for _, a := range e.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if strings.ContainsAny(s, " \t\"") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}

func (e Entry) launchAgentPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "LaunchAgents", e.ID+".plist")
}

func (e Entry) launchAgent(execPath string) string {
	var args strings.Builder
	for _, a := range append([]string{execPath}, e.Args...) {
		fmt.Fprintf(&args, "        <string>%s</string>\n", a)
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>%s</string>
    <key>ProgramArguments</key>
    <array>
%s    </array>
    <key>RunAtLoad</key>
    <true/>
</dict>
</plist>
`, e.ID, args.String())
}

// desktopPath follows the XDG autostart specification.
func (e Entry) desktopPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "autostart", e.Name+".desktop")
}

func (e Entry) desktopEntry(execPath string) string {
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=MIDI amp switcher
Exec=%s
Hidden=false
NoDisplay=false
X-GNOME-Autostart-enabled=true
`, e.Name, e.commandLine(execPath))
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func removeFile(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
