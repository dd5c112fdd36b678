package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/PixPMusic/ampswitcher/internal/config"
	"github.com/PixPMusic/ampswitcher/internal/controller"
	"github.com/PixPMusic/ampswitcher/internal/logging"
	"github.com/PixPMusic/ampswitcher/internal/midi"
	"github.com/PixPMusic/ampswitcher/internal/profile"
)

var version = "1.2.0"

var rootCmd = &cobra.Command{
	Use:   "ampswitcher",
	Short: "Switch amp presets over MIDI",
	Long:  "ampswitcher shows a panel of buttons, one per amp preset, and sends the matching MIDI program and control changes when a button is pressed.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initRuntime(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGUI()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ampswitcher %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().String("dir", "", "data directory for settings, profiles and logs")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	_ = viper.BindPFlag("dir", rootCmd.PersistentFlags().Lookup("dir"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	viper.SetEnvPrefix("ampswitcher")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(pressCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(profileCmd)
}

var logCloser io.Closer = io.NopCloser(nil)

// initRuntime resolves the data directory and installs the logger.
func initRuntime(cmd *cobra.Command) error {
	if cmd == versionCmd {
		return nil
	}
	dir, err := dataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	logCloser = logging.Setup(dir, viper.GetBool("debug"))
	slog.Debug("runtime initialized", "dir", dir, "version", version)
	return nil
}

func dataDir() (string, error) {
	if dir := viper.GetString("dir"); dir != "" {
		return dir, nil
	}
	return config.DefaultDir()
}

// newController builds a controller over the rtmidi driver without starting
// it. The returned function shuts it down.
func newController() (*controller.Controller, func(), error) {
	dir, err := dataDir()
	if err != nil {
		return nil, nil, err
	}
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, nil, fmt.Errorf("rtmididrv: %w", err)
	}
	ctl := controller.New(midi.NewSession(drv), config.NewStore(dir), profile.NewStore(dir))
	return ctl, ctl.Shutdown, nil
}

// openController builds and starts a controller reporting to listener.
func openController(listener controller.Listener) (*controller.Controller, func(), error) {
	ctl, shutdown, err := newController()
	if err != nil {
		return nil, nil, err
	}
	ctl.SetListener(listener)
	if err := ctl.Start(); err != nil {
		shutdown()
		return nil, nil, err
	}
	return ctl, shutdown, nil
}

// printListener writes controller status lines to w.
type printListener struct {
	w io.Writer
}

func (l printListener) ApplyState(*profile.Profile, *config.Settings) {}

func (l printListener) Status(msg string) {
	fmt.Fprintln(l.w, msg)
}

func main() {
	err := rootCmd.Execute()
	_ = logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}
