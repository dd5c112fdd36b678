package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/PixPMusic/ampswitcher/internal/tui"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record MIDI input in the terminal and turn it into a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, shutdown, err := openController(nil)
		if err != nil {
			return err
		}
		defer shutdown()

		model, err := tea.NewProgram(tui.NewRecorderModel(ctl)).Run()
		if err != nil {
			return fmt.Errorf("recorder: %w", err)
		}
		if m, ok := model.(tui.RecorderModel); ok && m.Saved != "" {
			fmt.Printf("Saved %s to %s\n", m.Saved, ctl.ProfilesDir())
		}
		return nil
	},
}
