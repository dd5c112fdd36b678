package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/PixPMusic/ampswitcher/internal/midi"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output and input ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		drv, err := rtmididrv.New()
		if err != nil {
			return fmt.Errorf("rtmididrv: %w", err)
		}
		session := midi.NewSession(drv)
		defer session.Close()

		printPorts("Outputs", session.ListOutputs())
		fmt.Println()
		printPorts("Inputs", session.ListInputs())
		return nil
	},
}

func printPorts(title string, names []string) {
	fmt.Printf("%s:\n", title)
	if len(names) == 0 {
		fmt.Println("  (none)")
		return
	}
	for i, name := range names {
		fmt.Printf("  %d. %s\n", i, name)
	}
}
