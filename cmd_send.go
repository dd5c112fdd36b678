package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/PixPMusic/ampswitcher/internal/controller"
	"github.com/PixPMusic/ampswitcher/internal/profile"
)

var (
	sendProgram int
	sendControl int
	sendValue   int
	sendOutput  string
	sendChannel int
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a program change and/or control change",
	Example: `  ampswitcher send --program 5
  ampswitcher send --control 2 --value 100 --channel 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		b := profile.ButtonSpec{Name: "send"}
		if flags.Changed("program") {
			b.ProgramChange = profile.Int(sendProgram)
		}
		if flags.Changed("control") {
			b.CCNumber = profile.Int(sendControl)
			if flags.Changed("value") {
				b.CCValue = profile.Int(sendValue)
			}
		}
		if b.Inert() {
			return fmt.Errorf("nothing to send: use --program or --control")
		}

		ctl, shutdown, err := openController(printListener{w: os.Stdout})
		if err != nil {
			return err
		}
		defer shutdown()

		if err := overrideTarget(cmd, ctl); err != nil {
			return err
		}
		return ctl.Send(b)
	},
}

var pressCmd = &cobra.Command{
	Use:   "press <index>",
	Short: "Press a button of the active profile, counting from 0 in layout order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid button index %q", args[0])
		}

		ctl, shutdown, err := openController(printListener{w: os.Stdout})
		if err != nil {
			return err
		}
		defer shutdown()

		if err := overrideTarget(cmd, ctl); err != nil {
			return err
		}
		return ctl.Press(index)
	},
}

// overrideTarget applies --output and --channel for this invocation only.
func overrideTarget(cmd *cobra.Command, ctl *controller.Controller) error {
	if cmd.Flags().Changed("output") {
		if err := ctl.SelectOutput(sendOutput); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("channel") {
		if err := ctl.SelectChannel(sendChannel); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	sendCmd.Flags().IntVar(&sendProgram, "program", 0, "program change number (0-127)")
	sendCmd.Flags().IntVar(&sendControl, "control", 0, "control change number (0-127)")
	sendCmd.Flags().IntVar(&sendValue, "value", 0, "control change value (0-127)")

	for _, c := range []*cobra.Command{sendCmd, pressCmd} {
		c.Flags().StringVar(&sendOutput, "output", "", "output port name, overriding the settings")
		c.Flags().IntVar(&sendChannel, "channel", 0, "MIDI channel, overriding the profile")
	}
}
