package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/PixPMusic/ampswitcher/internal/config"
	"github.com/PixPMusic/ampswitcher/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage button profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, store, err := openStores()
		if err != nil {
			return err
		}

		names, err := store.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No profiles found.")
			return nil
		}

		for _, name := range names {
			marker := " "
			if name == settings.Profile {
				marker = "*"
			}
			p, err := store.Load(name)
			if err != nil {
				fmt.Printf("%s %s: %v\n", marker, name, err)
				continue
			}
			fmt.Printf("%s %s: %s, channel %d, %d buttons\n", marker, name, p.Name, p.Channel, len(p.Buttons))
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print a profile, the active one by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, store, err := openStores()
		if err != nil {
			return err
		}

		name := settings.Profile
		if len(args) == 1 {
			name = args[0]
		}
		p, err := store.Load(name)
		if err != nil {
			return err
		}
		data, err := p.Marshal()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var profileNewCmd = &cobra.Command{
	Use:   "new <file>",
	Short: "Create a profile from the template and make it active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, shutdown, err := openController(printListener{w: os.Stdout})
		if err != nil {
			return err
		}
		defer shutdown()
		return ctl.NewProfile(args[0])
	},
}

var profileImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Copy a profile into the profiles directory and make it active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, shutdown, err := openController(printListener{w: os.Stdout})
		if err != nil {
			return err
		}
		defer shutdown()
		return ctl.ImportProfile(args[0])
	},
}

var profileExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write the active profile to path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, shutdown, err := openController(printListener{w: os.Stdout})
		if err != nil {
			return err
		}
		defer shutdown()
		return ctl.ExportProfile(args[0])
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use [file]",
	Short: "Make a profile active, choosing interactively when no file is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, shutdown, err := openController(printListener{w: os.Stdout})
		if err != nil {
			return err
		}
		defer shutdown()

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			names, err := ctl.ListProfiles()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return fmt.Errorf("no profiles in %s", ctl.ProfilesDir())
			}
			name = ctl.Settings().Profile
			options := make([]huh.Option[string], 0, len(names))
			for _, n := range names {
				options = append(options, huh.NewOption(n, n))
			}
			selectField := huh.NewSelect[string]().
				Title("Select profile").
				Options(options...).
				Value(&name)
			if err := huh.NewForm(huh.NewGroup(selectField)).Run(); err != nil {
				return fmt.Errorf("prompt cancelled: %w", err)
			}
		}
		return ctl.ChangeProfile(name)
	},
}

// openStores returns the settings and profile store without touching MIDI.
func openStores() (*config.Settings, *profile.Store, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, nil, err
	}
	return config.NewStore(dir).Load(), profile.NewStore(dir), nil
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileNewCmd)
	profileCmd.AddCommand(profileImportCmd)
	profileCmd.AddCommand(profileExportCmd)
	profileCmd.AddCommand(profileUseCmd)
}
