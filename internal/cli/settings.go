package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sessiondeck/internal/config"
	"sessiondeck/internal/settings"
)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Edit config.toml interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		cur, _ := loadConfig()
		next, err := settings.Edit(cur)
		if err != nil {
			return err
		}
		if err := config.SaveFile(path, next); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n✓ saved %s\n", path)
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}
