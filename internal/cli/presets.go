package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sessiondeck/internal/config"
	"sessiondeck/internal/presets"
)

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.AddCommand(presetsPathCmd)
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := presets.Load()
		if err != nil {
			return err
		}
		if set.Len() == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "(no presets; add [[preset]] tables to %s)\n", set.Path())
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tKEY\tN\tCWD\tADD-DIRS")
		for _, p := range set.All() {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", p.Name, orDash(p.Shortcut), p.Instances, p.Cwd, orDash(strings.Join(p.AddDirs, ",")))
		}
		return tw.Flush()
	},
}

var presetsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the presets file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.PresetsPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}
