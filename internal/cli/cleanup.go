package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Drop registry entries whose process has exited",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := openRegistry(cmd)
		removed, err := reg.CleanupDead()
		if err != nil {
			return err
		}
		for _, p := range removed {
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d (%s)\n", p.PID, orDash(p.PresetName))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d dead entr%s removed\n", len(removed), plural(len(removed), "y", "ies"))
		return nil
	},
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
