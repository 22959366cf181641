package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sessiondeck/internal/adoption"
)

var orphansJSON bool

func init() {
	rootCmd.AddCommand(orphansCmd)
	orphansCmd.Flags().BoolVar(&orphansJSON, "json", false, "print orphans as JSON")
}

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List live sessions that no registry entry tracks",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _ := loadConfig()
		reg := openRegistry(cmd)
		orphans, err := newScanner(c).Discover(reg.PIDs())
		if err != nil {
			return err
		}
		if orphansJSON {
			if orphans == nil {
				orphans = []adoption.OrphanSession{}
			}
			return writeJSON(cmd.OutOrStdout(), orphans)
		}
		if len(orphans) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "(no orphan sessions)")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SESSION\tPID\tSTATUS\tCWD")
		for _, o := range orphans {
			pid := "-"
			if o.PID > 0 {
				pid = fmt.Sprint(o.PID)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.SessionID, pid, o.Status, orDash(o.Cwd))
		}
		return tw.Flush()
	},
}
