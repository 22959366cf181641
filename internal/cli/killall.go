package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"sessiondeck/internal/headless"
	"sessiondeck/internal/settings"
)

var killAllYes bool

func init() {
	rootCmd.AddCommand(killAllCmd)
	killAllCmd.Flags().BoolVarP(&killAllYes, "yes", "y", false, "skip the confirmation")
}

var killAllCmd = &cobra.Command{
	Use:   "kill-all",
	Short: "Terminate every managed process",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := openRegistry(cmd)
		n := len(reg.All())
		if n == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "(no managed processes)")
			return nil
		}
		if !killAllYes {
			ok, err := settings.Confirm(
				fmt.Sprintf("Terminate %d managed process%s?", n, plural(n, "", "es")),
				"Headless instances started from presets will receive SIGTERM.",
			)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
				return nil
			}
		}
		rep, err := headless.KillAll(reg)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "terminated %d, already gone %d, failed %d\n", len(rep.Killed), len(rep.AlreadyDead), len(rep.Failed))
		pids := make([]int, 0, len(rep.Failed))
		for pid := range rep.Failed {
			pids = append(pids, pid)
		}
		sort.Ints(pids)
		for _, pid := range pids {
			fmt.Fprintf(out, "  %d: %v\n", pid, rep.Failed[pid])
		}
		return err
	},
}
