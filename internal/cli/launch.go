package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sessiondeck/internal/headless"
	"sessiondeck/internal/presets"
)

func init() {
	rootCmd.AddCommand(launchCmd)
}

var launchCmd = &cobra.Command{
	Use:   "launch <preset>",
	Short: "Start the headless instances of a preset (by name or shortcut)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _ := loadConfig()
		set, err := presets.Load()
		if err != nil {
			return err
		}
		p, ok := set.Lookup(args[0])
		if !ok {
			return fmt.Errorf("no preset named %q in %s", args[0], set.Path())
		}
		reg := openRegistry(cmd)
		insts, err := headless.NewLauncher(c.Assistant, reg).LaunchPreset(p)
		for _, in := range insts {
			fmt.Fprintf(cmd.OutOrStdout(), "%s#%d pid %d session %s\n", in.PresetName, in.Index, in.PID, in.SessionID)
		}
		return err
	},
}
