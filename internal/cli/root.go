package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sessiondeck/internal/app"
	"sessiondeck/internal/system"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "sessiondeck",
	Short: "sessiondeck – dashboard for AI coding assistant sessions",
	Long: "sessiondeck launches headless assistant instances from presets, tracks them in a shared registry,\n" +
		"adopts sessions started elsewhere and resumes any of them in an embedded terminal.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			system.SetLevel("debug")
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default action: launch the TUI
		deps, err := loadDeps()
		if err != nil {
			return err
		}
		return app.Start(deps)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
