package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sessiondeck/internal/registry"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the process registry file",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := registry.MarshalSchema(registry.FileSchema())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}
