package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"sessiondeck/internal/registry"
)

var psJSON bool

func init() {
	rootCmd.AddCommand(psCmd)
	psCmd.Flags().BoolVar(&psJSON, "json", false, "print the registry as JSON")
}

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List managed processes",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := openRegistry(cmd)
		procs := reg.All()
		if psJSON {
			if procs == nil {
				procs = []registry.ManagedProcess{}
			}
			return writeJSON(cmd.OutOrStdout(), registry.File{Processes: procs})
		}
		if len(procs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "(no managed processes)")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PID\tPRESET\t#\tSESSION\tSTATUS\tSTARTED\tCWD")
		for _, p := range procs {
			started := "-"
			if !p.StartedAt.IsZero() {
				started = p.StartedAt.Local().Format(time.DateTime)
			}
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%s\n",
				p.PID, orDash(p.PresetName), p.InstanceIndex, p.SessionID, p.Status, started, p.Cwd)
		}
		return tw.Flush()
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
