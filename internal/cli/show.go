package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <host> [name]",
	Short: "Print a stored report",
	Long: `Print the latest report of a host, or the named one.

The document is indented for reading; with --json it is printed exactly as
stored.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore()
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		data, err := s.Read(args[0], name)
		if err != nil {
			return err
		}

		if jsonOutput {
			_, err := fmt.Fprintf(os.Stdout, "%s\n", data)
			return err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("report %s is not valid JSON: %w", args[0], err)
		}
		buf.WriteByte('\n')
		_, err = buf.WriteTo(os.Stdout)
		return err
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
