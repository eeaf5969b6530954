package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/jvs-project/reportstore/pkg/color"
)

var (
	jsonOutput bool
	configPath string
	reportDir  string
	noColor    bool
	rootCmd    = &cobra.Command{
		Use:   "reportstore",
		Short: "reportstore - store host run reports on disk",
		Long: `reportstore keeps the run reports of managed hosts as JSON documents,
one directory per host and one file per minute:

  <report_dir>/<host>/<YYYYMMDDHHmm>.json

Reports can be stored from files or stdin, picked up from an inbox
directory, listed, shown and destroyed per host.`,
		SilenceUsage:     true,
		SilenceErrors:    true,
		PersistentPreRun: initColor,
	}
)

func init() {
	addPersistentFlags(rootCmd)
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+defaultConfigPath()+")")
	cmd.PersistentFlags().StringVar(&reportDir, "report-dir", "", "report directory (overrides report_dir)")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func initColor(cmd *cobra.Command, args []string) {
	color.Init(noColor || jsonOutput)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmtErr("%v", err)
		os.Exit(1)
	}
}

// outputJSON prints v as JSON if --json flag is set, otherwise does nothing.
func outputJSON(v any) error {
	if !jsonOutput {
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
