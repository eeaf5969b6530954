package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jvs-project/reportstore/internal/report"
	"github.com/jvs-project/reportstore/pkg/color"
	"github.com/jvs-project/reportstore/pkg/model"
)

var storeFormat string

type storeResult struct {
	Source string `json:"source"`
	Host   string `json:"host"`
	Path   string `json:"path"`
}

var storeCmd = &cobra.Command{
	Use:   "store [file|-]...",
	Short: "Store one or more reports",
	Long: `Decode reports from files (or stdin when the argument is "-") and write
each one to <report_dir>/<host>/<YYYYMMDDHHmm>.json.

The input format is taken from the file extension (.yaml/.yml or JSON)
unless --format is given. Write failures are logged and do not fail the
command; an invalid host name does.

Examples:
  reportstore store web01.json
  reportstore store --format yaml - < web01.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cfg, err := openStore()
		if err != nil {
			return err
		}
		defer flushMetrics(cfg)

		results := make([]storeResult, 0, len(args))
		for _, arg := range args {
			r, err := decodeArg(cmd, arg)
			if err != nil {
				return fmt.Errorf("%s: %w", arg, err)
			}
			path, err := s.Process(r)
			if err != nil {
				return fmt.Errorf("%s: %w", arg, err)
			}
			results = append(results, storeResult{Source: arg, Host: r.Host, Path: path})
			if !jsonOutput {
				fmt.Printf("%s %s\n", color.Host(r.Host), path)
			}
		}
		return outputJSON(results)
	},
}

func decodeArg(cmd *cobra.Command, arg string) (*model.Report, error) {
	format := report.Format(storeFormat)
	if arg == "-" {
		if format == "" {
			format = report.FormatJSON
		}
		return report.Decode(cmd.InOrStdin(), format)
	}
	if format == "" {
		format = report.FormatForPath(arg)
	}
	f, err := os.Open(arg)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return report.Decode(f, format)
}

func init() {
	storeCmd.Flags().StringVar(&storeFormat, "format", "", "input format (json, yaml); default from file extension")
	rootCmd.AddCommand(storeCmd)
}
