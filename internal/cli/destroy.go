package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/jvs-project/reportstore/pkg/color"
	"github.com/jvs-project/reportstore/pkg/model"
)

var destroyCmd = &cobra.Command{
	Use:   "destroy <host>...",
	Short: "Remove every report of the given hosts",
	Long: `Remove all report files of each host and then its directory.

A host that never reported is not an error. When audit_log is set every
destroyed host is recorded there. Failures for one host do not
stop the others; all of them are reported at the end.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cfg, err := openStore()
		if err != nil {
			return err
		}
		defer flushMetrics(cfg)

		var errs []error
		destroyed := make([]string, 0, len(args))
		for _, host := range args {
			files, _ := s.List(host)
			if err := s.Destroy(host); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", host, err))
				continue
			}
			destroyed = append(destroyed, host)
			if err := appendAudit(cfg, model.EventTypeHostDestroy, host, map[string]any{"reports": len(files)}); err != nil {
				errs = append(errs, err)
			}
			if !jsonOutput {
				fmt.Printf("Destroyed reports for %s\n", color.Host(host))
			}
		}

		if err := outputJSON(map[string]any{"destroyed": destroyed}); err != nil {
			return err
		}
		return utilerrors.NewAggregate(errs)
	},
}

func init() {
	rootCmd.AddCommand(destroyCmd)
}
