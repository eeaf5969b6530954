package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jvs-project/reportstore/internal/doctor"
	"github.com/jvs-project/reportstore/pkg/color"
	"github.com/jvs-project/reportstore/pkg/model"
)

var (
	doctorStrict bool
	doctorRepair bool
)

var errUnhealthy = errors.New("report directory is unhealthy")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check report directory health",
	Long: `Check report directory health.

Reports leftover temporary files from interrupted writes, entries that
would block destroy, unexpected permissions and, when audit_log is set,
a broken audit hash chain. Use --strict to parse every report file and
--repair to remove leftover temporary files.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		doc := doctor.NewDoctor(cfg.ReportDir, cfg.AuditLog)
		result, err := doc.Check(doctorStrict)
		if err != nil {
			return fmt.Errorf("doctor: %w", err)
		}

		var repaired []string
		if doctorRepair {
			repaired, err = doc.Repair(result)
			if len(repaired) > 0 {
				if aerr := appendAudit(cfg, model.EventTypeDoctorRepair, "", map[string]any{"removed": repaired}); aerr != nil {
					return aerr
				}
			}
			if err != nil {
				return err
			}
		}

		if jsonOutput {
			if err := outputJSON(map[string]any{"result": result, "repaired": repaired}); err != nil {
				return err
			}
		} else {
			printDoctorResult(result, repaired)
		}

		if !result.Healthy {
			return errUnhealthy
		}
		return nil
	},
}

func printDoctorResult(result *doctor.Result, repaired []string) {
	fmt.Printf("Checked %d host(s), %d report(s).\n", result.Hosts, result.Reports)
	if len(result.Findings) == 0 {
		fmt.Println(color.Success("Report directory is healthy."))
		return
	}

	fmt.Printf("Findings (%d):\n", len(result.Findings))
	for _, f := range result.Findings {
		sev := f.Severity
		switch f.Severity {
		case doctor.SeverityError, doctor.SeverityCritical:
			sev = color.Error(sev)
		case doctor.SeverityWarning:
			sev = color.Warning(sev)
		}
		fmt.Printf("  [%s] %s: %s\n", sev, f.Category, f.Description)
	}
	for _, p := range repaired {
		fmt.Printf("Removed %s\n", color.Dim(p))
	}
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorStrict, "strict", false, "parse every report file")
	doctorCmd.Flags().BoolVar(&doctorRepair, "repair", false, "remove leftover temporary files")
	rootCmd.AddCommand(doctorCmd)
}
