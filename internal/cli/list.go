package cli

import (
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jvs-project/reportstore/pkg/color"
)

type hostSummary struct {
	Host    string `json:"host"`
	Reports int    `json:"reports"`
	Latest  string `json:"latest,omitempty"`
}

var listCmd = &cobra.Command{
	Use:   "list [host]",
	Short: "List hosts, or the reports of one host",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore()
		if err != nil {
			return err
		}
		p := message.NewPrinter(language.English)

		if len(args) == 1 {
			files, err := s.List(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(files)
			}
			for _, f := range files {
				p.Printf("%s  %12d bytes  %s\n", f.Name, f.Size, color.Dim(f.ModTime.UTC().Format(time.RFC3339)))
			}
			return nil
		}

		hosts, err := s.Hosts()
		if err != nil {
			return err
		}
		summaries := make([]hostSummary, 0, len(hosts))
		for _, host := range hosts {
			files, err := s.List(host)
			if err != nil {
				return err
			}
			sum := hostSummary{Host: host, Reports: len(files)}
			if len(files) > 0 {
				sum.Latest = files[len(files)-1].Name
			}
			summaries = append(summaries, sum)
		}
		if jsonOutput {
			return outputJSON(summaries)
		}
		for _, sum := range summaries {
			p.Printf("%s %8d reports  %s\n", color.Host(p.Sprintf("%-30s", sum.Host)), sum.Reports, color.Dim(sum.Latest))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
