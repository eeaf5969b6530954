package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jvs-project/reportstore/internal/inbox"
	"github.com/jvs-project/reportstore/pkg/logging"
)

var (
	watchInbox    string
	watchDebounce time.Duration
	watchOnce     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Store reports dropped into the inbox directory",
	Long: `Watch inbox_dir and store every report file (*.json, *.yaml, *.yml)
that appears there. Stored files are removed from the inbox; files that
cannot be decoded or name an invalid host are renamed with a .rejected
suffix. Files already present at start are processed first.

Runs until interrupted. With --once the inbox is drained and the command
exits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cfg, err := openStore()
		if err != nil {
			return err
		}
		defer flushMetrics(cfg)

		dir := cfg.InboxDir
		if watchInbox != "" {
			dir = watchInbox
		}
		if dir == "" {
			return fmt.Errorf("no inbox directory: set inbox_dir or pass --inbox")
		}

		w := inbox.New(dir, s, logging.Global())
		w.Debounce = watchDebounce

		if watchOnce {
			n, err := w.Drain()
			if err != nil {
				return err
			}
			if err := outputJSON(map[string]any{"inbox": dir, "stored": n}); err != nil {
				return err
			}
			if !jsonOutput {
				fmt.Printf("Stored %d report(s) from %s\n", n, dir)
			}
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logging.Info("Watching inbox", map[string]any{"path": dir, "report_dir": cfg.ReportDir})
		return w.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchInbox, "inbox", "", "inbox directory (overrides inbox_dir)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", inbox.DefaultDebounce, "quiet period before a file is picked up")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "process files already in the inbox and exit")
	rootCmd.AddCommand(watchCmd)
}
