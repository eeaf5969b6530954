package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jvs-project/reportstore/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config <command>",
	Short: "Manage reportstore configuration",
	Long: `Manage the reportstore configuration file (default ` + config.DefaultPath + `).

Configuration options:
  report_dir        - Directory holding one subdirectory per host (absolute)
  inbox_dir         - Directory watched by "reportstore watch" (absolute)
  metrics_textfile  - Prometheus textfile written after each command
  logging.level     - debug, info, warn, error
  logging.format    - json, text

Available commands:
  show              - Show effective configuration
  set <key> <value> - Set a configuration value
  get <key>         - Get a configuration value`,
	DisableFlagsInUseLine: true,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long:  "Show the configuration after environment and flag overrides are applied.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(resolvedConfigPath())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if reportDir != "" {
			cfg.ReportDir = reportDir
		}

		if jsonOutput {
			return outputJSON(cfg)
		}

		fmt.Println("# reportstore configuration")
		fmt.Printf("# Location: %s\n\n", resolvedConfigPath())
		for _, key := range config.Keys {
			value, _ := cfg.Get(key)
			if value == "" {
				value = "(not set)"
			}
			fmt.Printf("%s: %s\n", key, value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the configuration file.

Examples:
  reportstore config set report_dir /srv/reports
  reportstore config set logging.format text`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolvedConfigPath()
		cfg, err := config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		key, value := args[0], args[1]
		if err := cfg.Set(key, value); err != nil {
			return fmt.Errorf("set config: %w", err)
		}
		if err := config.Save(path, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(resolvedConfigPath())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if reportDir != "" {
			cfg.ReportDir = reportDir
		}

		key := args[0]
		value, err := cfg.Get(key)
		if err != nil {
			return fmt.Errorf("get config: %w", err)
		}
		if value == "" {
			fmt.Printf("%s (not set)\n", key)
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}
