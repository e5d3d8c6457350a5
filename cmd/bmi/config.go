// ABOUTME: CLI commands for showing and changing configuration.
// ABOUTME: Reads and writes ~/.config/bmi/config.json.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/bmi/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	Long: `Show or change configuration.

KEYS:

  backend    sqlite (default), markdown, or charm
  data_dir   data directory (default ~/.local/share/bmi)
  units      metric or imperial (default from locale)

EXAMPLES:

  bmi config show
  bmi config set backend markdown
  bmi config set units imperial`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)

		fmt.Fprintf(out, "%s %s\n", faint.Sprint("config:  "), config.GetConfigPath())
		fmt.Fprintf(out, "%s %s\n", faint.Sprint("backend: "), cfg.GetBackend())
		fmt.Fprintf(out, "%s %s\n", faint.Sprint("data_dir:"), cfg.GetDataDir())
		fmt.Fprintf(out, "%s %s\n", faint.Sprint("units:   "), cfg.GetUnits())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Valid keys: backend (` + strings.Join(config.Backends, ", ") + `), data_dir, units (metric, imperial).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		color.Green("✓ Set %s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
