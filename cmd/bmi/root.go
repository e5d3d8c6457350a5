// ABOUTME: Root Cobra command for the bmi CLI.
// ABOUTME: Sets up logging, loads config, and manages the storage lifecycle.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/bmi/internal/config"
	"github.com/harperreed/bmi/internal/storage"
	"github.com/harperreed/bmi/internal/units"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	repo   storage.Repository
	logger = newLogger()

	verbose   bool
	unitsFlag string
)

var rootCmd = &cobra.Command{
	Use:   "bmi",
	Short: "BMI and BMI-for-age percentile calculator",
	Long: `bmi calculates adult Body Mass Index and BMI-for-age percentiles for
children and adolescents aged 5 to 19, and keeps a history of measurements.

QUICK START:

  $ bmi adult 70 175                                  # Adult BMI (kg, cm)
  $ bmi adult 154 5'9" --units imperial               # Pounds and feet/inches
  $ bmi minor 40 140 --sex male --birth 2016-01-11    # BMI-for-age percentile
  $ bmi adult 70 175 --save                           # Save to history
  $ bmi history list                                  # See saved measurements

INTERPRETATION:

  Adults    underweight <18.5, normal <25, overweight <30,
            obesity I <35, obesity II <40, obesity III >=40
  Minors    underweight <P3, healthy <P85, overweight <P97, obesity >=P97

STORAGE:

  History is stored in SQLite at ~/.local/share/bmi/bmi.db by default.
  Use 'bmi config set backend markdown' for plain files or 'charm' for
  Charm Cloud sync.

MCP INTEGRATION:

  Run 'bmi mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "bmi": { "command": "bmi", "args": ["mcp"] }
    }
  }`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logger.SetLevel(log.DebugLevel)
		} else {
			logger.SetLevel(log.WarnLevel)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger.Debug("config loaded", "path", config.GetConfigPath(), "backend", cfg.GetBackend())
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeRepo()
	},
}

func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "bmi",
		Level:  log.WarnLevel,
	})
}

// openRepo opens the configured backend on first use.
func openRepo() (storage.Repository, error) {
	if repo != nil {
		return repo, nil
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	r, err := cfg.OpenStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
	}
	logger.Debug("storage opened", "backend", cfg.GetBackend(), "data_dir", cfg.GetDataDir())
	repo = r
	return repo, nil
}

func closeRepo() error {
	if repo == nil {
		return nil
	}
	err := repo.Close()
	repo = nil
	return err
}

// unitSystem resolves --units, then config, then locale.
func unitSystem() (units.System, error) {
	if unitsFlag != "" {
		return units.ParseSystem(unitsFlag)
	}
	if cfg == nil {
		return config.LocaleUnits(), nil
	}
	return cfg.GetUnits(), nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&unitsFlag, "units", "u", "", "unit system: metric or imperial (default from config or locale)")
}
