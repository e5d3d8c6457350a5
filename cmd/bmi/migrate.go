// ABOUTME: CLI command for migrating history between storage backends.
// ABOUTME: Copies everything from the configured backend to another one.
package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/harperreed/bmi/internal/config"
	"github.com/harperreed/bmi/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo      string
	migrateDataDir string
	migrateDryRun  bool
	migrateForce   bool
	migrateSwitch  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy history to another storage backend",
	Long: `Copy all measurement history from the configured backend to another one.

BACKENDS:

  sqlite     Single database file (default)
  markdown   One file per measurement with YAML front matter
  charm      Charm KV with cloud sync

IMPORTANT:

  - The source backend is left untouched
  - A destination that already has data is refused unless --force is given
  - Duplicate IDs fail the migration
  - Run with --dry-run first to see what would be migrated

EXAMPLES:

  bmi migrate --to markdown --dry-run
  bmi migrate --to markdown --data-dir ~/notes/bmi --switch
  bmi migrate --to charm`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dstCfg := &config.Config{Backend: migrateTo, DataDir: cfg.DataDir, Units: cfg.Units}
		if migrateDataDir != "" {
			dstCfg.DataDir = migrateDataDir
		}
		if err := dstCfg.Set("backend", migrateTo); err != nil {
			return err
		}
		if dstCfg.GetBackend() == cfg.GetBackend() && dstCfg.GetDataDir() == cfg.GetDataDir() {
			return fmt.Errorf("source and destination are the same (%s at %s)", cfg.GetBackend(), cfg.GetDataDir())
		}

		src, err := openRepo()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			data, err := src.GetAllData()
			if err != nil {
				return fmt.Errorf("failed to read source: %w", err)
			}
			fmt.Fprintf(out, "Would migrate from %s to %s (%s):\n", cfg.GetBackend(), dstCfg.GetBackend(), dstCfg.GetDataDir())
			fmt.Fprintf(out, "  Adults: %d\n  Minors: %d\n", len(data.Adults), len(data.Minors))
			return nil
		}

		if dstCfg.GetBackend() == "markdown" && !migrateForce {
			for _, sub := range []string{"adults", "minors"} {
				nonEmpty, err := storage.IsDirNonEmpty(filepath.Join(dstCfg.GetDataDir(), sub))
				if err != nil {
					return err
				}
				if nonEmpty {
					return fmt.Errorf("destination %s already has data (use --force to merge)", filepath.Join(dstCfg.GetDataDir(), sub))
				}
			}
		}

		dst, err := dstCfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open destination: %w", err)
		}
		defer dst.Close()

		if !migrateForce {
			if has, err := hasData(dst); err != nil {
				return err
			} else if has {
				return fmt.Errorf("destination %s already has data (use --force to merge)", dstCfg.GetBackend())
			}
		}

		summary, err := storage.MigrateData(src, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("migration complete", "from", cfg.GetBackend(), "to", dstCfg.GetBackend(), "adults", summary.Adults, "minors", summary.Minors)

		color.Green("✓ Migrated to %s", dstCfg.GetBackend())
		fmt.Fprintf(out, "  Adults: %d\n  Minors: %d\n", summary.Adults, summary.Minors)

		if migrateSwitch {
			cfg.Backend = dstCfg.Backend
			cfg.DataDir = dstCfg.DataDir
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			color.Green("✓ Now using %s", dstCfg.GetBackend())
		}
		return nil
	},
}

func hasData(r storage.Repository) (bool, error) {
	adults, err := r.ListAdultHistory(1)
	if err != nil {
		return false, err
	}
	minors, err := r.ListMinorHistory(1)
	if err != nil {
		return false, err
	}
	return len(adults)+len(minors) > 0, nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend: sqlite, markdown, or charm (required)")
	migrateCmd.Flags().StringVar(&migrateDataDir, "data-dir", "", "destination data directory (default: configured data_dir)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "migrate into a destination that already has data")
	migrateCmd.Flags().BoolVar(&migrateSwitch, "switch", false, "use the destination as the configured backend afterwards")
	_ = migrateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(migrateCmd)
}
