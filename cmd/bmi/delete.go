// ABOUTME: CLI command for deleting a saved measurement.
// ABOUTME: Supports deletion by full ID or ID prefix across adult and minor history.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/bmi/internal/storage"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a saved measurement",
	Long: `Delete a saved measurement by its ID or ID prefix.

You can use either the full UUID or just the first few characters (prefix).
The ID prefix is shown in the first column of 'bmi history list' output.

EXAMPLES:

  bmi delete abc12345                    # Delete by 8-char prefix
  bmi rm abc1                            # Short prefix (if unique)

CAUTION:

  This permanently deletes the measurement. There is no undo.
  If the prefix matches more than one measurement, nothing is deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}

		if err := r.DeleteMeasurement(args[0]); err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				return fmt.Errorf("measurement not found: %s", args[0])
			case errors.Is(err, storage.ErrAmbiguous):
				return fmt.Errorf("prefix %s matches more than one measurement; use more characters", args[0])
			}
			return fmt.Errorf("failed to delete measurement: %w", err)
		}

		color.Yellow("✗ Deleted %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
