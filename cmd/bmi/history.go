// ABOUTME: CLI commands for listing, clearing, and charting measurement history.
// ABOUTME: Lists are most recent first; charts read oldest first.
package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/bmi/internal/models"
	"github.com/harperreed/bmi/internal/percentile"
	"github.com/harperreed/bmi/internal/render"
	"github.com/spf13/cobra"
)

var (
	historyKind string
	listLimit   int
	chartLimit  int
	clearYes    bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"h"},
	Short:   "Show and manage saved measurements",
	Long: `Show and manage saved measurements.

COMMANDS:

  list     List measurements, most recent first
  clear    Delete adult, minor, or all measurements
  chart    Sparkline of BMI (adults) or percentile (minors) over time

Use --kind adult|minor|all to select which history to work on.`,
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List saved measurements",
	Long: `List saved measurements, most recent first.

OUTPUT FORMAT:

  Adults: ID  TIMESTAMP  BMI  CATEGORY  WEIGHT  HEIGHT
  Minors: ID  TIMESTAMP  BMI  PERCENTILE  SEX  AGE

  The ID is an 8-character prefix you can use with 'bmi delete'.

EXAMPLES:

  bmi history list
  bmi history list --kind adult -n 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(historyKind)
		if err != nil {
			return err
		}
		r, err := openRepo()
		if err != nil {
			return err
		}
		sys, err := unitSystem()
		if err != nil {
			return err
		}

		var adults []*models.AdultMeasurement
		var minors []*models.MinorMeasurement
		if kind != "minor" {
			if adults, err = r.ListAdultHistory(listLimit); err != nil {
				return fmt.Errorf("failed to list adults: %w", err)
			}
		}
		if kind != "adult" {
			if minors, err = r.ListMinorHistory(listLimit); err != nil {
				return fmt.Errorf("failed to list minors: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		if len(adults) == 0 && len(minors) == 0 {
			fmt.Fprintln(out, "No measurements found.")
			return nil
		}

		faint := color.New(color.Faint)
		if len(adults) > 0 {
			color.New(color.Bold).Fprintln(out, "Adults")
			for _, m := range adults {
				key := adultKey(m.BMI)
				fmt.Fprintf(out, "%s %s %5.2f %s %s %s\n",
					faint.Sprint(m.ID.String()[:8]),
					faint.Sprint(m.RecordedAt.Local().Format("2006-01-02 15:04")),
					m.BMI,
					bandColor(key).Sprint(padRight(bandLabel(key), 18)),
					formatWeight(m.WeightKg, sys),
					formatHeight(m.HeightCm, sys))
			}
		}
		if len(minors) > 0 {
			if len(adults) > 0 {
				fmt.Fprintln(out)
			}
			color.New(color.Bold).Fprintln(out, "Minors")
			for _, m := range minors {
				key := minorKey(m.Percentile)
				fmt.Fprintf(out, "%s %s %5.2f %s %s %s %dm\n",
					faint.Sprint(m.ID.String()[:8]),
					faint.Sprint(m.RecordedAt.Local().Format("2006-01-02 15:04")),
					m.BMI,
					"P"+padRight(percentile.Format(m.Percentile), 5),
					bandColor(key).Sprint(padRight(bandLabel(key), 15)),
					padRight(string(m.Sex), 6),
					m.AgeMonths)
			}
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete saved measurements",
	Long: `Delete saved measurements of the selected kind.

CAUTION:

  This permanently deletes history. There is no undo.
  Export first with 'bmi export json -o backup.json' to keep a copy.

EXAMPLES:

  bmi history clear --kind minor
  bmi history clear --kind all --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(historyKind)
		if err != nil {
			return err
		}

		if !clearYes {
			ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete all %s history? [y/N] ", kind))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
				return nil
			}
		}

		r, err := openRepo()
		if err != nil {
			return err
		}
		switch kind {
		case "adult":
			err = r.ClearAdultHistory()
		case "minor":
			err = r.ClearMinorHistory()
		default:
			err = r.ClearAll()
		}
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}

		logger.Info("history cleared", "kind", kind)
		color.Yellow("✗ Cleared %s history", kind)
		return nil
	},
}

var historyChartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Chart BMI or percentile over time",
	Long: `Draw a sparkline of saved measurements, oldest first.

Adults chart BMI; minors chart the BMI-for-age percentile.

EXAMPLES:

  bmi history chart
  bmi history chart --kind minor -n 52`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(historyKind)
		if err != nil {
			return err
		}
		r, err := openRepo()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if kind != "minor" {
			adults, err := r.ListAdultHistory(chartLimit)
			if err != nil {
				return fmt.Errorf("failed to list adults: %w", err)
			}
			values := make([]float64, len(adults))
			for i, m := range adults {
				values[len(adults)-1-i] = m.BMI
			}
			printChart(out, "Adult BMI", values, "%.1f")
		}
		if kind != "adult" {
			minors, err := r.ListMinorHistory(chartLimit)
			if err != nil {
				return fmt.Errorf("failed to list minors: %w", err)
			}
			values := make([]float64, len(minors))
			for i, m := range minors {
				values[len(minors)-1-i] = percentile.Truncate(m.Percentile, 1)
			}
			printChart(out, "Minor percentile", values, "P%.1f")
		}
		return nil
	},
}

func printChart(w io.Writer, title string, values []float64, format string) {
	color.New(color.Bold).Fprintf(w, "%s ", title)
	if len(values) == 0 {
		fmt.Fprintln(w, color.New(color.Faint).Sprint("(no data)"))
		return
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	fmt.Fprintf(w, "%s  latest "+format+"  min "+format+"  max "+format+"\n",
		render.Sparkline(values), values[len(values)-1], lo, hi)
}

func parseKind(s string) (string, error) {
	switch k := strings.ToLower(strings.TrimSpace(s)); k {
	case "", "all":
		return "all", nil
	case "adult", "adults":
		return "adult", nil
	case "minor", "minors":
		return "minor", nil
	default:
		return "", fmt.Errorf("unknown kind: %s (use adult, minor, or all)", s)
	}
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyClearCmd, historyChartCmd} {
		c.Flags().StringVarP(&historyKind, "kind", "k", "all", "adult, minor, or all")
	}
	historyListCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max results per kind")
	historyChartCmd.Flags().IntVarP(&chartLimit, "limit", "n", 30, "number of most recent points")
	historyClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip confirmation prompt")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyChartCmd)
	rootCmd.AddCommand(historyCmd)
}
