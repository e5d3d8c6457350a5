// ABOUTME: CLI commands for adult BMI and minor BMI-for-age calculations.
// ABOUTME: Optionally saves results to the configured history store.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/bmi/internal/age"
	"github.com/harperreed/bmi/internal/engine"
	"github.com/harperreed/bmi/internal/models"
	"github.com/harperreed/bmi/internal/units"
	"github.com/spf13/cobra"
)

var (
	adultSave bool
	adultAt   string

	minorSex    string
	minorBirth  string
	minorMonths int
	minorYears  float64
	minorDate   string
	minorSave   bool
)

var adultCmd = &cobra.Command{
	Use:     "adult <weight> <height>",
	Aliases: []string{"a"},
	Short:   "Calculate adult BMI",
	Long: `Calculate adult Body Mass Index and its WHO category.

Metric input is kilograms and centimeters. Imperial input is pounds and
either total inches or feet and inches (5'9", 5ft9in).

EXAMPLES:

  bmi adult 70 175
  bmi adult 70,5 175                     # Comma decimals are accepted
  bmi adult 154 5'9" --units imperial
  bmi adult 82 180 --save --at "2025-01-31 08:30"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sys, err := unitSystem()
		if err != nil {
			return err
		}
		weight, err := units.ParseDecimal(args[0])
		if err != nil {
			return err
		}
		height, err := parseHeight(args[1], sys)
		if err != nil {
			return err
		}

		r, err := engine.EvaluateAdult(engine.AdultInput{Weight: weight, Height: height, Units: sys})
		if err != nil {
			return err
		}
		logger.Debug("adult evaluated", "bmi", r.BMI, "band", r.Key, "position", r.Position)

		printAdult(cmd.OutOrStdout(), r, sys)

		if !adultSave {
			return nil
		}
		m := engine.ToAdultMeasurement(r)
		if adultAt != "" {
			t, err := parseTime(adultAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", adultAt)
			}
			m.WithRecordedAt(t)
		}
		return saveAdult(m)
	},
}

func saveAdult(m *models.AdultMeasurement) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	if err := r.SaveAdult(m); err != nil {
		return fmt.Errorf("failed to save measurement: %w", err)
	}
	color.Green("✓ Saved %s", color.New(color.Faint).Sprint(m.ID.String()[:8]))
	return nil
}

var minorCmd = &cobra.Command{
	Use:     "minor <weight> <height>",
	Aliases: []string{"child", "m"},
	Short:   "Calculate BMI-for-age percentile (ages 5-19)",
	Long: `Calculate the BMI-for-age percentile of a child or adolescent using the
WHO 2007 growth reference (ages 5 to 19).

Age comes from --birth (YYYY-MM-DD, DD/MM/YYYY or DD-MM-YYYY) measured at
--date (default today), or directly from --months or --years.

EXAMPLES:

  bmi minor 40 140 --sex male --birth 2016-01-11
  bmi minor 40 140 --sex m --birth 11/01/2016 --date 2025-08-21
  bmi minor 30 145 --sex female --months 150
  bmi minor 30 145 --sex female --years 12.5
  bmi minor 88 4'7" --sex f --months 120 --units imperial --save`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sys, err := unitSystem()
		if err != nil {
			return err
		}
		sex, err := models.ParseSex(minorSex)
		if err != nil {
			return err
		}
		weight, err := units.ParseDecimal(args[0])
		if err != nil {
			return err
		}
		height, err := parseHeight(args[1], sys)
		if err != nil {
			return err
		}

		in := engine.MinorInput{Weight: weight, Height: height, Units: sys, Sex: sex, AgeMonths: minorMonths, AgeYears: minorYears}
		switch {
		case minorBirth != "":
			birth, err := age.ParseDate(minorBirth)
			if err != nil {
				return err
			}
			in.BirthDate = &birth
		case minorMonths == 0 && minorYears == 0:
			return fmt.Errorf("one of --birth, --months or --years is required")
		}
		if minorDate != "" {
			if in.ReferenceDate, err = age.ParseDate(minorDate); err != nil {
				return err
			}
		}

		r, err := engine.EvaluateMinor(in)
		if err != nil {
			return err
		}
		logger.Debug("minor evaluated", "months", r.AgeMonths, "z", r.ZScore, "percentile", r.Percentile, "band", r.Key)

		printMinor(cmd.OutOrStdout(), r, sys)

		if !minorSave {
			return nil
		}
		m := engine.ToMinorMeasurement(r)
		if !in.ReferenceDate.IsZero() {
			m.WithRecordedAt(in.ReferenceDate)
		}
		rp, err := openRepo()
		if err != nil {
			return err
		}
		if err := rp.SaveMinor(m); err != nil {
			return fmt.Errorf("failed to save measurement: %w", err)
		}
		color.Green("✓ Saved %s", color.New(color.Faint).Sprint(m.ID.String()[:8]))
		return nil
	},
}

var ageDate string

var ageCmd = &cobra.Command{
	Use:   "age <birth-date>",
	Short: "Show age in completed years and months",
	Long: `Show the age in completed years and months between a birth date and
--date (default today). A month completes once the day of month reaches
the birth day.

EXAMPLES:

  bmi age 2016-01-11
  bmi age 31/01/2020 --date 2020-02-29`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		birth, err := age.ParseDate(args[0])
		if err != nil {
			return err
		}
		ref := time.Now()
		if ageDate != "" {
			if ref, err = age.ParseDate(ageDate); err != nil {
				return err
			}
		}

		years, err := age.Years(birth, ref)
		if err != nil {
			return err
		}
		months, err := age.Months(birth, ref)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d years (%d months)\n", years, months)
		if months < 60 || months > 228 {
			fmt.Fprintln(out, color.YellowString("Outside the 5-19 year BMI-for-age range; use 'bmi adult' from 19 years on."))
		}
		return nil
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <value> <from> <to>",
	Short: "Convert between kg/lb and cm/in",
	Long: `Convert a body measurement between units.

UNITS:

  kg, lb     weight
  cm, in     height
  ft_in      feet and inches (target only, from cm)

EXAMPLES:

  bmi convert 70 kg lb
  bmi convert 175 cm ft_in
  bmi convert 69 in cm`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := units.ParseDecimal(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if args[1] == "cm" && args[2] == "ft_in" {
			fmt.Fprintf(out, "%s cm = %s\n", args[0], formatHeight(v, units.Imperial))
			return nil
		}

		got, err := units.Convert(v, args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%.2f %s = %.2f %s\n", v, args[1], got, args[2])
		return nil
	},
}

func init() {
	adultCmd.Flags().BoolVarP(&adultSave, "save", "s", false, "save the result to history")
	adultCmd.Flags().StringVar(&adultAt, "at", "", "timestamp for the saved record (YYYY-MM-DD HH:MM)")

	minorCmd.Flags().StringVar(&minorSex, "sex", "", "male or female (required)")
	minorCmd.Flags().StringVarP(&minorBirth, "birth", "b", "", "birth date")
	minorCmd.Flags().IntVar(&minorMonths, "months", 0, "age in completed months, when --birth is not given")
	minorCmd.Flags().Float64Var(&minorYears, "years", 0, "age in years (e.g. 9.5), when --birth is not given")
	minorCmd.MarkFlagsMutuallyExclusive("birth", "months", "years")
	minorCmd.Flags().StringVar(&minorDate, "date", "", "measurement date (default today)")
	minorCmd.Flags().BoolVarP(&minorSave, "save", "s", false, "save the result to history")
	_ = minorCmd.MarkFlagRequired("sex")

	ageCmd.Flags().StringVar(&ageDate, "date", "", "reference date (default today)")

	rootCmd.AddCommand(adultCmd)
	rootCmd.AddCommand(minorCmd)
	rootCmd.AddCommand(ageCmd)
	rootCmd.AddCommand(convertCmd)
}
