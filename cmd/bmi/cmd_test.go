// ABOUTME: Tests for CLI helper functions and command execution.
// ABOUTME: Runs commands against a temp XDG data directory and checks output and storage.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harperreed/bmi/internal/classify"
	"github.com/harperreed/bmi/internal/storage"
	"github.com/harperreed/bmi/internal/units"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func resetFlags() {
	verbose = false
	unitsFlag = ""

	adultSave = false
	adultAt = ""
	minorSex = ""
	minorBirth = ""
	minorMonths = 0
	minorYears = 0
	minorDate = ""
	minorSave = false
	ageDate = ""

	historyKind = "all"
	listLimit = 20
	chartLimit = 30
	clearYes = false

	exportOutput = ""
	exportSince = ""

	migrateTo = ""
	migrateDataDir = ""
	migrateDryRun = false
	migrateForce = false
	migrateSwitch = false

	resetChanged(rootCmd)
}

// resetChanged clears parse state left on flags by a previous Execute, so
// required and mutually exclusive flag checks see only the current args.
func resetChanged(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	c.PersistentFlags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	for _, sub := range c.Commands() {
		resetChanged(sub)
	}
}

// setupTestCLI points XDG directories at temp dirs and returns the path of
// the SQLite database the CLI will use.
func setupTestCLI(t *testing.T) string {
	t.Helper()

	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MEASUREMENT", "")
	t.Setenv("LANG", "de_DE.UTF-8")

	resetFlags()
	t.Cleanup(func() {
		_ = closeRepo()
		resetFlags()
	})

	return filepath.Join(dataHome, "bmi", "bmi.db")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	_ = closeRepo()
	return buf.String(), err
}

func openTestDB(t *testing.T, path string) *storage.DB {
	t.Helper()
	db, err := storage.Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"date and time with space", "2025-01-31 08:30", false},
		{"date and time with T", "2025-01-31T08:30", false},
		{"date only", "2025-01-31", false},
		{"RFC3339", "2025-01-31T08:30:00Z", false},
		{"invalid format", "31-01-2025", true},
		{"empty string", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTime(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTime(%q) unexpected error: %v", tt.input, err)
			}
			if result.Year() != 2025 || result.Day() != 31 {
				t.Errorf("parseTime(%q) = %v", tt.input, result)
			}
		})
	}
}

func TestParseHeight(t *testing.T) {
	tests := []struct {
		input   string
		sys     units.System
		want    float64
		wantErr bool
	}{
		{"175", units.Metric, 175, false},
		{"175,5", units.Metric, 175.5, false},
		{"69", units.Imperial, 69, false},
		{"5'9\"", units.Imperial, 69, false},
		{"5'9", units.Imperial, 69, false},
		{"5ft9in", units.Imperial, 69, false},
		{"6'", units.Imperial, 72, false},
		{"5'9.5\"", units.Imperial, 69.5, false},
		{"x'9", units.Imperial, 0, true},
		{"tall", units.Metric, 0, true},
	}

	for _, tt := range tests {
		got, err := parseHeight(tt.input, tt.sys)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseHeight(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseHeight(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseHeight(%q, %s) = %v, want %v", tt.input, tt.sys, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Errorf("padRight = %q", got)
	}
}

func TestParseKind(t *testing.T) {
	tests := map[string]string{
		"":       "all",
		"all":    "all",
		"Adults": "adult",
		"minor":  "minor",
	}
	for in, want := range tests {
		got, err := parseKind(in)
		if err != nil || got != want {
			t.Errorf("parseKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := parseKind("pets"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestBandHelpers(t *testing.T) {
	if got := adultKey(22.86); got != classify.AdultNormal {
		t.Errorf("adultKey(22.86) = %q", got)
	}
	if got := minorKey(90); got != classify.MinorOverweight {
		t.Errorf("minorKey(90) = %q", got)
	}
	if got := minorKey(120); got != "" {
		t.Errorf("minorKey(120) = %q, want empty", got)
	}
	if got := bandLabel(classify.AdultObesity2); got != "Obesity class II" {
		t.Errorf("bandLabel = %q", got)
	}
	if got := bandLabel("mystery"); got != "mystery" {
		t.Errorf("bandLabel fallback = %q", got)
	}
}

func TestFormatMeasurements(t *testing.T) {
	if got := formatWeight(70, units.Metric); got != "70.0 kg" {
		t.Errorf("formatWeight metric = %q", got)
	}
	if got := formatWeight(70, units.Imperial); got != "154.3 lb" {
		t.Errorf("formatWeight imperial = %q", got)
	}
	if got := formatHeight(175, units.Metric); got != "175.0 cm" {
		t.Errorf("formatHeight metric = %q", got)
	}
	if got := formatHeight(175, units.Imperial); got != "5'8.9\"" {
		t.Errorf("formatHeight imperial = %q", got)
	}
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	for in, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "": false} {
		got, err := confirm(strings.NewReader(in), &out, "? ")
		if err != nil {
			t.Fatalf("confirm(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("confirm(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRootCmd(t *testing.T) {
	if rootCmd.Use != "bmi" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "bmi")
	}
	for _, name := range []string{"verbose", "units"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected --%s persistent flag", name)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"adult", "minor", "age", "convert", "history", "delete", "export",
		"import", "migrate", "mcp", "config", "sync", "install-skill"}

	registered := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("Expected %s command to be registered", name)
		}
	}

	subs := map[string]bool{}
	for _, cmd := range historyCmd.Commands() {
		subs[cmd.Name()] = true
	}
	for _, name := range []string{"list", "clear", "chart"} {
		if !subs[name] {
			t.Errorf("Expected history %s subcommand", name)
		}
	}
}

func TestAdultCmd(t *testing.T) {
	dbPath := setupTestCLI(t)

	out, err := execute(t, "adult", "70", "175")
	if err != nil {
		t.Fatalf("adult command failed: %v", err)
	}
	if !strings.Contains(out, "BMI 22.86") || !strings.Contains(out, "Normal") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Error("expected no database to be created without --save")
	}
}

func TestAdultCmdImperial(t *testing.T) {
	setupTestCLI(t)

	out, err := execute(t, "adult", "264.555", "5'7\"", "--units", "imperial")
	if err != nil {
		t.Fatalf("adult command failed: %v", err)
	}
	if !strings.Contains(out, "Obesity class III") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "lb") {
		t.Errorf("expected imperial display:\n%s", out)
	}
}

func TestAdultCmdSave(t *testing.T) {
	dbPath := setupTestCLI(t)

	if _, err := execute(t, "adult", "70", "175", "--save", "--at", "2025-01-31 08:30"); err != nil {
		t.Fatalf("adult --save failed: %v", err)
	}

	adults, err := openTestDB(t, dbPath).ListAdultHistory(0)
	if err != nil {
		t.Fatalf("ListAdultHistory failed: %v", err)
	}
	if len(adults) != 1 {
		t.Fatalf("Expected 1 adult, got %d", len(adults))
	}
	if adults[0].RecordedAt.Local().Format("2006-01-02 15:04") != "2025-01-31 08:30" {
		t.Errorf("RecordedAt = %v", adults[0].RecordedAt)
	}
}

func TestAdultCmdErrors(t *testing.T) {
	setupTestCLI(t)

	if _, err := execute(t, "adult", "70", "0"); err == nil {
		t.Error("expected error for zero height")
	}
	if _, err := execute(t, "adult", "heavy", "175"); err == nil {
		t.Error("expected error for non-numeric weight")
	}
	if _, err := execute(t, "adult", "70", "175", "--units", "stone"); err == nil {
		t.Error("expected error for unknown unit system")
	}
	resetFlags()
	_, err := execute(t, "adult", "70", "1.75")
	if err == nil || !strings.Contains(err.Error(), "metres") {
		t.Errorf("expected metres hint for a height of 1.75, got %v", err)
	}
	if _, err := execute(t, "adult", "1200", "175"); err == nil {
		t.Error("expected error for implausible weight")
	}
}

func TestMinorCmd(t *testing.T) {
	dbPath := setupTestCLI(t)

	out, err := execute(t, "minor", "40", "140", "--sex", "male", "--birth", "2016-01-11", "--date", "2025-08-21", "--save")
	if err != nil {
		t.Fatalf("minor command failed: %v", err)
	}
	if !strings.Contains(out, "115 months") || !strings.Contains(out, "Overweight") {
		t.Errorf("unexpected output:\n%s", out)
	}

	minors, err := openTestDB(t, dbPath).ListMinorHistory(0)
	if err != nil {
		t.Fatalf("ListMinorHistory failed: %v", err)
	}
	if len(minors) != 1 || minors[0].AgeMonths != 115 {
		t.Fatalf("unexpected minors: %+v", minors)
	}
}

func TestMinorCmdErrors(t *testing.T) {
	setupTestCLI(t)

	if _, err := execute(t, "minor", "40", "140", "--sex", "male"); err == nil {
		t.Error("expected error without --birth or --months")
	}
	resetFlags()
	if _, err := execute(t, "minor", "70", "175", "--sex", "male", "--months", "300"); err == nil {
		t.Error("expected error for age beyond the reference range")
	}
	resetFlags()
	if _, err := execute(t, "minor", "40", "140", "--sex", "x", "--months", "120"); err == nil {
		t.Error("expected error for invalid sex")
	}
	resetFlags()
	_, err := execute(t, "minor", "40", "140", "--sex", "male", "--birth", "2016-01-11", "--months", "120")
	if err == nil || !strings.Contains(err.Error(), "months") {
		t.Errorf("expected --birth and --months to conflict, got %v", err)
	}
	resetFlags()
	if _, err := execute(t, "minor", "40", "140", "--sex", "male", "--months", "115", "--years", "9.6"); err == nil {
		t.Error("expected --months and --years to conflict")
	}
}

func TestMinorCmdYears(t *testing.T) {
	setupTestCLI(t)

	out, err := execute(t, "minor", "40", "140", "--sex", "male", "--years", "9.6")
	if err != nil {
		t.Fatalf("minor --years failed: %v", err)
	}
	if !strings.Contains(out, "9 years (115 months)") || !strings.Contains(out, "Overweight") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestAgeCmd(t *testing.T) {
	setupTestCLI(t)

	out, err := execute(t, "age", "2016-01-11", "--date", "2025-08-21")
	if err != nil {
		t.Fatalf("age command failed: %v", err)
	}
	if !strings.Contains(out, "9 years (115 months)") {
		t.Errorf("unexpected output: %q", out)
	}

	resetFlags()
	out, err = execute(t, "age", "2024-01-01", "--date", "2025-01-01")
	if err != nil {
		t.Fatalf("age command failed: %v", err)
	}
	if !strings.Contains(out, "Outside") {
		t.Errorf("expected range warning: %q", out)
	}

	resetFlags()
	if _, err := execute(t, "age", "2030-01-01", "--date", "2025-01-01"); err == nil {
		t.Error("expected error for birth date after reference date")
	}
}

func TestConvertCmd(t *testing.T) {
	setupTestCLI(t)

	out, err := execute(t, "convert", "70", "kg", "lb")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if !strings.Contains(out, "154.32 lb") {
		t.Errorf("unexpected output: %q", out)
	}

	out, err = execute(t, "convert", "175", "cm", "ft_in")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if !strings.Contains(out, "5'8.9\"") {
		t.Errorf("unexpected output: %q", out)
	}

	if _, err := execute(t, "convert", "70", "kg", "cm"); err == nil {
		t.Error("expected error for mismatched units")
	}
}

func seedHistory(t *testing.T) {
	t.Helper()
	for _, args := range [][]string{
		{"adult", "60", "175", "--save", "--at", "2025-01-01"},
		{"adult", "70", "175", "--save", "--at", "2025-02-01"},
		{"minor", "40", "140", "--sex", "female", "--months", "120", "--save"},
	} {
		resetFlags()
		if _, err := execute(t, args...); err != nil {
			t.Fatalf("seed %v failed: %v", args, err)
		}
	}
	resetFlags()
}

func TestHistoryListCmd(t *testing.T) {
	setupTestCLI(t)

	out, err := execute(t, "history", "list")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if !strings.Contains(out, "No measurements found.") {
		t.Errorf("expected empty message, got %q", out)
	}

	seedHistory(t)

	out, err = execute(t, "history", "list")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if !strings.Contains(out, "Adults") || !strings.Contains(out, "Minors") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Index(out, "2025-02-01") > strings.Index(out, "2025-01-01") {
		t.Errorf("expected most recent first:\n%s", out)
	}

	out, err = execute(t, "history", "list", "--kind", "adult", "-n", "1")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if strings.Contains(out, "Minors") || strings.Contains(out, "2025-01-01") {
		t.Errorf("expected only the latest adult:\n%s", out)
	}
}

func TestHistoryClearCmd(t *testing.T) {
	dbPath := setupTestCLI(t)
	seedHistory(t)

	if _, err := execute(t, "history", "clear", "--kind", "adult"); err != nil {
		t.Fatalf("history clear failed: %v", err)
	}
	db := openTestDB(t, dbPath)
	adults, _ := db.ListAdultHistory(0)
	if len(adults) != 2 {
		t.Fatalf("expected clear to be canceled, have %d adults", len(adults))
	}

	if _, err := execute(t, "history", "clear", "--kind", "adult", "--yes"); err != nil {
		t.Fatalf("history clear failed: %v", err)
	}
	adults, _ = db.ListAdultHistory(0)
	minors, _ := db.ListMinorHistory(0)
	if len(adults) != 0 || len(minors) != 1 {
		t.Errorf("after clear: %d adults, %d minors", len(adults), len(minors))
	}
}

func TestHistoryChartCmd(t *testing.T) {
	setupTestCLI(t)
	seedHistory(t)

	out, err := execute(t, "history", "chart")
	if err != nil {
		t.Fatalf("history chart failed: %v", err)
	}
	if !strings.Contains(out, "Adult BMI") || !strings.Contains(out, "latest 22.9") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "Minor percentile") {
		t.Errorf("expected minor chart:\n%s", out)
	}
}

func TestDeleteCmd(t *testing.T) {
	dbPath := setupTestCLI(t)
	seedHistory(t)

	db := openTestDB(t, dbPath)
	adults, _ := db.ListAdultHistory(0)
	prefix := adults[0].ID.String()[:8]

	if _, err := execute(t, "delete", prefix); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	adults, _ = db.ListAdultHistory(0)
	if len(adults) != 1 {
		t.Errorf("expected 1 adult left, got %d", len(adults))
	}

	_, err := execute(t, "delete", prefix)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestExportImportCmd(t *testing.T) {
	dbPath := setupTestCLI(t)
	seedHistory(t)

	backup := filepath.Join(t.TempDir(), "backup.json")
	if _, err := execute(t, "export", "json", "-o", backup); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	exportOutput = ""

	out, err := execute(t, "export", "markdown", "--since", "2025-01-15")
	if err != nil {
		t.Fatalf("markdown export failed: %v", err)
	}
	if !strings.Contains(out, "# BMI Export") || strings.Contains(out, "2025-01-01") {
		t.Errorf("unexpected markdown:\n%s", out)
	}

	if _, err := execute(t, "history", "clear", "--yes"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	out, err = execute(t, "import", backup)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "Adults: 2") || !strings.Contains(out, "Minors: 1") {
		t.Errorf("unexpected import output: %q", out)
	}

	adults, _ := openTestDB(t, dbPath).ListAdultHistory(0)
	if len(adults) != 2 {
		t.Errorf("expected 2 adults after import, got %d", len(adults))
	}
}

func TestExportInvalidFormat(t *testing.T) {
	setupTestCLI(t)

	if _, err := execute(t, "export", "csv"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestConfigCmd(t *testing.T) {
	setupTestCLI(t)

	if _, err := execute(t, "config", "set", "units", "imperial"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	out, err := execute(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "imperial") || !strings.Contains(out, "sqlite") {
		t.Errorf("unexpected config:\n%s", out)
	}

	out, err = execute(t, "adult", "154.32", "69")
	if err != nil {
		t.Fatalf("adult with configured units failed: %v", err)
	}
	if !strings.Contains(out, "BMI 22.79") {
		t.Errorf("expected imperial input from config:\n%s", out)
	}

	if _, err := execute(t, "config", "set", "backend", "postgres"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestMigrateCmd(t *testing.T) {
	setupTestCLI(t)
	seedHistory(t)
	dest := t.TempDir()

	out, err := execute(t, "migrate", "--to", "markdown", "--data-dir", dest, "--dry-run")
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if !strings.Contains(out, "Adults: 2") {
		t.Errorf("unexpected dry run output: %q", out)
	}
	if nonEmpty, _ := storage.IsDirNonEmpty(filepath.Join(dest, "adults")); nonEmpty {
		t.Error("dry run wrote files")
	}

	migrateDryRun = false
	if _, err := execute(t, "migrate", "--to", "markdown", "--data-dir", dest); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	md, err := storage.NewMarkdownStore(dest)
	if err != nil {
		t.Fatalf("NewMarkdownStore failed: %v", err)
	}
	adults, _ := md.ListAdultHistory(0)
	minors, _ := md.ListMinorHistory(0)
	if len(adults) != 2 || len(minors) != 1 {
		t.Errorf("migrated %d adults, %d minors", len(adults), len(minors))
	}

	if _, err := execute(t, "migrate", "--to", "markdown", "--data-dir", dest); err == nil {
		t.Error("expected refusal to migrate into a non-empty destination")
	}
}
