// ABOUTME: Tests for the LMS percentile engine and reference table.
// ABOUTME: Covers interpolation, monotonicity, clamping, and domain errors.
package percentile

import (
	"errors"
	"math"
	"testing"

	"github.com/harperreed/bmi/internal/classify"
	"github.com/harperreed/bmi/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableCoversWindow(t *testing.T) {
	tbl := Default()
	for _, sex := range []models.Sex{models.SexMale, models.SexFemale} {
		first, last := tbl.Range(sex)
		assert.Equal(t, MinAgeMonths, first, "first month for %s", sex)
		assert.Equal(t, MaxAgeMonths, last, "last month for %s", sex)
	}
	assert.NotEmpty(t, tbl.Source)
}

func TestLookupExactAndInterpolated(t *testing.T) {
	tbl := Default()

	exact, err := tbl.Lookup(models.SexMale, 120)
	require.NoError(t, err)
	assert.InDelta(t, 16.4, exact.M, 1e-9)

	lo, _ := tbl.Lookup(models.SexMale, 108)
	hi, _ := tbl.Lookup(models.SexMale, 120)
	mid, err := tbl.Lookup(models.SexMale, 114)
	require.NoError(t, err)
	assert.InDelta(t, (lo.L+hi.L)/2, mid.L, 1e-9)
	assert.InDelta(t, (lo.M+hi.M)/2, mid.M, 1e-9)
	assert.InDelta(t, (lo.S+hi.S)/2, mid.S, 1e-9)
}

func TestMedianIsFiftiethPercentile(t *testing.T) {
	lms, err := Default().Lookup(models.SexFemale, 144)
	require.NoError(t, err)

	p, err := Compute(models.SexFemale, 144, lms.M)
	require.NoError(t, err)
	assert.InDelta(t, 50, p, 1e-9)
}

func TestReferenceScenarioOverweight(t *testing.T) {
	bmi := 40 / (1.4 * 1.4)
	p, err := Compute(models.SexMale, 115, bmi)
	require.NoError(t, err)

	band, err := classify.Minor(p)
	require.NoError(t, err)
	assert.Equal(t, classify.MinorOverweight, band.Key, "percentile %.2f", p)
	assert.InDelta(t, 96.5, p, 0.05)
}

func TestFemaleBands(t *testing.T) {
	tests := []struct {
		bmi  float64
		want classify.Key
	}{
		{13.5, classify.MinorUnderweight},
		{17, classify.MinorHealthy},
		{30, classify.MinorObesity},
	}

	for _, tt := range tests {
		p, err := Compute(models.SexFemale, 150, tt.bmi)
		require.NoError(t, err)
		band, err := classify.Minor(p)
		require.NoError(t, err)
		assert.Equal(t, tt.want, band.Key, "bmi %.1f -> percentile %.3f", tt.bmi, p)
	}
}

func TestMonotonicInBMI(t *testing.T) {
	for _, sex := range []models.Sex{models.SexMale, models.SexFemale} {
		for _, months := range []int{60, 61, 115, 150, 200, 228} {
			lms, err := Default().Lookup(sex, months)
			require.NoError(t, err)

			// Stay inside the unclamped region of the curve.
			prev := -1.0
			for bmi := 0.8 * lms.M; bmi <= 1.4*lms.M; bmi += 0.1 {
				p, err := Compute(sex, months, bmi)
				require.NoError(t, err)
				require.Greater(t, p, prev, "%s %d months bmi %.2f", sex, months, bmi)
				prev = p
			}
		}
	}
}

func TestClamp(t *testing.T) {
	low, err := Compute(models.SexMale, 60, 10)
	require.NoError(t, err)
	assert.Equal(t, MinPercentile, low)

	high, err := Compute(models.SexMale, 60, 60)
	require.NoError(t, err)
	assert.Equal(t, MaxPercentile, high)
}

func TestDomainErrors(t *testing.T) {
	_, err := Compute(models.SexMale, 240, 20)
	assert.True(t, errors.Is(err, models.ErrOutOfRange), "240 months: %v", err)

	_, err = Compute(models.SexFemale, 59, 20)
	assert.True(t, errors.Is(err, models.ErrOutOfRange), "59 months: %v", err)

	_, err = Compute(models.Sex("other"), 120, 20)
	assert.True(t, errors.Is(err, models.ErrInvalidInput), "bad sex: %v", err)

	_, err = Compute(models.SexMale, 120, 0)
	assert.True(t, errors.Is(err, models.ErrInvalidInput), "zero bmi: %v", err)

	_, err = Compute(models.SexMale, 120, math.NaN())
	assert.True(t, errors.Is(err, models.ErrInvalidInput), "nan bmi: %v", err)
}

func TestTruncateKeepsBand(t *testing.T) {
	assert.Equal(t, 96.9, Truncate(96.96, 1))
	assert.Equal(t, 96.999, Truncate(96.9999, 3))
	assert.Equal(t, MaxPercentile, Truncate(MaxPercentile, 3))
	assert.Equal(t, MinPercentile, Truncate(MinPercentile, 3))
	assert.Equal(t, 12.5, Truncate(12.5, 1))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{MinPercentile, "<0.1"},
		{MaxPercentile, ">99.9"},
		{96.96, "96.9"},
		{96.5, "96.5"},
		{50, "50.0"},
		{99.9, "99.9"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.p), "Format(%v)", tt.p)
	}
}

func TestIdempotent(t *testing.T) {
	a, _ := Compute(models.SexFemale, 173, 21.7)
	b, _ := Compute(models.SexFemale, 173, 21.7)
	assert.Equal(t, math.Float64bits(a), math.Float64bits(b))
}

func TestLMSZeroPower(t *testing.T) {
	p := LMS{L: 0, M: 16, S: 0.1}
	assert.InDelta(t, math.Log(2)/0.1, p.Z(32), 1e-12)
	assert.InDelta(t, 0, p.Z(16), 1e-12)
}

func TestNormalCDF(t *testing.T) {
	assert.InDelta(t, 0.5, NormalCDF(0), 1e-15)
	assert.InDelta(t, 0.8413447, NormalCDF(1), 1e-6)
	assert.InDelta(t, 0.0227501, NormalCDF(-2), 1e-6)
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "male: [unclosed"},
		{"missing female", "male:\n  - {month: 60, l: -1, m: 15, s: 0.1}\n"},
		{"descending months", "male:\n  - {month: 72, l: -1, m: 15, s: 0.1}\n  - {month: 60, l: -1, m: 15, s: 0.1}\nfemale:\n  - {month: 60, l: -1, m: 15, s: 0.1}\n"},
		{"zero median", "male:\n  - {month: 60, l: -1, m: 0, s: 0.1}\nfemale:\n  - {month: 60, l: -1, m: 15, s: 0.1}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestCustomTableLookupOutOfRange(t *testing.T) {
	tbl, err := ParseTable([]byte("source: test\nmale:\n  - {month: 60, l: -1, m: 15, s: 0.1}\n  - {month: 72, l: -1, m: 16, s: 0.1}\nfemale:\n  - {month: 60, l: -1, m: 15, s: 0.1}\n"))
	require.NoError(t, err)

	lms, err := tbl.Lookup(models.SexMale, 66)
	require.NoError(t, err)
	assert.InDelta(t, 15.5, lms.M, 1e-9)

	_, err = tbl.Lookup(models.SexFemale, 66)
	assert.True(t, errors.Is(err, models.ErrOutOfRange))

	_, err = tbl.Percentile(models.SexFemale, 120, 16)
	assert.True(t, errors.Is(err, models.ErrOutOfRange))
}
