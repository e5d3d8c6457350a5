// ABOUTME: LMS reference table for BMI-for-age, keyed by sex and age in months.
// ABOUTME: Parses the embedded YAML asset and interpolates between tabulated ages.
package percentile

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/harperreed/bmi/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed reference/bmi_for_age.yaml
var referenceYAML []byte

// LMS holds the Box-Cox power (L), median (M), and coefficient of
// variation (S) for one age point.
type LMS struct {
	L float64
	M float64
	S float64
}

// Point is one tabulated row of the reference table.
type Point struct {
	Month int     `yaml:"month"`
	L     float64 `yaml:"l"`
	M     float64 `yaml:"m"`
	S     float64 `yaml:"s"`
}

func (p Point) lms() LMS { return LMS{L: p.L, M: p.M, S: p.S} }

type tableFile struct {
	Source string  `yaml:"source"`
	Male   []Point `yaml:"male"`
	Female []Point `yaml:"female"`
}

// Table is an immutable reference table. It is safe for concurrent reads.
type Table struct {
	Source string
	rows   map[models.Sex][]Point
	index  map[models.Sex]map[int]int
}

var (
	defaultTable *Table
	defaultOnce  sync.Once
)

// Default returns the embedded WHO reference table, parsed on first use.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := ParseTable(referenceYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded reference table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// ParseTable parses a YAML reference table with male and female rows in
// strictly ascending month order.
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse reference table: %w", err)
	}

	t := &Table{
		Source: f.Source,
		rows:   make(map[models.Sex][]Point),
		index:  make(map[models.Sex]map[int]int),
	}
	for sex, points := range map[models.Sex][]Point{models.SexMale: f.Male, models.SexFemale: f.Female} {
		if len(points) == 0 {
			return nil, fmt.Errorf("reference table has no %s rows", sex)
		}
		idx := make(map[int]int, len(points))
		for i, p := range points {
			if p.M <= 0 || p.S <= 0 {
				return nil, fmt.Errorf("%s month %d: M and S must be positive", sex, p.Month)
			}
			if i > 0 && p.Month <= points[i-1].Month {
				return nil, fmt.Errorf("%s rows not in ascending month order at month %d", sex, p.Month)
			}
			idx[p.Month] = i
		}
		t.rows[sex] = points
		t.index[sex] = idx
	}
	return t, nil
}

// Range returns the first and last tabulated month for sex.
func (t *Table) Range(sex models.Sex) (int, int) {
	rows := t.rows[sex]
	if len(rows) == 0 {
		return 0, 0
	}
	return rows[0].Month, rows[len(rows)-1].Month
}

// Lookup returns the LMS parameters for sex at ageMonths, linearly
// interpolating L, M, and S between the two nearest tabulated ages.
func (t *Table) Lookup(sex models.Sex, ageMonths int) (LMS, error) {
	if !sex.Valid() {
		return LMS{}, &models.InvalidInputError{Op: "percentile.Lookup", Field: "sex", Value: string(sex), Reason: "must be male or female"}
	}
	rows := t.rows[sex]
	if i, ok := t.index[sex][ageMonths]; ok {
		return rows[i].lms(), nil
	}

	first, last := t.Range(sex)
	if ageMonths < first || ageMonths > last {
		return LMS{}, &models.OutOfRangeError{
			Op:    "percentile.Lookup",
			Field: "age_months",
			Value: float64(ageMonths),
			Min:   float64(first),
			Max:   float64(last),
		}
	}

	hi := sort.Search(len(rows), func(i int) bool { return rows[i].Month > ageMonths })
	a, b := rows[hi-1], rows[hi]
	f := float64(ageMonths-a.Month) / float64(b.Month-a.Month)
	return LMS{
		L: lerp(a.L, b.L, f),
		M: lerp(a.M, b.M, f),
		S: lerp(a.S, b.S, f),
	}, nil
}

func lerp(a, b, f float64) float64 {
	return a + (b-a)*f
}
