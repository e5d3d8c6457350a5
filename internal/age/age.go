// ABOUTME: Calendar-aware age calculation in whole years and whole months.
// ABOUTME: Also parses birth dates in the formats the entry forms accept.
package age

import (
	"strings"
	"time"

	"github.com/harperreed/bmi/internal/models"
)

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	"2006-01-02",
	"2/1/2006",
	"2-1-2006",
}

type ymd struct {
	y int
	m int
	d int
}

func dateOf(t time.Time) ymd {
	y, m, d := t.Date()
	return ymd{y, int(m), d}
}

func (a ymd) before(b ymd) bool {
	if a.y != b.y {
		return a.y < b.y
	}
	if a.m != b.m {
		return a.m < b.m
	}
	return a.d < b.d
}

func check(op string, birth, ref time.Time) (ymd, ymd, error) {
	b, r := dateOf(birth), dateOf(ref)
	if r.before(b) {
		return b, r, &models.InvalidDateError{
			Op:     op,
			Input:  birth.Format("2006-01-02"),
			Reason: "birth date is after reference date " + ref.Format("2006-01-02"),
		}
	}
	return b, r, nil
}

// Years returns the completed years between birth and ref. Time of day is
// ignored.
func Years(birth, ref time.Time) (int, error) {
	b, r, err := check("age.Years", birth, ref)
	if err != nil {
		return 0, err
	}
	years := r.y - b.y
	if r.m < b.m || (r.m == b.m && r.d < b.d) {
		years--
	}
	return years, nil
}

// Months returns the completed months between birth and ref. A month is
// complete once the day of month reaches the birth day, so a birth on the
// 31st completes no month in a 30-day month.
func Months(birth, ref time.Time) (int, error) {
	b, r, err := check("age.Months", birth, ref)
	if err != nil {
		return 0, err
	}
	months := (r.y-b.y)*12 + (r.m - b.m)
	if r.d < b.d {
		months--
	}
	return months, nil
}

// ParseDate parses YYYY-MM-DD, DD/MM/YYYY, or DD-MM-YYYY.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &models.InvalidDateError{
		Op:     "age.ParseDate",
		Input:  s,
		Reason: "use YYYY-MM-DD or DD/MM/YYYY",
	}
}
