package core

import (
	"errors"
	"fmt"
	"time"
)

// Period identifies a calendar month as "YYYY-MM".
type Period string

var ErrInvalidPeriod = errors.New("invalid period, want YYYY-MM")

// ParsePeriod validates and normalizes a YYYY-MM string.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return Period(t.Format("2006-01")), nil
}

// CurrentPeriod returns the period of the given time.
func CurrentPeriod(now time.Time) Period {
	return Period(now.Format("2006-01"))
}

// Time returns the period as a date normalized to the first of the month (UTC).
func (p Period) Time() time.Time {
	t, err := time.Parse("2006-01", string(p))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (p Period) String() string { return string(p) }

// Previous returns the preceding month, handling year rollover.
func (p Period) Previous() Period {
	t := p.Time()
	year, month := t.Year(), int(t.Month())
	month--
	if month == 0 {
		month = 12
		year--
	}
	return Period(fmt.Sprintf("%04d-%02d", year, month))
}

// IsWinter reports whether the period's month falls in the heating
// season, October through April inclusive.
func (p Period) IsWinter() bool {
	month := int(p.Time().Month())
	return month >= 10 || month <= 4
}
