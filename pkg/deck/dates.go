package deck

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const secondsPerDay = 86400

// MaxDays is the longest span, in days, a time.Duration can hold.
//
//nolint:gochecknoglobals // Derived constant
var MaxDays = float64(math.MaxInt64) / (secondsPerDay * float64(time.Second))

//nolint:gochecknoglobals // Lookup table for deck month names
var monthNames = map[string]time.Month{
	"JAN": time.January,
	"FEB": time.February,
	"MAR": time.March,
	"APR": time.April,
	"MAY": time.May,
	"JUN": time.June,
	"JUL": time.July,
	"JLY": time.July,
	"AUG": time.August,
	"SEP": time.September,
	"OCT": time.October,
	"NOV": time.November,
	"DEC": time.December,
}

// MonthFromName maps a deck month name (JAN, FEB, ..., JLY) to a month.
func MonthFromName(name string) (time.Month, bool) {
	month, ok := monthNames[strings.ToUpper(strings.Trim(name, "'\" "))]
	return month, ok
}

// TimeFromRecord converts a DATES/START style record (day, month name,
// year and an optional HH:MM:SS time) to a UTC time.
func TimeFromRecord(record Record) (time.Time, error) {
	day, err := record.Int(0, 0)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}

	monthName, ok := record.Item(1)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: month is missing", ErrInvalidDate)
	}

	month, ok := MonthFromName(monthName)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, monthName)
	}

	year, err := record.Int(2, 0)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}

	if _, present := record.Item(2); !present {
		return time.Time{}, fmt.Errorf("%w: year is missing", ErrInvalidDate)
	}

	clock := record.Text(3, "00:00:00")

	tod, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Add(tod)
	if t.Day() != day || t.Month() != month || t.Year() != year {
		return time.Time{}, fmt.Errorf("%w: %d %s %d", ErrInvalidDate, day, monthName, year)
	}

	return t, nil
}

func parseClock(clock string) (time.Duration, error) {
	layouts := []string{"15:04:05", "15:04:05.000", "15:04"}

	for _, layout := range layouts {
		t, err := time.Parse(layout, clock)
		if err == nil {
			return t.Sub(time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC)), nil
		}
	}

	return 0, fmt.Errorf("%w: time of day %q", ErrInvalidDate, clock)
}

// DaysToDuration converts a number of days, as used by TSTEP and the ACTIONX
// minimum wait, to a duration.
func DaysToDuration(days float64) (time.Duration, error) {
	if math.IsNaN(days) || math.Abs(days) >= MaxDays {
		return 0, fmt.Errorf("%w: %v days", ErrDaysOutOfRange, days)
	}

	return time.Duration(days * secondsPerDay * float64(time.Second)), nil
}
