package cleaning

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Day-first layouts cover the formats seen across the field sheets.
// ISO dates are accepted last so "2024-03-04" still parses.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// excelEpoch is day zero of the 1900 date system (accounting for the
// Lotus leap-year bug excelize inherits from Excel).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate parses a raw cell into a calendar date using the day-first
// convention. Time of day is discarded. Returns false for anything
// unparseable; rows carrying such cells are dropped by the cleaners.
func ParseDate(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return truncateToDay(v), true
	case float64:
		return excelSerialDate(v)
	case int:
		return excelSerialDate(float64(v))
	}

	s := strings.TrimSpace(cast.ToString(value))
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateToDay(t), true
		}
	}

	// Some exports hand over the raw Excel serial as text.
	if serial := cast.ToFloat64(s); serial > 0 {
		return excelSerialDate(serial)
	}

	return time.Time{}, false
}

// excelSerialDate converts an Excel 1900-system serial number. Values
// outside a plausible calendar window (1968..2130) are rejected rather
// than silently mapped to nonsense dates.
func excelSerialDate(serial float64) (time.Time, bool) {
	if serial < 25000 || serial > 84000 {
		return time.Time{}, false
	}
	t := excelEpoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
	return truncateToDay(t), true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekBucket assigns the join partition for a date: the ISO-8601 week
// number. Both domains derive their bucket through this one function;
// using two conventions would silently desynchronize the join keys.
func WeekBucket(date time.Time) int {
	_, week := date.ISOWeek()
	return week
}
