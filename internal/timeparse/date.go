package timeparse

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DayLayout is the grouping key format for calendar days.
const DayLayout = "2006-01-02"

// Day-first layouts come before ISO ones: the reports are Brazilian.
var dateLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"01-02-06 15:04",
	"01-02-06",
	"1/2/06 15:04",
	"1/2/06",
}

// Serials outside [1970-01-01, 2100-01-01) are treated as plain numbers.
const (
	minSerial = 25569
	maxSerial = 73051
)

// ParseDate tolerantly parses a date cell. Excel serial numbers in a
// plausible range are accepted. The boolean is false when the value is not a date.
func ParseDate(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, true
		}
	}

	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial >= minSerial && serial < maxSerial {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// Day returns the calendar-day grouping key for t.
func Day(t time.Time) string {
	return t.Format(DayLayout)
}
