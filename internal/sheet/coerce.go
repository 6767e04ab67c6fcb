package sheet

import (
	"strconv"
	"strings"
	"time"

	"github.com/govalues/decimal"
	"github.com/govalues/money"

	"github.com/adilkt/fleetbook/internal/fleet"
)

// Cell coercion is deliberately forgiving: imported books are hand-made and
// messy. Failures degrade to a safe default (zero or absent) instead of
// failing the row, except where that would fabricate a required field.

// dayFirstLayouts prefer day-before-month for ambiguous numeric dates.
var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"02/01/06",
	"2-1-06",
	"2006-01-02",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04:05 PM",
	"3:04PM",
	"3 PM",
}

// excel serial date epoch (with the historical leap-year fudge baked in).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// parseDate coerces a cell to a calendar date, trying day-first text layouts
// and falling back to an Excel serial number for unformatted date cells.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 59 && serial < 80000 {
		t := excelEpoch.Add(time.Duration(serial * float64(24*time.Hour)))
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// parseClock coerces a cell to a time of day. Full date-time text is accepted
// with only the clock component kept. Fractional Excel serials map to a
// fraction of the day.
func parseClock(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return clockOnly(t), true
		}
	}
	for _, layout := range []string{"02/01/2006 15:04", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return clockOnly(t), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 0 && serial < 1 {
		t := excelEpoch.Add(time.Duration(serial * float64(24*time.Hour)))
		return clockOnly(t), true
	}
	return time.Time{}, false
}

func clockOnly(t time.Time) time.Time {
	return time.Date(0, time.January, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// parseAmount coerces a cell to a money amount, defaulting to zero when the
// cell is empty or unparsable.
func parseAmount(s string) money.Amount {
	clean := cleanNumber(s)
	if clean == "" {
		return fleet.ZeroAmount()
	}
	v, err := money.ParseAmount(fleet.Currency, clean)
	if err != nil {
		return fleet.ZeroAmount()
	}
	return v
}

// parseQuantity coerces a cell to a plain decimal, defaulting to zero.
func parseQuantity(s string) decimal.Decimal {
	clean := cleanNumber(s)
	if clean == "" {
		return decimal.Decimal{}
	}
	v, err := decimal.Parse(clean)
	if err != nil {
		return decimal.Decimal{}
	}
	return v
}

// parseKM coerces an odometer cell. Unlike amounts, a missing or unparsable
// reading stays absent rather than becoming zero.
func parseKM(s string) *int64 {
	clean := cleanNumber(s)
	if clean == "" {
		return nil
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return nil
	}
	km := int64(f)
	return &km
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "₹")
	return strings.TrimSpace(s)
}
