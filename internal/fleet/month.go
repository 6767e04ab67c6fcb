package fleet

import (
	"time"

	"github.com/govalues/money"
)

// Month is the calendar-month bucket used for all income/expense series.
// Day and time components of source dates are discarded on the way in, so
// records within the same month coalesce.
type Month struct {
	Year int
	Mon  time.Month
}

// MonthOf buckets a timestamp by its year and month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Mon: t.Month()}
}

// CurrentMonth returns the bucket for the given clock's now.
func CurrentMonth(now time.Time) Month {
	return MonthOf(now)
}

// Time returns the first instant of the month in UTC.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Mon, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Mon == time.December {
		return Month{Year: m.Year + 1, Mon: time.January}
	}
	return Month{Year: m.Year, Mon: m.Mon + 1}
}

// Before reports whether m precedes o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Mon < o.Mon
}

// After reports whether m follows o.
func (m Month) After(o Month) bool { return o.Before(m) }

// Label renders the month for display, e.g. "January 2024".
func (m Month) Label() string { return m.Time().Format("January 2006") }

// String renders the month in sortable form, e.g. "2024-01".
func (m Month) String() string { return m.Time().Format("2006-01") }

// MonthsBetween lists every month from first to last inclusive.
func MonthsBetween(first, last Month) []Month {
	if last.Before(first) {
		return nil
	}
	out := []Month{first}
	for cur := first; cur != last; {
		cur = cur.Next()
		out = append(out, cur)
	}
	return out
}

// MonthlyFigure is one period of an income/expense/profit series.
type MonthlyFigure struct {
	Month   Month
	Income  money.Amount
	Expense money.Amount
	Profit  money.Amount
}
