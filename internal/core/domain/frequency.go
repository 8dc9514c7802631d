package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
)

// Frequency is how often a recurring bill comes due.
type Frequency string

const (
	Daily     Frequency = "DAILY"
	Weekly    Frequency = "WEEKLY"
	BiWeekly  Frequency = "BI_WEEKLY"
	Monthly   Frequency = "MONTHLY"
	Quarterly Frequency = "QUARTERLY"
	Annually  Frequency = "ANNUALLY"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	_, err := Advance(f, time.Time{})
	return err == nil
}

// Advance returns the due date following date for the given frequency.
// Calendar-month steps keep the day of month, clamped to the target month's length,
// so Monthly from Jan 31 lands on the last day of February.
func Advance(f Frequency, date time.Time) (time.Time, error) {
	switch f {
	case Daily:
		return date.AddDate(0, 0, 1), nil
	case Weekly:
		return date.AddDate(0, 0, 7), nil
	case BiWeekly:
		return date.AddDate(0, 0, 14), nil
	case Monthly:
		return addMonthsClamped(date, 1), nil
	case Quarterly:
		return addMonthsClamped(date, 3), nil
	case Annually:
		return addMonthsClamped(date, 12), nil
	default:
		return date, fmt.Errorf("%w: unknown frequency %q", apperrors.ErrConfiguration, string(f))
	}
}

func addMonthsClamped(date time.Time, months int) time.Time {
	y, m, d := date.Date()
	first := time.Date(y, m, 1, date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
	target := first.AddDate(0, months, 0)
	if last := daysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	return target.AddDate(0, 0, d-1)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
