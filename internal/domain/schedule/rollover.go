package schedule

import "time"

// Resolve applies the rollover policy to a parsed expression. An explicit date
// without a year that falls on a day before the reference day moves to the same
// month and day of the following year, once. Clock-only, weekday and relative
// phrases are returned as parsed: a time of day already gone today stays today.
//
// ErrInvalidCalendarDate is returned when the following year has no such day
// ("29 de febrero" said after a leap day).
func Resolve(expr Expression, ref time.Time) (time.Time, error) {
	when := expr.When
	if !expr.HasDate || expr.HasYear {
		return when, nil
	}
	if !dayBefore(when, ref.In(when.Location())) {
		return when, nil
	}
	next := when.AddDate(1, 0, 0)
	if next.Month() != when.Month() || next.Day() != when.Day() {
		return time.Time{}, ErrInvalidCalendarDate
	}
	return next, nil
}

func dayBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
