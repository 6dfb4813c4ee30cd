package finance

import "time"

// =============================================================================
// DAY ARITHMETIC - Due dates are day-precision values
// =============================================================================

// TruncateToDay drops the time-of-day component, keeping the wall-clock
// date in UTC. All due-date comparisons in this engine happen between
// truncated values, so DST shifts cannot produce off-by-one days.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysLate returns the whole days elapsed from dueDate to referenceDate.
// Negative means early or on-time.
func DaysLate(dueDate, referenceDate time.Time) int {
	return int(TruncateToDay(referenceDate).Sub(TruncateToDay(dueDate)).Hours() / 24)
}

// AddMonthsClamped returns the same day N calendar months after anchor,
// clamped to the last valid day of the target month. Unlike
// time.Time.AddDate, Jan 31 + 1 month yields Feb 29 (leap) or Feb 28,
// never Mar 2/3. Each step is anchored to the original day, so
// Jan 31 -> Feb 29 -> Mar 31, not Mar 29.
func AddMonthsClamped(anchor time.Time, months int) time.Time {
	anchor = TruncateToDay(anchor)
	y, m, d := anchor.Date()

	total := int(m) - 1 + months
	year := y + total/12
	month := time.Month(total%12 + 1)
	if total < 0 {
		// Go's integer division truncates toward zero
		year = y + (total-11)/12
		month = time.Month((total%12+12)%12 + 1)
	}

	if last := daysInMonth(year, month); d > last {
		d = last
	}
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
