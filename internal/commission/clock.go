package commission

import "time"

// Clock supplies the reference date whose month length converts monthly
// revenue into daily revenue.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// WallClock reads the system time.
var WallClock Clock = ClockFunc(time.Now)

// FixedClock always reports the same date.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// DaysIn returns the number of calendar days in the given month.
func DaysIn(year int, month time.Month) int {
	// day 0 of the following month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
