package recurrence

import (
	"time"

	"github.com/cyp0633/librecur/datetime"
)

// BuildCutoff returns the last millisecond of the day before date, with date's wall
// clock read as UTC. It bounds queries that must end before an all-day date begins.
func BuildCutoff(date time.Time) time.Time {
	day := datetime.KeepLocal(date, time.UTC).AddDate(0, 0, -1)
	y, m, d := day.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// StartUTC returns the same instant in UTC.
func StartUTC(t time.Time) time.Time {
	return t.UTC()
}
