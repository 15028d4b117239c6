package ledger

import (
	"time"

	"glow-hq/glow/pkg/keystore"
)

// PeriodStart computes the start of the budget window containing now.
//
// The computation is a pure function of the wall clock and the period
// kind, always in UTC:
//
//   - daily: midnight of the current day
//   - weekly: midnight of the most recent Monday
//   - monthly: midnight of the 1st of the current month
//
// Usage rows are attributed to windows by this value alone; it is
// recomputed on every call and never cached or stored as a window id.
func PeriodStart(p keystore.Period, now time.Time) time.Time {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch p {
	case keystore.PeriodDaily:
		return midnight
	case keystore.PeriodWeekly:
		// time.Weekday counts Sunday as 0; shift so Monday is the anchor.
		offset := (int(midnight.Weekday()) + 6) % 7
		return midnight.AddDate(0, 0, -offset)
	case keystore.PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	// Unknown periods cannot reach here through keystore validation;
	// fall back to the most restrictive window.
	return midnight
}
