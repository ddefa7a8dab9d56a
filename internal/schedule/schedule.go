// Package schedule computes the next execution time of a recurring job
// from its frequency and time-of-day anchor. It is pure: no clocks, no
// side effects, no failure modes.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frequencies outside this band are silently clamped, not rejected.
const (
	MinFrequency = 30 * time.Minute
	MaxFrequency = 365 * 24 * time.Hour
)

const day = 24 * time.Hour

// TimeOfDay is the wall-clock anchor recurring runs are computed from.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// on returns the anchor instant on the same calendar day as ref.
func (t TimeOfDay) on(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour, t.Minute, 0, 0, ref.Location())
}

// NextRun returns the first scheduled instant at or after now.
//
// Sub-daily frequencies run at anchor + k*freq, restarting from the next
// day's anchor once k*freq would pass 24h. A frequency of exactly one day
// runs once per day at the anchor. Longer frequencies count periods from
// the first of the current month (up to 15 days) or from January 1 of the
// current year (beyond that), snapping to the next month's or year's
// baseline instead of overshooting it. An instant exactly on a boundary is
// returned as-is.
func NextRun(freq time.Duration, anchor TimeOfDay, now time.Time) time.Time {
	freq = clamp(freq)
	switch {
	case freq < day:
		return nextIntraDay(freq, anchor, now)
	case freq == day:
		return nextDaily(anchor, now)
	case freq <= 15*day:
		return nextFromMonthStart(freq, anchor, now)
	default:
		return nextFromYearStart(freq, anchor, now)
	}
}

func clamp(freq time.Duration) time.Duration {
	if freq < MinFrequency {
		return MinFrequency
	}
	if freq > MaxFrequency {
		return MaxFrequency
	}
	return freq
}

func nextIntraDay(freq time.Duration, anchor TimeOfDay, now time.Time) time.Time {
	base := anchor.on(now)
	if base.After(now) {
		// Before today's anchor the active cycle is still yesterday's.
		base = anchor.on(now.AddDate(0, 0, -1))
	}

	t := base
	for t.Before(now) {
		t = t.Add(freq)
		next := anchor.on(base.AddDate(0, 0, 1))
		if !t.Before(next) {
			base = next
			t = next
		}
	}
	return t
}

func nextDaily(anchor TimeOfDay, now time.Time) time.Time {
	today := anchor.on(now)
	if now.After(today) {
		return anchor.on(now.AddDate(0, 0, 1))
	}
	return today
}

func nextFromMonthStart(freq time.Duration, anchor TimeOfDay, now time.Time) time.Time {
	base := anchor.on(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
	t := base
	for t.Before(now) {
		t = t.Add(freq)
		if t.Month() != base.Month() || t.Year() != base.Year() {
			return anchor.on(base.AddDate(0, 1, 0))
		}
	}
	return t
}

func nextFromYearStart(freq time.Duration, anchor TimeOfDay, now time.Time) time.Time {
	base := anchor.on(time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()))
	t := base
	for t.Before(now) {
		t = t.Add(freq)
		if t.Year() != base.Year() {
			return anchor.on(base.AddDate(1, 0, 0))
		}
	}
	return t
}
