// Package speedytrial tracks the per-case statutory countdown to trial,
// excluding the delay periods the statute allows.
package speedytrial

import (
	"github.com/linesmerrill/court-compliance-api/models"
)

// DefaultLimitDays is the statutory limit used when a clock is started without one
const DefaultLimitDays = 70

// Evaluate recomputes a clock's counters as of a date from its start date
// and its full delay ledger. Elapsed days are the calendar days after the
// clock start up to and including asOf; excluded days are the delay days in
// that same window. A closed clock stops counting at its disposition date.
// The result depends only on the set of delays, never on their order.
func Evaluate(c models.SpeedyTrialClock, asOf models.Date) models.SpeedyTrialClock {
	end := asOf
	if c.Closed && c.DisposedOn != nil && c.DisposedOn.Before(end) {
		end = *c.DisposedOn
	}

	elapsed := 0
	excluded := 0
	if end.After(c.ClockStart) {
		elapsed = end.DaysSince(c.ClockStart)
		windowStart := c.ClockStart.AddDays(1)
		for _, d := range c.Delays {
			excluded += overlapDays(d, windowStart, end)
		}
	}
	chargeable := elapsed - excluded
	if chargeable < 0 {
		chargeable = 0
	}
	remaining := c.LimitDays - chargeable
	if remaining < 0 {
		remaining = 0
	}

	c.AsOf = asOf
	c.ExcludedDays = excluded
	c.ElapsedChargeableDays = chargeable
	c.RemainingDays = remaining
	c.State = state(c, asOf)
	return c
}

// overlapDays counts the days of delay d inside the inclusive window [from, to]
func overlapDays(d models.ExcludableDelay, from, to models.Date) int {
	start, end := d.StartDate, d.EndDate
	if start.Before(from) {
		start = from
	}
	if end.After(to) {
		end = to
	}
	if start.After(end) {
		return 0
	}
	return end.DaysSince(start) + 1
}

// state derives the clock state from already computed counters, in
// precedence order closed, violated, paused, running
func state(c models.SpeedyTrialClock, asOf models.Date) models.ClockState {
	switch {
	case c.Closed:
		return models.ClockClosed
	case c.Violated || c.ElapsedChargeableDays > c.LimitDays:
		return models.ClockViolated
	}
	for _, d := range c.Delays {
		if d.Contains(asOf) {
			return models.ClockPaused
		}
	}
	return models.ClockRunning
}
