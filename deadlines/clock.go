// Package deadlines computes legally binding due dates and manages the
// deadline lifecycle, extension requests and reminders built on them.
package deadlines

import (
	"fmt"
	"strings"

	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/holidays"
	"github.com/linesmerrill/court-compliance-api/models"
)

// ShortPeriodThreshold is the total period below which only business days count
const ShortPeriodThreshold = 11

// MaxPeriodDays is the longest period accepted, about ten years
const MaxPeriodDays = 3650

// ComputeRequest is the full input of a due-date computation
type ComputeRequest struct {
	TriggerDate   models.Date           `json:"triggerDate"`
	PeriodDays    int                   `json:"periodDays"`
	ServiceMethod models.ServiceMethod  `json:"serviceMethod"`
	Jurisdiction  string                `json:"jurisdiction"`
	Direction     models.CountDirection `json:"direction"`
}

// withDefaults fills in electronic service, the federal jurisdiction and
// forward counting when they are left empty
func (r ComputeRequest) withDefaults() ComputeRequest {
	if r.ServiceMethod == "" {
		r.ServiceMethod = models.ServiceElectronic
	}
	if r.Jurisdiction == "" {
		r.Jurisdiction = holidays.FederalCode
	}
	if r.Direction == "" {
		r.Direction = models.CountForward
	}
	return r
}

// Clock computes due dates. It is stateless apart from the holiday calendar.
type Clock struct {
	calendar *holidays.Calendar
}

// NewClock returns a Clock over the given holiday calendar
func NewClock(calendar *holidays.Calendar) *Clock {
	return &Clock{calendar: calendar}
}

// Calendar returns the holiday calendar the clock counts against
func (c *Clock) Calendar() *holidays.Calendar {
	return c.calendar
}

// ComputeDueDate derives a due date from a trigger date, a period, the
// service method and the jurisdiction's holidays. The trigger date is never
// counted. Totals under eleven days count business days only; longer totals
// count calendar days. A landing on a weekend or holiday moves to the next
// business day (the previous one when counting backward).
func (c *Clock) ComputeDueDate(req ComputeRequest) (models.Computation, error) {
	req = req.withDefaults()
	if req.PeriodDays <= 0 {
		return models.Computation{}, apperr.New(apperr.InvalidPeriod, "period must be a positive number of days, got %d", req.PeriodDays)
	}
	if req.PeriodDays > MaxPeriodDays {
		return models.Computation{}, apperr.New(apperr.InvalidPeriod, "period must be at most %d days, got %d", MaxPeriodDays, req.PeriodDays)
	}
	if req.TriggerDate.IsZero() {
		return models.Computation{}, apperr.New(apperr.InvalidRequest, "trigger date is required")
	}
	serviceDays, ok := req.ServiceMethod.AdditionalDays()
	if !ok {
		return models.Computation{}, apperr.New(apperr.InvalidRequest, "unknown service method %q", req.ServiceMethod)
	}
	step := 1
	switch req.Direction {
	case models.CountForward:
	case models.CountBackward:
		step = -1
	default:
		return models.Computation{}, apperr.New(apperr.InvalidRequest, "unknown count direction %q", req.Direction)
	}
	j, err := c.calendar.Jurisdiction(req.Jurisdiction)
	if err != nil {
		return models.Computation{}, err
	}

	total := req.PeriodDays + serviceDays
	short := total < ShortPeriodThreshold
	start := req.TriggerDate.AddDays(step)

	var raw models.Date
	if short {
		raw = countBusinessDays(j, start, total, step)
	} else {
		raw = start.AddDays(step * (total - 1))
	}

	due := j.NextBusinessDay(raw)
	if step < 0 {
		due = j.PreviousBusinessDay(raw)
	}

	notes := []string{fmt.Sprintf("Trigger date: %s; counting %s begins %s", req.TriggerDate, req.Direction, start)}
	if serviceDays > 0 {
		notes = append(notes, fmt.Sprintf("Service method (%s): +%d days added to base period of %d days",
			req.ServiceMethod, serviceDays, req.PeriodDays))
	}
	if short {
		notes = append(notes, fmt.Sprintf("Total period: %d days (short period, weekends/holidays excluded from count)", total))
	} else {
		notes = append(notes, fmt.Sprintf("Total period: %d days (long period, calendar days counted)", total))
	}
	if due != raw {
		dir := "next"
		if step < 0 {
			dir = "previous"
		}
		notes = append(notes, fmt.Sprintf("Landing day %s falls on weekend/holiday; moved to %s business day %s", raw, dir, due))
	}
	notes = append(notes, fmt.Sprintf("Due date: %s", due))

	return models.Computation{
		DueDate:          due,
		RawLandingDate:   raw,
		TotalPeriodDays:  total,
		ServiceDaysAdded: serviceDays,
		ShortPeriod:      short,
		Notes:            strings.Join(notes, "; "),
		Jurisdiction:     j.Code,
		TimeZone:         j.TimeZone(),
		FilingCutoff:     j.FilingCutoff,
	}, nil
}

// countBusinessDays walks from start in direction step and returns the day
// on which the nth business day is reached. A non-positive n returns start.
func countBusinessDays(j *holidays.Jurisdiction, start models.Date, n, step int) models.Date {
	if n <= 0 || step == 0 {
		return start
	}
	cur := start
	counted := 0
	for {
		if j.IsBusinessDay(cur) {
			counted++
			if counted == n {
				return cur
			}
		}
		cur = cur.AddDays(step)
	}
}
