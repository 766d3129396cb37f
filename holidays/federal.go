package holidays

import (
	"time"

	"github.com/linesmerrill/court-compliance-api/models"
)

// Holiday is a named court closure. Date is the day the court is closed;
// Actual is the calendar date the holiday falls on before weekend observance.
type Holiday struct {
	Name   string      `json:"name"`
	Date   models.Date `json:"date"`
	Actual models.Date `json:"actual"`
}

type fixedRule struct {
	name  string
	month time.Month
	day   int
}

type floatingRule struct {
	name    string
	month   time.Month
	weekday time.Weekday
	// nth occurrence in the month, -1 for the last
	nth int
}

var fixedHolidays = []fixedRule{
	{"New Year's Day", time.January, 1},
	{"Juneteenth National Independence Day", time.June, 19},
	{"Independence Day", time.July, 4},
	{"Veterans Day", time.November, 11},
	{"Christmas Day", time.December, 25},
}

var floatingHolidays = []floatingRule{
	{"Martin Luther King Jr. Day", time.January, time.Monday, 3},
	{"Presidents' Day", time.February, time.Monday, 3},
	{"Memorial Day", time.May, time.Monday, -1},
	{"Labor Day", time.September, time.Monday, 1},
	{"Columbus Day", time.October, time.Monday, 2},
	{"Thanksgiving Day", time.November, time.Thursday, 4},
}

// observed shifts a Saturday holiday to Friday and a Sunday holiday to Monday
func observed(d models.Date) models.Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(-1)
	case time.Sunday:
		return d.AddDays(1)
	}
	return d
}

// nthWeekday returns the nth weekday of the month, or the last one when n is -1
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) models.Date {
	if n < 0 {
		last := models.NewDate(year, month+1, 0)
		back := (int(last.Weekday()) - int(weekday) + 7) % 7
		return last.AddDays(-back)
	}
	first := models.NewDate(year, month, 1)
	ahead := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDays(ahead + (n-1)*7)
}

// federalHolidays returns the federal holidays whose observed date falls in
// year. A New Year's Day observed on the prior Dec 31 belongs to that prior
// year, so year's list can include the next year's New Year's Day.
func federalHolidays(year int) []Holiday {
	var out []Holiday
	for _, y := range []int{year, year + 1} {
		for _, r := range fixedHolidays {
			actual := models.NewDate(y, r.month, r.day)
			obs := observed(actual)
			if obs.Year() == year {
				out = append(out, Holiday{Name: r.name, Date: obs, Actual: actual})
			}
		}
	}
	for _, r := range floatingHolidays {
		d := nthWeekday(year, r.month, r.weekday, r.nth)
		out = append(out, Holiday{Name: r.name, Date: d, Actual: d})
	}
	return out
}
