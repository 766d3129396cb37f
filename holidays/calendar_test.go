package holidays

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/models"
)

func date(y int, m time.Month, d int) models.Date {
	return models.NewDate(y, m, d)
}

func federal(t *testing.T) *Calendar {
	t.Helper()
	c, err := NewCalendar()
	require.NoError(t, err)
	return c
}

func TestObservedHolidays2025(t *testing.T) {
	got, err := federal(t).ObservedHolidays(2025, "FED")
	require.NoError(t, err)

	want := map[models.Date]string{
		date(2025, 1, 1):   "New Year's Day",
		date(2025, 1, 20):  "Martin Luther King Jr. Day",
		date(2025, 2, 17):  "Presidents' Day",
		date(2025, 5, 26):  "Memorial Day",
		date(2025, 6, 19):  "Juneteenth National Independence Day",
		date(2025, 7, 4):   "Independence Day",
		date(2025, 9, 1):   "Labor Day",
		date(2025, 10, 13): "Columbus Day",
		date(2025, 11, 11): "Veterans Day",
		date(2025, 11, 27): "Thanksgiving Day",
		date(2025, 12, 25): "Christmas Day",
	}
	assert.Len(t, got, len(want))
	for _, h := range got {
		assert.Equal(t, want[h.Date], h.Name, h.Date.String())
	}
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Date.Before(got[i].Date))
	}
}

func TestWeekendObservance(t *testing.T) {
	c := federal(t)

	// July 4 2026 is a Saturday, observed Friday July 3
	ok, err := c.IsBusinessDay(date(2026, 7, 3), "FED")
	assert.NoError(t, err)
	assert.False(t, ok)

	// Nov 11 2029 is a Sunday, observed Monday Nov 12
	ok, _ = c.IsBusinessDay(date(2029, 11, 12), "FED")
	assert.False(t, ok)

	// Christmas 2022 fell on a Sunday
	holidays, _ := c.ObservedHolidays(2022, "FED")
	var christmas Holiday
	for _, h := range holidays {
		if h.Name == "Christmas Day" {
			christmas = h
		}
	}
	assert.Equal(t, date(2022, 12, 26), christmas.Date)
	assert.Equal(t, date(2022, 12, 25), christmas.Actual)
}

func TestNewYearObservedOnPriorDecember31(t *testing.T) {
	c := federal(t)

	// Jan 1 2028 is a Saturday, observed Friday Dec 31 2027
	ok, _ := c.IsBusinessDay(date(2027, 12, 31), "FED")
	assert.False(t, ok)

	h2027, _ := c.ObservedHolidays(2027, "FED")
	assert.Contains(t, h2027, Holiday{Name: "New Year's Day", Date: date(2027, 12, 31), Actual: date(2028, 1, 1)})

	h2028, _ := c.ObservedHolidays(2028, "FED")
	for _, h := range h2028 {
		assert.NotEqual(t, "New Year's Day", h.Name)
	}
}

func TestNthWeekday(t *testing.T) {
	assert.Equal(t, date(2025, 1, 20), nthWeekday(2025, time.January, time.Monday, 3))
	assert.Equal(t, date(2025, 5, 26), nthWeekday(2025, time.May, time.Monday, -1))
	assert.Equal(t, date(2024, 11, 28), nthWeekday(2024, time.November, time.Thursday, 4))
	assert.Equal(t, date(2024, 9, 2), nthWeekday(2024, time.September, time.Monday, 1))
}

func TestIsBusinessDay(t *testing.T) {
	c := federal(t)
	tests := []struct {
		name string
		d    models.Date
		want bool
	}{
		{"weekday", date(2025, 1, 10), true},
		{"saturday", date(2025, 1, 11), false},
		{"sunday", date(2025, 1, 12), false},
		{"mlk day", date(2025, 1, 20), false},
		{"day after mlk", date(2025, 1, 21), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.IsBusinessDay(tt.d, "fed")
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextAndPreviousBusinessDay(t *testing.T) {
	c := federal(t)

	next, err := c.NextBusinessDay(date(2025, 1, 18), "FED")
	assert.NoError(t, err)
	assert.Equal(t, date(2025, 1, 21), next)

	same, _ := c.NextBusinessDay(date(2025, 1, 21), "FED")
	assert.Equal(t, date(2025, 1, 21), same)

	prev, err := c.PreviousBusinessDay(date(2025, 1, 20), "FED")
	assert.NoError(t, err)
	assert.Equal(t, date(2025, 1, 17), prev)
}

func TestJurisdictionClosures(t *testing.T) {
	c, err := NewCalendar(JurisdictionConfig{
		Code:         "ca-nd",
		Name:         "Northern District of California",
		TimeZone:     "America/Los_Angeles",
		FilingCutoff: "17:00",
		Closures:     []ClosureConfig{{Date: "2025-03-31", Name: "Cesar Chavez Day"}},
	})
	require.NoError(t, err)

	ok, err := c.IsBusinessDay(date(2025, 3, 31), "CA-ND")
	assert.NoError(t, err)
	assert.False(t, ok)

	// closures are scoped to the registering jurisdiction
	ok, _ = c.IsBusinessDay(date(2025, 3, 31), "FED")
	assert.True(t, ok)

	j, err := c.Jurisdiction("ca-nd")
	require.NoError(t, err)
	assert.Equal(t, "America/Los_Angeles", j.TimeZone())
	assert.Equal(t, "17:00", j.FilingCutoff)

	hs, _ := c.ObservedHolidays(2025, "CA-ND")
	assert.Contains(t, hs, Holiday{Name: "Cesar Chavez Day", Date: date(2025, 3, 31), Actual: date(2025, 3, 31)})
	assert.Equal(t, []string{"CA-ND", "FED"}, c.Codes())
}

func TestUnknownJurisdiction(t *testing.T) {
	c := federal(t)
	_, err := c.IsBusinessDay(date(2025, 1, 10), "XX")
	assert.True(t, apperr.Is(err, apperr.UnknownJurisdiction))
	_, err = c.ObservedHolidays(2025, "XX")
	assert.True(t, apperr.Is(err, apperr.UnknownJurisdiction))
}

func TestNewCalendarRejectsBadConfig(t *testing.T) {
	_, err := NewCalendar(JurisdictionConfig{Code: "X", TimeZone: "Mars/Olympus"})
	assert.Error(t, err)

	_, err = NewCalendar(JurisdictionConfig{Code: "X", FilingCutoff: "5pm"})
	assert.Error(t, err)

	_, err = NewCalendar(JurisdictionConfig{Code: "X", Closures: []ClosureConfig{{Date: "03/31/2025"}}})
	assert.Error(t, err)

	_, err = NewCalendar(JurisdictionConfig{})
	assert.Error(t, err)
}
