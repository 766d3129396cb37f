// Package holidays decides which days courts are open, per jurisdiction.
package holidays

import (
	"fmt"
	"sort"
	"strings"
	"time"

	// zone lookups must not depend on the host's zoneinfo
	_ "time/tzdata"

	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/models"
)

// FederalCode is the jurisdiction that is always registered
const FederalCode = "FED"

// cutoffLayout is the HH:MM format of a filing cutoff
const cutoffLayout = "15:04"

// JurisdictionConfig is one jurisdiction entry of the jurisdictions file
type JurisdictionConfig struct {
	Code         string          `toml:"code"`
	Name         string          `toml:"name"`
	TimeZone     string          `toml:"time_zone"`
	FilingCutoff string          `toml:"filing_cutoff"`
	Closures     []ClosureConfig `toml:"closures"`
}

// ClosureConfig is an extra closure date registered for a jurisdiction
type ClosureConfig struct {
	Date string `toml:"date"`
	Name string `toml:"name"`
}

// Jurisdiction is a registered holiday configuration
type Jurisdiction struct {
	Code         string         `json:"code"`
	Name         string         `json:"name"`
	Location     *time.Location `json:"-"`
	FilingCutoff string         `json:"filingCutoff"`
	closures     map[models.Date]string
}

// TimeZone returns the IANA name of the jurisdiction's zone
func (j *Jurisdiction) TimeZone() string {
	return j.Location.String()
}

// Calendar answers business-day questions for a fixed set of jurisdictions.
// It holds only configuration; holiday dates are derived on every call.
type Calendar struct {
	jurisdictions map[string]*Jurisdiction
}

// Federal returns the configuration of the built-in federal jurisdiction
func Federal() JurisdictionConfig {
	return JurisdictionConfig{
		Code:         FederalCode,
		Name:         "United States Federal Courts",
		TimeZone:     "America/New_York",
		FilingCutoff: "23:59",
	}
}

// NewCalendar registers the federal jurisdiction and then every entry in
// configs. An entry whose code is FED replaces the built-in one.
func NewCalendar(configs ...JurisdictionConfig) (*Calendar, error) {
	c := &Calendar{jurisdictions: make(map[string]*Jurisdiction)}
	for _, conf := range append([]JurisdictionConfig{Federal()}, configs...) {
		j, err := newJurisdiction(conf)
		if err != nil {
			return nil, err
		}
		c.jurisdictions[j.Code] = j
	}
	return c, nil
}

func newJurisdiction(conf JurisdictionConfig) (*Jurisdiction, error) {
	code := normalizeCode(conf.Code)
	if code == "" {
		return nil, fmt.Errorf("jurisdiction code is required")
	}
	tz := conf.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("jurisdiction %s: invalid time zone %q: %w", code, tz, err)
	}
	cutoff := conf.FilingCutoff
	if cutoff == "" {
		cutoff = "23:59"
	}
	if _, err := time.Parse(cutoffLayout, cutoff); err != nil {
		return nil, fmt.Errorf("jurisdiction %s: invalid filing cutoff %q: %w", code, cutoff, err)
	}
	closures := make(map[models.Date]string, len(conf.Closures))
	for _, cl := range conf.Closures {
		d, err := models.ParseDate(cl.Date)
		if err != nil {
			return nil, fmt.Errorf("jurisdiction %s: %w", code, err)
		}
		name := cl.Name
		if name == "" {
			name = "Court closure"
		}
		closures[d] = name
	}
	name := conf.Name
	if name == "" {
		name = code
	}
	return &Jurisdiction{Code: code, Name: name, Location: loc, FilingCutoff: cutoff, closures: closures}, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Jurisdiction looks up a registered jurisdiction by code, case-insensitively
func (c *Calendar) Jurisdiction(code string) (*Jurisdiction, error) {
	j, ok := c.jurisdictions[normalizeCode(code)]
	if !ok {
		return nil, apperr.New(apperr.UnknownJurisdiction, "jurisdiction %q has no registered holiday configuration", code)
	}
	return j, nil
}

// Codes lists the registered jurisdiction codes in sorted order
func (c *Calendar) Codes() []string {
	codes := make([]string, 0, len(c.jurisdictions))
	for code := range c.jurisdictions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ObservedHolidays returns the holidays observed in year for a jurisdiction,
// federal holidays plus its registered closures, ordered by date
func (c *Calendar) ObservedHolidays(year int, code string) ([]Holiday, error) {
	j, err := c.Jurisdiction(code)
	if err != nil {
		return nil, err
	}
	return j.observedHolidays(year), nil
}

func (j *Jurisdiction) observedHolidays(year int) []Holiday {
	out := federalHolidays(year)
	for d, name := range j.closures {
		if d.Year() == year {
			out = append(out, Holiday{Name: name, Date: d, Actual: d})
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Date == out[b].Date {
			return out[a].Name < out[b].Name
		}
		return out[a].Date.Before(out[b].Date)
	})
	return out
}

// IsHoliday reports whether d is an observed holiday or closure
func (j *Jurisdiction) IsHoliday(d models.Date) bool {
	if _, ok := j.closures[d]; ok {
		return true
	}
	for _, h := range federalHolidays(d.Year()) {
		if h.Date == d {
			return true
		}
	}
	return false
}

// IsBusinessDay reports whether d is neither a weekend nor a holiday
func (j *Jurisdiction) IsBusinessDay(d models.Date) bool {
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !j.IsHoliday(d)
}

// NextBusinessDay returns d if it is a business day, otherwise the first
// business day after it
func (j *Jurisdiction) NextBusinessDay(d models.Date) models.Date {
	for !j.IsBusinessDay(d) {
		d = d.AddDays(1)
	}
	return d
}

// PreviousBusinessDay returns d if it is a business day, otherwise the last
// business day before it
func (j *Jurisdiction) PreviousBusinessDay(d models.Date) models.Date {
	for !j.IsBusinessDay(d) {
		d = d.AddDays(-1)
	}
	return d
}

// IsBusinessDay reports whether d is a business day in the jurisdiction
func (c *Calendar) IsBusinessDay(d models.Date, code string) (bool, error) {
	j, err := c.Jurisdiction(code)
	if err != nil {
		return false, err
	}
	return j.IsBusinessDay(d), nil
}

// NextBusinessDay returns the first business day on or after d
func (c *Calendar) NextBusinessDay(d models.Date, code string) (models.Date, error) {
	j, err := c.Jurisdiction(code)
	if err != nil {
		return models.Date{}, err
	}
	return j.NextBusinessDay(d), nil
}

// PreviousBusinessDay returns the last business day on or before d
func (c *Calendar) PreviousBusinessDay(d models.Date, code string) (models.Date, error) {
	j, err := c.Jurisdiction(code)
	if err != nil {
		return models.Date{}, err
	}
	return j.PreviousBusinessDay(d), nil
}
