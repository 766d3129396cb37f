package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/holidays"
	"github.com/linesmerrill/court-compliance-api/models"
)

// Jurisdiction exported for testing purposes
type Jurisdiction struct {
	Calendar *holidays.Calendar
}

// JurisdictionResponse describes one registered jurisdiction
type JurisdictionResponse struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	TimeZone     string `json:"timeZone"`
	FilingCutoff string `json:"filingCutoff"`
}

// HolidaysResponse lists a jurisdiction's observed closures for a year
type HolidaysResponse struct {
	Jurisdiction string             `json:"jurisdiction"`
	Year         int                `json:"year"`
	Holidays     []holidays.Holiday `json:"holidays"`
}

// BusinessDayResponse answers whether a date is a business day, along with
// the business days on or after and on or before it
type BusinessDayResponse struct {
	Jurisdiction        string      `json:"jurisdiction"`
	Date                models.Date `json:"date"`
	IsBusinessDay       bool        `json:"isBusinessDay"`
	NextBusinessDay     models.Date `json:"nextBusinessDay"`
	PreviousBusinessDay models.Date `json:"previousBusinessDay"`
}

// JurisdictionsHandler lists the registered jurisdictions
func (j Jurisdiction) JurisdictionsHandler(w http.ResponseWriter, r *http.Request) {
	out := []JurisdictionResponse{}
	for _, code := range j.Calendar.Codes() {
		jur, err := j.Calendar.Jurisdiction(code)
		if err != nil {
			errorStatus("failed to get jurisdiction", w, r, err)
			return
		}
		out = append(out, JurisdictionResponse{
			Code:         jur.Code,
			Name:         jur.Name,
			TimeZone:     jur.TimeZone(),
			FilingCutoff: jur.FilingCutoff,
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

// HolidaysHandler returns the observed holidays for ?year=, defaulting to
// the current year
func (j Jurisdiction) HolidaysHandler(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	year, err := queryInt(r, "year", time.Now().Year())
	if err != nil {
		errorStatus("failed to parse year", w, r, err)
		return
	}
	if year < 1 || year > 9999 {
		errorStatus("failed to parse year", w, r, apperr.New(apperr.InvalidRequest, "year %d out of range", year))
		return
	}
	list, err := j.Calendar.ObservedHolidays(year, code)
	if err != nil {
		errorStatus("failed to get holidays", w, r, err)
		return
	}
	jur, _ := j.Calendar.Jurisdiction(code)
	writeJSON(w, r, http.StatusOK, HolidaysResponse{Jurisdiction: jur.Code, Year: year, Holidays: list})
}

// BusinessDayHandler reports whether {date} is a business day
func (j Jurisdiction) BusinessDayHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	d, err := models.ParseDate(vars["date"])
	if err != nil {
		errorStatus("failed to parse date", w, r, apperr.Wrap(apperr.InvalidRequest, err, "invalid date"))
		return
	}
	jur, err := j.Calendar.Jurisdiction(vars["code"])
	if err != nil {
		errorStatus("failed to get jurisdiction", w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, BusinessDayResponse{
		Jurisdiction:        jur.Code,
		Date:                d,
		IsBusinessDay:       jur.IsBusinessDay(d),
		NextBusinessDay:     jur.NextBusinessDay(d),
		PreviousBusinessDay: jur.PreviousBusinessDay(d),
	})
}
