package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/court-compliance-api/api/handlers"
	"github.com/linesmerrill/court-compliance-api/api/testhelpers"
	"github.com/linesmerrill/court-compliance-api/databases"
)

func TestJurisdiction_HolidaysHandler(t *testing.T) {
	a := testhelpers.NewApp(t, databases.NewMemoryStore())

	rr := testhelpers.Do(t, a.Router, http.MethodGet, "/api/v1/jurisdictions/fed/holidays?year=2025", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got handlers.HolidaysResponse
	testhelpers.Decode(t, rr, &got)
	assert.Equal(t, "FED", got.Jurisdiction)
	assert.Equal(t, 2025, got.Year)
	require.Len(t, got.Holidays, 11)
	assert.Equal(t, date(t, "2025-01-20"), got.Holidays[1].Date)
	assert.Equal(t, "Martin Luther King Jr. Day", got.Holidays[1].Name)
}

func TestJurisdiction_HolidaysHandlerErrors(t *testing.T) {
	a := testhelpers.NewApp(t, databases.NewMemoryStore())

	rr := testhelpers.Do(t, a.Router, http.MethodGet, "/api/v1/jurisdictions/XX/holidays?year=2025", nil)
	assertError(t, rr, http.StatusBadRequest, "UnknownJurisdiction")

	rr = testhelpers.Do(t, a.Router, http.MethodGet, "/api/v1/jurisdictions/FED/holidays?year=next", nil)
	assertError(t, rr, http.StatusBadRequest, "InvalidRequest")

	rr = testhelpers.Do(t, a.Router, http.MethodGet, "/api/v1/jurisdictions/FED/holidays?year=0", nil)
	assertError(t, rr, http.StatusBadRequest, "InvalidRequest")
}

func TestJurisdiction_BusinessDayHandler(t *testing.T) {
	a := testhelpers.NewApp(t, databases.NewMemoryStore())

	tests := []struct {
		name     string
		date     string
		business bool
		next     string
		previous string
	}{
		{"holiday", "2025-01-20", false, "2025-01-21", "2025-01-17"},
		{"saturday", "2025-01-25", false, "2025-01-27", "2025-01-24"},
		{"business day", "2025-01-22", true, "2025-01-22", "2025-01-22"},
		{"observed independence day", "2026-07-03", false, "2026-07-06", "2026-07-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := testhelpers.Do(t, a.Router, http.MethodGet, "/api/v1/jurisdictions/FED/business-days/"+tt.date, nil)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			var got handlers.BusinessDayResponse
			testhelpers.Decode(t, rr, &got)
			assert.Equal(t, tt.business, got.IsBusinessDay)
			assert.Equal(t, date(t, tt.next), got.NextBusinessDay)
			assert.Equal(t, date(t, tt.previous), got.PreviousBusinessDay)
		})
	}

	rr := testhelpers.Do(t, a.Router, http.MethodGet, "/api/v1/jurisdictions/FED/business-days/someday", nil)
	assertError(t, rr, http.StatusBadRequest, "InvalidRequest")

	rr = testhelpers.Do(t, a.Router, http.MethodGet, "/api/v1/jurisdictions/XX/business-days/2025-01-20", nil)
	assertError(t, rr, http.StatusBadRequest, "UnknownJurisdiction")
}

func TestJurisdiction_JurisdictionsHandler(t *testing.T) {
	a := testhelpers.NewApp(t, databases.NewMemoryStore())

	rr := testhelpers.Do(t, a.Router, http.MethodGet, "/api/v1/jurisdictions", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got []handlers.JurisdictionResponse
	testhelpers.Decode(t, rr, &got)
	require.Len(t, got, 1)
	assert.Equal(t, handlers.JurisdictionResponse{
		Code:         "FED",
		Name:         "United States Federal Courts",
		TimeZone:     "America/New_York",
		FilingCutoff: "23:59",
	}, got[0])
}
