package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/court-compliance-api/api/handlers"
	"github.com/linesmerrill/court-compliance-api/api/testhelpers"
	"github.com/linesmerrill/court-compliance-api/databases"
	"github.com/linesmerrill/court-compliance-api/deadlines"
	"github.com/linesmerrill/court-compliance-api/models"
	"github.com/linesmerrill/court-compliance-api/tenant"
)

func date(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, kind string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, rr.Body.String())
	var body models.ErrorMessageResponse
	testhelpers.Decode(t, rr, &body)
	assert.Equal(t, kind, body.Response.Kind)
	assert.NotEmpty(t, body.Response.Message)
}

func createDeadline(t *testing.T, router http.Handler, jurisdictional bool) models.Deadline {
	t.Helper()
	req := deadlines.CreateRequest{
		ComputeRequest: deadlines.ComputeRequest{
			TriggerDate: date(t, "2030-03-01"),
			PeriodDays:  14,
		},
		CaseID:           "1:30-cv-00042",
		DeadlineType:     "answer",
		Description:      "Answer to complaint",
		RuleCitation:     "FRCP 12(a)(1)(A)(i)",
		ResponsibleParty: "counsel@example.com",
		Jurisdictional:   jurisdictional,
	}
	rr := testhelpers.Do(t, router, http.MethodPost, "/api/v1/deadlines", req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var d models.Deadline
	testhelpers.Decode(t, rr, &d)
	return d
}

func TestDeadline_ComputeHandler(t *testing.T) {
	a := testhelpers.NewApp(t, databases.NewMemoryStore())

	rr := testhelpers.Do(t, a.Router, http.MethodPost, "/api/v1/deadlines/compute",
		testhelpers.RawJSON(`{"triggerDate":"2025-01-10","periodDays":15}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got models.Computation
	testhelpers.Decode(t, rr, &got)
	assert.Equal(t, date(t, "2025-01-27"), got.DueDate)
	assert.Equal(t, date(t, "2025-01-25"), got.RawLandingDate)
	assert.Equal(t, "FED", got.Jurisdiction)
	assert.Equal(t, "America/New_York", got.TimeZone)
	assert.NotEmpty(t, got.Notes)
}

func TestDeadline_ComputeHandlerErrors(t *testing.T) {
	a := testhelpers.NewApp(t, databases.NewMemoryStore())

	tests := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"malformed body", `{"triggerDate":`, http.StatusBadRequest, "InvalidRequest"},
		{"bad date", `{"triggerDate":"01/10/2025","periodDays":14}`, http.StatusBadRequest, "InvalidRequest"},
		{"zero period", `{"triggerDate":"2025-01-10","periodDays":0}`, http.StatusBadRequest, "InvalidPeriod"},
		{"unknown jurisdiction", `{"triggerDate":"2025-01-10","periodDays":14,"jurisdiction":"XX"}`, http.StatusBadRequest, "UnknownJurisdiction"},
		{"unknown service method", `{"triggerDate":"2025-01-10","periodDays":14,"serviceMethod":"pigeon"}`, http.StatusBadRequest, "InvalidRequest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := testhelpers.Do(t, a.Router, http.MethodPost, "/api/v1/deadlines/compute", testhelpers.RawJSON(tt.body))
			assertError(t, rr, tt.status, tt.kind)
		})
	}
}

func TestDeadline_Lifecycle(t *testing.T) {
	a := testhelpers.NewApp(t, databases.NewMemoryStore())
	d := createDeadline(t, a.Router, false)

	assert.Equal(t, date(t, "2030-03-15"), d.DueDate)
	assert.Equal(t, models.DeadlineOpen, d.Status)
	assert.Len(t, d.ReminderIDs, 4)

	rr := testhelpers.Do(t, a.Router, http.MethodGet, "/api/v1/deadlines/"+d.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, testhelpers.Tenant, rr.Header().Get(tenant.HeaderTenantID))

	rr = testhelpers.Do(t, a.Router, http.MethodGet, "/api/v1/cases/1:30-cv-00042/deadlines", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []models.Deadline
	testhelpers.Decode(t, rr, &list)
	require.Len(t, list, 1)
	assert.Equal(t, d.ID, list[0].ID)

	rr = testhelpers.Do(t, a.Router, http.MethodGet, "/api/v1/deadlines/"+d.ID+"/reminders", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var reminders []models.Reminder
	testhelpers.Decode(t, rr, &reminders)
	require.Len(t, reminders, 4)
	assert.Equal(t, date(t, "2030-02-13"), reminders[0].ScheduledFor)
	assert.Equal(t, date(t, "2030-03-14"), reminders[3].ScheduledFor)

	rr = testhelpers.Do(t, a.Router, http.MethodPost, "/api/v1/reminders/"+reminders[0].ID+"/acknowledge",
		map[string]string{"acknowledgedBy": "paralegal"})
	require.Equal(t, http.StatusOK, rr.Code)
	var ack models.Reminder
	testhelpers.Decode(t, rr, &ack)
	assert.True(t, ack.Acknowledged)
	assert.Equal(t, "paralegal", ack.AcknowledgedBy)

	rr = testhelpers.Do(t, a.Router, http.MethodPost, "/api/v1/deadlines/"+d.ID+"/complete",
		map[string]string{"completedBy": "counsel"})
	require.Equal(t, http.StatusOK, rr.Code)
	var done models.Deadline
	testhelpers.Decode(t, rr, &done)
	assert.Equal(t, models.DeadlineCompleted, done.Status)
	assert.Equal(t, "counsel", done.CompletedBy)

	rr = testhelpers.Do(t, a.Router, http.MethodPost, "/api/v1/deadlines/"+d.ID+"/complete",
		map[string]string{"completedBy": "counsel"})
	assertError(t, rr, http.StatusBadRequest, "InvalidRequest")
}

func TestDeadline_TenantIsolation(t *testing.T) {
	a := testhelpers.NewApp(t, databases.NewMemoryStore())
	d := createDeadline(t, a.Router, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deadlines/"+d.ID, nil)
	req.Header.Set(tenant.HeaderTenantID, "other-district")
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)

	assertError(t, rr, http.StatusNotFound, "NotFound")
	assert.Equal(t, "other-district", rr.Header().Get(tenant.HeaderTenantID))
}

func TestDeadline_DeadlineByIDHandlerNotFound(t *testing.T) {
	a := testhelpers.NewApp(t, databases.NewMemoryStore())
	d := handlers.Deadline{Service: a.Deadlines, Reminders: a.Reminders}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deadlines/1234", nil)
	req = mux.SetURLVars(req, map[string]string{"deadline_id": "1234"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(d.DeadlineByIDHandler).ServeHTTP(rr, req)

	assertError(t, rr, http.StatusNotFound, "NotFound")

	rr = testhelpers.Do(t, a.Router, http.MethodGet, "/api/v1/deadlines/1234/reminders", nil)
	assertError(t, rr, http.StatusNotFound, "NotFound")
}

func TestDeadline_CreateDeadlineHandlerValidation(t *testing.T) {
	a := testhelpers.NewApp(t, databases.NewMemoryStore())

	rr := testhelpers.Do(t, a.Router, http.MethodPost, "/api/v1/deadlines",
		testhelpers.RawJSON(`{"triggerDate":"2030-03-01","periodDays":14}`))
	assertError(t, rr, http.StatusBadRequest, "InvalidRequest")
}

func TestDeadline_StorageFailure(t *testing.T) {
	a := testhelpers.NewApp(t, testhelpers.FailingStore())

	rr := testhelpers.Do(t, a.Router, http.MethodGet, "/api/v1/deadlines/1234", nil)
	assertError(t, rr, http.StatusInternalServerError, "StorageFailure")

	rr = testhelpers.Do(t, a.Router, http.MethodGet, "/api/v1/cases/abc/deadlines", nil)
	assertError(t, rr, http.StatusInternalServerError, "StorageFailure")
}
