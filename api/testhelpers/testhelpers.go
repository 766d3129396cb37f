// Package testhelpers builds a fully wired App for handler tests.
package testhelpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/court-compliance-api/api/handlers"
	"github.com/linesmerrill/court-compliance-api/config"
	"github.com/linesmerrill/court-compliance-api/databases"
	"github.com/linesmerrill/court-compliance-api/databases/mocks"
	"github.com/linesmerrill/court-compliance-api/tenant"
)

// Tenant is the namespace requests are sent as
const Tenant = "district-test"

// NewApp wires an App on store with default settings and a private metrics
// registry, and builds its router
func NewApp(t *testing.T, store databases.KeyValueStore) *handlers.App {
	t.Helper()
	a := &handlers.App{Config: config.Config{
		ReminderOffsets:      []int{30, 14, 7, 1},
		SpeedyTrialLimitDays: 70,
		ApproachingDays:      10,
		SlotHorizonDays:      90,
		SlotIncrementMinutes: 30,
	}}
	require.NoError(t, a.Setup(store, prometheus.NewRegistry()))
	a.Router = a.New()
	return a
}

// FailingStore returns a store whose every operation fails
func FailingStore() *mocks.KeyValueStore {
	err := errors.New("mocked-error")
	store := &mocks.KeyValueStore{}
	store.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(nil, err).Maybe()
	store.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(err).Maybe()
	store.On("Delete", mock.Anything, mock.Anything, mock.Anything).Return(err).Maybe()
	store.On("Keys", mock.Anything, mock.Anything, mock.Anything).Return(nil, err).Maybe()
	store.On("CompareAndSwap", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, err).Maybe()
	store.On("Close").Return(nil).Maybe()
	return store
}

// RawJSON is a request body sent exactly as written
type RawJSON string

// Do sends a request through router as Tenant. A non-nil body is sent as JSON.
func Do(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case RawJSON:
		buf.WriteString(string(b))
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tenant.HeaderTenantID, Tenant)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// Decode unmarshals a recorded JSON response into v
func Decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}
