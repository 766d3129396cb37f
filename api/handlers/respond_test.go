package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/court-compliance-api/apperr"
)

func TestStatusFor(t *testing.T) {
	tests := map[apperr.Kind]int{
		apperr.InvalidPeriod:          http.StatusBadRequest,
		apperr.UnknownJurisdiction:    http.StatusBadRequest,
		apperr.JurisdictionalDeadline: http.StatusBadRequest,
		apperr.OverlappingDelay:       http.StatusBadRequest,
		apperr.InvalidRequest:         http.StatusBadRequest,
		apperr.NotFound:               http.StatusNotFound,
		apperr.AlreadyExists:          http.StatusConflict,
		apperr.ScheduleConflict:       http.StatusConflict,
		apperr.AlreadyDecided:         http.StatusConflict,
		apperr.SlotUnavailable:        http.StatusUnprocessableEntity,
		apperr.StorageFailure:         http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, statusFor(kind), string(kind))
	}
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?asOf=2025-01-20&n=7&bad=x", nil)

	d, err := queryDate(r, "asOf")
	assert.NoError(t, err)
	assert.Equal(t, "2025-01-20", d.String())

	d, err = queryDate(r, "missing")
	assert.NoError(t, err)
	assert.True(t, d.IsZero())

	n, err := queryInt(r, "n", 3)
	assert.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = queryInt(r, "missing", 3)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = queryInt(r, "bad", 3)
	assert.True(t, apperr.Is(err, apperr.InvalidRequest))
}
