package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

func TestStatusForCode(t *testing.T) {
	cases := map[*domain.BusinessError]int{
		domain.ErrAppointmentNotFound:   http.StatusNotFound,
		domain.ErrAccessDenied:          http.StatusForbidden,
		domain.ErrCapacityExceeded:      http.StatusConflict,
		domain.ErrConflictingShift:      http.StatusConflict,
		domain.ErrPastDate:              http.StatusBadRequest,
		domain.ErrInvalidStatus:         http.StatusBadRequest,
		domain.ErrServiceCenterInactive: http.StatusBadRequest,
	}

	for be, want := range cases {
		assert.Equal(t, want, StatusForCode(be.Code), be.Code)
	}
}

func TestRespondServiceError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondServiceError(rec, logger.Nop(), "TEST", fmt.Errorf("%w: employee id=5", domain.ErrConflictingShift))

	require.Equal(t, http.StatusConflict, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CONFLICTING_SHIFT", body.Code)
	assert.Equal(t, domain.ErrConflictingShift.Message, body.Message)

	rec = httptest.NewRecorder()
	RespondServiceError(rec, logger.Nop(), "TEST", errors.New("connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
