package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/gateway"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	"github.com/m04kA/SMC-SchedulingService/internal/service/assignments"
	"github.com/m04kA/SMC-SchedulingService/internal/service/shifts"
	"github.com/m04kA/SMC-SchedulingService/internal/service/slots"
	"github.com/m04kA/SMC-SchedulingService/internal/usecase/book_appointment"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
)

type nopEvents struct{}

func (nopEvents) AppointmentBooked(*domain.Appointment)                       {}
func (nopEvents) AppointmentConfirmed(*domain.Appointment)                    {}
func (nopEvents) EmployeesAssigned(*domain.Appointment, []int64)              {}
func (nopEvents) StatusChanged(*domain.Appointment, domain.AppointmentStatus) {}
func (nopEvents) AppointmentCancelled(*domain.Appointment)                    {}

type client struct {
	t      *testing.T
	router http.Handler
}

func newClient(t *testing.T) *client {
	t.Helper()
	store := memory.NewStore()
	store.AddServiceCenter(domain.ServiceCenter{ID: 1, Name: "Центр", Active: true, SlotCapacity: 1})
	store.AddUser(domain.User{ID: 10, Active: true, Roles: []domain.Role{domain.RoleCustomer}})
	store.AddUser(domain.User{ID: 20, Name: "Иван", Active: true, Roles: []domain.Role{domain.RoleEmployee}})
	store.AddUser(domain.User{ID: 30, Active: true, Roles: []domain.Role{domain.RoleAdmin}})
	store.SetEmployeeCenter(20, 1)
	store.AddVehicle(domain.Vehicle{ID: 100, OwnerID: 10})
	store.AddVehicle(domain.Vehicle{ID: 101, OwnerID: 10})
	store.AddOffering(domain.Offering{ID: 5, Kind: domain.TypeService, Name: "ТО", EstimatedDurationMinutes: 45, Cost: 2500})

	log := logger.Nop()
	slotService := slots.NewService(store.Slots(), store.Catalog(), log)
	shiftService := shifts.NewService(store.Shifts(), log)
	g := gateway.New(
		book_appointment.NewUseCase(store.Appointments(), store.Catalog(), slotService, nopEvents{}, store, log),
		appointments.NewService(store.Appointments(), store.Catalog(), slotService, nopEvents{}, store, log),
		assignments.NewService(store.Appointments(), store.Catalog(), shiftService, nopEvents{}, store, log),
		slotService,
		shiftService,
		nil,
		log,
	)

	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry("scheduler-test", reg)
	router := NewRouter(g, log, Options{
		HTTPMetrics:    m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		MetricsPath:    "/metrics",
	})
	return &client{t: t, router: router}
}

func (c *client) do(method, path string, userID int64, roles string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	if userID != 0 {
		req.Header.Set("X-User-ID", fmt.Sprint(userID))
		req.Header.Set("X-User-Roles", roles)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func bookBody(vehicleID int64) map[string]interface{} {
	return map[string]interface{}{
		"vehicleId":       vehicleID,
		"serviceId":       5,
		"serviceCenterId": 1,
		"appointmentType": "SERVICE",
		"scheduledAt":     time.Now().Add(72 * time.Hour).UTC().Truncate(time.Minute).Format(time.RFC3339),
		"description":     "замена масла",
	}
}

func TestRouter_FullFlow(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPost, "/api/v1/appointments", 10, "CUSTOMER", bookBody(100))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booked := decode[handlers.AppointmentViewResponse](t, rec)
	assert.Equal(t, "PENDING", booked.Status)
	require.NotNil(t, booked.SlotNumber)
	assert.Equal(t, 1, *booked.SlotNumber)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = c.do(http.MethodPost, "/api/v1/appointments", 10, "CUSTOMER", bookBody(101))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CAPACITY_EXCEEDED", decode[handlers.ErrorResponse](t, rec).Code)

	appointmentPath := fmt.Sprintf("/api/v1/appointments/%d", booked.ID)

	rec = c.do(http.MethodGet, "/api/v1/appointments/pending?serviceCenterId=1", 20, "EMPLOYEE", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]handlers.AppointmentResponse](t, rec), 1)

	rec = c.do(http.MethodGet, "/api/v1/employees/me/possible-appointments", 20, "EMPLOYEE", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]handlers.AppointmentResponse](t, rec), 1)

	rec = c.do(http.MethodGet, appointmentPath+"/possible-employees", 30, "ADMIN", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	employees := decode[[]handlers.EmployeeResponse](t, rec)
	require.Len(t, employees, 1)
	assert.Equal(t, "Иван", employees[0].Name)

	rec = c.do(http.MethodPost, appointmentPath+"/self-assign", 20, "EMPLOYEE", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assigned := decode[handlers.AppointmentViewResponse](t, rec)
	assert.Equal(t, "CONFIRMED", assigned.Status)
	assert.Equal(t, []int64{20}, assigned.AssignedEmployeeIDs)
	require.Len(t, assigned.Shifts, 1)
	assert.Equal(t, "BY_SELF", assigned.Shifts[0].Origin)

	rec = c.do(http.MethodPatch, appointmentPath+"/status", 20, "EMPLOYEE", map[string]string{"status": "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, decode[handlers.AppointmentViewResponse](t, rec).StartedAt)

	rec = c.do(http.MethodPatch, appointmentPath+"/cancel", 10, "CUSTOMER", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CANNOT_CANCEL", decode[handlers.ErrorResponse](t, rec).Code)

	rec = c.do(http.MethodGet, appointmentPath, 10, "CUSTOMER", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IN_PROGRESS", decode[handlers.AppointmentViewResponse](t, rec).Status)

	rec = c.do(http.MethodGet, "/metrics", 0, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/v1/appointments/{appointmentId}/self-assign"`)
}

func TestRouter_ErrorMapping(t *testing.T) {
	c := newClient(t)

	cases := []struct {
		name   string
		method string
		path   string
		userID int64
		roles  string
		body   interface{}
		status int
		code   string
	}{
		{name: "no identity", method: http.MethodGet, path: "/api/v1/appointments/1", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "bad id", method: http.MethodGet, path: "/api/v1/appointments/abc", userID: 30, roles: "ADMIN", status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "not found", method: http.MethodGet, path: "/api/v1/appointments/999", userID: 30, roles: "ADMIN", status: http.StatusNotFound, code: "APPOINTMENT_NOT_FOUND"},
		{name: "bad scheduledAt", method: http.MethodPost, path: "/api/v1/appointments", userID: 10, roles: "CUSTOMER",
			body:   map[string]interface{}{"vehicleId": 100, "serviceId": 5, "serviceCenterId": 1, "appointmentType": "SERVICE", "scheduledAt": "tomorrow"},
			status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "unknown field", method: http.MethodPost, path: "/api/v1/appointments", userID: 10, roles: "CUSTOMER",
			body: map[string]interface{}{"carId": 1}, status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "foreign vehicle", method: http.MethodPost, path: "/api/v1/appointments", userID: 11, roles: "CUSTOMER",
			body: bookBody(100), status: http.StatusForbidden, code: "NOT_OWN_VEHICLE"},
		{name: "self-assign by customer", method: http.MethodPost, path: "/api/v1/appointments/1/self-assign", userID: 10, roles: "CUSTOMER",
			status: http.StatusForbidden, code: "NOT_EMPLOYEE"},
		{name: "empty batch", method: http.MethodPut, path: "/api/v1/appointments/1/employees", userID: 30, roles: "ADMIN",
			body: map[string]interface{}{"employeeIds": []int64{}}, status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "bad center filter", method: http.MethodGet, path: "/api/v1/appointments/pending?serviceCenterId=x", userID: 20, roles: "EMPLOYEE",
			status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "pending for customer", method: http.MethodGet, path: "/api/v1/appointments/pending", userID: 10, roles: "CUSTOMER",
			status: http.StatusForbidden, code: "ACCESS_DENIED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := c.do(tc.method, tc.path, tc.userID, tc.roles, tc.body)

			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, decode[handlers.ErrorResponse](t, rec).Code)
		})
	}
}

func TestRouter_InvalidStatus(t *testing.T) {
	c := newClient(t)
	rec := c.do(http.MethodPost, "/api/v1/appointments", 10, "CUSTOMER", bookBody(100))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[handlers.AppointmentViewResponse](t, rec).ID

	rec = c.do(http.MethodPatch, fmt.Sprintf("/api/v1/appointments/%d/status", id), 30, "ADMIN", map[string]string{"status": "DONE"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_STATUS", decode[handlers.ErrorResponse](t, rec).Code)
}
