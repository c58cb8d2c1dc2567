package book_appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/service/slots"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

const (
	customerID = int64(1)
	otherID    = int64(2)
	centerID   = int64(3)
	closedID   = int64(4)
	vehicleID  = int64(10)
	serviceID  = int64(100)
	modID      = int64(101)
	brokenID   = int64(102)
)

var now = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type recordingEvents struct {
	mu     sync.Mutex
	booked []int64
}

func (e *recordingEvents) AppointmentBooked(appointment *domain.Appointment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.booked = append(e.booked, appointment.ID)
}

func newUseCase(t *testing.T, capacity int) (*UseCase, *memory.Store, *recordingEvents) {
	t.Helper()
	store := memory.NewStore()
	store.AddServiceCenter(domain.ServiceCenter{ID: centerID, Name: "Центр", Active: true, SlotCapacity: capacity})
	store.AddServiceCenter(domain.ServiceCenter{ID: closedID, Name: "Закрыт", Active: false, SlotCapacity: 5})
	store.AddVehicle(domain.Vehicle{ID: vehicleID, OwnerID: customerID, Brand: "Lada", Model: "Vesta"})
	store.AddOffering(domain.Offering{ID: serviceID, Kind: domain.TypeService, Name: "ТО-1", EstimatedDurationMinutes: 90, Cost: 4500})
	store.AddOffering(domain.Offering{ID: modID, Kind: domain.TypeModification, Name: "Тонировка", EstimatedDurationMinutes: 120, Cost: 8000})
	store.AddOffering(domain.Offering{ID: brokenID, Kind: domain.TypeService, Name: "Без длительности"})

	events := &recordingEvents{}
	slotService := slots.NewService(store.Slots(), store.Catalog(), logger.Nop())
	uc := NewUseCase(store.Appointments(), store.Catalog(), slotService, events, store, logger.Nop()).
		WithTimeProvider(fixedTime{now})
	return uc, store, events
}

func customer(id int64) domain.Caller {
	return domain.Caller{UserID: id, Roles: []domain.Role{domain.RoleCustomer}}
}

func validRequest() *Request {
	return &Request{
		VehicleID:       vehicleID,
		OfferingID:      serviceID,
		ServiceCenterID: centerID,
		Type:            "SERVICE",
		ScheduledAt:     now.Add(24 * time.Hour),
		Description:     ptr.Ptr("  стучит подвеска  "),
	}
}

func TestExecute_Success(t *testing.T) {
	uc, store, events := newUseCase(t, 2)

	resp, err := uc.Execute(context.Background(), customer(customerID), validRequest())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, resp.Appointment.Status)
	assert.Equal(t, 90, resp.Appointment.DurationMinutes)
	assert.Equal(t, 4500.0, resp.Appointment.Cost)
	assert.Equal(t, "стучит подвеска", *resp.Appointment.Description)
	assert.Equal(t, 1, resp.SlotNumber)
	assert.Equal(t, []int64{resp.Appointment.ID}, events.booked)

	booked, err := store.Slots().CountBooked(context.Background(), centerID)
	require.NoError(t, err)
	assert.Equal(t, 1, booked)
}

func TestExecute_ValidationOrder(t *testing.T) {
	cases := []struct {
		name   string
		caller domain.Caller
		mutate func(r *Request)
		want   error
	}{
		{name: "not a customer", caller: domain.Caller{UserID: customerID, Roles: []domain.Role{domain.RoleEmployee}}, mutate: func(r *Request) {}, want: domain.ErrAccessDenied},
		{name: "missing vehicle id", caller: customer(customerID), mutate: func(r *Request) { r.VehicleID = 0 }, want: domain.ErrInvalidInput},
		{name: "missing time", caller: customer(customerID), mutate: func(r *Request) { r.ScheduledAt = time.Time{} }, want: domain.ErrInvalidInput},
		{name: "unknown vehicle beats missing type", caller: customer(customerID), mutate: func(r *Request) { r.VehicleID = 404; r.Type = "" }, want: domain.ErrVehicleNotFound},
		{name: "foreign vehicle", caller: customer(otherID), mutate: func(r *Request) {}, want: domain.ErrNotOwnVehicle},
		{name: "type missing beats unknown service", caller: customer(customerID), mutate: func(r *Request) { r.Type = " "; r.OfferingID = 404 }, want: domain.ErrAppointmentTypeRequired},
		{name: "unknown type", caller: customer(customerID), mutate: func(r *Request) { r.Type = "WASH" }, want: domain.ErrInvalidInput},
		{name: "unknown service", caller: customer(customerID), mutate: func(r *Request) { r.OfferingID = 404 }, want: domain.ErrServiceNotFound},
		{name: "service of other kind", caller: customer(customerID), mutate: func(r *Request) { r.OfferingID = modID }, want: domain.ErrServiceNotFound},
		{name: "service without duration", caller: customer(customerID), mutate: func(r *Request) { r.OfferingID = brokenID }, want: domain.ErrInvalidServiceDuration},
		{name: "unknown center beats past date", caller: customer(customerID), mutate: func(r *Request) { r.ServiceCenterID = 404; r.ScheduledAt = now.Add(-time.Hour) }, want: domain.ErrServiceCenterNotFound},
		{name: "inactive center", caller: customer(customerID), mutate: func(r *Request) { r.ServiceCenterID = closedID }, want: domain.ErrServiceCenterInactive},
		{name: "past date", caller: customer(customerID), mutate: func(r *Request) { r.ScheduledAt = now.Add(-time.Minute) }, want: domain.ErrPastDate},
		{name: "exactly now is not future", caller: customer(customerID), mutate: func(r *Request) { r.ScheduledAt = now }, want: domain.ErrPastDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, store, events := newUseCase(t, 2)
			req := validRequest()
			tc.mutate(req)

			_, err := uc.Execute(context.Background(), tc.caller, req)

			assert.ErrorIs(t, err, tc.want)
			list, listErr := store.Appointments().List(context.Background(), domain.AppointmentFilter{})
			require.NoError(t, listErr)
			assert.Empty(t, list)
			assert.Empty(t, events.booked)
		})
	}
}

func TestExecute_ModificationType(t *testing.T) {
	uc, _, _ := newUseCase(t, 2)
	req := validRequest()
	req.Type = "modification"
	req.OfferingID = modID

	resp, err := uc.Execute(context.Background(), customer(customerID), req)

	require.NoError(t, err)
	assert.Equal(t, domain.TypeModification, resp.Appointment.Type)
	assert.Equal(t, 120, resp.Appointment.DurationMinutes)
}

func TestExecute_Duplicate(t *testing.T) {
	uc, _, _ := newUseCase(t, 5)

	_, err := uc.Execute(context.Background(), customer(customerID), validRequest())
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), customer(customerID), validRequest())
	assert.ErrorIs(t, err, domain.ErrDuplicateAppointment)
}

func TestExecute_CapacityExceededLeavesNoAppointment(t *testing.T) {
	uc, store, _ := newUseCase(t, 1)
	store.AddVehicle(domain.Vehicle{ID: 11, OwnerID: customerID})

	_, err := uc.Execute(context.Background(), customer(customerID), validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.VehicleID = 11
	_, err = uc.Execute(context.Background(), customer(customerID), req)
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)

	list, err := store.Appointments().List(context.Background(), domain.AppointmentFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1, "failed booking must not persist")
}

func TestExecute_ConcurrentBookingsNeverOverbook(t *testing.T) {
	const capacity = 3
	const requests = capacity + 5

	uc, store, _ := newUseCase(t, capacity)
	for i := 0; i < requests; i++ {
		store.AddVehicle(domain.Vehicle{ID: int64(1000 + i), OwnerID: customerID})
	}

	var wg sync.WaitGroup
	errs := make(chan error, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := validRequest()
			req.VehicleID = int64(1000 + i)
			_, err := uc.Execute(context.Background(), customer(customerID), req)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded, rejected := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrCapacityExceeded):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, requests-capacity, rejected)

	booked, err := store.Slots().CountBooked(context.Background(), centerID)
	require.NoError(t, err)
	assert.Equal(t, capacity, booked)
}
