package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/slot"
)

// AppointmentRepository записи в памяти
type AppointmentRepository struct {
	store *Store
}

func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	var created *domain.Appointment
	err := r.store.access(ctx, func(st *state) error {
		if a.Status != domain.StatusCancelled && st.hasActiveAppointment(a.VehicleID, a.ScheduledAt) {
			return appointment.ErrDuplicate
		}

		st.nextAppointmentID++
		now := r.store.now()

		stored := cloneAppointment(a)
		stored.ID = st.nextAppointmentID
		stored.CreatedAt = now
		stored.UpdatedAt = now
		st.appointments[stored.ID] = stored

		a.ID = stored.ID
		a.CreatedAt = now
		a.UpdatedAt = now
		a.AssignedEmployeeIDs = append(make([]int64, 0), stored.AssignedEmployeeIDs...)
		created = a
		return nil
	})
	return created, err
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	var found *domain.Appointment
	err := r.store.access(ctx, func(st *state) error {
		a, ok := st.appointments[id]
		if !ok {
			return appointment.ErrAppointmentNotFound
		}
		found = cloneAppointment(a)
		return nil
	})
	return found, err
}

func (r *AppointmentRepository) ExistsActiveForVehicle(ctx context.Context, vehicleID int64, scheduledAt time.Time) (bool, error) {
	var exists bool
	err := r.store.access(ctx, func(st *state) error {
		exists = st.hasActiveAppointment(vehicleID, scheduledAt)
		return nil
	})
	return exists, err
}

func (r *AppointmentRepository) List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	result := make([]*domain.Appointment, 0)
	err := r.store.access(ctx, func(st *state) error {
		for _, id := range sortedIDs(st.appointments) {
			a := st.appointments[id]
			if filter.ServiceCenterID != nil && a.ServiceCenterID != *filter.ServiceCenterID {
				continue
			}
			if filter.Status != nil && a.Status != *filter.Status {
				continue
			}
			if filter.CustomerID != nil && a.CustomerID != *filter.CustomerID {
				continue
			}
			result = append(result, cloneAppointment(a))
		}
		return nil
	})

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ScheduledAt.Before(result[j].ScheduledAt)
	})
	return result, err
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, startedAt, completedAt *time.Time) error {
	return r.store.access(ctx, func(st *state) error {
		a, ok := st.appointments[id]
		if !ok {
			return appointment.ErrAppointmentNotFound
		}
		a.Status = status
		a.StartedAt = copyTime(startedAt)
		a.CompletedAt = copyTime(completedAt)
		a.UpdatedAt = r.store.now()
		return nil
	})
}

func (r *AppointmentRepository) AddEmployees(ctx context.Context, appointmentID int64, employeeIDs []int64) error {
	return r.store.access(ctx, func(st *state) error {
		a, ok := st.appointments[appointmentID]
		if !ok {
			return appointment.ErrAppointmentNotFound
		}
		for _, employeeID := range employeeIDs {
			if !a.HasEmployee(employeeID) {
				a.AssignedEmployeeIDs = append(a.AssignedEmployeeIDs, employeeID)
			}
		}
		sort.Slice(a.AssignedEmployeeIDs, func(i, j int) bool {
			return a.AssignedEmployeeIDs[i] < a.AssignedEmployeeIDs[j]
		})
		return nil
	})
}

func (st *state) hasActiveAppointment(vehicleID int64, scheduledAt time.Time) bool {
	for _, a := range st.appointments {
		if a.VehicleID == vehicleID && a.ScheduledAt.Equal(scheduledAt) && a.Status != domain.StatusCancelled {
			return true
		}
	}
	return false
}

// SlotRepository пул боксов в памяти
type SlotRepository struct {
	store *Store
}

func (r *SlotRepository) CreatePool(ctx context.Context, serviceCenterID int64, capacity int) error {
	return r.store.access(ctx, func(st *state) error {
		existing := make(map[int]bool)
		for _, s := range st.slots {
			if s.ServiceCenterID == serviceCenterID {
				existing[s.SlotNumber] = true
			}
		}
		for n := 1; n <= capacity; n++ {
			if existing[n] {
				continue
			}
			st.nextSlotID++
			st.slots = append(st.slots, &domain.ServiceCenterSlot{
				ID:              st.nextSlotID,
				ServiceCenterID: serviceCenterID,
				SlotNumber:      n,
				UpdatedAt:       r.store.now(),
			})
		}
		return nil
	})
}

func (r *SlotRepository) ClaimFree(ctx context.Context, serviceCenterID int64, capacity int, appointmentID int64) (*domain.ServiceCenterSlot, error) {
	var claimed *domain.ServiceCenterSlot
	err := r.store.access(ctx, func(st *state) error {
		var best *domain.ServiceCenterSlot
		for _, s := range st.slots {
			if s.ServiceCenterID != serviceCenterID || !s.IsFree() || s.SlotNumber > capacity {
				continue
			}
			if best == nil || s.SlotNumber < best.SlotNumber {
				best = s
			}
		}
		if best == nil {
			return slot.ErrNoFreeSlot
		}

		id := appointmentID
		best.Booked = true
		best.AppointmentID = &id
		best.UpdatedAt = r.store.now()
		claimed = cloneSlot(best)
		return nil
	})
	return claimed, err
}

func (r *SlotRepository) GetByAppointment(ctx context.Context, appointmentID int64) (*domain.ServiceCenterSlot, error) {
	var found *domain.ServiceCenterSlot
	err := r.store.access(ctx, func(st *state) error {
		for _, s := range st.slots {
			if s.AppointmentID != nil && *s.AppointmentID == appointmentID {
				found = cloneSlot(s)
				return nil
			}
		}
		return slot.ErrSlotNotFound
	})
	return found, err
}

func (r *SlotRepository) Release(ctx context.Context, appointmentID int64) (bool, error) {
	released := false
	err := r.store.access(ctx, func(st *state) error {
		for _, s := range st.slots {
			if s.AppointmentID != nil && *s.AppointmentID == appointmentID {
				s.Booked = false
				s.AppointmentID = nil
				s.UpdatedAt = r.store.now()
				released = true
			}
		}
		return nil
	})
	return released, err
}

func (r *SlotRepository) CountBooked(ctx context.Context, serviceCenterID int64) (int, error) {
	count := 0
	err := r.store.access(ctx, func(st *state) error {
		for _, s := range st.slots {
			if s.ServiceCenterID == serviceCenterID && s.Booked {
				count++
			}
		}
		return nil
	})
	return count, err
}

// ShiftRepository смены в памяти
type ShiftRepository struct {
	store *Store
}

// LockEmployees ничего не делает: транзакции хранилища и так не пересекаются
func (r *ShiftRepository) LockEmployees(ctx context.Context, employeeIDs []int64) error {
	return nil
}

func (r *ShiftRepository) FindOverlapping(ctx context.Context, employeeID int64, interval domain.Interval) ([]*domain.ShiftSchedule, error) {
	result := make([]*domain.ShiftSchedule, 0)
	err := r.store.access(ctx, func(st *state) error {
		for _, s := range st.shifts {
			if s.EmployeeID != employeeID || !s.Interval().Overlaps(interval) {
				continue
			}
			if a, ok := st.appointments[s.AppointmentID]; ok && a.Status == domain.StatusCancelled {
				continue
			}
			copied := *s
			result = append(result, &copied)
		}
		return nil
	})

	sort.Slice(result, func(i, j int) bool { return result[i].StartAt.Before(result[j].StartAt) })
	return result, err
}

func (r *ShiftRepository) Create(ctx context.Context, shift *domain.ShiftSchedule) (*domain.ShiftSchedule, error) {
	err := r.store.access(ctx, func(st *state) error {
		st.nextShiftID++
		shift.ID = st.nextShiftID
		shift.CreatedAt = r.store.now()

		copied := *shift
		st.shifts = append(st.shifts, &copied)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

func (r *ShiftRepository) ListByAppointment(ctx context.Context, appointmentID int64) ([]*domain.ShiftSchedule, error) {
	result := make([]*domain.ShiftSchedule, 0)
	err := r.store.access(ctx, func(st *state) error {
		for _, s := range st.shifts {
			if s.AppointmentID == appointmentID {
				copied := *s
				result = append(result, &copied)
			}
		}
		return nil
	})

	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeID < result[j].EmployeeID })
	return result, err
}

// CatalogRepository справочники в памяти
type CatalogRepository struct {
	store *Store
}

func (r *CatalogRepository) GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error) {
	var found *domain.Vehicle
	err := r.store.access(ctx, func(st *state) error {
		v, ok := st.vehicles[id]
		if !ok {
			return catalog.ErrVehicleNotFound
		}
		found = cloneVehicle(v)
		return nil
	})
	return found, err
}

func (r *CatalogRepository) UpdateVehicleLastServiceDate(ctx context.Context, vehicleID int64, date time.Time) error {
	return r.store.access(ctx, func(st *state) error {
		v, ok := st.vehicles[vehicleID]
		if !ok {
			return catalog.ErrVehicleNotFound
		}
		v.LastServiceDate = &date
		return nil
	})
}

func (r *CatalogRepository) GetOffering(ctx context.Context, id int64) (*domain.Offering, error) {
	var found *domain.Offering
	err := r.store.access(ctx, func(st *state) error {
		o, ok := st.offerings[id]
		if !ok {
			return catalog.ErrOfferingNotFound
		}
		copied := *o
		found = &copied
		return nil
	})
	return found, err
}

func (r *CatalogRepository) GetServiceCenter(ctx context.Context, id int64) (*domain.ServiceCenter, error) {
	var found *domain.ServiceCenter
	err := r.store.access(ctx, func(st *state) error {
		c, ok := st.centers[id]
		if !ok {
			return catalog.ErrServiceCenterNotFound
		}
		copied := *c
		found = &copied
		return nil
	})
	return found, err
}

func (r *CatalogRepository) ListServiceCenters(ctx context.Context) ([]*domain.ServiceCenter, error) {
	result := make([]*domain.ServiceCenter, 0)
	err := r.store.access(ctx, func(st *state) error {
		for _, id := range sortedIDs(st.centers) {
			copied := *st.centers[id]
			result = append(result, &copied)
		}
		return nil
	})
	return result, err
}

func (r *CatalogRepository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var found *domain.User
	err := r.store.access(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return catalog.ErrUserNotFound
		}
		found = cloneUser(u)
		return nil
	})
	return found, err
}

func (r *CatalogRepository) GetEmployeeCenter(ctx context.Context, employeeID int64) (*domain.EmployeeCenter, error) {
	var found *domain.EmployeeCenter
	err := r.store.access(ctx, func(st *state) error {
		centerID, ok := st.employeeCenters[employeeID]
		if !ok {
			return catalog.ErrEmployeeCenterNotFound
		}
		found = &domain.EmployeeCenter{EmployeeID: employeeID, ServiceCenterID: centerID}
		return nil
	})
	return found, err
}

func (r *CatalogRepository) ListEmployeesByCenter(ctx context.Context, serviceCenterID int64) ([]*domain.User, error) {
	result := make([]*domain.User, 0)
	err := r.store.access(ctx, func(st *state) error {
		for _, id := range sortedIDs(st.users) {
			u := st.users[id]
			centerID, ok := st.employeeCenters[id]
			if ok && centerID == serviceCenterID && u.IsActiveEmployee() {
				result = append(result, cloneUser(u))
			}
		}
		return nil
	})
	return result, err
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}
