package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Store хранилище в памяти процесса для локального запуска и тестов.
// Все транзакции выполняются строго последовательно, при ошибке состояние откатывается к снимку.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

type state struct {
	nextAppointmentID int64
	nextSlotID        int64
	nextShiftID       int64

	appointments    map[int64]*domain.Appointment
	slots           []*domain.ServiceCenterSlot
	shifts          []*domain.ShiftSchedule
	vehicles        map[int64]*domain.Vehicle
	offerings       map[int64]*domain.Offering
	centers         map[int64]*domain.ServiceCenter
	users           map[int64]*domain.User
	employeeCenters map[int64]int64
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		state: &state{
			appointments:    make(map[int64]*domain.Appointment),
			vehicles:        make(map[int64]*domain.Vehicle),
			offerings:       make(map[int64]*domain.Offering),
			centers:         make(map[int64]*domain.ServiceCenter),
			users:           make(map[int64]*domain.User),
			employeeCenters: make(map[int64]int64),
		},
		now: time.Now,
	}
}

type txKey struct{}

// DoSerializable выполняет fn атомарно: транзакции не пересекаются, при ошибке изменения отбрасываются.
// Вложенный вызов выполняется в рамках внешней транзакции.
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	defer func() {
		if p := recover(); p != nil {
			s.state = snapshot
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// Do то же, что DoSerializable: в памяти все транзакции сериализуемые
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.DoSerializable(ctx, fn)
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// access выполняет fn под блокировкой хранилища, если вызов не внутри транзакции
func (s *Store) access(ctx context.Context, fn func(st *state) error) error {
	if s.inTx(ctx) {
		return fn(s.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// Appointments репозиторий записей
func (s *Store) Appointments() *AppointmentRepository {
	return &AppointmentRepository{store: s}
}

// Slots репозиторий боксов
func (s *Store) Slots() *SlotRepository {
	return &SlotRepository{store: s}
}

// Shifts репозиторий смен
func (s *Store) Shifts() *ShiftRepository {
	return &ShiftRepository{store: s}
}

// Catalog репозиторий справочников
func (s *Store) Catalog() *CatalogRepository {
	return &CatalogRepository{store: s}
}

// AddServiceCenter добавляет или заменяет сервисный центр
func (s *Store) AddServiceCenter(center domain.ServiceCenter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.centers[center.ID] = &center
}

// AddUser добавляет или заменяет пользователя
func (s *Store) AddUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Roles = append([]domain.Role(nil), user.Roles...)
	s.state.users[user.ID] = &user
}

// SetEmployeeCenter привязывает сотрудника к сервисному центру
func (s *Store) SetEmployeeCenter(employeeID, serviceCenterID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.employeeCenters[employeeID] = serviceCenterID
}

// AddVehicle добавляет или заменяет автомобиль
func (s *Store) AddVehicle(vehicle domain.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.vehicles[vehicle.ID] = cloneVehicle(&vehicle)
}

// AddOffering добавляет или заменяет услугу
func (s *Store) AddOffering(offering domain.Offering) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.offerings[offering.ID] = &offering
}

func (st *state) clone() *state {
	c := &state{
		nextAppointmentID: st.nextAppointmentID,
		nextSlotID:        st.nextSlotID,
		nextShiftID:       st.nextShiftID,
		appointments:      make(map[int64]*domain.Appointment, len(st.appointments)),
		slots:             make([]*domain.ServiceCenterSlot, 0, len(st.slots)),
		shifts:            make([]*domain.ShiftSchedule, 0, len(st.shifts)),
		vehicles:          make(map[int64]*domain.Vehicle, len(st.vehicles)),
		offerings:         make(map[int64]*domain.Offering, len(st.offerings)),
		centers:           make(map[int64]*domain.ServiceCenter, len(st.centers)),
		users:             make(map[int64]*domain.User, len(st.users)),
		employeeCenters:   make(map[int64]int64, len(st.employeeCenters)),
	}

	for id, a := range st.appointments {
		c.appointments[id] = cloneAppointment(a)
	}
	for _, slot := range st.slots {
		c.slots = append(c.slots, cloneSlot(slot))
	}
	for _, shift := range st.shifts {
		copied := *shift
		c.shifts = append(c.shifts, &copied)
	}
	for id, v := range st.vehicles {
		c.vehicles[id] = cloneVehicle(v)
	}
	for id, o := range st.offerings {
		copied := *o
		c.offerings[id] = &copied
	}
	for id, center := range st.centers {
		copied := *center
		c.centers[id] = &copied
	}
	for id, u := range st.users {
		c.users[id] = cloneUser(u)
	}
	for employeeID, centerID := range st.employeeCenters {
		c.employeeCenters[employeeID] = centerID
	}

	return c
}

func cloneAppointment(a *domain.Appointment) *domain.Appointment {
	copied := *a
	copied.AssignedEmployeeIDs = append(make([]int64, 0, len(a.AssignedEmployeeIDs)), a.AssignedEmployeeIDs...)
	if a.Description != nil {
		d := *a.Description
		copied.Description = &d
	}
	if a.StartedAt != nil {
		t := *a.StartedAt
		copied.StartedAt = &t
	}
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		copied.CompletedAt = &t
	}
	return &copied
}

func cloneSlot(slot *domain.ServiceCenterSlot) *domain.ServiceCenterSlot {
	copied := *slot
	if slot.AppointmentID != nil {
		id := *slot.AppointmentID
		copied.AppointmentID = &id
	}
	return &copied
}

func cloneVehicle(v *domain.Vehicle) *domain.Vehicle {
	copied := *v
	if v.LastServiceDate != nil {
		t := *v.LastServiceDate
		copied.LastServiceDate = &t
	}
	return &copied
}

func cloneUser(u *domain.User) *domain.User {
	copied := *u
	copied.Roles = append([]domain.Role(nil), u.Roles...)
	return &copied
}

func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
