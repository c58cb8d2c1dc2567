package domain

import (
	"strings"
	"time"
)

// AppointmentStatus статус записи на обслуживание
type AppointmentStatus string

const (
	StatusPending    AppointmentStatus = "PENDING"
	StatusConfirmed  AppointmentStatus = "CONFIRMED"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusCancelled  AppointmentStatus = "CANCELLED"
)

// AppointmentType тип записи: обслуживание или доработка автомобиля
type AppointmentType string

const (
	TypeService      AppointmentType = "SERVICE"
	TypeModification AppointmentType = "MODIFICATION"
)

// transitions допустимые переходы между статусами.
// COMPLETED и CANCELLED терминальные.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusConfirmed},
}

// Appointment запись клиента в сервисный центр
type Appointment struct {
	ID              int64
	CustomerID      int64
	VehicleID       int64
	OfferingID      int64 // услуга или доработка, определяет длительность и стоимость
	ServiceCenterID int64
	Type            AppointmentType
	ScheduledAt     time.Time
	Status          AppointmentStatus

	// Denormalized data from the offering at booking time
	DurationMinutes int
	Cost            float64

	Description         *string
	AssignedEmployeeIDs []int64

	StartedAt   *time.Time // фактическое начало работ
	CompletedAt *time.Time // фактическое окончание работ

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Interval возвращает плановый интервал работ [ScheduledAt, ScheduledAt+DurationMinutes)
func (a *Appointment) Interval() Interval {
	return NewInterval(a.ScheduledAt, a.DurationMinutes)
}

// IsActive returns true if the appointment still holds capacity
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

// IsTerminal returns true if no further transitions are possible
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeAssigned returns true if employees can still be attached to the appointment
func (a *Appointment) CanBeAssigned() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// HasEmployee проверяет, назначен ли сотрудник на запись
func (a *Appointment) HasEmployee(employeeID int64) bool {
	for _, id := range a.AssignedEmployeeIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}

// CanTransition проверяет, разрешён ли переход from -> to
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ParseAppointmentStatus конвертирует строку в AppointmentStatus с валидацией
func ParseAppointmentStatus(raw string) (AppointmentStatus, error) {
	status := AppointmentStatus(strings.ToUpper(strings.TrimSpace(raw)))
	for _, valid := range AllStatuses {
		if status == valid {
			return status, nil
		}
	}
	return "", ErrInvalidStatus
}

// ParseAppointmentType конвертирует строку в AppointmentType.
// Пустая строка означает, что тип не указан.
func ParseAppointmentType(raw string) (AppointmentType, error) {
	t := AppointmentType(strings.ToUpper(strings.TrimSpace(raw)))
	switch t {
	case "":
		return "", ErrAppointmentTypeRequired
	case TypeService, TypeModification:
		return t, nil
	default:
		return "", ErrInvalidInput
	}
}

// AppointmentFilter фильтр для выборки записей
type AppointmentFilter struct {
	ServiceCenterID *int64             // Фильтр по сервисному центру (опционально)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	CustomerID      *int64             // Фильтр по клиенту (опционально)
}
