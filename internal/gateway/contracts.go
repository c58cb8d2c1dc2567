package gateway

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/usecase/book_appointment"
)

// BookingUseCase интерфейс создания записи
type BookingUseCase interface {
	Execute(ctx context.Context, caller domain.Caller, req *book_appointment.Request) (*book_appointment.Response, error)
}

// AppointmentService интерфейс жизненного цикла записи
type AppointmentService interface {
	Get(ctx context.Context, caller domain.Caller, id int64) (*domain.Appointment, error)
	ListPending(ctx context.Context, caller domain.Caller, serviceCenterID *int64) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, caller domain.Caller, id int64, rawStatus string) (*domain.Appointment, error)
	Cancel(ctx context.Context, caller domain.Caller, id int64) (*domain.Appointment, error)
}

// AssignmentService интерфейс назначения сотрудников
type AssignmentService interface {
	SelfAssign(ctx context.Context, caller domain.Caller, appointmentID int64) (*domain.Appointment, error)
	AdminAssign(ctx context.Context, caller domain.Caller, appointmentID int64, employeeIDs []int64) (*domain.Appointment, error)
	ListPossibleAppointments(ctx context.Context, caller domain.Caller) ([]*domain.Appointment, error)
	ListPossibleEmployees(ctx context.Context, caller domain.Caller, appointmentID int64) ([]*domain.User, error)
}

// SlotReader интерфейс чтения номера бокса
type SlotReader interface {
	GetSlotNumber(ctx context.Context, appointmentID int64) (int, error)
}

// ShiftReader интерфейс чтения смен записи
type ShiftReader interface {
	ListForAppointment(ctx context.Context, appointmentID int64) ([]*domain.ShiftSchedule, error)
}

// MetricsCollector интерфейс учёта операций планирования
type MetricsCollector interface {
	ObserveOperation(operation, result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
