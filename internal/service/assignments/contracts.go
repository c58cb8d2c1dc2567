package assignments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, startedAt, completedAt *time.Time) error
	AddEmployees(ctx context.Context, appointmentID int64, employeeIDs []int64) error
}

// UserRepository интерфейс чтения сотрудников и их привязки к центрам
type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetEmployeeCenter(ctx context.Context, employeeID int64) (*domain.EmployeeCenter, error)
	ListEmployeesByCenter(ctx context.Context, serviceCenterID int64) ([]*domain.User, error)
}

// ShiftReserver интерфейс сервиса смен
type ShiftReserver interface {
	HasConflict(ctx context.Context, employeeID int64, interval domain.Interval) (bool, error)
	Reserve(ctx context.Context, appointment *domain.Appointment, employeeIDs []int64, origin domain.ShiftOrigin) ([]*domain.ShiftSchedule, error)
}

// EventPublisher интерфейс публикации событий после фиксации транзакции
type EventPublisher interface {
	EmployeesAssigned(appointment *domain.Appointment, employeeIDs []int64)
	AppointmentConfirmed(appointment *domain.Appointment)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
