package shifts

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ShiftRepository интерфейс репозитория смен
type ShiftRepository interface {
	LockEmployees(ctx context.Context, employeeIDs []int64) error
	FindOverlapping(ctx context.Context, employeeID int64, interval domain.Interval) ([]*domain.ShiftSchedule, error)
	Create(ctx context.Context, shift *domain.ShiftSchedule) (*domain.ShiftSchedule, error)
	ListByAppointment(ctx context.Context, appointmentID int64) ([]*domain.ShiftSchedule, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
