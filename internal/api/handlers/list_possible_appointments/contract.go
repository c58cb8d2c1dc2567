package list_possible_appointments

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

type Gateway interface {
	ListPossibleAppointments(ctx context.Context, caller domain.Caller) ([]*domain.Appointment, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
