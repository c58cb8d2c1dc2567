package list_possible_employees

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

type Gateway interface {
	ListPossibleEmployees(ctx context.Context, caller domain.Caller, appointmentID int64) ([]*domain.User, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
