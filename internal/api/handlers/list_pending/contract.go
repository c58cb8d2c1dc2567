package list_pending

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

type Gateway interface {
	ListPending(ctx context.Context, caller domain.Caller, serviceCenterID *int64) ([]*domain.Appointment, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
