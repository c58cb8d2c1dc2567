package assign_employees

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/gateway"
)

type Gateway interface {
	AssignEmployees(ctx context.Context, caller domain.Caller, appointmentID int64, employeeIDs []int64) (*gateway.AppointmentView, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
