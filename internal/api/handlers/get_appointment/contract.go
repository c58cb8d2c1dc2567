package get_appointment

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/gateway"
)

type Gateway interface {
	GetAppointment(ctx context.Context, caller domain.Caller, appointmentID int64) (*gateway.AppointmentView, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
