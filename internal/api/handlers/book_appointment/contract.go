package book_appointment

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/gateway"
	bookAppointment "github.com/m04kA/SMC-SchedulingService/internal/usecase/book_appointment"
)

type Gateway interface {
	Book(ctx context.Context, caller domain.Caller, req *bookAppointment.Request) (*gateway.AppointmentView, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
