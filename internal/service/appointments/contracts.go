package appointments

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
}

// VehicleRepository интерфейс обновления автомобилей
type VehicleRepository interface {
	UpdateVehicleLastServiceDate(ctx context.Context, vehicleID int64, date time.Time) error
}

// SlotReleaser интерфейс освобождения боксов
type SlotReleaser interface {
	ClearSlot(ctx context.Context, appointmentID int64) error
}

// EventPublisher интерфейс публикации событий после фиксации транзакции
type EventPublisher interface {
	StatusChanged(appointment *domain.Appointment, from domain.AppointmentStatus)
	AppointmentCancelled(appointment *domain.Appointment)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}
