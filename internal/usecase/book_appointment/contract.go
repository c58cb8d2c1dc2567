package book_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	ExistsActiveForVehicle(ctx context.Context, vehicleID int64, scheduledAt time.Time) (bool, error)
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
}

// CatalogRepository интерфейс чтения справочников
type CatalogRepository interface {
	GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error)
	GetOffering(ctx context.Context, id int64) (*domain.Offering, error)
	GetServiceCenter(ctx context.Context, id int64) (*domain.ServiceCenter, error)
}

// SlotAllocator интерфейс распределения боксов
type SlotAllocator interface {
	AssignSlot(ctx context.Context, appointment *domain.Appointment) (*domain.ServiceCenterSlot, error)
}

// EventPublisher интерфейс публикации событий после фиксации транзакции
type EventPublisher interface {
	AppointmentBooked(appointment *domain.Appointment)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
