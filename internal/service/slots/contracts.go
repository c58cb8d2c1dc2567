package slots

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// SlotRepository интерфейс репозитория боксов
type SlotRepository interface {
	CreatePool(ctx context.Context, serviceCenterID int64, capacity int) error
	ClaimFree(ctx context.Context, serviceCenterID int64, capacity int, appointmentID int64) (*domain.ServiceCenterSlot, error)
	GetByAppointment(ctx context.Context, appointmentID int64) (*domain.ServiceCenterSlot, error)
	Release(ctx context.Context, appointmentID int64) (bool, error)
	CountBooked(ctx context.Context, serviceCenterID int64) (int, error)
}

// CenterRepository интерфейс чтения сервисных центров
type CenterRepository interface {
	GetServiceCenter(ctx context.Context, id int64) (*domain.ServiceCenter, error)
	ListServiceCenters(ctx context.Context) ([]*domain.ServiceCenter, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
