package book_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/catalog"
)

// UseCase use case записи клиента в сервисный центр
type UseCase struct {
	appointmentRepo AppointmentRepository
	catalogRepo     CatalogRepository
	slots           SlotAllocator
	events          EventPublisher
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	catalogRepo CatalogRepository,
	slots SlotAllocator,
	events EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
		slots:           slots,
		events:          events,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute создает запись в статусе PENDING и закрепляет за ней бокс.
// Проверки выполняются строго по порядку и прерываются на первой ошибке:
// форма запроса, автомобиль, тип записи, услуга, сервисный центр, время, дубликат, ёмкость.
// Запись и бокс создаются в одной сериализуемой транзакции: при нехватке боксов запись не сохраняется.
func (uc *UseCase) Execute(ctx context.Context, caller domain.Caller, req *Request) (*Response, error) {
	if !caller.HasRole(domain.RoleCustomer) {
		uc.logger.Warn("BookAppointment: user=%d is not a customer", caller.UserID)
		return nil, domain.ErrAccessDenied
	}

	// 1. Форма запроса
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookAppointment: validation failed for user=%d: %v", caller.UserID, err)
		return nil, err
	}

	uc.logger.Info("BookAppointment: user=%d, vehicle=%d, service=%d, center=%d, type=%s, at=%s",
		caller.UserID, req.VehicleID, req.OfferingID, req.ServiceCenterID, req.Type, req.ScheduledAt.Format("2006-01-02 15:04"))

	// 2. Автомобиль существует и принадлежит клиенту
	vehicle, err := uc.catalogRepo.GetVehicle(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrVehicleNotFound) {
			uc.logger.Warn("BookAppointment: vehicle id=%d not found", req.VehicleID)
			return nil, domain.ErrVehicleNotFound
		}
		uc.logger.Error("BookAppointment: failed to get vehicle id=%d: %v", req.VehicleID, err)
		return nil, fmt.Errorf("%w: failed to get vehicle: %w", ErrInternal, err)
	}
	if !vehicle.IsOwnedBy(caller.UserID) {
		uc.logger.Warn("BookAppointment: vehicle id=%d belongs to user=%d, not %d", vehicle.ID, vehicle.OwnerID, caller.UserID)
		return nil, domain.ErrNotOwnVehicle
	}

	// 3. Тип записи
	appointmentType, err := domain.ParseAppointmentType(req.Type)
	if err != nil {
		uc.logger.Warn("BookAppointment: invalid type %q: %v", req.Type, err)
		return nil, err
	}

	// 4. Услуга существует, подходит под тип и имеет длительность
	offering, err := uc.catalogRepo.GetOffering(ctx, req.OfferingID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrOfferingNotFound) {
			uc.logger.Warn("BookAppointment: offering id=%d not found", req.OfferingID)
			return nil, domain.ErrServiceNotFound
		}
		uc.logger.Error("BookAppointment: failed to get offering id=%d: %v", req.OfferingID, err)
		return nil, fmt.Errorf("%w: failed to get offering: %w", ErrInternal, err)
	}
	if err := validateOffering(offering, appointmentType); err != nil {
		uc.logger.Warn("BookAppointment: offering id=%d rejected: %v", offering.ID, err)
		return nil, err
	}

	// 5. Сервисный центр существует и работает
	center, err := uc.catalogRepo.GetServiceCenter(ctx, req.ServiceCenterID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceCenterNotFound) {
			uc.logger.Warn("BookAppointment: service center id=%d not found", req.ServiceCenterID)
			return nil, domain.ErrServiceCenterNotFound
		}
		uc.logger.Error("BookAppointment: failed to get service center id=%d: %v", req.ServiceCenterID, err)
		return nil, fmt.Errorf("%w: failed to get service center: %w", ErrInternal, err)
	}
	if !center.Active {
		uc.logger.Warn("BookAppointment: service center id=%d is inactive", center.ID)
		return nil, domain.ErrServiceCenterInactive
	}

	// 6. Время начала строго в будущем
	if err := validateScheduledAt(req.ScheduledAt, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("BookAppointment: scheduledAt=%s is not in the future", req.ScheduledAt.Format("2006-01-02 15:04"))
		return nil, err
	}

	var result *Response

	// 7. Дубликат, создание и бокс - в одной сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		exists, err := uc.appointmentRepo.ExistsActiveForVehicle(txCtx, vehicle.ID, req.ScheduledAt)
		if err != nil {
			uc.logger.Error("BookAppointment: failed to check duplicates: %v", err)
			return fmt.Errorf("%w: failed to check duplicates: %w", ErrInternal, err)
		}
		if exists {
			uc.logger.Warn("BookAppointment: vehicle id=%d already booked at %s", vehicle.ID, req.ScheduledAt.Format("2006-01-02 15:04"))
			return domain.ErrDuplicateAppointment
		}

		appointment := &domain.Appointment{
			CustomerID:      caller.UserID,
			VehicleID:       vehicle.ID,
			OfferingID:      offering.ID,
			ServiceCenterID: center.ID,
			Type:            appointmentType,
			ScheduledAt:     req.ScheduledAt,
			Status:          domain.StatusPending,
			// Денормализация данных услуги
			DurationMinutes: offering.EstimatedDurationMinutes,
			Cost:            offering.Cost,
			Description:     normalizeDescription(req.Description),
		}

		created, err := uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrDuplicate) {
				uc.logger.Warn("BookAppointment: vehicle id=%d already booked (unique index)", vehicle.ID)
				return domain.ErrDuplicateAppointment
			}
			uc.logger.Error("BookAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}

		// 8. Ёмкость: без свободного бокса транзакция откатывается вместе с записью
		slot, err := uc.slots.AssignSlot(txCtx, created)
		if err != nil {
			return err
		}

		result = &Response{Appointment: created, SlotNumber: slot.SlotNumber}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("BookAppointment: created appointment id=%d, slot=%d", result.Appointment.ID, result.SlotNumber)

	if uc.events != nil {
		uc.events.AppointmentBooked(result.Appointment)
	}

	return result, nil
}
