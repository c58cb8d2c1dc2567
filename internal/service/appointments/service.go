package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
)

// Service жизненный цикл записи: просмотр, смена статуса, отмена
type Service struct {
	appointmentRepo AppointmentRepository
	vehicleRepo     VehicleRepository
	slots           SlotReleaser
	events          EventPublisher
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	vehicleRepo VehicleRepository,
	slots SlotReleaser,
	events EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		vehicleRepo:     vehicleRepo,
		slots:           slots,
		events:          events,
		txManager:       txManager,
		timeProvider:    realTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Get получает запись по ID.
// Доступна клиенту-владельцу, любому сотруднику и администратору.
func (s *Service) Get(ctx context.Context, caller domain.Caller, id int64) (*domain.Appointment, error) {
	appointment, err := s.load(ctx, "Get", id)
	if err != nil {
		return nil, err
	}

	if appointment.CustomerID != caller.UserID &&
		!caller.HasRole(domain.RoleEmployee) && !caller.HasRole(domain.RoleAdmin) {
		s.logger.Warn("Get: access denied for user=%d to appointment id=%d", caller.UserID, id)
		return nil, domain.ErrAccessDenied
	}

	return appointment, nil
}

// ListPending возвращает записи, ожидающие назначения сотрудника.
// serviceCenterID - необязательный фильтр по центру.
func (s *Service) ListPending(ctx context.Context, caller domain.Caller, serviceCenterID *int64) ([]*domain.Appointment, error) {
	if !caller.HasRole(domain.RoleEmployee) && !caller.HasRole(domain.RoleAdmin) {
		s.logger.Warn("ListPending: access denied for user=%d", caller.UserID)
		return nil, domain.ErrAccessDenied
	}

	status := domain.StatusPending
	appointments, err := s.appointmentRepo.List(ctx, domain.AppointmentFilter{
		ServiceCenterID: serviceCenterID,
		Status:          &status,
	})
	if err != nil {
		s.logger.Error("ListPending: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListPending - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("ListPending: %d pending appointments for user=%d", len(appointments), caller.UserID)
	return appointments, nil
}

// UpdateStatus переводит запись в новый статус по диаграмме переходов.
// Доступно назначенному сотруднику и администратору.
// PENDING -> CONFIRMED выполняется только через назначение сотрудника.
func (s *Service) UpdateStatus(ctx context.Context, caller domain.Caller, id int64, rawStatus string) (*domain.Appointment, error) {
	newStatus, err := domain.ParseAppointmentStatus(rawStatus)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status %q for appointment id=%d", rawStatus, id)
		return nil, err
	}

	s.logger.Info("UpdateStatus: appointment id=%d -> %s by user=%d", id, newStatus, caller.UserID)

	var (
		result  *domain.Appointment
		from    domain.AppointmentStatus
		changed bool
	)

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		appointment, err := s.load(txCtx, "UpdateStatus", id)
		if err != nil {
			return err
		}

		if !caller.HasRole(domain.RoleAdmin) &&
			!(caller.HasRole(domain.RoleEmployee) && appointment.HasEmployee(caller.UserID)) {
			s.logger.Warn("UpdateStatus: user=%d is not assigned to appointment id=%d", caller.UserID, id)
			return domain.ErrAccessDenied
		}

		from = appointment.Status
		if from == newStatus {
			result = appointment
			return nil
		}

		if !domain.CanTransition(from, newStatus) || (from == domain.StatusPending && newStatus == domain.StatusConfirmed) {
			s.logger.Warn("UpdateStatus: transition %s -> %s is not allowed for appointment id=%d", from, newStatus, id)
			return domain.ErrInvalidTransition
		}

		if err := s.applyStatus(txCtx, appointment, newStatus); err != nil {
			return err
		}

		result = appointment
		changed = true
		return nil
	})

	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("UpdateStatus: appointment id=%d %s -> %s", id, from, result.Status)
		s.publishStatus(result, from)
	}
	return result, nil
}

// Cancel отменяет запись и освобождает её бокс.
// Доступно клиенту-владельцу и администратору; отменить можно только PENDING и CONFIRMED.
func (s *Service) Cancel(ctx context.Context, caller domain.Caller, id int64) (*domain.Appointment, error) {
	s.logger.Info("Cancel: appointment id=%d by user=%d", id, caller.UserID)

	var (
		result *domain.Appointment
		from   domain.AppointmentStatus
	)

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		appointment, err := s.load(txCtx, "Cancel", id)
		if err != nil {
			return err
		}

		if appointment.CustomerID != caller.UserID && !caller.HasRole(domain.RoleAdmin) {
			s.logger.Warn("Cancel: access denied for user=%d to appointment id=%d", caller.UserID, id)
			return domain.ErrAccessDenied
		}

		if !appointment.CanBeCancelled() {
			s.logger.Warn("Cancel: appointment id=%d in status %s cannot be cancelled", id, appointment.Status)
			return domain.ErrCannotCancel
		}

		from = appointment.Status
		if err := s.applyStatus(txCtx, appointment, domain.StatusCancelled); err != nil {
			return err
		}

		result = appointment
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancel: appointment id=%d cancelled (was %s)", id, from)
	s.publishStatus(result, from)
	return result, nil
}

// applyStatus сохраняет новый статус вместе с побочными изменениями:
// IN_PROGRESS отмечает начало работ, COMPLETED - окончание и дату обслуживания автомобиля,
// возврат в CONFIRMED сбрасывает обе отметки, COMPLETED и CANCELLED освобождают бокс.
func (s *Service) applyStatus(ctx context.Context, appointment *domain.Appointment, status domain.AppointmentStatus) error {
	now := s.timeProvider.Now()
	startedAt, completedAt := appointment.StartedAt, appointment.CompletedAt

	switch status {
	case domain.StatusInProgress:
		startedAt, completedAt = &now, nil
	case domain.StatusCompleted:
		completedAt = &now
	case domain.StatusConfirmed:
		startedAt, completedAt = nil, nil
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, appointment.ID, status, startedAt, completedAt); err != nil {
		s.logger.Error("applyStatus: failed to update appointment id=%d: %v", appointment.ID, err)
		return fmt.Errorf("%w: update status: %w", ErrInternal, err)
	}

	if status == domain.StatusCompleted {
		if err := s.vehicleRepo.UpdateVehicleLastServiceDate(ctx, appointment.VehicleID, now); err != nil {
			s.logger.Error("applyStatus: failed to update vehicle id=%d: %v", appointment.VehicleID, err)
			return fmt.Errorf("%w: update vehicle last service date: %w", ErrInternal, err)
		}
	}

	if status == domain.StatusCompleted || status == domain.StatusCancelled {
		if err := s.slots.ClearSlot(ctx, appointment.ID); err != nil {
			return err
		}
	}

	appointment.Status = status
	appointment.StartedAt = startedAt
	appointment.CompletedAt = completedAt
	appointment.UpdatedAt = now
	return nil
}

func (s *Service) publishStatus(appointment *domain.Appointment, from domain.AppointmentStatus) {
	if s.events == nil {
		return
	}
	if appointment.Status == domain.StatusCancelled {
		s.events.AppointmentCancelled(appointment)
		return
	}
	s.events.StatusChanged(appointment, from)
}

func (s *Service) load(ctx context.Context, op string, id int64) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, domain.ErrAppointmentNotFound
		}
		s.logger.Error("%s: failed to get appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return appointment, nil
}
