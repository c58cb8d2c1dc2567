package slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/catalog"
	slotRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/slot"
)

// Service распределяет боксы сервисных центров между записями.
// Пул боксов - единственный механизм ограничения ёмкости центра.
type Service struct {
	slotRepo   SlotRepository
	centerRepo CenterRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса боксов
func NewService(slotRepo SlotRepository, centerRepo CenterRepository, logger Logger) *Service {
	return &Service{
		slotRepo:   slotRepo,
		centerRepo: centerRepo,
		logger:     logger,
	}
}

// EnsurePool досоздаёт недостающие боксы центра до его текущей ёмкости
func (s *Service) EnsurePool(ctx context.Context, center *domain.ServiceCenter) error {
	if err := s.slotRepo.CreatePool(ctx, center.ID, center.SlotCapacity); err != nil {
		s.logger.Error("EnsurePool: failed to create slot pool for center=%d: %v", center.ID, err)
		return fmt.Errorf("%w: EnsurePool - repository error: %w", ErrInternal, err)
	}
	return nil
}

// SyncPools досоздаёт пулы боксов всех сервисных центров (выполняется при старте)
func (s *Service) SyncPools(ctx context.Context) error {
	centers, err := s.centerRepo.ListServiceCenters(ctx)
	if err != nil {
		s.logger.Error("SyncPools: failed to list service centers: %v", err)
		return fmt.Errorf("%w: SyncPools - repository error: %w", ErrInternal, err)
	}

	for _, center := range centers {
		if err := s.EnsurePool(ctx, center); err != nil {
			return err
		}

		booked, err := s.slotRepo.CountBooked(ctx, center.ID)
		if err != nil {
			s.logger.Error("SyncPools: failed to count booked slots for center=%d: %v", center.ID, err)
			return fmt.Errorf("%w: SyncPools - repository error: %w", ErrInternal, err)
		}
		if booked > center.SlotCapacity {
			s.logger.Warn("SyncPools: center=%d has %d booked slots above capacity=%d", center.ID, booked, center.SlotCapacity)
		}
	}

	s.logger.Info("SyncPools: slot pools synced for %d service centers", len(centers))
	return nil
}

// AssignSlot закрепляет за записью свободный бокс её сервисного центра.
// Если свободных боксов нет - ErrCapacityExceeded, ничего не меняется.
func (s *Service) AssignSlot(ctx context.Context, appointment *domain.Appointment) (*domain.ServiceCenterSlot, error) {
	center, err := s.centerRepo.GetServiceCenter(ctx, appointment.ServiceCenterID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceCenterNotFound) {
			s.logger.Warn("AssignSlot: service center id=%d not found", appointment.ServiceCenterID)
			return nil, domain.ErrServiceCenterNotFound
		}
		s.logger.Error("AssignSlot: failed to get service center id=%d: %v", appointment.ServiceCenterID, err)
		return nil, fmt.Errorf("%w: AssignSlot - repository error: %w", ErrInternal, err)
	}

	if err := s.EnsurePool(ctx, center); err != nil {
		return nil, err
	}

	slot, err := s.slotRepo.ClaimFree(ctx, center.ID, center.SlotCapacity, appointment.ID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrNoFreeSlot) {
			s.logger.Warn("AssignSlot: no free slot in center=%d (capacity=%d) for appointment=%d",
				center.ID, center.SlotCapacity, appointment.ID)
			return nil, domain.ErrCapacityExceeded
		}
		s.logger.Error("AssignSlot: failed to claim slot in center=%d: %v", center.ID, err)
		return nil, fmt.Errorf("%w: AssignSlot - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("AssignSlot: appointment=%d got slot=%d in center=%d", appointment.ID, slot.SlotNumber, center.ID)
	return slot, nil
}

// GetSlotNumber возвращает номер бокса, закреплённого за записью
func (s *Service) GetSlotNumber(ctx context.Context, appointmentID int64) (int, error) {
	slot, err := s.slotRepo.GetByAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return 0, domain.ErrSlotNotFound
		}
		s.logger.Error("GetSlotNumber: failed to get slot for appointment=%d: %v", appointmentID, err)
		return 0, fmt.Errorf("%w: GetSlotNumber - repository error: %w", ErrInternal, err)
	}
	return slot.SlotNumber, nil
}

// ClearSlot освобождает бокс записи. Повторный вызов ничего не делает.
func (s *Service) ClearSlot(ctx context.Context, appointmentID int64) error {
	released, err := s.slotRepo.Release(ctx, appointmentID)
	if err != nil {
		s.logger.Error("ClearSlot: failed to release slot of appointment=%d: %v", appointmentID, err)
		return fmt.Errorf("%w: ClearSlot - repository error: %w", ErrInternal, err)
	}

	if released {
		s.logger.Info("ClearSlot: slot of appointment=%d released", appointmentID)
	}
	return nil
}
