package shifts

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Service проверяет и фиксирует смены сотрудников
type Service struct {
	shiftRepo ShiftRepository
	logger    Logger
}

// NewService создает новый экземпляр сервиса смен
func NewService(shiftRepo ShiftRepository, logger Logger) *Service {
	return &Service{
		shiftRepo: shiftRepo,
		logger:    logger,
	}
}

// HasConflict проверяет, пересекается ли интервал с уже зафиксированными сменами сотрудника.
// Интервалы полуоткрытые: смены, касающиеся границами, не конфликтуют.
func (s *Service) HasConflict(ctx context.Context, employeeID int64, interval domain.Interval) (bool, error) {
	overlapping, err := s.shiftRepo.FindOverlapping(ctx, employeeID, interval)
	if err != nil {
		s.logger.Error("HasConflict: failed to find shifts of employee=%d: %v", employeeID, err)
		return false, fmt.Errorf("%w: HasConflict - repository error: %w", ErrInternal, err)
	}
	return len(overlapping) > 0, nil
}

// Reserve фиксирует смены сотрудников под запись.
// Если хотя бы у одного сотрудника есть пересекающаяся смена, не создаётся ни одна (ErrConflictingShift).
// Вызывающий отвечает за транзакцию: проверка и вставка должны выполняться в одной.
func (s *Service) Reserve(ctx context.Context, appointment *domain.Appointment, employeeIDs []int64, origin domain.ShiftOrigin) ([]*domain.ShiftSchedule, error) {
	interval := appointment.Interval()
	if !interval.IsValid() {
		s.logger.Warn("Reserve: appointment=%d has empty interval", appointment.ID)
		return nil, domain.ErrInvalidServiceDuration
	}

	if err := s.shiftRepo.LockEmployees(ctx, employeeIDs); err != nil {
		s.logger.Error("Reserve: failed to lock employees %v: %v", employeeIDs, err)
		return nil, fmt.Errorf("%w: Reserve - lock employees: %w", ErrInternal, err)
	}

	for _, employeeID := range employeeIDs {
		conflict, err := s.HasConflict(ctx, employeeID, interval)
		if err != nil {
			return nil, err
		}
		if conflict {
			s.logger.Warn("Reserve: employee=%d has conflicting shift for appointment=%d [%s, %s)",
				employeeID, appointment.ID, interval.Start.Format("2006-01-02 15:04"), interval.End.Format("15:04"))
			return nil, fmt.Errorf("%w: employee id=%d", domain.ErrConflictingShift, employeeID)
		}
	}

	created := make([]*domain.ShiftSchedule, 0, len(employeeIDs))
	for _, employeeID := range employeeIDs {
		shift, err := s.shiftRepo.Create(ctx, &domain.ShiftSchedule{
			EmployeeID:    employeeID,
			AppointmentID: appointment.ID,
			StartAt:       interval.Start,
			EndAt:         interval.End,
			Origin:        origin,
		})
		if err != nil {
			s.logger.Error("Reserve: failed to create shift for employee=%d: %v", employeeID, err)
			return nil, fmt.Errorf("%w: Reserve - create shift: %w", ErrInternal, err)
		}
		created = append(created, shift)
	}

	s.logger.Info("Reserve: %d shifts created for appointment=%d (%s)", len(created), appointment.ID, origin)
	return created, nil
}

// ListForAppointment возвращает смены, зафиксированные под запись
func (s *Service) ListForAppointment(ctx context.Context, appointmentID int64) ([]*domain.ShiftSchedule, error) {
	shifts, err := s.shiftRepo.ListByAppointment(ctx, appointmentID)
	if err != nil {
		s.logger.Error("ListForAppointment: failed to list shifts of appointment=%d: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: ListForAppointment - repository error: %w", ErrInternal, err)
	}
	return shifts, nil
}
