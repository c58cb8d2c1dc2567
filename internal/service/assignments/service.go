package assignments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/catalog"
)

// Service назначает сотрудников на записи
type Service struct {
	appointmentRepo AppointmentRepository
	userRepo        UserRepository
	shifts          ShiftReserver
	events          EventPublisher
	txManager       TransactionManager
	logger          Logger
}

// NewService создает новый экземпляр сервиса назначений
func NewService(
	appointmentRepo AppointmentRepository,
	userRepo UserRepository,
	shifts ShiftReserver,
	events EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		shifts:          shifts,
		events:          events,
		txManager:       txManager,
		logger:          logger,
	}
}

// assignResult итог назначения внутри транзакции
type assignResult struct {
	appointment *domain.Appointment
	added       []int64
	confirmed   bool
}

// SelfAssign назначает вызывающего сотрудника на запись его сервисного центра.
// Повторное назначение ничего не меняет.
func (s *Service) SelfAssign(ctx context.Context, caller domain.Caller, appointmentID int64) (*domain.Appointment, error) {
	if !caller.HasRole(domain.RoleEmployee) {
		s.logger.Warn("SelfAssign: user=%d is not an employee", caller.UserID)
		return nil, domain.ErrNotEmployee
	}

	centerID, err := s.homeCenter(ctx, "SelfAssign", caller.UserID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("SelfAssign: employee=%d -> appointment id=%d", caller.UserID, appointmentID)

	var result assignResult
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		appointment, err := s.loadAssignable(txCtx, "SelfAssign", appointmentID)
		if err != nil {
			return err
		}

		if appointment.ServiceCenterID != centerID {
			s.logger.Warn("SelfAssign: employee=%d works in center=%d, appointment id=%d is in center=%d",
				caller.UserID, centerID, appointmentID, appointment.ServiceCenterID)
			return domain.ErrEmployeeNotInCenter
		}

		result, err = s.assign(txCtx, "SelfAssign", appointment, []int64{caller.UserID}, domain.OriginBySelf)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(result)
	return result.appointment, nil
}

// AdminAssign назначает на запись группу сотрудников.
// Пакет применяется целиком: при конфликте смены хотя бы у одного сотрудника никто не назначается.
func (s *Service) AdminAssign(ctx context.Context, caller domain.Caller, appointmentID int64, employeeIDs []int64) (*domain.Appointment, error) {
	if !caller.HasRole(domain.RoleAdmin) {
		s.logger.Warn("AdminAssign: access denied for user=%d", caller.UserID)
		return nil, domain.ErrAccessDenied
	}

	ids, err := normalizeEmployeeIDs(employeeIDs)
	if err != nil {
		s.logger.Warn("AdminAssign: invalid employee ids %v for appointment id=%d", employeeIDs, appointmentID)
		return nil, err
	}

	s.logger.Info("AdminAssign: employees=%v -> appointment id=%d by admin=%d", ids, appointmentID, caller.UserID)

	var result assignResult
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		appointment, err := s.loadAssignable(txCtx, "AdminAssign", appointmentID)
		if err != nil {
			return err
		}

		for _, id := range ids {
			if _, err := s.activeEmployee(txCtx, "AdminAssign", id, domain.ErrEmployeeNotFound); err != nil {
				return err
			}
		}

		result, err = s.assign(txCtx, "AdminAssign", appointment, ids, domain.OriginByAdmin)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(result)
	return result.appointment, nil
}

// ListPossibleAppointments возвращает ожидающие записи центра сотрудника,
// которые не пересекаются с его сменами
func (s *Service) ListPossibleAppointments(ctx context.Context, caller domain.Caller) ([]*domain.Appointment, error) {
	if !caller.HasRole(domain.RoleEmployee) {
		s.logger.Warn("ListPossibleAppointments: user=%d is not an employee", caller.UserID)
		return nil, domain.ErrNotEmployee
	}

	centerID, err := s.homeCenter(ctx, "ListPossibleAppointments", caller.UserID)
	if err != nil {
		return nil, err
	}

	status := domain.StatusPending
	pending, err := s.appointmentRepo.List(ctx, domain.AppointmentFilter{
		ServiceCenterID: &centerID,
		Status:          &status,
	})
	if err != nil {
		s.logger.Error("ListPossibleAppointments: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListPossibleAppointments - repository error: %w", ErrInternal, err)
	}

	possible := make([]*domain.Appointment, 0, len(pending))
	for _, appointment := range pending {
		if appointment.HasEmployee(caller.UserID) {
			continue
		}
		conflict, err := s.shifts.HasConflict(ctx, caller.UserID, appointment.Interval())
		if err != nil {
			return nil, err
		}
		if !conflict {
			possible = append(possible, appointment)
		}
	}

	s.logger.Info("ListPossibleAppointments: %d of %d pending appointments fit employee=%d",
		len(possible), len(pending), caller.UserID)
	return possible, nil
}

// ListPossibleEmployees возвращает активных сотрудников центра записи,
// ещё не назначенных на неё и свободных в её интервале
func (s *Service) ListPossibleEmployees(ctx context.Context, caller domain.Caller, appointmentID int64) ([]*domain.User, error) {
	if !caller.HasRole(domain.RoleAdmin) {
		s.logger.Warn("ListPossibleEmployees: access denied for user=%d", caller.UserID)
		return nil, domain.ErrAccessDenied
	}

	appointment, err := s.load(ctx, "ListPossibleEmployees", appointmentID)
	if err != nil {
		return nil, err
	}

	employees, err := s.userRepo.ListEmployeesByCenter(ctx, appointment.ServiceCenterID)
	if err != nil {
		s.logger.Error("ListPossibleEmployees: failed to list employees of center=%d: %v", appointment.ServiceCenterID, err)
		return nil, fmt.Errorf("%w: ListPossibleEmployees - repository error: %w", ErrInternal, err)
	}

	possible := make([]*domain.User, 0, len(employees))
	for _, employee := range employees {
		if !employee.IsActiveEmployee() || appointment.HasEmployee(employee.ID) {
			continue
		}
		conflict, err := s.shifts.HasConflict(ctx, employee.ID, appointment.Interval())
		if err != nil {
			return nil, err
		}
		if !conflict {
			possible = append(possible, employee)
		}
	}

	s.logger.Info("ListPossibleEmployees: %d employees available for appointment id=%d", len(possible), appointmentID)
	return possible, nil
}

// assign резервирует смены новых сотрудников, привязывает их к записи
// и подтверждает ожидающую запись
func (s *Service) assign(ctx context.Context, op string, appointment *domain.Appointment, employeeIDs []int64, origin domain.ShiftOrigin) (assignResult, error) {
	result := assignResult{appointment: appointment}

	added := make([]int64, 0, len(employeeIDs))
	for _, id := range employeeIDs {
		if !appointment.HasEmployee(id) {
			added = append(added, id)
		}
	}
	if len(added) == 0 {
		s.logger.Info("%s: employees %v already assigned to appointment id=%d", op, employeeIDs, appointment.ID)
		return result, nil
	}

	if _, err := s.shifts.Reserve(ctx, appointment, added, origin); err != nil {
		return result, err
	}

	if err := s.appointmentRepo.AddEmployees(ctx, appointment.ID, added); err != nil {
		s.logger.Error("%s: failed to add employees to appointment id=%d: %v", op, appointment.ID, err)
		return result, fmt.Errorf("%w: %s - add employees: %w", ErrInternal, op, err)
	}
	appointment.AssignedEmployeeIDs = append(appointment.AssignedEmployeeIDs, added...)
	result.added = added

	if appointment.Status == domain.StatusPending {
		if err := s.appointmentRepo.UpdateStatus(ctx, appointment.ID, domain.StatusConfirmed, nil, nil); err != nil {
			s.logger.Error("%s: failed to confirm appointment id=%d: %v", op, appointment.ID, err)
			return result, fmt.Errorf("%w: %s - confirm: %w", ErrInternal, op, err)
		}
		appointment.Status = domain.StatusConfirmed
		result.confirmed = true
	}

	s.logger.Info("%s: employees %v assigned to appointment id=%d (status=%s)", op, added, appointment.ID, appointment.Status)
	return result, nil
}

func (s *Service) publish(result assignResult) {
	if s.events == nil || len(result.added) == 0 {
		return
	}
	s.events.EmployeesAssigned(result.appointment, result.added)
	if result.confirmed {
		s.events.AppointmentConfirmed(result.appointment)
	}
}

// homeCenter проверяет, что пользователь - активный сотрудник, и возвращает его центр
func (s *Service) homeCenter(ctx context.Context, op string, employeeID int64) (int64, error) {
	if _, err := s.activeEmployee(ctx, op, employeeID, domain.ErrNotEmployee); err != nil {
		return 0, err
	}

	link, err := s.userRepo.GetEmployeeCenter(ctx, employeeID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrEmployeeCenterNotFound) {
			s.logger.Warn("%s: employee=%d is not attached to any service center", op, employeeID)
			return 0, domain.ErrEmployeeNotInCenter
		}
		s.logger.Error("%s: failed to get center of employee=%d: %v", op, employeeID, err)
		return 0, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return link.ServiceCenterID, nil
}

// activeEmployee загружает пользователя и проверяет, что он активный сотрудник.
// notEmployee - ошибка для отсутствующего или неподходящего пользователя.
func (s *Service) activeEmployee(ctx context.Context, op string, id int64, notEmployee error) (*domain.User, error) {
	user, err := s.userRepo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrUserNotFound) {
			s.logger.Warn("%s: user id=%d not found", op, id)
			return nil, notEmployee
		}
		s.logger.Error("%s: failed to get user id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}

	if !user.IsActiveEmployee() {
		s.logger.Warn("%s: user id=%d is not an active employee", op, id)
		return nil, notEmployee
	}
	return user, nil
}

func (s *Service) loadAssignable(ctx context.Context, op string, id int64) (*domain.Appointment, error) {
	appointment, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if !appointment.CanBeAssigned() {
		s.logger.Warn("%s: appointment id=%d in status %s is not assignable", op, id, appointment.Status)
		return nil, domain.ErrAppointmentNotAssignable
	}
	return appointment, nil
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

// normalizeEmployeeIDs проверяет размер пакета и убирает повторы, сохраняя порядок
func normalizeEmployeeIDs(employeeIDs []int64) ([]int64, error) {
	if len(employeeIDs) == 0 || len(employeeIDs) > domain.MaxAssignBatchSize {
		return nil, domain.ErrInvalidInput
	}

	seen := make(map[int64]struct{}, len(employeeIDs))
	ids := make([]int64, 0, len(employeeIDs))
	for _, id := range employeeIDs {
		if id <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
