package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/usecase/book_appointment"
)

// Названия операций для метрик
const (
	OpBook                     = "book"
	OpCancel                   = "cancel"
	OpGetAppointment           = "get_appointment"
	OpUpdateStatus             = "update_status"
	OpAssignEmployees          = "assign_employees"
	OpSelfAssign               = "self_assign"
	OpListPossibleEmployees    = "list_possible_employees"
	OpListPossibleAppointments = "list_possible_appointments"
	OpListPending              = "list_pending"
)

// Gateway фасад планирования для контроллеров
type Gateway struct {
	booking      BookingUseCase
	appointments AppointmentService
	assignments  AssignmentService
	slots        SlotReader
	shifts       ShiftReader
	metrics      MetricsCollector
	logger       Logger
}

// New создает новый фасад. metrics может быть nil.
func New(
	booking BookingUseCase,
	appointments AppointmentService,
	assignments AssignmentService,
	slots SlotReader,
	shifts ShiftReader,
	metrics MetricsCollector,
	logger Logger,
) *Gateway {
	return &Gateway{
		booking:      booking,
		appointments: appointments,
		assignments:  assignments,
		slots:        slots,
		shifts:       shifts,
		metrics:      metrics,
		logger:       logger,
	}
}

// Book создаёт запись клиента и возвращает её представление
func (g *Gateway) Book(ctx context.Context, caller domain.Caller, req *book_appointment.Request) (*AppointmentView, error) {
	resp, err := g.booking.Execute(ctx, caller, req)
	if err != nil {
		return nil, g.observe(OpBook, err)
	}

	slotNumber := resp.SlotNumber
	view, err := g.view(ctx, resp.Appointment, &slotNumber)
	return view, g.observe(OpBook, err)
}

// Cancel отменяет запись
func (g *Gateway) Cancel(ctx context.Context, caller domain.Caller, appointmentID int64) (*AppointmentView, error) {
	appointment, err := g.appointments.Cancel(ctx, caller, appointmentID)
	if err != nil {
		return nil, g.observe(OpCancel, err)
	}

	view, err := g.view(ctx, appointment, nil)
	return view, g.observe(OpCancel, err)
}

// GetAppointment возвращает запись с номером бокса и сменами
func (g *Gateway) GetAppointment(ctx context.Context, caller domain.Caller, appointmentID int64) (*AppointmentView, error) {
	appointment, err := g.appointments.Get(ctx, caller, appointmentID)
	if err != nil {
		return nil, g.observe(OpGetAppointment, err)
	}

	view, err := g.view(ctx, appointment, nil)
	return view, g.observe(OpGetAppointment, err)
}

// UpdateStatus меняет статус записи
func (g *Gateway) UpdateStatus(ctx context.Context, caller domain.Caller, appointmentID int64, status string) (*AppointmentView, error) {
	appointment, err := g.appointments.UpdateStatus(ctx, caller, appointmentID, status)
	if err != nil {
		return nil, g.observe(OpUpdateStatus, err)
	}

	view, err := g.view(ctx, appointment, nil)
	return view, g.observe(OpUpdateStatus, err)
}

// AssignEmployees назначает группу сотрудников (администратор)
func (g *Gateway) AssignEmployees(ctx context.Context, caller domain.Caller, appointmentID int64, employeeIDs []int64) (*AppointmentView, error) {
	appointment, err := g.assignments.AdminAssign(ctx, caller, appointmentID, employeeIDs)
	if err != nil {
		return nil, g.observe(OpAssignEmployees, err)
	}

	view, err := g.view(ctx, appointment, nil)
	return view, g.observe(OpAssignEmployees, err)
}

// SelfAssign назначает вызывающего сотрудника на запись
func (g *Gateway) SelfAssign(ctx context.Context, caller domain.Caller, appointmentID int64) (*AppointmentView, error) {
	appointment, err := g.assignments.SelfAssign(ctx, caller, appointmentID)
	if err != nil {
		return nil, g.observe(OpSelfAssign, err)
	}

	view, err := g.view(ctx, appointment, nil)
	return view, g.observe(OpSelfAssign, err)
}

// ListPossibleEmployees возвращает сотрудников, которых можно назначить на запись
func (g *Gateway) ListPossibleEmployees(ctx context.Context, caller domain.Caller, appointmentID int64) ([]*domain.User, error) {
	employees, err := g.assignments.ListPossibleEmployees(ctx, caller, appointmentID)
	return employees, g.observe(OpListPossibleEmployees, err)
}

// ListPossibleAppointments возвращает записи, которые может взять вызывающий сотрудник
func (g *Gateway) ListPossibleAppointments(ctx context.Context, caller domain.Caller) ([]*domain.Appointment, error) {
	appointments, err := g.assignments.ListPossibleAppointments(ctx, caller)
	return appointments, g.observe(OpListPossibleAppointments, err)
}

// ListPending возвращает записи, ожидающие назначения
func (g *Gateway) ListPending(ctx context.Context, caller domain.Caller, serviceCenterID *int64) ([]*domain.Appointment, error) {
	appointments, err := g.appointments.ListPending(ctx, caller, serviceCenterID)
	return appointments, g.observe(OpListPending, err)
}

// view собирает представление записи. slotNumber передаётся, если уже известен.
func (g *Gateway) view(ctx context.Context, appointment *domain.Appointment, slotNumber *int) (*AppointmentView, error) {
	view := &AppointmentView{Appointment: appointment, SlotNumber: slotNumber}

	if view.SlotNumber == nil {
		number, err := g.slots.GetSlotNumber(ctx, appointment.ID)
		switch {
		case err == nil:
			view.SlotNumber = &number
		case !errors.Is(err, domain.ErrSlotNotFound):
			g.logger.Error("view: failed to get slot of appointment id=%d: %v", appointment.ID, err)
			return nil, fmt.Errorf("%w: view - slot: %w", ErrInternal, err)
		}
	}

	shifts, err := g.shifts.ListForAppointment(ctx, appointment.ID)
	if err != nil {
		g.logger.Error("view: failed to list shifts of appointment id=%d: %v", appointment.ID, err)
		return nil, fmt.Errorf("%w: view - shifts: %w", ErrInternal, err)
	}
	view.Shifts = shifts

	return view, nil
}

// observe учитывает результат операции (ok, код бизнес-ошибки или error) и возвращает err без изменений
func (g *Gateway) observe(operation string, err error) error {
	if g.metrics != nil {
		g.metrics.ObserveOperation(operation, resultLabel(err))
	}
	return err
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if be, ok := domain.AsBusinessError(err); ok {
		return be.Code
	}
	return "error"
}
