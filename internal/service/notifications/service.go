package notifications

import (
	"context"
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
)

const (
	kindNotification = "notification"
	kindEmail        = "email"
)

// Service превращает события записей в уведомления и письма.
// Все методы неблокирующие и вызываются после фиксации транзакции.
type Service struct {
	dispatcher *Dispatcher
	notifier   Notifier
	mailer     Mailer
	users      UserRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса уведомлений
func NewService(dispatcher *Dispatcher, notifier Notifier, mailer Mailer, users UserRepository, logger Logger) *Service {
	return &Service{
		dispatcher: dispatcher,
		notifier:   notifier,
		mailer:     mailer,
		users:      users,
		logger:     logger,
	}
}

// AppointmentBooked уведомляет клиента о созданной записи
func (s *Service) AppointmentBooked(appointment *domain.Appointment) {
	s.notify(appointment.CustomerID, domain.EventAppointmentBooked, appointment,
		fmt.Sprintf("Запись №%d на %s создана и ожидает подтверждения",
			appointment.ID, appointment.ScheduledAt.Format("02.01.2006 15:04")))
}

// AppointmentConfirmed уведомляет клиента о подтверждении записи и отправляет письмо
func (s *Service) AppointmentConfirmed(appointment *domain.Appointment) {
	s.notify(appointment.CustomerID, domain.EventAppointmentConfirmed, appointment,
		fmt.Sprintf("Запись №%d подтверждена", appointment.ID))

	snapshot := *appointment
	s.dispatcher.Dispatch(kindEmail, func(ctx context.Context) error {
		customer, err := s.users.GetUser(ctx, snapshot.CustomerID)
		if err != nil {
			return fmt.Errorf("load customer id=%d: %w", snapshot.CustomerID, err)
		}
		return s.mailer.SendConfirmationEmail(ctx, customer, &snapshot)
	})
}

// EmployeesAssigned уведомляет назначенных сотрудников и отправляет им письма
func (s *Service) EmployeesAssigned(appointment *domain.Appointment, employeeIDs []int64) {
	snapshot := *appointment
	for _, employeeID := range employeeIDs {
		employeeID := employeeID
		s.notify(employeeID, domain.EventEmployeeAssigned, appointment,
			fmt.Sprintf("Вы назначены на запись №%d", appointment.ID))

		s.dispatcher.Dispatch(kindEmail, func(ctx context.Context) error {
			employee, err := s.users.GetUser(ctx, employeeID)
			if err != nil {
				return fmt.Errorf("load employee id=%d: %w", employeeID, err)
			}
			return s.mailer.SendAssignmentEmail(ctx, employee, &snapshot)
		})
	}
}

// StatusChanged уведомляет клиента о смене статуса записи
func (s *Service) StatusChanged(appointment *domain.Appointment, from domain.AppointmentStatus) {
	s.notify(appointment.CustomerID, domain.EventAppointmentStatus, appointment,
		fmt.Sprintf("Статус записи №%d изменён: %s -> %s", appointment.ID, from, appointment.Status))
}

// AppointmentCancelled уведомляет клиента и назначенных сотрудников об отмене записи
func (s *Service) AppointmentCancelled(appointment *domain.Appointment) {
	message := fmt.Sprintf("Запись №%d отменена", appointment.ID)

	s.notify(appointment.CustomerID, domain.EventAppointmentCancelled, appointment, message)
	for _, employeeID := range appointment.AssignedEmployeeIDs {
		s.notify(employeeID, domain.EventAppointmentCancelled, appointment, message)
	}
}

func (s *Service) notify(userID int64, eventType string, appointment *domain.Appointment, message string) {
	notification := notifier.Notification{
		UserID:  userID,
		Type:    eventType,
		Message: message,
		Payload: map[string]string{
			"appointment_id":    strconv.FormatInt(appointment.ID, 10),
			"service_center_id": strconv.FormatInt(appointment.ServiceCenterID, 10),
			"status":            string(appointment.Status),
		},
	}

	s.dispatcher.Dispatch(kindNotification, func(ctx context.Context) error {
		return s.notifier.Notify(ctx, notification)
	})
}
