package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const timeLayout = "02.01.2006 15:04"

// Mailer формирует письма о записях
type Mailer struct {
	sender EmailSender
}

// New создает Mailer поверх отправителя
func New(sender EmailSender) *Mailer {
	return &Mailer{sender: sender}
}

// SendAssignmentEmail сообщает сотруднику о назначении на запись
func (m *Mailer) SendAssignmentEmail(ctx context.Context, employee *domain.User, appointment *domain.Appointment) error {
	if strings.TrimSpace(employee.Email) == "" {
		return ErrNoRecipient
	}

	interval := appointment.Interval()
	body := fmt.Sprintf(
		"Здравствуйте, %s!\n\nВы назначены на запись №%d.\nСервисный центр: %d\nВремя: %s - %s\n",
		employee.Name,
		appointment.ID,
		appointment.ServiceCenterID,
		interval.Start.Format(timeLayout),
		interval.End.Format("15:04"),
	)

	return m.sender.Send(ctx, EmailMessage{
		To:      employee.Email,
		ToName:  employee.Name,
		Subject: fmt.Sprintf("Назначение на запись №%d", appointment.ID),
		Body:    body,
	})
}

// SendConfirmationEmail сообщает клиенту о подтверждении записи
func (m *Mailer) SendConfirmationEmail(ctx context.Context, customer *domain.User, appointment *domain.Appointment) error {
	if strings.TrimSpace(customer.Email) == "" {
		return ErrNoRecipient
	}

	body := fmt.Sprintf(
		"Здравствуйте, %s!\n\nВаша запись №%d подтверждена.\nВремя: %s\nСтоимость: %.2f\n",
		customer.Name,
		appointment.ID,
		appointment.ScheduledAt.Format(timeLayout),
		appointment.Cost,
	)

	return m.sender.Send(ctx, EmailMessage{
		To:      customer.Email,
		ToName:  customer.Name,
		Subject: fmt.Sprintf("Запись №%d подтверждена", appointment.ID),
		Body:    body,
	})
}
