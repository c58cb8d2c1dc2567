package notifications

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
)

// Notifier интерфейс доставки уведомлений
type Notifier interface {
	Notify(ctx context.Context, notification notifier.Notification) error
}

// Mailer интерфейс отправки писем о записях
type Mailer interface {
	SendAssignmentEmail(ctx context.Context, employee *domain.User, appointment *domain.Appointment) error
	SendConfirmationEmail(ctx context.Context, customer *domain.User, appointment *domain.Appointment) error
}

// UserRepository интерфейс чтения пользователей
type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// MetricsCollector интерфейс учёта неудачных побочных эффектов
type MetricsCollector interface {
	ObserveSideEffectFailure(kind string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
