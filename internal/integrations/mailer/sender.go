package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// EmailSender отправляет письма. Реализации: SendGrid и заглушка.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage письмо (только текст)
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// SendGridConfig настройки SendGrid
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// SendGridSender отправляет письма через SendGrid API
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    Logger
}

// NewSendGridSender создает отправителя SendGrid. Без API ключа возвращает nil.
func NewSendGridSender(cfg SendGridConfig, logger Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Send отправляет письмо через SendGrid
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, "")

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("SendGrid: send to %s failed: %v", msg.To, err)
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("SendGrid: status=%d body=%s to=%s", response.StatusCode, response.Body, msg.To)
		return fmt.Errorf("%w: sendgrid returned status %d", ErrSend, response.StatusCode)
	}

	s.logger.Info("SendGrid: email %q sent to %s, status=%d", msg.Subject, msg.To, response.StatusCode)
	return nil
}

// StubSender только логирует письма (отправка выключена)
type StubSender struct {
	logger Logger
}

// NewStubSender создает отправителя-заглушку
func NewStubSender(logger Logger) *StubSender {
	return &StubSender{logger: logger}
}

// Send логирует письмо
func (s *StubSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("Email (stub): would send %q to %s", msg.Subject, msg.To)
	return nil
}
