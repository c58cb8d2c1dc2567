package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	s.sent = append(s.sent, msg)
	return s.err
}

var appointment = &domain.Appointment{
	ID:              7,
	ServiceCenterID: 3,
	ScheduledAt:     time.Date(2030, 5, 14, 10, 0, 0, 0, time.UTC),
	DurationMinutes: 90,
	Cost:            4500,
}

func TestSendAssignmentEmail(t *testing.T) {
	sender := &recordingSender{}
	m := New(sender)

	err := m.SendAssignmentEmail(context.Background(), &domain.User{Name: "Иван", Email: "ivan@example.com"}, appointment)

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ivan@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "№7")
	assert.Contains(t, sender.sent[0].Body, "14.05.2030 10:00 - 11:30")
}

func TestSendConfirmationEmail(t *testing.T) {
	sender := &recordingSender{}
	m := New(sender)

	err := m.SendConfirmationEmail(context.Background(), &domain.User{Name: "Анна", Email: "anna@example.com"}, appointment)

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Body, "4500.00")
}

func TestSend_NoRecipient(t *testing.T) {
	sender := &recordingSender{}
	m := New(sender)

	err := m.SendConfirmationEmail(context.Background(), &domain.User{Name: "Анна"}, appointment)

	assert.ErrorIs(t, err, ErrNoRecipient)
	assert.Empty(t, sender.sent)
}

func TestSend_PropagatesSenderError(t *testing.T) {
	boom := errors.New("boom")
	m := New(&recordingSender{err: boom})

	err := m.SendAssignmentEmail(context.Background(), &domain.User{Email: "ivan@example.com"}, appointment)

	assert.ErrorIs(t, err, boom)
}

func TestNewSendGridSender_RequiresAPIKey(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{}, logger.Nop()))
	assert.NotNil(t, NewSendGridSender(SendGridConfig{APIKey: "SG.test", FromEmail: "noreply@example.com"}, logger.Nop()))
}

func TestStubSender(t *testing.T) {
	assert.NoError(t, NewStubSender(logger.Nop()).Send(context.Background(), EmailMessage{To: "x@example.com"}))
}
