package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notifier.Notification
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, notification notifier.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return n.err
}

func (n *recordingNotifier) byType(eventType string) []notifier.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	result := make([]notifier.Notification, 0)
	for _, item := range n.sent {
		if item.Type == eventType {
			result = append(result, item)
		}
	}
	return result
}

type recordingMailer struct {
	mu            sync.Mutex
	assignments   []int64
	confirmations []int64
}

func (m *recordingMailer) SendAssignmentEmail(ctx context.Context, employee *domain.User, appointment *domain.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments = append(m.assignments, employee.ID)
	return nil
}

func (m *recordingMailer) SendConfirmationEmail(ctx context.Context, customer *domain.User, appointment *domain.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations = append(m.confirmations, customer.ID)
	return nil
}

type users map[int64]*domain.User

func (u users) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, errors.New("user not found")
}

type failureCounter struct {
	mu    sync.Mutex
	kinds map[string]int
}

func (c *failureCounter) ObserveSideEffectFailure(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kinds == nil {
		c.kinds = make(map[string]int)
	}
	c.kinds[kind]++
}

func (c *failureCounter) count(kind string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kinds[kind]
}

var appointment = &domain.Appointment{
	ID:                  7,
	CustomerID:          1,
	ServiceCenterID:     3,
	ScheduledAt:         time.Date(2030, 5, 14, 10, 0, 0, 0, time.UTC),
	DurationMinutes:     60,
	Status:              domain.StatusConfirmed,
	AssignedEmployeeIDs: []int64{21, 22},
}

func newService(n *recordingNotifier, m *recordingMailer, metrics *failureCounter) (*Service, *Dispatcher) {
	d := NewDispatcher(DispatcherConfig{QueueSize: 16, Workers: 2, Timeout: time.Second}, logger.Nop(), metrics)
	all := users{
		1:  {ID: 1, Email: "client@example.com"},
		21: {ID: 21, Email: "ivan@example.com"},
		22: {ID: 22, Email: "petr@example.com"},
	}
	return NewService(d, n, m, all, logger.Nop()), d
}

func TestEmployeesAssigned_NotifiesAndMailsEachEmployee(t *testing.T) {
	n, m, metrics := &recordingNotifier{}, &recordingMailer{}, &failureCounter{}
	svc, d := newService(n, m, metrics)

	svc.EmployeesAssigned(appointment, []int64{21, 22})
	svc.AppointmentConfirmed(appointment)
	require.NoError(t, d.Close(context.Background()))

	assigned := n.byType(domain.EventEmployeeAssigned)
	require.Len(t, assigned, 2)
	assert.Equal(t, "7", assigned[0].Payload["appointment_id"])
	assert.Len(t, n.byType(domain.EventAppointmentConfirmed), 1)
	assert.ElementsMatch(t, []int64{21, 22}, m.assignments)
	assert.Equal(t, []int64{1}, m.confirmations)
	assert.Zero(t, metrics.count(kindEmail))
}

func TestAppointmentCancelled_NotifiesCustomerAndEmployees(t *testing.T) {
	n := &recordingNotifier{}
	svc, d := newService(n, &recordingMailer{}, &failureCounter{})

	svc.AppointmentCancelled(appointment)
	require.NoError(t, d.Close(context.Background()))

	cancelled := n.byType(domain.EventAppointmentCancelled)
	recipients := make([]int64, 0, len(cancelled))
	for _, item := range cancelled {
		recipients = append(recipients, item.UserID)
	}
	assert.ElementsMatch(t, []int64{1, 21, 22}, recipients)
}

func TestFailuresAreCountedNotReturned(t *testing.T) {
	n := &recordingNotifier{err: errors.New("redis down")}
	metrics := &failureCounter{}
	svc, d := newService(n, &recordingMailer{}, metrics)

	svc.StatusChanged(appointment, domain.StatusPending)
	// пользователь 404 не найден - письмо не уходит
	svc.EmployeesAssigned(appointment, []int64{404})
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 2, metrics.count(kindNotification))
	assert.Equal(t, 1, metrics.count(kindEmail))
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	metrics := &failureCounter{}
	d := NewDispatcher(DispatcherConfig{QueueSize: 1, Workers: 1, Timeout: time.Second}, logger.Nop(), metrics)

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, d.Dispatch("test", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	assert.True(t, d.Dispatch("test", func(ctx context.Context) error { return nil }))
	assert.False(t, d.Dispatch("test", func(ctx context.Context) error { return nil }))
	assert.Equal(t, 1, metrics.count("test"))

	close(release)
	require.NoError(t, d.Close(context.Background()))
	assert.False(t, d.Dispatch("test", func(ctx context.Context) error { return nil }), "closed dispatcher drops jobs")
}

func TestDispatcher_CloseHonoursContext(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{QueueSize: 1, Workers: 1, Timeout: time.Minute}, logger.Nop(), nil)

	block := make(chan struct{})
	defer close(block)
	d.Dispatch("slow", func(ctx context.Context) error {
		<-block
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	metrics := &failureCounter{}
	d := NewDispatcher(DispatcherConfig{QueueSize: 2, Workers: 1}, logger.Nop(), metrics)

	d.Dispatch("panic", func(ctx context.Context) error { panic("boom") })
	done := make(chan struct{})
	d.Dispatch("after", func(ctx context.Context) error {
		close(done)
		return nil
	})
	require.NoError(t, d.Close(context.Background()))

	<-done
	assert.Equal(t, 1, metrics.count("panic"))
}
