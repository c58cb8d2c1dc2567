package notifier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

func newNotifier(t *testing.T, historySize int) (*RedisNotifier, *redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisNotifier(client, historySize, logger.Nop()), client, mr
}

func TestNotify_StoresHistoryAndPublishes(t *testing.T) {
	n, client, _ := newNotifier(t, 10)
	ctx := context.Background()

	sub := client.Subscribe(ctx, Channel(1))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	err = n.Notify(ctx, Notification{
		UserID:  1,
		Type:    "APPOINTMENT_BOOKED",
		Message: "Запись создана",
		Payload: map[string]string{"appointment_id": "7"},
	})
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		var got Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "APPOINTMENT_BOOKED", got.Type)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "7", got.Payload["appointment_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not published")
	}

	history, err := n.History(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(1), history[0].UserID)
}

func TestNotify_TrimsHistory(t *testing.T) {
	n, _, mr := newNotifier(t, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, n.Notify(ctx, Notification{UserID: 2, Type: "APPOINTMENT_STATUS_CHANGED"}))
	}

	items, err := mr.List(HistoryKey(2))
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestNotify_Invalid(t *testing.T) {
	n, _, _ := newNotifier(t, 3)

	assert.ErrorIs(t, n.Notify(context.Background(), Notification{Type: "X"}), ErrInvalidNotification)
	assert.ErrorIs(t, NewStubNotifier(logger.Nop()).Notify(context.Background(), Notification{UserID: 1}), ErrInvalidNotification)
}

func TestNotify_RedisDown(t *testing.T) {
	n, _, mr := newNotifier(t, 3)
	mr.Close()

	err := n.Notify(context.Background(), Notification{UserID: 1, Type: "X"})

	assert.ErrorIs(t, err, ErrPublish)
}

func TestHistory_Empty(t *testing.T) {
	n, _, _ := newNotifier(t, 3)

	history, err := n.History(context.Background(), 99, 10)

	require.NoError(t, err)
	assert.Empty(t, history)
}
