package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	historyKeyPrefix = "notifications:history:"
	channelPrefix    = "notifications:user:"

	defaultHistorySize = 100
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RedisNotifier пишет уведомления в ограниченную историю пользователя
// и публикует их в канал notifications:user:<id>, который читает слой чата/WebSocket
type RedisNotifier struct {
	redis       *redis.Client
	historySize int64
	logger      Logger
}

// NewRedisNotifier создает новый notifier поверх Redis
func NewRedisNotifier(client *redis.Client, historySize int, logger Logger) *RedisNotifier {
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	return &RedisNotifier{
		redis:       client,
		historySize: int64(historySize),
		logger:      logger,
	}
}

// Notify сохраняет уведомление в истории и публикует его подписчикам
func (n *RedisNotifier) Notify(ctx context.Context, notification Notification) error {
	if notification.UserID <= 0 || notification.Type == "" {
		return ErrInvalidNotification
	}
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPublish, err)
	}

	pipe := n.redis.TxPipeline()
	pipe.RPush(ctx, HistoryKey(notification.UserID), data)
	pipe.LTrim(ctx, HistoryKey(notification.UserID), -n.historySize, -1)
	pipe.Publish(ctx, Channel(notification.UserID), data)
	if _, err := pipe.Exec(ctx); err != nil {
		n.logger.Error("Notify: failed to publish %s for user=%d: %v", notification.Type, notification.UserID, err)
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}

	n.logger.Info("Notify: %s sent to user=%d id=%s", notification.Type, notification.UserID, notification.ID)
	return nil
}

// History возвращает последние limit уведомлений пользователя (limit <= 0 - все сохранённые)
func (n *RedisNotifier) History(ctx context.Context, userID int64, limit int64) ([]Notification, error) {
	start := int64(0)
	if limit > 0 {
		start = -limit
	}

	raw, err := n.redis.LRange(ctx, HistoryKey(userID), start, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("notifier: read history: %w", err)
	}

	result := make([]Notification, 0, len(raw))
	for _, item := range raw {
		var notification Notification
		if err := json.Unmarshal([]byte(item), &notification); err != nil {
			n.logger.Warn("History: skip malformed notification for user=%d: %v", userID, err)
			continue
		}
		result = append(result, notification)
	}
	return result, nil
}

// HistoryKey ключ списка истории уведомлений пользователя
func HistoryKey(userID int64) string {
	return historyKeyPrefix + strconv.FormatInt(userID, 10)
}

// Channel канал pub/sub пользователя
func Channel(userID int64) string {
	return channelPrefix + strconv.FormatInt(userID, 10)
}

// StubNotifier только логирует уведомления (Redis выключен)
type StubNotifier struct {
	logger Logger
}

// NewStubNotifier создает notifier-заглушку
func NewStubNotifier(logger Logger) *StubNotifier {
	return &StubNotifier{logger: logger}
}

// Notify логирует уведомление
func (n *StubNotifier) Notify(ctx context.Context, notification Notification) error {
	if notification.UserID <= 0 || notification.Type == "" {
		return ErrInvalidNotification
	}
	n.logger.Info("Notify (stub): %s for user=%d: %s", notification.Type, notification.UserID, notification.Message)
	return nil
}
