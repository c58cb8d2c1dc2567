package notifier

import "time"

// Notification уведомление пользователю
type Notification struct {
	ID        string            `json:"id"`
	UserID    int64             `json:"user_id"`
	Type      string            `json:"type"`
	Message   string            `json:"message"`
	Payload   map[string]string `json:"payload,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
