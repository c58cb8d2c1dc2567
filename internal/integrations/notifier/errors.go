package notifier

import "errors"

var (
	// ErrInvalidNotification возвращается для уведомления без получателя или типа
	ErrInvalidNotification = errors.New("notifier: invalid notification")

	// ErrPublish возвращается при ошибке записи в Redis
	ErrPublish = errors.New("notifier: failed to publish notification")
)
