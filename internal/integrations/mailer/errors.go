package mailer

import "errors"

var (
	// ErrNoRecipient возвращается, если у получателя нет email
	ErrNoRecipient = errors.New("mailer: recipient has no email")

	// ErrSend возвращается при ошибке отправки письма
	ErrSend = errors.New("mailer: failed to send email")
)
