package gateway

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках фасада
	ErrInternal = errors.New("gateway: internal error")
)
