package slot

import "errors"

var (
	// ErrNoFreeSlot возвращается, когда в сервисном центре нет свободного бокса
	ErrNoFreeSlot = errors.New("slot.repository: no free slot")

	// ErrSlotNotFound возвращается, когда за записью не закреплён бокс
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
