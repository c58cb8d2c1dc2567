package domain

import "errors"

// BusinessError ожидаемая бизнес-ошибка со стабильным кодом и сообщением для пользователя
type BusinessError struct {
	Code    string
	Message string
}

func (e *BusinessError) Error() string {
	return e.Code + ": " + e.Message
}

func newBusinessError(code, message string) *BusinessError {
	return &BusinessError{Code: code, Message: message}
}

// AsBusinessError извлекает BusinessError из цепочки ошибок
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

var (
	// Booking
	ErrVehicleNotFound         = newBusinessError("VEHICLE_NOT_FOUND", "автомобиль не найден")
	ErrNotOwnVehicle           = newBusinessError("NOT_OWN_VEHICLE", "автомобиль принадлежит другому клиенту")
	ErrServiceNotFound         = newBusinessError("SERVICE_NOT_FOUND", "услуга не найдена")
	ErrInvalidServiceDuration  = newBusinessError("INVALID_SERVICE_DURATION", "у услуги не задана длительность")
	ErrServiceCenterNotFound   = newBusinessError("SERVICE_CENTER_NOT_FOUND", "сервисный центр не найден")
	ErrServiceCenterInactive   = newBusinessError("SERVICE_CENTER_INACTIVE", "сервисный центр не работает")
	ErrAppointmentTypeRequired = newBusinessError("APPOINTMENT_TYPE_REQUIRED", "не указан тип записи")
	ErrPastDate                = newBusinessError("PAST_DATE", "время записи должно быть в будущем")
	ErrDuplicateAppointment    = newBusinessError("DUPLICATE_APPOINTMENT", "автомобиль уже записан на это время")
	ErrCapacityExceeded        = newBusinessError("CAPACITY_EXCEEDED", "в сервисном центре нет свободных боксов")

	// Lifecycle
	ErrAppointmentNotFound = newBusinessError("APPOINTMENT_NOT_FOUND", "запись не найдена")
	ErrSlotNotFound        = newBusinessError("SLOT_NOT_FOUND", "за записью не закреплён бокс")
	ErrInvalidStatus       = newBusinessError("INVALID_STATUS", "неизвестный статус записи")
	ErrInvalidTransition   = newBusinessError("INVALID_TRANSITION", "недопустимая смена статуса")
	ErrCannotCancel        = newBusinessError("CANNOT_CANCEL", "запись не может быть отменена")

	// Assignment
	ErrNotEmployee              = newBusinessError("NOT_EMPLOYEE", "пользователь не является сотрудником")
	ErrEmployeeNotFound         = newBusinessError("EMPLOYEE_NOT_FOUND", "сотрудник не найден")
	ErrEmployeeNotInCenter      = newBusinessError("EMPLOYEE_NOT_IN_CENTER", "сотрудник не работает в этом сервисном центре")
	ErrConflictingShift         = newBusinessError("CONFLICTING_SHIFT", "у сотрудника уже есть смена на это время")
	ErrAppointmentNotAssignable = newBusinessError("APPOINTMENT_NOT_ASSIGNABLE", "на запись в этом статусе нельзя назначать сотрудников")

	// Common
	ErrAccessDenied = newBusinessError("ACCESS_DENIED", "доступ запрещен")
	ErrInvalidInput = newBusinessError("INVALID_INPUT", "некорректные входные данные")
)
