package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	msgInternalError = "внутренняя ошибка сервера"

	codeBadRequest   = "BAD_REQUEST"
	codeUnauthorized = "UNAUTHORIZED"
	codeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// businessStatuses HTTP статусы бизнес-ошибок. Не перечисленные коды отдаются как 400.
var businessStatuses = map[string]int{
	domain.ErrVehicleNotFound.Code:          http.StatusNotFound,
	domain.ErrServiceNotFound.Code:          http.StatusNotFound,
	domain.ErrServiceCenterNotFound.Code:    http.StatusNotFound,
	domain.ErrAppointmentNotFound.Code:      http.StatusNotFound,
	domain.ErrSlotNotFound.Code:             http.StatusNotFound,
	domain.ErrEmployeeNotFound.Code:         http.StatusNotFound,
	domain.ErrNotOwnVehicle.Code:            http.StatusForbidden,
	domain.ErrAccessDenied.Code:             http.StatusForbidden,
	domain.ErrNotEmployee.Code:              http.StatusForbidden,
	domain.ErrEmployeeNotInCenter.Code:      http.StatusForbidden,
	domain.ErrDuplicateAppointment.Code:     http.StatusConflict,
	domain.ErrCapacityExceeded.Code:         http.StatusConflict,
	domain.ErrConflictingShift.Code:         http.StatusConflict,
	domain.ErrInvalidTransition.Code:        http.StatusConflict,
	domain.ErrCannotCancel.Code:             http.StatusConflict,
	domain.ErrAppointmentNotAssignable.Code: http.StatusConflict,
}

// StatusForCode возвращает HTTP статус для кода бизнес-ошибки
func StatusForCode(code string) int {
	if status, ok := businessStatuses[code]; ok {
		return status
	}
	return http.StatusBadRequest
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondError отправляет ответ с ошибкой
func RespondError(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, codeBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, codeUnauthorized, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, codeInternal, msgInternalError)
}

// RespondServiceError отвечает на ошибку операции планирования.
// Бизнес-ошибки отдаются со своим кодом и логируются как WARN, остальные - как ERROR с ответом 500.
func RespondServiceError(w http.ResponseWriter, logger Logger, route string, err error) {
	if be, ok := domain.AsBusinessError(err); ok {
		logger.Warn("%s - %s: %v", route, be.Code, err)
		RespondError(w, StatusForCode(be.Code), be.Code, be.Message)
		return
	}

	logger.Error("%s - internal error: %v", route, err)
	RespondInternalError(w)
}

// DecodeJSON декодирует тело запроса, запрещая неизвестные поля
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// PathInt64 извлекает положительный числовой параметр пути
func PathInt64(r *http.Request, name string) (int64, bool) {
	value, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}
