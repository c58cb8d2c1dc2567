package list_possible_employees

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
)

const (
	route = "GET /appointments/{appointmentId}/possible-employees"

	msgInvalidAppointmentID = "некорректный ID записи"
	msgMissingUserID        = "отсутствует ID пользователя"
)

type Handler struct {
	gateway Gateway
	logger  Logger
}

func NewHandler(gateway Gateway, logger Logger) *Handler {
	return &Handler{
		gateway: gateway,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointments/{appointmentId}/possible-employees
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := handlers.PathInt64(r, "appointmentId")
	if !ok {
		h.logger.Warn("%s - Invalid appointment ID", route)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	employees, err := h.gateway.ListPossibleEmployees(r.Context(), caller, appointmentID)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Found %d possible employees: appointment_id=%d", route, len(employees), appointmentID)
	handlers.RespondJSON(w, http.StatusOK, handlers.FromEmployees(employees))
}
