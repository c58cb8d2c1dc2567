package list_possible_appointments

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
)

const (
	route = "GET /employees/me/possible-appointments"

	msgMissingUserID = "отсутствует ID пользователя"
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

// Handle GET /api/v1/employees/me/possible-appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	appointments, err := h.gateway.ListPossibleAppointments(r.Context(), caller)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Found %d possible appointments: employee_id=%d", route, len(appointments), caller.UserID)
	handlers.RespondJSON(w, http.StatusOK, handlers.FromAppointments(appointments))
}
