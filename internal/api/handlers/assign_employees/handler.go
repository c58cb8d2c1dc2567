package assign_employees

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
)

const (
	route = "PUT /appointments/{appointmentId}/employees"

	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
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

// Handle PUT /api/v1/appointments/{appointmentId}/employees
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

	var req AssignEmployeesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	view, err := h.gateway.AssignEmployees(r.Context(), caller, appointmentID, req.EmployeeIDs)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Employees assigned: appointment_id=%d, admin_id=%d, employees=%v",
		route, appointmentID, caller.UserID, view.Appointment.AssignedEmployeeIDs)
	handlers.RespondJSON(w, http.StatusOK, handlers.FromView(view))
}
