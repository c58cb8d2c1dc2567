package book_appointment

import (
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
)

const (
	route = "POST /appointments"

	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidScheduledAt = "некорректное время записи, ожидается RFC3339"
	msgMissingUserID      = "отсутствует ID пользователя"
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

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req BookAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("%s - Invalid scheduledAt %q: %v", route, req.ScheduledAt, err)
		handlers.RespondBadRequest(w, msgInvalidScheduledAt)
		return
	}

	view, err := h.gateway.Book(r.Context(), caller, useCaseReq)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Appointment booked: appointment_id=%d, customer_id=%d, center_id=%d",
		route, view.Appointment.ID, caller.UserID, view.Appointment.ServiceCenterID)
	handlers.RespondJSON(w, http.StatusCreated, handlers.FromView(view))
}
