package list_pending

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
)

const (
	route = "GET /appointments/pending"

	msgInvalidServiceCenterID = "некорректный ID сервисного центра"
	msgMissingUserID          = "отсутствует ID пользователя"
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

// Handle GET /api/v1/appointments/pending?serviceCenterId=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var serviceCenterID *int64
	if raw := r.URL.Query().Get("serviceCenterId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.logger.Warn("%s - Invalid serviceCenterId %q", route, raw)
			handlers.RespondBadRequest(w, msgInvalidServiceCenterID)
			return
		}
		serviceCenterID = &id
	}

	appointments, err := h.gateway.ListPending(r.Context(), caller, serviceCenterID)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Found %d pending appointments: user_id=%d", route, len(appointments), caller.UserID)
	handlers.RespondJSON(w, http.StatusOK, handlers.FromAppointments(appointments))
}
