package api

import (
	"net/http"

	"github.com/gorilla/mux"

	assignEmployeesHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/assign_employees"
	bookAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/book_appointment"
	cancelAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/cancel_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_appointment"
	listPendingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/list_pending"
	listPossibleAppointmentsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/list_possible_appointments"
	listPossibleEmployeesHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/list_possible_employees"
	selfAssignHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/self_assign"
	updateStatusHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_status"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/gateway"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Options необязательные части роутера
type Options struct {
	HTTPMetrics    middleware.HTTPMetrics // nil - HTTP метрики не собираются
	MetricsHandler http.Handler           // nil - эндпоинт метрик не публикуется
	MetricsPath    string
}

// NewRouter собирает HTTP API планирования
func NewRouter(g *gateway.Gateway, logger Logger, opts Options) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if opts.HTTPMetrics != nil {
		r.Use(middleware.MetricsMiddleware(opts.HTTPMetrics))
	}

	// Metrics endpoint (публичный, без аутентификации)
	if opts.MetricsHandler != nil && opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, opts.MetricsHandler).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth)

	// --- Записи ---
	// pending регистрируется раньше {appointmentId}
	api.HandleFunc("/appointments/pending",
		listPendingHandler.NewHandler(g, logger).Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments",
		bookAppointmentHandler.NewHandler(g, logger).Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{appointmentId}",
		getAppointmentHandler.NewHandler(g, logger).Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}/cancel",
		cancelAppointmentHandler.NewHandler(g, logger).Handle).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}/status",
		updateStatusHandler.NewHandler(g, logger).Handle).Methods(http.MethodPatch)

	// --- Назначения ---
	api.HandleFunc("/appointments/{appointmentId}/employees",
		assignEmployeesHandler.NewHandler(g, logger).Handle).Methods(http.MethodPut)
	api.HandleFunc("/appointments/{appointmentId}/self-assign",
		selfAssignHandler.NewHandler(g, logger).Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{appointmentId}/possible-employees",
		listPossibleEmployeesHandler.NewHandler(g, logger).Handle).Methods(http.MethodGet)
	api.HandleFunc("/employees/me/possible-appointments",
		listPossibleAppointmentsHandler.NewHandler(g, logger).Handle).Methods(http.MethodGet)

	return r
}
