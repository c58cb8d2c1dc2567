package domain

// Business validation constants
const (
	MaxDescriptionLength = 1000
	MaxAssignBatchSize   = 20
	DefaultHistorySize   = 100
)

// AllStatuses список всех статусов записи
var AllStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// Notification event types
const (
	EventAppointmentBooked    = "APPOINTMENT_BOOKED"
	EventAppointmentConfirmed = "APPOINTMENT_CONFIRMED"
	EventAppointmentStatus    = "APPOINTMENT_STATUS_CHANGED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
	EventEmployeeAssigned     = "EMPLOYEE_ASSIGNED"
)
