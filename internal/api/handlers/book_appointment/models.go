package book_appointment

import (
	"time"

	bookAppointment "github.com/m04kA/SMC-SchedulingService/internal/usecase/book_appointment"
)

// BookAppointmentRequest HTTP request model
type BookAppointmentRequest struct {
	VehicleID       int64   `json:"vehicleId"`
	ServiceID       int64   `json:"serviceId"`
	ServiceCenterID int64   `json:"serviceCenterId"`
	AppointmentType string  `json:"appointmentType"` // SERVICE или MODIFICATION
	ScheduledAt     string  `json:"scheduledAt"`     // RFC3339, "2030-05-01T10:00:00Z"
	Description     *string `json:"description,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *BookAppointmentRequest) ToUseCaseRequest() (*bookAppointment.Request, error) {
	scheduledAt, err := time.Parse(time.RFC3339, r.ScheduledAt)
	if err != nil {
		return nil, err
	}

	return &bookAppointment.Request{
		VehicleID:       r.VehicleID,
		OfferingID:      r.ServiceID,
		ServiceCenterID: r.ServiceCenterID,
		Type:            r.AppointmentType,
		ScheduledAt:     scheduledAt,
		Description:     r.Description,
	}, nil
}
