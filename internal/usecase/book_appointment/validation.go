package book_appointment

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// validateRequest проверяет форму запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", domain.ErrInvalidInput)
	}
	if req.VehicleID <= 0 {
		return fmt.Errorf("%w: vehicleId must be positive", domain.ErrInvalidInput)
	}
	if req.OfferingID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", domain.ErrInvalidInput)
	}
	if req.ServiceCenterID <= 0 {
		return fmt.Errorf("%w: serviceCenterId must be positive", domain.ErrInvalidInput)
	}
	if req.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduledAt is required", domain.ErrInvalidInput)
	}
	if req.Description != nil && utf8.RuneCountInString(*req.Description) > domain.MaxDescriptionLength {
		return fmt.Errorf("%w: description is longer than %d characters", domain.ErrInvalidInput, domain.MaxDescriptionLength)
	}
	return nil
}

// validateOffering проверяет, что услуга подходит под тип записи и имеет длительность
func validateOffering(offering *domain.Offering, appointmentType domain.AppointmentType) error {
	if offering.Kind != appointmentType {
		return fmt.Errorf("%w: offering id=%d is %s, not %s", domain.ErrServiceNotFound, offering.ID, offering.Kind, appointmentType)
	}
	if offering.EstimatedDurationMinutes <= 0 {
		return domain.ErrInvalidServiceDuration
	}
	return nil
}

// validateScheduledAt проверяет, что время начала строго в будущем
func validateScheduledAt(scheduledAt, now time.Time) error {
	if !scheduledAt.After(now) {
		return domain.ErrPastDate
	}
	return nil
}

func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
