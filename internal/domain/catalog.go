package domain

import "time"

// Vehicle автомобиль клиента
type Vehicle struct {
	ID              int64
	OwnerID         int64
	Brand           string
	Model           string
	LicensePlate    string
	LastServiceDate *time.Time
}

// IsOwnedBy returns true if the vehicle belongs to the given customer
func (v *Vehicle) IsOwnedBy(customerID int64) bool {
	return v.OwnerID == customerID
}

// Offering услуга или доработка из каталога
type Offering struct {
	ID                       int64
	Kind                     AppointmentType
	Name                     string
	EstimatedDurationMinutes int
	Cost                     float64
}
