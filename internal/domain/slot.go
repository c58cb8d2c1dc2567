package domain

import "time"

// ServiceCenterSlot единица физической ёмкости сервисного центра (бокс/подъёмник).
// Слот либо свободен (Booked=false, AppointmentID=nil), либо привязан ровно к одной неотменённой записи.
type ServiceCenterSlot struct {
	ID              int64
	ServiceCenterID int64
	SlotNumber      int
	Booked          bool
	AppointmentID   *int64
	UpdatedAt       time.Time
}

// IsFree returns true if the slot is not bound to any appointment
func (s *ServiceCenterSlot) IsFree() bool {
	return !s.Booked && s.AppointmentID == nil
}
