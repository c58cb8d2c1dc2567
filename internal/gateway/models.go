package gateway

import "github.com/m04kA/SMC-SchedulingService/internal/domain"

// AppointmentView запись вместе с закреплённым боксом и сменами сотрудников
type AppointmentView struct {
	Appointment *domain.Appointment
	SlotNumber  *int // nil, если бокс не закреплён (запись завершена или отменена)
	Shifts      []*domain.ShiftSchedule
}
