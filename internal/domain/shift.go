package domain

import "time"

// ShiftOrigin источник назначения сотрудника
type ShiftOrigin string

const (
	OriginBySelf  ShiftOrigin = "BY_SELF"
	OriginByAdmin ShiftOrigin = "BY_ADMIN"
)

// ShiftSchedule зафиксированная смена сотрудника под конкретную запись
type ShiftSchedule struct {
	ID            int64
	EmployeeID    int64
	AppointmentID int64
	StartAt       time.Time
	EndAt         time.Time
	Origin        ShiftOrigin
	CreatedAt     time.Time
}

// Interval возвращает интервал смены
func (s *ShiftSchedule) Interval() Interval {
	return Interval{Start: s.StartAt, End: s.EndAt}
}
