package handlers

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/gateway"
)

// AppointmentResponse HTTP модель записи
type AppointmentResponse struct {
	ID                  int64   `json:"id"`
	CustomerID          int64   `json:"customerId"`
	VehicleID           int64   `json:"vehicleId"`
	ServiceID           int64   `json:"serviceId"`
	ServiceCenterID     int64   `json:"serviceCenterId"`
	AppointmentType     string  `json:"appointmentType"`
	ScheduledAt         string  `json:"scheduledAt"`
	Status              string  `json:"status"`
	DurationMinutes     int     `json:"durationMinutes"`
	Cost                float64 `json:"cost"`
	Description         *string `json:"description,omitempty"`
	AssignedEmployeeIDs []int64 `json:"assignedEmployeeIds"`
	StartedAt           *string `json:"startedAt,omitempty"`
	CompletedAt         *string `json:"completedAt,omitempty"`
	CreatedAt           string  `json:"createdAt"`
	UpdatedAt           string  `json:"updatedAt"`
}

// ShiftResponse HTTP модель смены
type ShiftResponse struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"employeeId"`
	StartAt    string `json:"startAt"`
	EndAt      string `json:"endAt"`
	Origin     string `json:"origin"`
}

// AppointmentViewResponse запись с номером бокса и сменами
type AppointmentViewResponse struct {
	AppointmentResponse
	SlotNumber *int            `json:"slotNumber"`
	Shifts     []ShiftResponse `json:"shifts"`
}

// EmployeeResponse HTTP модель сотрудника
type EmployeeResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// FromAppointment конвертирует запись в HTTP модель
func FromAppointment(a *domain.Appointment) AppointmentResponse {
	employees := a.AssignedEmployeeIDs
	if employees == nil {
		employees = []int64{}
	}

	return AppointmentResponse{
		ID:                  a.ID,
		CustomerID:          a.CustomerID,
		VehicleID:           a.VehicleID,
		ServiceID:           a.OfferingID,
		ServiceCenterID:     a.ServiceCenterID,
		AppointmentType:     string(a.Type),
		ScheduledAt:         a.ScheduledAt.Format(time.RFC3339),
		Status:              string(a.Status),
		DurationMinutes:     a.DurationMinutes,
		Cost:                a.Cost,
		Description:         a.Description,
		AssignedEmployeeIDs: employees,
		StartedAt:           formatOptional(a.StartedAt),
		CompletedAt:         formatOptional(a.CompletedAt),
		CreatedAt:           a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           a.UpdatedAt.Format(time.RFC3339),
	}
}

// FromAppointments конвертирует список записей
func FromAppointments(list []*domain.Appointment) []AppointmentResponse {
	result := make([]AppointmentResponse, 0, len(list))
	for _, a := range list {
		result = append(result, FromAppointment(a))
	}
	return result
}

// FromView конвертирует представление записи
func FromView(view *gateway.AppointmentView) AppointmentViewResponse {
	shifts := make([]ShiftResponse, 0, len(view.Shifts))
	for _, s := range view.Shifts {
		shifts = append(shifts, ShiftResponse{
			ID:         s.ID,
			EmployeeID: s.EmployeeID,
			StartAt:    s.StartAt.Format(time.RFC3339),
			EndAt:      s.EndAt.Format(time.RFC3339),
			Origin:     string(s.Origin),
		})
	}

	return AppointmentViewResponse{
		AppointmentResponse: FromAppointment(view.Appointment),
		SlotNumber:          view.SlotNumber,
		Shifts:              shifts,
	}
}

// FromEmployees конвертирует список сотрудников
func FromEmployees(users []*domain.User) []EmployeeResponse {
	result := make([]EmployeeResponse, 0, len(users))
	for _, u := range users {
		result = append(result, EmployeeResponse{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return result
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}
