package book_appointment

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса на запись в сервисный центр
type Request struct {
	VehicleID       int64     // ID автомобиля клиента
	OfferingID      int64     // ID услуги или доработки
	ServiceCenterID int64     // ID сервисного центра
	Type            string    // SERVICE или MODIFICATION
	ScheduledAt     time.Time // Плановое время начала работ
	Description     *string   // Комментарий клиента (опционально)
}

// Response модель ответа с созданной записью
type Response struct {
	Appointment *domain.Appointment
	SlotNumber  int // Номер закреплённого бокса
}
