package domain

// ServiceCenter сервисный центр (read model, владелец - подсистема администрирования)
type ServiceCenter struct {
	ID           int64
	Name         string
	Address      string
	Active       bool
	SlotCapacity int // количество боксов, одновременно доступных для записей
}

// EmployeeCenter привязка сотрудника к его домашнему сервисному центру
type EmployeeCenter struct {
	EmployeeID      int64
	ServiceCenterID int64
}
