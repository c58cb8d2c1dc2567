package catalog

import "errors"

var (
	// ErrVehicleNotFound возвращается, когда автомобиль не найден
	ErrVehicleNotFound = errors.New("catalog.repository: vehicle not found")

	// ErrOfferingNotFound возвращается, когда услуга/доработка не найдена
	ErrOfferingNotFound = errors.New("catalog.repository: offering not found")

	// ErrServiceCenterNotFound возвращается, когда сервисный центр не найден
	ErrServiceCenterNotFound = errors.New("catalog.repository: service center not found")

	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("catalog.repository: user not found")

	// ErrEmployeeCenterNotFound возвращается, когда сотрудник не привязан к сервисному центру
	ErrEmployeeCenterNotFound = errors.New("catalog.repository: employee center not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("catalog.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("catalog.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("catalog.repository: failed to scan row")
)
