package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

// Repository читает справочные данные соседних подсистем: автомобили, услуги, сервисные центры, пользователей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория справочников
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetVehicle получает автомобиль по ID
func (r *Repository) GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "owner_id", "brand", "model", "license_plate", "last_service_date").
		From("vehicles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetVehicle - build select query: %v", ErrBuildQuery, err)
	}

	var vehicle domain.Vehicle
	var lastServiceDate sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&vehicle.ID,
		&vehicle.OwnerID,
		&vehicle.Brand,
		&vehicle.Model,
		&vehicle.LicensePlate,
		&lastServiceDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetVehicle - scan vehicle: %w", ErrScanRow, err)
	}

	if lastServiceDate.Valid {
		t := lastServiceDate.Time
		vehicle.LastServiceDate = &t
	}

	return &vehicle, nil
}

// UpdateVehicleLastServiceDate обновляет дату последнего обслуживания автомобиля
func (r *Repository) UpdateVehicleLastServiceDate(ctx context.Context, vehicleID int64, date time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("vehicles").
		Set("last_service_date", date).
		Where(squirrel.Eq{"id": vehicleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateVehicleLastServiceDate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateVehicleLastServiceDate - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateVehicleLastServiceDate - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrVehicleNotFound
	}

	return nil
}

// GetOffering получает услугу или доработку по ID
func (r *Repository) GetOffering(ctx context.Context, id int64) (*domain.Offering, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "kind", "name", "estimated_duration_minutes", "cost").
		From("offerings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOffering - build select query: %v", ErrBuildQuery, err)
	}

	var offering domain.Offering
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&offering.ID,
		&offering.Kind,
		&offering.Name,
		&offering.EstimatedDurationMinutes,
		&offering.Cost,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOfferingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOffering - scan offering: %w", ErrScanRow, err)
	}

	return &offering, nil
}

// GetServiceCenter получает сервисный центр по ID
func (r *Repository) GetServiceCenter(ctx context.Context, id int64) (*domain.ServiceCenter, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "address", "active", "slot_capacity").
		From("service_centers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceCenter - build select query: %v", ErrBuildQuery, err)
	}

	var center domain.ServiceCenter
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&center.ID,
		&center.Name,
		&center.Address,
		&center.Active,
		&center.SlotCapacity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceCenterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceCenter - scan service center: %w", ErrScanRow, err)
	}

	return &center, nil
}

// ListServiceCenters возвращает все сервисные центры
func (r *Repository) ListServiceCenters(ctx context.Context) ([]*domain.ServiceCenter, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "address", "active", "slot_capacity").
		From("service_centers").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListServiceCenters - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListServiceCenters - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	centers := make([]*domain.ServiceCenter, 0)
	for rows.Next() {
		var center domain.ServiceCenter
		if err := rows.Scan(&center.ID, &center.Name, &center.Address, &center.Active, &center.SlotCapacity); err != nil {
			return nil, fmt.Errorf("%w: ListServiceCenters - scan row: %w", ErrScanRow, err)
		}
		centers = append(centers, &center)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListServiceCenters - rows error: %w", ErrScanRow, err)
	}

	return centers, nil
}

// GetUser получает пользователя по ID
func (r *Repository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "email", "active", "roles").
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetUser - build select query: %v", ErrBuildQuery, err)
	}

	user, err := scanUser(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetUser - scan user: %w", ErrScanRow, err)
	}

	return user, nil
}

// GetEmployeeCenter получает домашний сервисный центр сотрудника
func (r *Repository) GetEmployeeCenter(ctx context.Context, employeeID int64) (*domain.EmployeeCenter, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("employee_id", "service_center_id").
		From("employee_centers").
		Where(squirrel.Eq{"employee_id": employeeID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetEmployeeCenter - build select query: %v", ErrBuildQuery, err)
	}

	var link domain.EmployeeCenter
	err = executor.QueryRowContext(ctx, query, args...).Scan(&link.EmployeeID, &link.ServiceCenterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmployeeCenterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetEmployeeCenter - scan employee center: %w", ErrScanRow, err)
	}

	return &link, nil
}

// ListEmployeesByCenter возвращает активных сотрудников сервисного центра
func (r *Repository) ListEmployeesByCenter(ctx context.Context, serviceCenterID int64) ([]*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("u.id", "u.name", "u.email", "u.active", "u.roles").
		From("users u").
		Join("employee_centers ec ON ec.employee_id = u.id").
		Where(squirrel.Eq{"ec.service_center_id": serviceCenterID}).
		Where(squirrel.Eq{"u.active": true}).
		Where(squirrel.Expr("? = ANY(u.roles)", string(domain.RoleEmployee))).
		OrderBy("u.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListEmployeesByCenter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListEmployeesByCenter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListEmployeesByCenter - scan row: %w", ErrScanRow, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListEmployeesByCenter - rows error: %w", ErrScanRow, err)
	}

	return users, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var roles []string

	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Active, pq.Array(&roles)); err != nil {
		return nil, err
	}

	user.Roles = make([]domain.Role, 0, len(roles))
	for _, role := range roles {
		user.Roles = append(user.Roles, domain.Role(role))
	}

	return &user, nil
}
