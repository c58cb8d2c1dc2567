package appointment

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

const uniqueViolation = "23505"

var appointmentColumns = []string{
	"id",
	"customer_id",
	"vehicle_id",
	"offering_id",
	"service_center_id",
	"type",
	"scheduled_at",
	"status",
	"duration_minutes",
	"cost",
	"description",
	"started_at",
	"completed_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями на обслуживание
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись.
// Повторная активная запись того же автомобиля на то же время отсекается уникальным индексом (ErrDuplicate).
func (r *Repository) Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"customer_id",
			"vehicle_id",
			"offering_id",
			"service_center_id",
			"type",
			"scheduled_at",
			"status",
			"duration_minutes",
			"cost",
			"description",
		).
		Values(
			appointment.CustomerID,
			appointment.VehicleID,
			appointment.OfferingID,
			appointment.ServiceCenterID,
			appointment.Type,
			appointment.ScheduledAt,
			appointment.Status,
			appointment.DurationMinutes,
			appointment.Cost,
			appointment.Description,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appointment.ID,
		&createdAt,
		&updatedAt,
	)

	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	appointment.CreatedAt = createdAt.Time
	appointment.UpdatedAt = updatedAt.Time
	if appointment.AssignedEmployeeIDs == nil {
		appointment.AssignedEmployeeIDs = make([]int64, 0)
	}

	return appointment, nil
}

// GetByID получает запись по ID вместе с назначенными сотрудниками.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appointment, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, err)
	}

	employees, err := r.loadEmployees(ctx, executor, []int64{appointment.ID})
	if err != nil {
		return nil, err
	}
	appointment.AssignedEmployeeIDs = employeesOf(employees, appointment.ID)

	return appointment, nil
}

// ExistsActiveForVehicle проверяет, есть ли у автомобиля неотменённая запись на это же время
func (r *Repository) ExistsActiveForVehicle(ctx context.Context, vehicleID int64, scheduledAt time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("appointments").
		Where(squirrel.Eq{"vehicle_id": vehicleID}).
		Where(squirrel.Eq{"scheduled_at": scheduledAt}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		Limit(1).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: ExistsActiveForVehicle - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: ExistsActiveForVehicle - execute query: %w", ErrExecQuery, err)
	}

	return true, nil
}

// List получает записи по фильтру, отсортированные по времени начала
func (r *Repository) List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		OrderBy("scheduled_at ASC, id ASC")

	if filter.ServiceCenterID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service_center_id": *filter.ServiceCenterID})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.CustomerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %w", ErrScanRow, err)
		}
		appointments = append(appointments, appointment)
		ids = append(ids, appointment.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	if len(ids) == 0 {
		return appointments, nil
	}

	employees, err := r.loadEmployees(ctx, executor, ids)
	if err != nil {
		return nil, err
	}
	for _, appointment := range appointments {
		appointment.AssignedEmployeeIDs = employeesOf(employees, appointment.ID)
	}

	return appointments, nil
}

// UpdateStatus обновляет статус записи и отметки фактического начала/окончания работ
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, startedAt, completedAt *time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("started_at", startedAt).
		Set("completed_at", completedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// AddEmployees добавляет сотрудников к записи. Уже назначенные сотрудники пропускаются.
func (r *Repository) AddEmployees(ctx context.Context, appointmentID int64, employeeIDs []int64) error {
	if len(employeeIDs) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("appointment_employees").
		Columns("appointment_id", "employee_id")
	for _, employeeID := range employeeIDs {
		insertBuilder = insertBuilder.Values(appointmentID, employeeID)
	}

	query, args, err := insertBuilder.
		Suffix("ON CONFLICT (appointment_id, employee_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AddEmployees - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AddEmployees - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// loadEmployees загружает назначенных сотрудников для набора записей
func (r *Repository) loadEmployees(ctx context.Context, executor DBExecutor, appointmentIDs []int64) (map[int64][]int64, error) {
	query, args, err := psqlbuilder.Select("appointment_id", "employee_id").
		From("appointment_employees").
		Where(squirrel.Eq{"appointment_id": appointmentIDs}).
		OrderBy("appointment_id ASC, employee_id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: loadEmployees - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadEmployees - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make(map[int64][]int64)
	for rows.Next() {
		var appointmentID, employeeID int64
		if err := rows.Scan(&appointmentID, &employeeID); err != nil {
			return nil, fmt.Errorf("%w: loadEmployees - scan row: %w", ErrScanRow, err)
		}
		result[appointmentID] = append(result[appointmentID], employeeID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadEmployees - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

func employeesOf(employees map[int64][]int64, appointmentID int64) []int64 {
	if ids, ok := employees[appointmentID]; ok {
		return ids
	}
	return make([]int64, 0)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAppointment сканирует строку в запись (порядок колонок - appointmentColumns)
func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var appointment domain.Appointment
	var description sql.NullString
	var startedAt, completedAt, createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&appointment.ID,
		&appointment.CustomerID,
		&appointment.VehicleID,
		&appointment.OfferingID,
		&appointment.ServiceCenterID,
		&appointment.Type,
		&appointment.ScheduledAt,
		&appointment.Status,
		&appointment.DurationMinutes,
		&appointment.Cost,
		&description,
		&startedAt,
		&completedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		appointment.Description = &description.String
	}
	if startedAt.Valid {
		t := startedAt.Time
		appointment.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		appointment.CompletedAt = &t
	}
	appointment.CreatedAt = createdAt.Time
	appointment.UpdatedAt = updatedAt.Time

	return &appointment, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
