package shift

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

var shiftColumns = []string{
	"s.id",
	"s.employee_id",
	"s.appointment_id",
	"s.start_at",
	"s.end_at",
	"s.origin",
	"s.created_at",
}

// Repository репозиторий смен сотрудников
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория смен
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockEmployees блокирует строки сотрудников до конца транзакции.
// Блокировки берутся по возрастанию id, чтобы параллельные назначения не ловили дедлок.
// Вне транзакции ничего не делает.
func (r *Repository) LockEmployees(ctx context.Context, employeeIDs []int64) error {
	if len(employeeIDs) == 0 || !dbmetrics.IsInTransaction(ctx) {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	ids := append([]int64(nil), employeeIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	query, args, err := psqlbuilder.Select("id").
		From("users").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id ASC").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockEmployees - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: LockEmployees - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: LockEmployees - rows error: %w", ErrScanRow, err)
	}

	return nil
}

// FindOverlapping возвращает смены сотрудника, пересекающиеся с интервалом [start, end).
// Смены отменённых записей не учитываются.
func (r *Repository) FindOverlapping(ctx context.Context, employeeID int64, interval domain.Interval) ([]*domain.ShiftSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(shiftColumns...).
		From("shift_schedules s").
		Join("appointments a ON a.id = s.appointment_id").
		Where(squirrel.Eq{"s.employee_id": employeeID}).
		Where(squirrel.Lt{"s.start_at": interval.End}).
		Where(squirrel.Gt{"s.end_at": interval.Start}).
		Where(squirrel.NotEq{"a.status": domain.StatusCancelled}).
		OrderBy("s.start_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanShifts(rows)
}

// Create фиксирует смену сотрудника
func (r *Repository) Create(ctx context.Context, shift *domain.ShiftSchedule) (*domain.ShiftSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("shift_schedules").
		Columns("employee_id", "appointment_id", "start_at", "end_at", "origin").
		Values(shift.EmployeeID, shift.AppointmentID, shift.StartAt, shift.EndAt, shift.Origin).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&shift.ID, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}
	shift.CreatedAt = createdAt.Time

	return shift, nil
}

// ListByAppointment возвращает смены, зафиксированные под запись
func (r *Repository) ListByAppointment(ctx context.Context, appointmentID int64) ([]*domain.ShiftSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(shiftColumns...).
		From("shift_schedules s").
		Where(squirrel.Eq{"s.appointment_id": appointmentID}).
		OrderBy("s.employee_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByAppointment - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByAppointment - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanShifts(rows)
}

// scanShifts сканирует результаты запроса в слайс смен
func (r *Repository) scanShifts(rows *sql.Rows) ([]*domain.ShiftSchedule, error) {
	shifts := make([]*domain.ShiftSchedule, 0)

	for rows.Next() {
		var shift domain.ShiftSchedule
		var createdAt sql.NullTime

		err := rows.Scan(
			&shift.ID,
			&shift.EmployeeID,
			&shift.AppointmentID,
			&shift.StartAt,
			&shift.EndAt,
			&shift.Origin,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanShifts - scan row: %w", ErrScanRow, err)
		}
		shift.CreatedAt = createdAt.Time

		shifts = append(shifts, &shift)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanShifts - rows error: %w", ErrScanRow, err)
	}

	return shifts, nil
}
