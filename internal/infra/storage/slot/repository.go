package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

var slotColumns = []string{
	"id",
	"service_center_id",
	"slot_number",
	"booked",
	"appointment_id",
	"updated_at",
}

// Repository репозиторий пула боксов сервисных центров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория боксов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreatePool досоздаёт боксы с номерами 1..capacity. Существующие боксы не трогаются.
func (r *Repository) CreatePool(ctx context.Context, serviceCenterID int64, capacity int) error {
	if capacity <= 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("service_center_slots").
		Columns("service_center_id", "slot_number")
	for n := 1; n <= capacity; n++ {
		insertBuilder = insertBuilder.Values(serviceCenterID, n)
	}

	query, args, err := insertBuilder.
		Suffix("ON CONFLICT (service_center_id, slot_number) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreatePool - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CreatePool - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// ClaimFree занимает свободный бокс с минимальным номером в пределах capacity и привязывает его к записи.
// Бокс выбирается через FOR UPDATE SKIP LOCKED, поэтому параллельные брони не ждут друг друга
// и никогда не получают один и тот же бокс.
func (r *Repository) ClaimFree(ctx context.Context, serviceCenterID int64, capacity int, appointmentID int64) (*domain.ServiceCenterSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id").
		From("service_center_slots").
		Where(squirrel.Eq{"service_center_id": serviceCenterID}).
		Where(squirrel.Eq{"booked": false}).
		Where(squirrel.LtOrEq{"slot_number": capacity}).
		OrderBy("slot_number ASC").
		Limit(1).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ClaimFree - build select query: %v", ErrBuildQuery, err)
	}

	var slotID int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&slotID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoFreeSlot
	}
	if err != nil {
		return nil, fmt.Errorf("%w: ClaimFree - select free slot: %w", ErrExecQuery, err)
	}

	query, args, err = psqlbuilder.Update("service_center_slots").
		Set("booked", true).
		Set("appointment_id", appointmentID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slotID}).
		Suffix("RETURNING " + strings.Join(slotColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ClaimFree - build update query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%w: ClaimFree - bind slot: %w", ErrExecQuery, err)
	}

	return slot, nil
}

// GetByAppointment получает бокс, закреплённый за записью
func (r *Repository) GetByAppointment(ctx context.Context, appointmentID int64) (*domain.ServiceCenterSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("service_center_slots").
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAppointment - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAppointment - scan slot: %w", ErrScanRow, err)
	}

	return slot, nil
}

// Release освобождает бокс записи. Возвращает false, если бокс уже был свободен.
func (r *Repository) Release(ctx context.Context, appointmentID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("service_center_slots").
		Set("booked", false).
		Set("appointment_id", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: Release - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: Release - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// CountBooked возвращает количество занятых боксов сервисного центра
func (r *Repository) CountBooked(ctx context.Context, serviceCenterID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("service_center_slots").
		Where(squirrel.Eq{"service_center_id": serviceCenterID}).
		Where(squirrel.Eq{"booked": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountBooked - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountBooked - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

func scanSlot(row *sql.Row) (*domain.ServiceCenterSlot, error) {
	var slot domain.ServiceCenterSlot
	var appointmentID sql.NullInt64
	var updatedAt sql.NullTime

	err := row.Scan(
		&slot.ID,
		&slot.ServiceCenterID,
		&slot.SlotNumber,
		&slot.Booked,
		&appointmentID,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if appointmentID.Valid {
		id := appointmentID.Int64
		slot.AppointmentID = &id
	}
	slot.UpdatedAt = updatedAt.Time

	return &slot, nil
}
