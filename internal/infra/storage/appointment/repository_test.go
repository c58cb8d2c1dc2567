package appointment

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

var scheduledAt = time.Date(2030, 5, 14, 10, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) (*Repository, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), db, mock
}

func appointmentRow() *sqlmock.Rows {
	return sqlmock.NewRows(appointmentColumns).AddRow(
		int64(7), int64(1), int64(10), int64(100), int64(3),
		"SERVICE", scheduledAt, "PENDING", 90, 2500.0,
		nil, nil, nil, scheduledAt.Add(-time.Hour), scheduledAt.Add(-time.Hour),
	)
}

func TestCreate(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(int64(1), int64(10), int64(100), int64(3), domain.TypeService, scheduledAt, domain.StatusPending, 90, 2500.0, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), time.Now(), time.Now()))

	created, err := repo.Create(context.Background(), &domain.Appointment{
		CustomerID:      1,
		VehicleID:       10,
		OfferingID:      100,
		ServiceCenterID: 3,
		Type:            domain.TypeService,
		ScheduledAt:     scheduledAt,
		Status:          domain.StatusPending,
		DurationMinutes: 90,
		Cost:            2500,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Empty(t, created.AssignedEmployeeIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery("INSERT INTO appointments").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "ux_appointments_vehicle_time_active"})

	_, err := repo.Create(context.Background(), &domain.Appointment{VehicleID: 10, ScheduledAt: scheduledAt})

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM appointments WHERE id = \$1$`).
		WithArgs(int64(7)).
		WillReturnRows(appointmentRow())
	mock.ExpectQuery(`SELECT appointment_id, employee_id FROM appointment_employees WHERE appointment_id IN \(\$1\)`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"appointment_id", "employee_id"}).
			AddRow(int64(7), int64(21)).
			AddRow(int64(7), int64(22)))

	appointment, err := repo.GetByID(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, appointment.Status)
	assert.Equal(t, domain.TypeService, appointment.Type)
	assert.Equal(t, 90, appointment.DurationMinutes)
	assert.Equal(t, []int64{21, 22}, appointment.AssignedEmployeeIDs)
	assert.Nil(t, appointment.Description)
	assert.Nil(t, appointment.StartedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_LocksRowInTransaction(t *testing.T) {
	repo, db, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM appointments WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(appointmentRow())
	mock.ExpectQuery("FROM appointment_employees").
		WillReturnRows(sqlmock.NewRows([]string{"appointment_id", "employee_id"}))
	mock.ExpectCommit()

	tx, err := dbmetrics.New(db, nil).BeginTx(context.Background(), nil)
	require.NoError(t, err)

	appointment, err := repo.GetByID(dbmetrics.WithTx(context.Background(), tx), 7)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Empty(t, appointment.AssignedEmployeeIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery("FROM appointments").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)

	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestExistsActiveForVehicle(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(`SELECT 1 FROM appointments WHERE vehicle_id = \$1 AND scheduled_at = \$2 AND status <> \$3 LIMIT 1`).
		WithArgs(int64(10), scheduledAt, domain.StatusCancelled).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM appointments").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsActiveForVehicle(context.Background(), 10, scheduledAt)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsActiveForVehicle(context.Background(), 11, scheduledAt)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestList_ByCenterAndStatus(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(`FROM appointments WHERE service_center_id = \$1 AND status = \$2 ORDER BY scheduled_at ASC, id ASC`).
		WithArgs(int64(3), domain.StatusPending).
		WillReturnRows(appointmentRow())
	mock.ExpectQuery("FROM appointment_employees").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"appointment_id", "employee_id"}))

	appointments, err := repo.List(context.Background(), domain.AppointmentFilter{
		ServiceCenterID: ptr.Ptr(int64(3)),
		Status:          ptr.Ptr(domain.StatusPending),
	})

	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, int64(7), appointments[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_EmptySkipsEmployeeQuery(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery("FROM appointments").WillReturnRows(sqlmock.NewRows(appointmentColumns))

	appointments, err := repo.List(context.Background(), domain.AppointmentFilter{})

	require.NoError(t, err)
	assert.Empty(t, appointments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	repo, _, mock := newRepo(t)
	startedAt := scheduledAt.Add(5 * time.Minute)

	mock.ExpectExec(`UPDATE appointments SET status = \$1, started_at = \$2, completed_at = \$3, updated_at = NOW\(\) WHERE id = \$4`).
		WithArgs(domain.StatusInProgress, &startedAt, nil, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE appointments").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateStatus(context.Background(), 7, domain.StatusInProgress, &startedAt, nil))

	err := repo.UpdateStatus(context.Background(), 404, domain.StatusConfirmed, nil, nil)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddEmployees(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectExec(`INSERT INTO appointment_employees \(appointment_id,employee_id\) VALUES \(\$1,\$2\),\(\$3,\$4\) ON CONFLICT \(appointment_id, employee_id\) DO NOTHING`).
		WithArgs(int64(7), int64(21), int64(7), int64(22)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.AddEmployees(context.Background(), 7, []int64{21, 22}))
	require.NoError(t, repo.AddEmployees(context.Background(), 7, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
