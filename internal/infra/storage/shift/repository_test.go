package shift

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
)

var start = time.Date(2030, 5, 14, 10, 0, 0, 0, time.UTC)

func shiftRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "employee_id", "appointment_id", "start_at", "end_at", "origin", "created_at"})
}

func TestFindOverlapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	interval := domain.NewInterval(start, 60)

	mock.ExpectQuery(`FROM shift_schedules s JOIN appointments a ON a.id = s.appointment_id WHERE s.employee_id = \$1 AND s.start_at < \$2 AND s.end_at > \$3 AND a.status <> \$4 ORDER BY s.start_at ASC`).
		WithArgs(int64(21), interval.End, interval.Start, domain.StatusCancelled).
		WillReturnRows(shiftRows().AddRow(int64(1), int64(21), int64(5), start.Add(30*time.Minute), start.Add(90*time.Minute), "BY_SELF", time.Now()))

	shifts, err := repo.FindOverlapping(context.Background(), 21, interval)

	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, domain.OriginBySelf, shifts[0].Origin)
	assert.Equal(t, int64(5), shifts[0].AppointmentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	end := start.Add(time.Hour)
	mock.ExpectQuery(`INSERT INTO shift_schedules \(employee_id,appointment_id,start_at,end_at,origin\) VALUES \(\$1,\$2,\$3,\$4,\$5\) RETURNING id, created_at`).
		WithArgs(int64(21), int64(7), start, end, domain.OriginByAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), time.Now()))

	shift, err := repo.Create(context.Background(), &domain.ShiftSchedule{
		EmployeeID:    21,
		AppointmentID: 7,
		StartAt:       start,
		EndAt:         end,
		Origin:        domain.OriginByAdmin,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), shift.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockEmployees_SortedInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	// вне транзакции запрос не выполняется
	require.NoError(t, repo.LockEmployees(context.Background(), []int64{3, 1}))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM users WHERE id IN \(\$1,\$2,\$3\) ORDER BY id ASC FOR UPDATE`).
		WithArgs(int64(1), int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)).AddRow(int64(3)))
	mock.ExpectCommit()

	tx, err := dbmetrics.New(db, nil).BeginTx(context.Background(), nil)
	require.NoError(t, err)

	ids := []int64{3, 1, 2}
	require.NoError(t, repo.LockEmployees(dbmetrics.WithTx(context.Background(), tx), ids))
	require.NoError(t, tx.Commit())

	assert.Equal(t, []int64{3, 1, 2}, ids, "input slice must not be reordered")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByAppointment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectQuery(`FROM shift_schedules s WHERE s.appointment_id = \$1 ORDER BY s.employee_id ASC`).
		WithArgs(int64(7)).
		WillReturnRows(shiftRows().
			AddRow(int64(1), int64(21), int64(7), start, start.Add(time.Hour), "BY_ADMIN", time.Now()).
			AddRow(int64(2), int64(22), int64(7), start, start.Add(time.Hour), "BY_ADMIN", time.Now()))

	shifts, err := repo.ListByAppointment(context.Background(), 7)

	require.NoError(t, err)
	assert.Len(t, shifts, 2)
}
