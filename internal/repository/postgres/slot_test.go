package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/avdeeva/beautybook/pkg/errors"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestSlotRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSlotRepository(db)

	mock.ExpectQuery("INSERT INTO slots").
		WithArgs("2026-09-15", "14:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	slot, err := repo.Create(context.Background(), "2026-09-15", "14:00")
	require.NoError(t, err)
	assert.Equal(t, int64(7), slot.ID)
	assert.Equal(t, "2026-09-15", slot.Date)
	assert.Equal(t, "14:00", slot.Time)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSlotRepository(db)

	mock.ExpectQuery("INSERT INTO slots").
		WithArgs("2026-09-15", "14:00").
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	_, err := repo.Create(context.Background(), "2026-09-15", "14:00")
	assert.True(t, apperrors.Is(err, apperrors.ErrDuplicateSlot))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepository_Delete_Occupied(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_booked FROM slots").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"is_booked"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 3)
	assert.True(t, apperrors.Is(err, apperrors.ErrSlotOccupied))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_booked FROM slots").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"is_booked"}).AddRow(false))
	mock.ExpectExec("DELETE FROM slots").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 3)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepository_AvailableDates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSlotRepository(db)

	rows := sqlmock.NewRows([]string{"slot_date"}).
		AddRow("2026-09-15").
		AddRow("2026-09-16")
	mock.ExpectQuery("SELECT DISTINCT s.slot_date").
		WithArgs("2026-09-14").
		WillReturnRows(rows)

	dates, err := repo.AvailableDates(context.Background(), "2026-09-14")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-09-15", "2026-09-16"}, dates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepository_BlockDay_Cascade(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO blocked_days").
		WithArgs("2026-09-15").
		WillReturnResult(sqlmock.NewResult(0, 1))
	notices := sqlmock.NewRows([]string{"booking_id", "client_id", "slot_time"}).
		AddRow(int64(1), int64(100), "10:00").
		AddRow(int64(2), int64(200), "15:00")
	mock.ExpectQuery("SELECT b.id AS booking_id").
		WithArgs("2026-09-15").
		WillReturnRows(notices)
	mock.ExpectExec("UPDATE bookings SET status = 'cancelled'").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE slots SET is_booked = FALSE").
		WithArgs("2026-09-15").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	got, err := repo.BlockDay(context.Background(), "2026-09-15")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(100), got[0].ClientID)
	assert.Equal(t, "10:00", got[0].Time)
	assert.Equal(t, int64(200), got[1].ClientID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepository_BlockDay_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO blocked_days").
		WithArgs("2026-09-15").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT b.id AS booking_id").
		WithArgs("2026-09-15").
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "client_id", "slot_time"}))
	mock.ExpectExec("UPDATE slots SET is_booked = FALSE").
		WithArgs("2026-09-15").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	got, err := repo.BlockDay(context.Background(), "2026-09-15")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
