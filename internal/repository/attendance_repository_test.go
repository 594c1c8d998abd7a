package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classledger/records-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func attendanceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_name", "student_id", "course", "date", "status", "notes", "recorded_by",
		"created_at", "updated_at", "recorder_username", "recorder_email",
	}).AddRow("att-1", "Ada Lovelace", nil, "Mathematics 101", time.Now(), "Present", "", "user-1",
		time.Now(), time.Now(), "admin", "admin@example.com")
}

func TestAttendanceRepositoryListUnfiltered(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("SELECT a.id, .+ FROM attendance a LEFT JOIN users u ON u.id = a.recorded_by ORDER BY a.date DESC LIMIT 20 OFFSET 0").
		WillReturnRows(attendanceRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM attendance a")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.AttendanceFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)
	require.NotNil(t, records[0].RecordedBy)
	assert.Equal(t, "admin", records[0].RecordedBy.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListFiltered(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.date >= $1 AND a.date <= $2 AND a.status = $3 AND LOWER(a.course) LIKE $4 ORDER BY a.date DESC LIMIT 20 OFFSET 20")).
		WithArgs(start, end, "Present", "%math%").
		WillReturnRows(attendanceRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM attendance a WHERE a.date >= $1 AND a.date <= $2 AND a.status = $3 AND LOWER(a.course) LIKE $4")).
		WithArgs(start, end, "Present", "%math%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	filter := models.AttendanceFilter{
		StartDate: &start,
		EndDate:   &end,
		Status:    "Present",
		Course:    "Math",
		Page:      2,
		Limit:     20,
	}
	records, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 25, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryStatusSummary(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) AS count FROM attendance GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("Present", 3).
			AddRow("Absent", 1).
			AddRow("Late", 1))

	summary, err := repo.StatusSummary(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, summary, 3)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance WHERE id = $1")).
		WithArgs("att-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	found, err := repo.Delete(context.Background(), "att-1")
	require.NoError(t, err)
	assert.True(t, found)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err = repo.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO attendance").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.Attendance{StudentName: "Ada Lovelace", Course: "Mathematics 101", Date: time.Now(), Status: models.AttendancePresent}
	err := repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
