package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classledger/records-api/internal/models"
)

func activityRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_name", "student_id", "course", "activity", "grade", "score", "date", "due_date",
		"notes", "status", "recorded_by", "created_at", "updated_at", "recorder_username", "recorder_email",
	}).AddRow("act-1", "Ada Lovelace", nil, "Mathematics 101", "Quiz", "A", 95.0, time.Now(), nil,
		"", "Graded", "user-1", time.Now(), time.Now(), "admin", "admin@example.com")
}

func TestActivityRepositoryListFiltered(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.activity = $1 AND LOWER(a.student_name) LIKE $2 ORDER BY a.date DESC LIMIT 20 OFFSET 0")).
		WithArgs("Quiz", "%ada%").
		WillReturnRows(activityRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM activities a WHERE a.activity = $1 AND LOWER(a.student_name) LIKE $2")).
		WithArgs("Quiz", "%ada%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.ActivityFilter{Activity: "Quiz", StudentName: "Ada"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)
	require.NotNil(t, records[0].Score)
	assert.Equal(t, 95.0, *records[0].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryAverageByStudentName(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(AVG(score), 0) AS average, COUNT(score) AS count FROM activities WHERE LOWER(student_name) LIKE $1 AND score IS NOT NULL")).
		WithArgs("%ada%").
		WillReturnRows(sqlmock.NewRows([]string{"average", "count"}).AddRow(91.333333, 3))

	avg, err := repo.AverageByStudentName(context.Background(), "Ada")
	require.NoError(t, err)
	assert.Equal(t, 3, avg.Count)
	assert.InDelta(t, 91.33, avg.Average, 0.01)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryAverageByCourseEmpty(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(AVG(score), 0) AS average, COUNT(score) AS count FROM activities WHERE course = $1 AND score IS NOT NULL")).
		WithArgs("History 20").
		WillReturnRows(sqlmock.NewRows([]string{"average", "count"}).AddRow(0.0, 0))

	avg, err := repo.AverageByCourse(context.Background(), "History 20")
	require.NoError(t, err)
	assert.Zero(t, avg.Average)
	assert.Zero(t, avg.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryUpdateDoesNotTouchRecorder(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectExec("UPDATE activities SET student_name = .+ WHERE id = .+").
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.Activity{ID: "act-1", StudentName: "Ada Lovelace", Course: "Mathematics 101", Activity: models.ActivityQuiz, Date: time.Now(), Status: models.ActivityGraded}
	require.NoError(t, repo.Update(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}
