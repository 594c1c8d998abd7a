package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classledger/records-api/internal/models"
	appErrors "github.com/classledger/records-api/pkg/errors"
)

type mockAttendanceRepo struct {
	items      map[string]*models.AttendanceDetail
	listResult []models.AttendanceDetail
	listTotal  int
	byName     []models.AttendanceDetail
	created    *models.Attendance
	updated    *models.Attendance
	deleted    []string
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	return m.listResult, m.listTotal, nil
}

func (m *mockAttendanceRepo) FindByID(ctx context.Context, id string) (*models.AttendanceDetail, error) {
	if record, ok := m.items[id]; ok {
		cp := *record
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) ListByStudentName(ctx context.Context, studentName string) ([]models.AttendanceDetail, error) {
	return m.byName, nil
}

func (m *mockAttendanceRepo) Create(ctx context.Context, record *models.Attendance) error {
	record.ID = "generated"
	cp := *record
	m.created = &cp
	return nil
}

func (m *mockAttendanceRepo) Update(ctx context.Context, record *models.Attendance) error {
	cp := *record
	m.updated = &cp
	return nil
}

func (m *mockAttendanceRepo) Delete(ctx context.Context, id string) (bool, error) {
	m.deleted = append(m.deleted, id)
	_, ok := m.items[id]
	return ok, nil
}

type mockInvalidator struct {
	patterns []string
}

func (m *mockInvalidator) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

func attendanceDetail(id string, status models.AttendanceStatus) *models.AttendanceDetail {
	return &models.AttendanceDetail{
		Attendance: models.Attendance{
			ID:          id,
			StudentName: "Ada Lovelace",
			Course:      "Mathematics",
			Date:        time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			Status:      status,
		},
	}
}

func TestAttendanceCreateStampsRecorder(t *testing.T) {
	repo := &mockAttendanceRepo{}
	invalidator := &mockInvalidator{}
	svc := NewAttendanceService(repo, invalidator, nil, zap.NewNop())

	claims := &models.JWTClaims{UserID: "user-1", Username: "msmith"}
	record, err := svc.Create(context.Background(), CreateAttendanceRequest{
		StudentName: "Ada Lovelace",
		Course:      "Mathematics",
		Date:        "2024-03-10",
		Status:      "Present",
	}, claims)

	require.NoError(t, err)
	require.NotNil(t, record.RecordedByID)
	assert.Equal(t, "user-1", *record.RecordedByID)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), record.Date)
	assert.Equal(t, []string{"reports:*"}, invalidator.patterns)
}

func TestAttendanceCreateDefaultsDate(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, nil, nil, zap.NewNop())

	before := time.Now().UTC()
	record, err := svc.Create(context.Background(), CreateAttendanceRequest{
		StudentName: "Ada Lovelace",
		Course:      "Mathematics",
		Status:      "Late",
	}, nil)

	require.NoError(t, err)
	assert.False(t, record.Date.Before(before))
}

func TestAttendanceCreateCollectsViolations(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateAttendanceRequest{
		StudentName: "A",
		Status:      "present",
	}, nil)

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)

	fields := make([]string, 0, len(appErr.Violations))
	for _, v := range appErr.Violations {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"studentName", "course", "status"}, fields)
}

func TestAttendanceUpdateMergesPartialPayload(t *testing.T) {
	recorder := "user-1"
	existing := attendanceDetail("att-1", models.AttendanceAbsent)
	existing.RecordedByID = &recorder

	repo := &mockAttendanceRepo{items: map[string]*models.AttendanceDetail{"att-1": existing}}
	svc := NewAttendanceService(repo, nil, nil, zap.NewNop())

	status := "Present"
	notes := "arrived after roll call"
	record, err := svc.Update(context.Background(), "att-1", UpdateAttendanceRequest{
		Status: &status,
		Notes:  &notes,
	})

	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, record.Status)
	assert.Equal(t, notes, record.Notes)
	assert.Equal(t, "Ada Lovelace", record.StudentName)
	require.NotNil(t, record.RecordedByID)
	assert.Equal(t, "user-1", *record.RecordedByID)
}

func TestAttendanceUpdateRejectsInvalidMerge(t *testing.T) {
	repo := &mockAttendanceRepo{items: map[string]*models.AttendanceDetail{
		"att-1": attendanceDetail("att-1", models.AttendancePresent),
	}}
	svc := NewAttendanceService(repo, nil, nil, zap.NewNop())

	bad := "Sick"
	_, err := svc.Update(context.Background(), "att-1", UpdateAttendanceRequest{Status: &bad})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	require.Len(t, appErr.Violations, 1)
	assert.Equal(t, "status", appErr.Violations[0].Field)
	assert.Equal(t, "Sick", appErr.Violations[0].Value)
	assert.Nil(t, repo.updated)
}

func TestAttendanceUpdateNotFound(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, nil, nil, zap.NewNop())

	status := "Present"
	_, err := svc.Update(context.Background(), "missing", UpdateAttendanceRequest{Status: &status})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "Attendance record not found", appErr.Message)
}

func TestAttendanceDeleteNotFound(t *testing.T) {
	invalidator := &mockInvalidator{}
	svc := NewAttendanceService(&mockAttendanceRepo{}, invalidator, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "missing")

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Empty(t, invalidator.patterns)
}

func TestAttendanceStudentHistoryStatistics(t *testing.T) {
	repo := &mockAttendanceRepo{byName: []models.AttendanceDetail{
		*attendanceDetail("1", models.AttendancePresent),
		*attendanceDetail("2", models.AttendancePresent),
		*attendanceDetail("3", models.AttendancePresent),
		*attendanceDetail("4", models.AttendanceAbsent),
		*attendanceDetail("5", models.AttendanceLate),
	}}
	svc := NewAttendanceService(repo, nil, nil, zap.NewNop())

	history, err := svc.StudentHistory(context.Background(), "ada")

	require.NoError(t, err)
	assert.Equal(t, 5, history.Statistics.Total)
	assert.Equal(t, 3, history.Statistics.Present)
	assert.Equal(t, 1, history.Statistics.Absent)
	assert.Equal(t, 1, history.Statistics.Late)
	assert.Equal(t, 60.0, history.Statistics.AttendanceRate)
	assert.Len(t, history.Records, 5)
}

func TestAttendanceStudentHistoryEmpty(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, nil, nil, zap.NewNop())

	history, err := svc.StudentHistory(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Equal(t, 0, history.Statistics.Total)
	assert.Equal(t, 0.0, history.Statistics.AttendanceRate)
	assert.NotNil(t, history.Records)
	assert.Empty(t, history.Records)
}
