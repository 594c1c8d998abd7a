package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classledger/records-api/internal/middleware"
	"github.com/classledger/records-api/internal/models"
	"github.com/classledger/records-api/internal/service"
)

type attendanceRepoStub struct {
	listResult []models.AttendanceDetail
	listTotal  int
	lastFilter models.AttendanceFilter
	created    *models.Attendance
}

func (s *attendanceRepoStub) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	s.lastFilter = filter
	return s.listResult, s.listTotal, nil
}

func (s *attendanceRepoStub) FindByID(ctx context.Context, id string) (*models.AttendanceDetail, error) {
	return nil, sql.ErrNoRows
}

func (s *attendanceRepoStub) ListByStudentName(ctx context.Context, studentName string) ([]models.AttendanceDetail, error) {
	return s.listResult, nil
}

func (s *attendanceRepoStub) Create(ctx context.Context, record *models.Attendance) error {
	record.ID = "generated"
	cp := *record
	s.created = &cp
	return nil
}

func (s *attendanceRepoStub) Update(ctx context.Context, record *models.Attendance) error {
	return nil
}

func (s *attendanceRepoStub) Delete(ctx context.Context, id string) (bool, error) {
	return false, nil
}

func newAttendanceTestContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestAttendanceHandlerListEnvelope(t *testing.T) {
	repo := &attendanceRepoStub{
		listResult: []models.AttendanceDetail{
			{Attendance: models.Attendance{ID: "att-1", StudentName: "Ada Lovelace", Course: "Mathematics", Date: time.Now(), Status: models.AttendancePresent}},
		},
		listTotal: 45,
	}
	h := NewAttendanceHandler(service.NewAttendanceService(repo, nil, nil, zap.NewNop()))

	c, w := newAttendanceTestContext(t, http.MethodGet, "/attendance?page=2&limit=20&status=Present", "")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Success     bool            `json:"success"`
		Count       int             `json:"count"`
		Total       int             `json:"total"`
		TotalPages  int             `json:"totalPages"`
		CurrentPage int             `json:"currentPage"`
		Data        json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, 1, envelope.Count)
	assert.Equal(t, 45, envelope.Total)
	assert.Equal(t, 3, envelope.TotalPages)
	assert.Equal(t, 2, envelope.CurrentPage)
	assert.Equal(t, "Present", repo.lastFilter.Status)
	assert.Equal(t, 2, repo.lastFilter.Page)
}

func TestAttendanceHandlerListEmptyPageRendersEmptyArray(t *testing.T) {
	h := NewAttendanceHandler(service.NewAttendanceService(&attendanceRepoStub{}, nil, nil, zap.NewNop()))

	c, w := newAttendanceTestContext(t, http.MethodGet, "/attendance?status=Absent", "")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"data":[]`)
	assert.Contains(t, body, `"count":0`)
	assert.Contains(t, body, `"total":0`)
	assert.Contains(t, body, `"totalPages":0`)
}

func TestAttendanceHandlerListRejectsBadDate(t *testing.T) {
	h := NewAttendanceHandler(service.NewAttendanceService(&attendanceRepoStub{}, nil, nil, zap.NewNop()))

	c, w := newAttendanceTestContext(t, http.MethodGet, "/attendance?startDate=yesterday", "")
	h.List(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var envelope struct {
		Success bool `json:"success"`
		Errors  []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	require.Len(t, envelope.Errors, 1)
	assert.Equal(t, "startDate", envelope.Errors[0].Field)
}

func TestAttendanceHandlerCreateRequiresClaims(t *testing.T) {
	h := NewAttendanceHandler(service.NewAttendanceService(&attendanceRepoStub{}, nil, nil, zap.NewNop()))

	payload := `{"studentName":"Ada Lovelace","course":"Mathematics","status":"Present"}`
	c, w := newAttendanceTestContext(t, http.MethodPost, "/attendance", payload)
	h.Create(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAttendanceHandlerCreateStampsRecorder(t *testing.T) {
	repo := &attendanceRepoStub{}
	h := NewAttendanceHandler(service.NewAttendanceService(repo, nil, nil, zap.NewNop()))

	payload := `{"studentName":"Ada Lovelace","course":"Mathematics","status":"Present","date":"2024-03-10"}`
	c, w := newAttendanceTestContext(t, http.MethodPost, "/attendance", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Username: "msmith"})
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.created)
	require.NotNil(t, repo.created.RecordedByID)
	assert.Equal(t, "user-1", *repo.created.RecordedByID)
}

func TestAttendanceHandlerCreateValidationEnvelope(t *testing.T) {
	h := NewAttendanceHandler(service.NewAttendanceService(&attendanceRepoStub{}, nil, nil, zap.NewNop()))

	payload := `{"studentName":"A","status":"present"}`
	c, w := newAttendanceTestContext(t, http.MethodPost, "/attendance", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1"})
	h.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var envelope struct {
		Success bool `json:"success"`
		Errors  []struct {
			Field   string      `json:"field"`
			Message string      `json:"message"`
			Value   interface{} `json:"value"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.GreaterOrEqual(t, len(envelope.Errors), 3)
}
