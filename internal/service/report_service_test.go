package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classledger/records-api/internal/models"
	"github.com/classledger/records-api/pkg/config"
	appErrors "github.com/classledger/records-api/pkg/errors"
)

type mockAttendanceReporter struct {
	summary       []models.StatusCount
	byStudent     []models.AttendanceDetail
	countByCourse int
	summaryCalls  int
}

func (m *mockAttendanceReporter) StatusSummary(ctx context.Context, startDate, endDate *time.Time) ([]models.StatusCount, error) {
	m.summaryCalls++
	return m.summary, nil
}

func (m *mockAttendanceReporter) ListByStudentID(ctx context.Context, studentID string) ([]models.AttendanceDetail, error) {
	return m.byStudent, nil
}

func (m *mockAttendanceReporter) CountByCourse(ctx context.Context, course string) (int, error) {
	return m.countByCourse, nil
}

type mockActivityReporter struct {
	byStudent     []models.ActivityDetail
	average       models.ScoreAverage
	countByCourse int
}

func (m *mockActivityReporter) ListByStudentID(ctx context.Context, studentID string) ([]models.ActivityDetail, error) {
	return m.byStudent, nil
}

func (m *mockActivityReporter) AverageByStudentID(ctx context.Context, studentID string) (*models.ScoreAverage, error) {
	cp := m.average
	return &cp, nil
}

func (m *mockActivityReporter) AverageByCourse(ctx context.Context, course string) (*models.ScoreAverage, error) {
	cp := m.average
	return &cp, nil
}

func (m *mockActivityReporter) CountByCourse(ctx context.Context, course string) (int, error) {
	return m.countByCourse, nil
}

type mockStudentFinder struct {
	student *models.Student
}

func (m *mockStudentFinder) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.student == nil {
		return nil, sql.ErrNoRows
	}
	cp := *m.student
	return &cp, nil
}

type mockCourseFinder struct {
	course *models.Course
}

func (m *mockCourseFinder) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if m.course == nil {
		return nil, sql.ErrNoRows
	}
	cp := *m.course
	return &cp, nil
}

type mockReportCache struct {
	store map[string][]byte
	sets  []string
}

func (m *mockReportCache) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *mockReportCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = payload
	m.sets = append(m.sets, key)
	return nil
}

func reportsConfig(cached bool) config.ReportsConfig {
	return config.ReportsConfig{CacheEnabled: cached, CacheTTL: time.Minute, RecentLimit: 10}
}

func TestAttendanceSummaryComputesRate(t *testing.T) {
	attendance := &mockAttendanceReporter{summary: []models.StatusCount{
		{Status: models.AttendancePresent, Count: 2},
		{Status: models.AttendanceAbsent, Count: 1},
	}}
	svc := NewReportService(attendance, &mockActivityReporter{}, &mockStudentFinder{}, &mockCourseFinder{}, nil, nil, reportsConfig(false), zap.NewNop())

	summary, err := svc.AttendanceSummary(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 66.67, summary.AttendanceRate)
	assert.Len(t, summary.Summary, 2)
}

func TestAttendanceSummaryRecordsQueryTiming(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewReportService(&mockAttendanceReporter{}, &mockActivityReporter{}, &mockStudentFinder{}, &mockCourseFinder{}, nil, metrics, reportsConfig(false), zap.NewNop())

	_, err := svc.AttendanceSummary(context.Background(), nil, nil)
	require.NoError(t, err)

	families, err := metrics.registry.Gather()
	require.NoError(t, err)

	found := false
	for _, family := range families {
		if family.GetName() != "db_query_duration_seconds" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "query" && label.GetValue() == "report_status_summary" {
					found = true
				}
			}
		}
	}
	assert.True(t, found)
}

func TestAttendanceSummaryEmptyWindow(t *testing.T) {
	svc := NewReportService(&mockAttendanceReporter{}, &mockActivityReporter{}, &mockStudentFinder{}, &mockCourseFinder{}, nil, nil, reportsConfig(false), zap.NewNop())

	summary, err := svc.AttendanceSummary(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0.0, summary.AttendanceRate)
}

func TestAttendanceSummaryServedFromCache(t *testing.T) {
	attendance := &mockAttendanceReporter{summary: []models.StatusCount{
		{Status: models.AttendancePresent, Count: 4},
	}}
	cache := &mockReportCache{}
	svc := NewReportService(attendance, &mockActivityReporter{}, &mockStudentFinder{}, &mockCourseFinder{}, cache, nil, reportsConfig(true), zap.NewNop())

	first, err := svc.AttendanceSummary(context.Background(), nil, nil)
	require.NoError(t, err)
	second, err := svc.AttendanceSummary(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, attendance.summaryCalls)
	assert.Equal(t, []string{"reports:summary::"}, cache.sets)
}

func TestStudentReportTrimsRecentRecords(t *testing.T) {
	var attendance []models.AttendanceDetail
	for i := 0; i < 14; i++ {
		detail := attendanceDetail(fmt.Sprintf("att-%d", i), models.AttendancePresent)
		attendance = append(attendance, *detail)
	}
	student := &models.Student{ID: "stu-1", FirstName: "Ada", LastName: "Lovelace"}

	svc := NewReportService(
		&mockAttendanceReporter{byStudent: attendance},
		&mockActivityReporter{average: models.ScoreAverage{Average: 91.333333, Count: 3}},
		&mockStudentFinder{student: student},
		&mockCourseFinder{},
		nil,
		nil,
		reportsConfig(false),
		zap.NewNop(),
	)

	report, err := svc.StudentReport(context.Background(), "stu-1")

	require.NoError(t, err)
	assert.Len(t, report.RecentAttendance, 10)
	assert.Equal(t, 14, report.Attendance.Total)
	assert.Equal(t, 100.0, report.Attendance.AttendanceRate)
	assert.Equal(t, 91.33, report.Scores.Average)
	assert.Equal(t, "Ada", report.Student.FirstName)
}

func TestStudentReportNotFound(t *testing.T) {
	svc := NewReportService(&mockAttendanceReporter{}, &mockActivityReporter{}, &mockStudentFinder{}, &mockCourseFinder{}, nil, nil, reportsConfig(false), zap.NewNop())

	_, err := svc.StudentReport(context.Background(), "missing")

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "Student not found", appErr.Message)
}

func TestCourseReportAggregates(t *testing.T) {
	course := &models.Course{ID: "crs-1", CourseName: "Mathematics", CourseCode: "MATH101"}
	svc := NewReportService(
		&mockAttendanceReporter{countByCourse: 40},
		&mockActivityReporter{countByCourse: 12, average: models.ScoreAverage{Average: 84.5, Count: 9}},
		&mockStudentFinder{},
		&mockCourseFinder{course: course},
		nil,
		nil,
		reportsConfig(false),
		zap.NewNop(),
	)

	report, err := svc.CourseReport(context.Background(), "crs-1")

	require.NoError(t, err)
	assert.Equal(t, 40, report.TotalAttendance)
	assert.Equal(t, 12, report.TotalActivities)
	assert.Equal(t, 84.5, report.AverageScore)
	assert.Equal(t, 9, report.ScoredCount)
}

func TestCourseReportNotFound(t *testing.T) {
	svc := NewReportService(&mockAttendanceReporter{}, &mockActivityReporter{}, &mockStudentFinder{}, &mockCourseFinder{}, nil, nil, reportsConfig(false), zap.NewNop())

	_, err := svc.CourseReport(context.Background(), "missing")

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}
