package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/classledger/records-api/internal/models"
	"github.com/classledger/records-api/pkg/config"
	appErrors "github.com/classledger/records-api/pkg/errors"
)

type attendanceReporter interface {
	StatusSummary(ctx context.Context, startDate, endDate *time.Time) ([]models.StatusCount, error)
	ListByStudentID(ctx context.Context, studentID string) ([]models.AttendanceDetail, error)
	CountByCourse(ctx context.Context, course string) (int, error)
}

type activityReporter interface {
	ListByStudentID(ctx context.Context, studentID string) ([]models.ActivityDetail, error)
	AverageByStudentID(ctx context.Context, studentID string) (*models.ScoreAverage, error)
	AverageByCourse(ctx context.Context, course string) (*models.ScoreAverage, error)
	CountByCourse(ctx context.Context, course string) (int, error)
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// AttendanceSummary is the institution-wide status breakdown. Statuses with
// no occurrences in the window are absent from Summary.
type AttendanceSummary struct {
	Summary        []models.StatusCount `json:"summary"`
	Total          int                  `json:"total"`
	AttendanceRate float64              `json:"attendanceRate"`
}

// StudentReport is the per-student composite report.
type StudentReport struct {
	Student          *models.Student          `json:"student"`
	Attendance       models.AttendanceStats   `json:"attendance"`
	RecentAttendance []models.AttendanceDetail `json:"recentAttendance"`
	Scores           models.ScoreAverage      `json:"scores"`
	RecentActivities []models.ActivityDetail  `json:"recentActivities"`
}

// CourseReport is the per-course aggregate.
type CourseReport struct {
	Course          *models.Course `json:"course"`
	TotalAttendance int            `json:"totalAttendance"`
	TotalActivities int            `json:"totalActivities"`
	AverageScore    float64        `json:"averageScore"`
	ScoredCount     int            `json:"scoredCount"`
}

// ReportService builds aggregate reports, optionally serving them from the
// Redis cache. A nil cache disables caching entirely.
type ReportService struct {
	attendance attendanceReporter
	activities activityReporter
	students   studentFinder
	courses    courseFinder
	cache      reportCache
	metrics    *MetricsService
	cfg        config.ReportsConfig
	logger     *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(
	attendance attendanceReporter,
	activities activityReporter,
	students studentFinder,
	courses courseFinder,
	cache reportCache,
	metrics *MetricsService,
	cfg config.ReportsConfig,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		attendance: attendance,
		activities: activities,
		students:   students,
		courses:    courses,
		cache:      cache,
		metrics:    metrics,
		cfg:        cfg,
		logger:     logger,
	}
}

// AttendanceSummary aggregates attendance status counts over an optional
// inclusive date window. The rate is Present over all statuses, rounded to
// two decimals; an empty window yields rate 0.
func (s *ReportService) AttendanceSummary(ctx context.Context, startDate, endDate *time.Time) (*AttendanceSummary, error) {
	key := summaryCacheKey(startDate, endDate)
	var cached AttendanceSummary
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	start := time.Now()
	counts, err := s.attendance.StatusSummary(ctx, startDate, endDate)
	s.metrics.ObserveDBQuery("report_status_summary", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error generating attendance summary")
	}

	report := &AttendanceSummary{Summary: counts}
	present := 0
	for _, c := range counts {
		report.Total += c.Count
		if c.Status == models.AttendancePresent {
			present = c.Count
		}
	}
	if report.Total > 0 {
		report.AttendanceRate = round2(float64(present) / float64(report.Total) * 100)
	}

	s.toCache(ctx, key, report)
	return report, nil
}

// StudentReport assembles the composite per-student report: status counts,
// the most recent attendance and activity records, and the scored-only
// average.
func (s *ReportService) StudentReport(ctx context.Context, studentID string) (*StudentReport, error) {
	key := "reports:student:" + studentID
	var cached StudentReport
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error generating student report")
	}

	start := time.Now()
	attendance, err := s.attendance.ListByStudentID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error generating student report")
	}
	activities, err := s.activities.ListByStudentID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error generating student report")
	}
	average, err := s.activities.AverageByStudentID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error generating student report")
	}
	s.metrics.ObserveDBQuery("report_student", time.Since(start))

	stats := models.AttendanceStats{Total: len(attendance)}
	for _, record := range attendance {
		switch record.Status {
		case models.AttendancePresent:
			stats.Present++
		case models.AttendanceAbsent:
			stats.Absent++
		case models.AttendanceLate:
			stats.Late++
		}
	}
	if stats.Total > 0 {
		stats.AttendanceRate = round2(float64(stats.Present) / float64(stats.Total) * 100)
	}
	average.Average = round2(average.Average)

	limit := s.cfg.RecentLimit
	if limit <= 0 {
		limit = 10
	}
	report := &StudentReport{
		Student:          student,
		Attendance:       stats,
		RecentAttendance: firstN(attendance, limit),
		Scores:           *average,
		RecentActivities: firstN(activities, limit),
	}

	s.toCache(ctx, key, report)
	return report, nil
}

// CourseReport aggregates record counts and the scored-only average for one
// course. Matching is by the stored course name.
func (s *ReportService) CourseReport(ctx context.Context, courseID string) (*CourseReport, error) {
	key := "reports:course:" + courseID
	var cached CourseReport
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error generating course report")
	}

	start := time.Now()
	totalAttendance, err := s.attendance.CountByCourse(ctx, course.CourseName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error generating course report")
	}
	totalActivities, err := s.activities.CountByCourse(ctx, course.CourseName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error generating course report")
	}
	average, err := s.activities.AverageByCourse(ctx, course.CourseName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error generating course report")
	}
	s.metrics.ObserveDBQuery("report_course", time.Since(start))

	report := &CourseReport{
		Course:          course,
		TotalAttendance: totalAttendance,
		TotalActivities: totalActivities,
		AverageScore:    round2(average.Average),
		ScoredCount:     average.Count,
	}

	s.toCache(ctx, key, report)
	return report, nil
}

func (s *ReportService) fromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil || !s.cfg.CacheEnabled {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *ReportService) toCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || !s.cfg.CacheEnabled {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func summaryCacheKey(startDate, endDate *time.Time) string {
	start, end := "", ""
	if startDate != nil {
		start = startDate.Format("2006-01-02")
	}
	if endDate != nil {
		end = endDate.Format("2006-01-02")
	}
	return fmt.Sprintf("reports:summary:%s:%s", start, end)
}

func firstN[T any](records []T, n int) []T {
	if len(records) <= n {
		return records
	}
	return records[:n]
}
