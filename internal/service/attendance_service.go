package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/classledger/records-api/internal/models"
	"github.com/classledger/records-api/internal/validation"
	appErrors "github.com/classledger/records-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.AttendanceDetail, error)
	ListByStudentName(ctx context.Context, studentName string) ([]models.AttendanceDetail, error)
	Create(ctx context.Context, record *models.Attendance) error
	Update(ctx context.Context, record *models.Attendance) error
	Delete(ctx context.Context, id string) (bool, error)
}

// reportInvalidator drops cached report payloads after a write.
type reportInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateAttendanceRequest is the payload for recording attendance. Dates
// arrive as ISO-8601 strings and default to the current time when omitted.
type CreateAttendanceRequest struct {
	StudentName string  `json:"studentName"`
	StudentID   *string `json:"studentId"`
	Course      string  `json:"course"`
	Date        string  `json:"date"`
	Status      string  `json:"status"`
	Notes       string  `json:"notes"`
}

// UpdateAttendanceRequest is the partial payload for PUT; nil fields leave
// the stored value untouched. The merged record is re-validated in full.
type UpdateAttendanceRequest struct {
	StudentName *string `json:"studentName"`
	StudentID   *string `json:"studentId"`
	Course      *string `json:"course"`
	Date        *string `json:"date"`
	Status      *string `json:"status"`
	Notes       *string `json:"notes"`
}

// StudentAttendanceHistory is the per-student attendance view.
type StudentAttendanceHistory struct {
	Statistics models.AttendanceStats    `json:"statistics"`
	Records    []models.AttendanceDetail `json:"records"`
}

// AttendanceService handles attendance use-cases.
type AttendanceService struct {
	repo      attendanceRepository
	cache     reportInvalidator
	validator *validation.Validator
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, cache reportInvalidator, validate *validation.Validator, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns a page of attendance records plus pagination metadata.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching attendance records")
	}
	return records, paginationMeta(filter.Page, filter.Limit, total), nil
}

// Get returns one record by id.
func (s *AttendanceService) Get(ctx context.Context, id string) (*models.AttendanceDetail, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching attendance record")
	}
	return record, nil
}

// Create validates and persists a new record, stamping recordedBy from the
// authenticated caller.
func (s *AttendanceService) Create(ctx context.Context, req CreateAttendanceRequest, claims *models.JWTClaims) (*models.Attendance, error) {
	record := &models.Attendance{
		StudentName: strings.TrimSpace(req.StudentName),
		StudentID:   req.StudentID,
		Course:      strings.TrimSpace(req.Course),
		Date:        time.Now().UTC(),
		Status:      models.AttendanceStatus(req.Status),
		Notes:       strings.TrimSpace(req.Notes),
	}
	if req.Date != "" {
		date, err := validation.ParseDate(req.Date)
		if err != nil {
			return nil, appErrors.Validation("validation failed", []appErrors.FieldViolation{
				{Field: "date", Message: "date must be a valid ISO-8601 date", Value: req.Date},
			})
		}
		record.Date = date
	}
	if claims != nil {
		record.RecordedByID = &claims.UserID
	}

	if err := s.validator.Struct(record); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, storeError(err, "Error creating attendance record")
	}
	s.invalidateReports(ctx)
	return record, nil
}

// Update merges the partial payload into the stored record, re-validates
// the result and persists it. The recorder reference is never reassigned.
func (s *AttendanceService) Update(ctx context.Context, id string, req UpdateAttendanceRequest) (*models.Attendance, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	record := existing.Attendance
	if req.StudentName != nil {
		record.StudentName = strings.TrimSpace(*req.StudentName)
	}
	if req.StudentID != nil {
		record.StudentID = req.StudentID
	}
	if req.Course != nil {
		record.Course = strings.TrimSpace(*req.Course)
	}
	if req.Date != nil {
		date, err := validation.ParseDate(*req.Date)
		if err != nil {
			return nil, appErrors.Validation("validation failed", []appErrors.FieldViolation{
				{Field: "date", Message: "date must be a valid ISO-8601 date", Value: *req.Date},
			})
		}
		record.Date = date
	}
	if req.Status != nil {
		record.Status = models.AttendanceStatus(*req.Status)
	}
	if req.Notes != nil {
		record.Notes = strings.TrimSpace(*req.Notes)
	}

	if err := s.validator.Struct(&record); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &record); err != nil {
		return nil, storeError(err, "Error updating attendance record")
	}
	s.invalidateReports(ctx)
	return &record, nil
}

// Delete removes one record.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error deleting attendance record")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "Attendance record not found")
	}
	s.invalidateReports(ctx)
	return nil
}

// StudentHistory returns every record for a student name substring plus the
// derived statistics.
func (s *AttendanceService) StudentHistory(ctx context.Context, studentName string) (*StudentAttendanceHistory, error) {
	records, err := s.repo.ListByStudentName(ctx, studentName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching student attendance")
	}

	stats := models.AttendanceStats{Total: len(records)}
	for _, record := range records {
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
	if records == nil {
		records = []models.AttendanceDetail{}
	}
	return &StudentAttendanceHistory{Statistics: stats, Records: records}, nil
}

func (s *AttendanceService) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, reportCacheKeyPattern); err != nil {
		s.logger.Warn("failed to invalidate report cache", zap.Error(err))
	}
}
