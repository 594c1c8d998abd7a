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

type activityRepository interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.ActivityDetail, error)
	ListByStudentName(ctx context.Context, studentName string) ([]models.ActivityDetail, error)
	AverageByStudentName(ctx context.Context, studentName string) (*models.ScoreAverage, error)
	Create(ctx context.Context, record *models.Activity) error
	Update(ctx context.Context, record *models.Activity) error
	Delete(ctx context.Context, id string) (bool, error)
}

// CreateActivityRequest is the payload for recording an activity.
type CreateActivityRequest struct {
	StudentName string   `json:"studentName"`
	StudentID   *string  `json:"studentId"`
	Course      string   `json:"course"`
	Activity    string   `json:"activity"`
	Grade       string   `json:"grade"`
	Score       *float64 `json:"score"`
	Date        string   `json:"date"`
	DueDate     string   `json:"dueDate"`
	Notes       string   `json:"notes"`
	Status      string   `json:"status"`
}

// UpdateActivityRequest is the partial payload for PUT.
type UpdateActivityRequest struct {
	StudentName *string  `json:"studentName"`
	StudentID   *string  `json:"studentId"`
	Course      *string  `json:"course"`
	Activity    *string  `json:"activity"`
	Grade       *string  `json:"grade"`
	Score       *float64 `json:"score"`
	Date        *string  `json:"date"`
	DueDate     *string  `json:"dueDate"`
	Notes       *string  `json:"notes"`
	Status      *string  `json:"status"`
}

// StudentActivityHistory is the per-student activity view.
type StudentActivityHistory struct {
	Statistics models.ScoreAverage     `json:"statistics"`
	Records    []models.ActivityDetail `json:"records"`
}

// ActivityService handles activity use-cases.
type ActivityService struct {
	repo      activityRepository
	cache     reportInvalidator
	validator *validation.Validator
	logger    *zap.Logger
}

// NewActivityService constructs the activity service.
func NewActivityService(repo activityRepository, cache reportInvalidator, validate *validation.Validator, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns a page of activity records plus pagination metadata.
func (s *ActivityService) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityDetail, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching activities")
	}
	return records, paginationMeta(filter.Page, filter.Limit, total), nil
}

// Get returns one record by id.
func (s *ActivityService) Get(ctx context.Context, id string) (*models.ActivityDetail, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching activity")
	}
	return record, nil
}

// Create validates and persists a new activity record.
func (s *ActivityService) Create(ctx context.Context, req CreateActivityRequest, claims *models.JWTClaims) (*models.Activity, error) {
	record := &models.Activity{
		StudentName: strings.TrimSpace(req.StudentName),
		StudentID:   req.StudentID,
		Course:      strings.TrimSpace(req.Course),
		Activity:    models.ActivityType(req.Activity),
		Grade:       strings.TrimSpace(req.Grade),
		Score:       req.Score,
		Date:        time.Now().UTC(),
		Notes:       strings.TrimSpace(req.Notes),
		Status:      models.ActivityPending,
	}
	if req.Status != "" {
		record.Status = models.ActivityStatus(req.Status)
	}

	var violations []appErrors.FieldViolation
	if req.Date != "" {
		date, err := validation.ParseDate(req.Date)
		if err != nil {
			violations = append(violations, appErrors.FieldViolation{Field: "date", Message: "date must be a valid ISO-8601 date", Value: req.Date})
		} else {
			record.Date = date
		}
	}
	if req.DueDate != "" {
		dueDate, err := validation.ParseDate(req.DueDate)
		if err != nil {
			violations = append(violations, appErrors.FieldViolation{Field: "dueDate", Message: "dueDate must be a valid ISO-8601 date", Value: req.DueDate})
		} else {
			record.DueDate = &dueDate
		}
	}
	if len(violations) > 0 {
		return nil, appErrors.Validation("validation failed", violations)
	}
	if claims != nil {
		record.RecordedByID = &claims.UserID
	}

	if err := s.validator.Struct(record); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, storeError(err, "Error creating activity")
	}
	s.invalidateReports(ctx)
	return record, nil
}

// Update merges the partial payload, re-validates and persists.
func (s *ActivityService) Update(ctx context.Context, id string, req UpdateActivityRequest) (*models.Activity, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	record := existing.Activity
	if req.StudentName != nil {
		record.StudentName = strings.TrimSpace(*req.StudentName)
	}
	if req.StudentID != nil {
		record.StudentID = req.StudentID
	}
	if req.Course != nil {
		record.Course = strings.TrimSpace(*req.Course)
	}
	if req.Activity != nil {
		record.Activity = models.ActivityType(*req.Activity)
	}
	if req.Grade != nil {
		record.Grade = strings.TrimSpace(*req.Grade)
	}
	if req.Score != nil {
		record.Score = req.Score
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
	if req.DueDate != nil {
		dueDate, err := validation.ParseDate(*req.DueDate)
		if err != nil {
			return nil, appErrors.Validation("validation failed", []appErrors.FieldViolation{
				{Field: "dueDate", Message: "dueDate must be a valid ISO-8601 date", Value: *req.DueDate},
			})
		}
		record.DueDate = &dueDate
	}
	if req.Notes != nil {
		record.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Status != nil {
		record.Status = models.ActivityStatus(*req.Status)
	}

	if err := s.validator.Struct(&record); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &record); err != nil {
		return nil, storeError(err, "Error updating activity")
	}
	s.invalidateReports(ctx)
	return &record, nil
}

// Delete removes one record.
func (s *ActivityService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error deleting activity")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "Activity not found")
	}
	s.invalidateReports(ctx)
	return nil
}

// StudentHistory returns a student's activity records and scored-only
// average, matched by case-insensitive substring.
func (s *ActivityService) StudentHistory(ctx context.Context, studentName string) (*StudentActivityHistory, error) {
	records, err := s.repo.ListByStudentName(ctx, studentName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching student activities")
	}
	average, err := s.repo.AverageByStudentName(ctx, studentName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching student statistics")
	}
	stats := *average
	stats.Average = round2(stats.Average)
	if records == nil {
		records = []models.ActivityDetail{}
	}
	return &StudentActivityHistory{Statistics: stats, Records: records}, nil
}

func (s *ActivityService) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, reportCacheKeyPattern); err != nil {
		s.logger.Warn("failed to invalidate report cache", zap.Error(err))
	}
}
