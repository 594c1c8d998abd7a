package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/classledger/records-api/internal/models"
	"github.com/classledger/records-api/internal/validation"
	appErrors "github.com/classledger/records-api/pkg/errors"
)

// defaultCapacity is applied when a new course omits a seat limit.
const defaultCapacity = 30

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) (bool, error)
}

// CreateCourseRequest is the payload for opening a course.
type CreateCourseRequest struct {
	CourseName   string   `json:"courseName"`
	CourseCode   string   `json:"courseCode"`
	Description  string   `json:"description"`
	Credits      int      `json:"credits"`
	TeacherID    string   `json:"teacher"`
	Students     []string `json:"students"`
	ScheduleDays []string `json:"scheduleDays"`
	ScheduleTime string   `json:"scheduleTime"`
	ScheduleRoom string   `json:"scheduleRoom"`
	Semester     string   `json:"semester"`
	Year         int      `json:"year"`
	Capacity     int      `json:"capacity"`
	Status       string   `json:"status"`
}

// UpdateCourseRequest is the partial payload for PUT.
type UpdateCourseRequest struct {
	CourseName   *string   `json:"courseName"`
	CourseCode   *string   `json:"courseCode"`
	Description  *string   `json:"description"`
	Credits      *int      `json:"credits"`
	TeacherID    *string   `json:"teacher"`
	Students     *[]string `json:"students"`
	ScheduleDays *[]string `json:"scheduleDays"`
	ScheduleTime *string   `json:"scheduleTime"`
	ScheduleRoom *string   `json:"scheduleRoom"`
	Semester     *string   `json:"semester"`
	Year         *int      `json:"year"`
	Capacity     *int      `json:"capacity"`
	Status       *string   `json:"status"`
}

// CourseService handles course use-cases.
type CourseService struct {
	repo      courseRepository
	validator *validation.Validator
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, validate *validation.Validator, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// List returns courses and pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching courses")
	}
	return courses, paginationMeta(filter.Page, filter.Limit, total), nil
}

// Get returns one course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching course")
	}
	return course, nil
}

// Create validates and opens a new course. The course code is normalised to
// uppercase before the uniqueness check.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	course := &models.Course{
		CourseName:   strings.TrimSpace(req.CourseName),
		CourseCode:   validation.NormalizeCode(req.CourseCode),
		Description:  strings.TrimSpace(req.Description),
		Credits:      req.Credits,
		TeacherID:    strings.TrimSpace(req.TeacherID),
		Students:     req.Students,
		ScheduleDays: req.ScheduleDays,
		ScheduleTime: req.ScheduleTime,
		ScheduleRoom: req.ScheduleRoom,
		Semester:     models.Semester(req.Semester),
		Year:         req.Year,
		Capacity:     req.Capacity,
		Status:       models.CourseOpen,
	}
	if req.Status != "" {
		course.Status = models.CourseStatus(req.Status)
	}
	if course.Capacity == 0 {
		course.Capacity = defaultCapacity
	}
	if course.Students == nil {
		course.Students = []string{}
	}
	if course.ScheduleDays == nil {
		course.ScheduleDays = []string{}
	}

	if err := s.validator.Struct(course); err != nil {
		return nil, err
	}
	taken, err := s.repo.ExistsByCode(ctx, course.CourseCode, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error validating course code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "courseCode already in use")
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, storeError(err, "Error creating course")
	}
	return course, nil
}

// Update merges the partial payload, re-validates and persists.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CourseName != nil {
		course.CourseName = strings.TrimSpace(*req.CourseName)
	}
	if req.CourseCode != nil {
		course.CourseCode = validation.NormalizeCode(*req.CourseCode)
	}
	if req.Description != nil {
		course.Description = strings.TrimSpace(*req.Description)
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}
	if req.TeacherID != nil {
		course.TeacherID = strings.TrimSpace(*req.TeacherID)
	}
	if req.Students != nil {
		course.Students = *req.Students
	}
	if req.ScheduleDays != nil {
		course.ScheduleDays = *req.ScheduleDays
	}
	if req.ScheduleTime != nil {
		course.ScheduleTime = *req.ScheduleTime
	}
	if req.ScheduleRoom != nil {
		course.ScheduleRoom = *req.ScheduleRoom
	}
	if req.Semester != nil {
		course.Semester = models.Semester(*req.Semester)
	}
	if req.Year != nil {
		course.Year = *req.Year
	}
	if req.Capacity != nil {
		course.Capacity = *req.Capacity
	}
	if req.Status != nil {
		course.Status = models.CourseStatus(*req.Status)
	}

	if err := s.validator.Struct(course); err != nil {
		return nil, err
	}
	taken, err := s.repo.ExistsByCode(ctx, course.CourseCode, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error validating course code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "courseCode already in use")
	}
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, storeError(err, "Error updating course")
	}
	return course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error deleting course")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "Course not found")
	}
	return nil
}
