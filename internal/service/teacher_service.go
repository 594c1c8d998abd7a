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

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsByEmployeeID(ctx context.Context, employeeID, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) (bool, error)
}

// CreateTeacherRequest is the payload for registering a teacher.
type CreateTeacherRequest struct {
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	Email          string   `json:"email"`
	EmployeeID     string   `json:"employeeId"`
	Department     string   `json:"department"`
	Courses        []string `json:"courses"`
	Qualifications []string `json:"qualifications"`
	Specialization string   `json:"specialization"`
	PhoneNumber    string   `json:"phoneNumber"`
	OfficeRoom     string   `json:"officeRoom"`
	OfficeHours    string   `json:"officeHours"`
	Status         string   `json:"status"`
	HireDate       string   `json:"hireDate"`
}

// UpdateTeacherRequest is the partial payload for PUT.
type UpdateTeacherRequest struct {
	FirstName      *string   `json:"firstName"`
	LastName       *string   `json:"lastName"`
	Email          *string   `json:"email"`
	EmployeeID     *string   `json:"employeeId"`
	Department     *string   `json:"department"`
	Courses        *[]string `json:"courses"`
	Qualifications *[]string `json:"qualifications"`
	Specialization *string   `json:"specialization"`
	PhoneNumber    *string   `json:"phoneNumber"`
	OfficeRoom     *string   `json:"officeRoom"`
	OfficeHours    *string   `json:"officeHours"`
	Status         *string   `json:"status"`
	HireDate       *string   `json:"hireDate"`
}

// TeacherService handles teacher use-cases.
type TeacherService struct {
	repo      teacherRepository
	validator *validation.Validator
	logger    *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(repo teacherRepository, validate *validation.Validator, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// List returns teachers and pagination metadata.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching teachers")
	}
	return teachers, paginationMeta(filter.Page, filter.Limit, total), nil
}

// Get returns one teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching teacher")
	}
	return teacher, nil
}

// Create validates and registers a new teacher.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	teacher := &models.Teacher{
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          validation.NormalizeEmail(req.Email),
		EmployeeID:     strings.TrimSpace(req.EmployeeID),
		Department:     strings.TrimSpace(req.Department),
		Courses:        req.Courses,
		Qualifications: req.Qualifications,
		Specialization: strings.TrimSpace(req.Specialization),
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		OfficeRoom:     req.OfficeRoom,
		OfficeHours:    req.OfficeHours,
		Status:         models.TeacherActive,
		HireDate:       time.Now().UTC(),
	}
	if req.Status != "" {
		teacher.Status = models.TeacherStatus(req.Status)
	}
	if teacher.Courses == nil {
		teacher.Courses = []string{}
	}
	if teacher.Qualifications == nil {
		teacher.Qualifications = []string{}
	}
	if req.HireDate != "" {
		hired, err := validation.ParseDate(req.HireDate)
		if err != nil {
			return nil, appErrors.Validation("validation failed", []appErrors.FieldViolation{
				{Field: "hireDate", Message: "hireDate must be a valid ISO-8601 date", Value: req.HireDate},
			})
		}
		teacher.HireDate = hired
	}

	if err := s.validator.Struct(teacher); err != nil {
		return nil, err
	}
	if err := s.checkUniqueness(ctx, teacher.Email, teacher.EmployeeID, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, storeError(err, "Error creating teacher")
	}
	return teacher, nil
}

// Update merges the partial payload, re-validates and persists.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		teacher.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		teacher.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		teacher.Email = validation.NormalizeEmail(*req.Email)
	}
	if req.EmployeeID != nil {
		teacher.EmployeeID = strings.TrimSpace(*req.EmployeeID)
	}
	if req.Department != nil {
		teacher.Department = strings.TrimSpace(*req.Department)
	}
	if req.Courses != nil {
		teacher.Courses = *req.Courses
	}
	if req.Qualifications != nil {
		teacher.Qualifications = *req.Qualifications
	}
	if req.Specialization != nil {
		teacher.Specialization = strings.TrimSpace(*req.Specialization)
	}
	if req.PhoneNumber != nil {
		teacher.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.OfficeRoom != nil {
		teacher.OfficeRoom = *req.OfficeRoom
	}
	if req.OfficeHours != nil {
		teacher.OfficeHours = *req.OfficeHours
	}
	if req.Status != nil {
		teacher.Status = models.TeacherStatus(*req.Status)
	}
	if req.HireDate != nil {
		hired, err := validation.ParseDate(*req.HireDate)
		if err != nil {
			return nil, appErrors.Validation("validation failed", []appErrors.FieldViolation{
				{Field: "hireDate", Message: "hireDate must be a valid ISO-8601 date", Value: *req.HireDate},
			})
		}
		teacher.HireDate = hired
	}

	if err := s.validator.Struct(teacher); err != nil {
		return nil, err
	}
	if err := s.checkUniqueness(ctx, teacher.Email, teacher.EmployeeID, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, storeError(err, "Error updating teacher")
	}
	return teacher, nil
}

// Delete removes a teacher.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error deleting teacher")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "Teacher not found")
	}
	return nil
}

func (s *TeacherService) checkUniqueness(ctx context.Context, email, employeeID, excludeID string) error {
	emailTaken, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error validating teacher email")
	}
	if emailTaken {
		return appErrors.Clone(appErrors.ErrConflict, "email already in use")
	}
	idTaken, err := s.repo.ExistsByEmployeeID(ctx, employeeID, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error validating employee id")
	}
	if idTaken {
		return appErrors.Clone(appErrors.ErrConflict, "employeeId already in use")
	}
	return nil
}
