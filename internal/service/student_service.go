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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsByStudentID(ctx context.Context, studentID, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (bool, error)
}

// CreateStudentRequest is the payload for registering a student.
type CreateStudentRequest struct {
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	Email          string   `json:"email"`
	StudentID      string   `json:"studentId"`
	DateOfBirth    string   `json:"dateOfBirth"`
	EnrollmentDate string   `json:"enrollmentDate"`
	Courses        []string `json:"courses"`
	Grade          string   `json:"grade"`
	Phone          string   `json:"phone"`
	Street         string   `json:"street"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	ZipCode        string   `json:"zipCode"`
	Country        string   `json:"country"`
	GuardianName   string   `json:"guardianName"`
	GuardianPhone  string   `json:"guardianPhone"`
	GuardianEmail  string   `json:"guardianEmail"`
	Status         string   `json:"status"`
}

// UpdateStudentRequest is the partial payload for PUT.
type UpdateStudentRequest struct {
	FirstName      *string   `json:"firstName"`
	LastName       *string   `json:"lastName"`
	Email          *string   `json:"email"`
	StudentID      *string   `json:"studentId"`
	DateOfBirth    *string   `json:"dateOfBirth"`
	EnrollmentDate *string   `json:"enrollmentDate"`
	Courses        *[]string `json:"courses"`
	Grade          *string   `json:"grade"`
	Phone          *string   `json:"phone"`
	Street         *string   `json:"street"`
	City           *string   `json:"city"`
	State          *string   `json:"state"`
	ZipCode        *string   `json:"zipCode"`
	Country        *string   `json:"country"`
	GuardianName   *string   `json:"guardianName"`
	GuardianPhone  *string   `json:"guardianPhone"`
	GuardianEmail  *string   `json:"guardianEmail"`
	Status         *string   `json:"status"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validation.Validator
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validation.Validator, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching students")
	}
	return students, paginationMeta(filter.Page, filter.Limit, total), nil
}

// Get returns one student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error fetching student")
	}
	return student, nil
}

// Create validates and registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	student := &models.Student{
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          validation.NormalizeEmail(req.Email),
		StudentID:      strings.TrimSpace(req.StudentID),
		EnrollmentDate: time.Now().UTC(),
		Courses:        req.Courses,
		Grade:          models.StudentGrade(req.Grade),
		Phone:          strings.TrimSpace(req.Phone),
		Street:         req.Street,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		Country:        req.Country,
		GuardianName:   strings.TrimSpace(req.GuardianName),
		GuardianPhone:  strings.TrimSpace(req.GuardianPhone),
		GuardianEmail:  validation.NormalizeEmail(req.GuardianEmail),
		Status:         models.StudentActive,
	}
	if req.Status != "" {
		student.Status = models.StudentStatus(req.Status)
	}
	if student.Courses == nil {
		student.Courses = []string{}
	}

	var violations []appErrors.FieldViolation
	if req.DateOfBirth != "" {
		dob, err := validation.ParseDate(req.DateOfBirth)
		if err != nil {
			violations = append(violations, appErrors.FieldViolation{Field: "dateOfBirth", Message: "dateOfBirth must be a valid ISO-8601 date", Value: req.DateOfBirth})
		} else {
			student.DateOfBirth = &dob
		}
	}
	if req.EnrollmentDate != "" {
		enrolled, err := validation.ParseDate(req.EnrollmentDate)
		if err != nil {
			violations = append(violations, appErrors.FieldViolation{Field: "enrollmentDate", Message: "enrollmentDate must be a valid ISO-8601 date", Value: req.EnrollmentDate})
		} else {
			student.EnrollmentDate = enrolled
		}
	}
	if len(violations) > 0 {
		return nil, appErrors.Validation("validation failed", violations)
	}

	if err := s.validator.Struct(student); err != nil {
		return nil, err
	}
	if err := s.checkUniqueness(ctx, student.Email, student.StudentID, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, storeError(err, "Error creating student")
	}
	return student, nil
}

// Update merges the partial payload, re-validates and persists.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		student.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		student.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		student.Email = validation.NormalizeEmail(*req.Email)
	}
	if req.StudentID != nil {
		student.StudentID = strings.TrimSpace(*req.StudentID)
	}
	if req.DateOfBirth != nil {
		dob, err := validation.ParseDate(*req.DateOfBirth)
		if err != nil {
			return nil, appErrors.Validation("validation failed", []appErrors.FieldViolation{
				{Field: "dateOfBirth", Message: "dateOfBirth must be a valid ISO-8601 date", Value: *req.DateOfBirth},
			})
		}
		student.DateOfBirth = &dob
	}
	if req.EnrollmentDate != nil {
		enrolled, err := validation.ParseDate(*req.EnrollmentDate)
		if err != nil {
			return nil, appErrors.Validation("validation failed", []appErrors.FieldViolation{
				{Field: "enrollmentDate", Message: "enrollmentDate must be a valid ISO-8601 date", Value: *req.EnrollmentDate},
			})
		}
		student.EnrollmentDate = enrolled
	}
	if req.Courses != nil {
		student.Courses = *req.Courses
	}
	if req.Grade != nil {
		student.Grade = models.StudentGrade(*req.Grade)
	}
	if req.Phone != nil {
		student.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Street != nil {
		student.Street = *req.Street
	}
	if req.City != nil {
		student.City = *req.City
	}
	if req.State != nil {
		student.State = *req.State
	}
	if req.ZipCode != nil {
		student.ZipCode = *req.ZipCode
	}
	if req.Country != nil {
		student.Country = *req.Country
	}
	if req.GuardianName != nil {
		student.GuardianName = strings.TrimSpace(*req.GuardianName)
	}
	if req.GuardianPhone != nil {
		student.GuardianPhone = strings.TrimSpace(*req.GuardianPhone)
	}
	if req.GuardianEmail != nil {
		student.GuardianEmail = validation.NormalizeEmail(*req.GuardianEmail)
	}
	if req.Status != nil {
		student.Status = models.StudentStatus(*req.Status)
	}

	if err := s.validator.Struct(student); err != nil {
		return nil, err
	}
	if err := s.checkUniqueness(ctx, student.Email, student.StudentID, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, storeError(err, "Error updating student")
	}
	return student, nil
}

// Delete removes a student. Attendance and activity rows referencing the
// student are intentionally left in place; there is no cascade.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error deleting student")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "Student not found")
	}
	return nil
}

// Enroll appends a course to the student's course list if not already
// present.
func (s *StudentService) Enroll(ctx context.Context, id, course string) (*models.Student, error) {
	course = strings.TrimSpace(course)
	if course == "" {
		return nil, appErrors.Validation("validation failed", []appErrors.FieldViolation{
			{Field: "course", Message: "course is required"},
		})
	}

	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, existing := range student.Courses {
		if strings.EqualFold(existing, course) {
			return student, nil
		}
	}
	student.Courses = append(student.Courses, course)
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, storeError(err, "Error enrolling student")
	}
	return student, nil
}

func (s *StudentService) checkUniqueness(ctx context.Context, email, studentID, excludeID string) error {
	emailTaken, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error validating student email")
	}
	if emailTaken {
		return appErrors.Clone(appErrors.ErrConflict, "email already in use")
	}
	idTaken, err := s.repo.ExistsByStudentID(ctx, studentID, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error validating student id")
	}
	if idTaken {
		return appErrors.Clone(appErrors.ErrConflict, "studentId already in use")
	}
	return nil
}
