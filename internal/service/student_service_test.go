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

type mockStudentRepo struct {
	items        map[string]*models.Student
	emailIndex   map[string]string
	studentIndex map[string]string
	listResult   []models.Student
	listTotal    int
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return m.listResult, m.listTotal, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := m.items[id]; ok {
		cp := *student
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	if owner, ok := m.emailIndex[email]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) ExistsByStudentID(ctx context.Context, studentID, excludeID string) (bool, error) {
	if owner, ok := m.studentIndex[studentID]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.items == nil {
		m.items = make(map[string]*models.Student)
		m.emailIndex = make(map[string]string)
		m.studentIndex = make(map[string]string)
	}
	if student.ID == "" {
		student.ID = "generated"
	}
	cp := *student
	m.items[student.ID] = &cp
	m.emailIndex[student.Email] = student.ID
	m.studentIndex[student.StudentID] = student.ID
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	cp := *student
	m.items[student.ID] = &cp
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := m.items[id]; ok {
		delete(m.items, id)
		return true, nil
	}
	return false, nil
}

func validStudentRequest() CreateStudentRequest {
	return CreateStudentRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "Ada.Lovelace@School.EDU",
		StudentID: "STU-0001",
		Grade:     "Junior",
	}
}

func TestStudentCreateNormalizesAndDefaults(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, zap.NewNop())

	student, err := svc.Create(context.Background(), validStudentRequest())

	require.NoError(t, err)
	assert.Equal(t, "ada.lovelace@school.edu", student.Email)
	assert.Equal(t, models.StudentActive, student.Status)
	assert.NotNil(t, student.Courses)
	assert.False(t, student.EnrollmentDate.IsZero())
}

func TestStudentCreateParsesDates(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, zap.NewNop())

	req := validStudentRequest()
	req.DateOfBirth = "2008-05-14"
	req.EnrollmentDate = "2024-09-01"
	student, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, student.DateOfBirth)
	assert.Equal(t, time.Date(2008, 5, 14, 0, 0, 0, 0, time.UTC), *student.DateOfBirth)
	assert.Equal(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), student.EnrollmentDate)
}

func TestStudentCreateRejectsBadDate(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, zap.NewNop())

	req := validStudentRequest()
	req.DateOfBirth = "14/05/2008"
	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	require.Len(t, appErr.Violations, 1)
	assert.Equal(t, "dateOfBirth", appErr.Violations[0].Field)
}

func TestStudentCreateDuplicateEmailConflict(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)

	req := validStudentRequest()
	req.StudentID = "STU-0002"
	_, err = svc.Create(context.Background(), req)

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "email already in use", appErr.Message)
}

func TestStudentUpdateKeepsUntouchedFields(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)

	grade := "Senior"
	updated, err := svc.Update(context.Background(), created.ID, UpdateStudentRequest{Grade: &grade})

	require.NoError(t, err)
	assert.Equal(t, models.GradeSenior, updated.Grade)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "ada.lovelace@school.edu", updated.Email)
}

func TestStudentUpdateAllowsOwnEmail(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)

	phone := "555-0100"
	_, err = svc.Update(context.Background(), created.ID, UpdateStudentRequest{Phone: &phone})
	require.NoError(t, err)
}

func TestStudentEnrollAppendsOnce(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)

	enrolled, err := svc.Enroll(context.Background(), created.ID, "Mathematics")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mathematics"}, []string(enrolled.Courses))

	again, err := svc.Enroll(context.Background(), created.ID, "mathematics")
	require.NoError(t, err)
	assert.Len(t, again.Courses, 1)
}

func TestStudentEnrollRequiresCourse(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, zap.NewNop())

	_, err := svc.Enroll(context.Background(), "any", "   ")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestStudentDeleteNotFound(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "Student not found", appErr.Message)
}
