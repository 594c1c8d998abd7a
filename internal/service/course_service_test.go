package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classledger/records-api/internal/models"
	appErrors "github.com/classledger/records-api/pkg/errors"
)

type mockCourseRepo struct {
	items     map[string]*models.Course
	codeIndex map[string]string
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{
		items:     make(map[string]*models.Course),
		codeIndex: make(map[string]string),
	}
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	out := make([]models.Course, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (m *mockCourseRepo) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	id, ok := m.codeIndex[code]
	return ok && id != excludeID, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	course.ID = "course-" + course.CourseCode
	cp := *course
	m.items[course.ID] = &cp
	m.codeIndex[course.CourseCode] = course.ID
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	cp := *course
	m.items[course.ID] = &cp
	m.codeIndex[course.CourseCode] = course.ID
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

func validCourseRequest() CreateCourseRequest {
	return CreateCourseRequest{
		CourseName:  "Linear Algebra",
		CourseCode:  "math-201",
		Description: "Vector spaces and linear maps",
		Credits:     4,
		TeacherID:   "teacher-1",
		Semester:    "Fall",
		Year:        2024,
		Capacity:    30,
	}
}

func TestCourseServiceCreateNormalizesCode(t *testing.T) {
	svc := NewCourseService(newMockCourseRepo(), nil, zap.NewNop())

	course, err := svc.Create(context.Background(), validCourseRequest())
	require.NoError(t, err)

	assert.Equal(t, "MATH-201", course.CourseCode)
	assert.Equal(t, models.CourseOpen, course.Status)
	assert.NotNil(t, course.Students)
	assert.NotNil(t, course.ScheduleDays)
}

func TestCourseServiceCreateDefaultsCapacity(t *testing.T) {
	svc := NewCourseService(newMockCourseRepo(), nil, zap.NewNop())

	req := validCourseRequest()
	req.Capacity = 0
	course, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 30, course.Capacity)
}

func TestCourseServiceCreateKeepsExplicitCapacity(t *testing.T) {
	svc := NewCourseService(newMockCourseRepo(), nil, zap.NewNop())

	req := validCourseRequest()
	req.Capacity = 45
	course, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 45, course.Capacity)
}

func TestCourseServiceCreateRejectsInvalidCredits(t *testing.T) {
	svc := NewCourseService(newMockCourseRepo(), nil, zap.NewNop())

	req := validCourseRequest()
	req.Credits = 9
	_, err := svc.Create(context.Background(), req)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	require.Len(t, appErr.Violations, 1)
	assert.Equal(t, "credits", appErr.Violations[0].Field)
}

func TestCourseServiceCreateDuplicateCode(t *testing.T) {
	repo := newMockCourseRepo()
	svc := NewCourseService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), validCourseRequest())
	require.NoError(t, err)

	req := validCourseRequest()
	req.CourseCode = "MATH-201"
	_, err = svc.Create(context.Background(), req)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Status)
	assert.Equal(t, "courseCode already in use", appErr.Message)
}

func TestCourseServiceUpdateKeepsOwnCode(t *testing.T) {
	repo := newMockCourseRepo()
	svc := NewCourseService(repo, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), validCourseRequest())
	require.NoError(t, err)

	name := "Advanced Linear Algebra"
	updated, err := svc.Update(context.Background(), created.ID, UpdateCourseRequest{CourseName: &name})
	require.NoError(t, err)

	assert.Equal(t, name, updated.CourseName)
	assert.Equal(t, "MATH-201", updated.CourseCode)
	assert.Equal(t, created.TeacherID, updated.TeacherID)
}

func TestCourseServiceDeleteNotFound(t *testing.T) {
	svc := NewCourseService(newMockCourseRepo(), nil, zap.NewNop())

	err := svc.Delete(context.Background(), "missing")

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
	assert.True(t, strings.Contains(appErr.Message, "Course"))
}
