package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classledger/records-api/internal/models"
	"github.com/classledger/records-api/internal/query"
)

const courseColumns = `id, course_name, course_code, description, credits, teacher_id, students, schedule_days, schedule_time,
        schedule_room, semester, year, capacity, status, created_at, updated_at`

// CourseRepository manages persistence for course records.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching the filter, newest first.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	b := query.NewBuilder().
		Equals("semester", filter.Semester).
		Equals("status", filter.Status).
		ContainsAny(filter.Search, "course_name", "course_code")
	page := query.Page{Page: filter.Page, Limit: filter.Limit}.Clamp()

	q := fmt.Sprintf("SELECT %s FROM courses%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		courseColumns, b.Where(), page.Limit, page.Offset())

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, q, b.Args()...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM courses%s", b.Where())
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, b.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindByID fetches a course by its identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	q := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, q, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsByCode checks course code uniqueness, optionally excluding a record.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	q := "SELECT 1 FROM courses WHERE course_code = $1"
	args := []interface{}{code}
	if excludeID != "" {
		q += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, q+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	const q = `INSERT INTO courses (id, course_name, course_code, description, credits, teacher_id, students, schedule_days, schedule_time,
        schedule_room, semester, year, capacity, status, created_at, updated_at)
        VALUES (:id, :course_name, :course_code, :description, :credits, :teacher_id, :students, :schedule_days, :schedule_time,
        :schedule_room, :semester, :year, :capacity, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update rewrites an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const q = `UPDATE courses SET course_name = :course_name, course_code = :course_code, description = :description, credits = :credits,
        teacher_id = :teacher_id, students = :students, schedule_days = :schedule_days, schedule_time = :schedule_time,
        schedule_room = :schedule_room, semester = :semester, year = :year, capacity = :capacity,
        status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, q, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes the course, reporting whether it existed.
func (r *CourseRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete course: %w", err)
	}
	return affected > 0, nil
}
