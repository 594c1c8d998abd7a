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

const teacherColumns = `id, first_name, last_name, email, employee_id, department, courses, qualifications, specialization,
        phone_number, office_room, office_hours, status, hire_date, created_at, updated_at`

// TeacherRepository manages persistence for teacher records.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers matching the filter, newest hire first.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	b := query.NewBuilder().
		Equals("status", filter.Status).
		Equals("department", filter.Department).
		ContainsAny(filter.Search, "first_name", "last_name", "employee_id")
	page := query.Page{Page: filter.Page, Limit: filter.Limit}.Clamp()

	q := fmt.Sprintf("SELECT %s FROM teachers%s ORDER BY hire_date DESC LIMIT %d OFFSET %d",
		teacherColumns, b.Where(), page.Limit, page.Offset())

	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, q, b.Args()...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM teachers%s", b.Where())
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, b.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// FindByID fetches a teacher by its identifier.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	q := fmt.Sprintf("SELECT %s FROM teachers WHERE id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, q, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ExistsByEmail checks email uniqueness, optionally excluding a record.
func (r *TeacherRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return r.exists(ctx, "email", email, excludeID)
}

// ExistsByEmployeeID checks employeeId uniqueness, optionally excluding a record.
func (r *TeacherRepository) ExistsByEmployeeID(ctx context.Context, employeeID, excludeID string) (bool, error) {
	return r.exists(ctx, "employee_id", employeeID, excludeID)
}

func (r *TeacherRepository) exists(ctx context.Context, column, value, excludeID string) (bool, error) {
	q := fmt.Sprintf("SELECT 1 FROM teachers WHERE %s = $1", column)
	args := []interface{}{value}
	if excludeID != "" {
		q += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, q+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher %s: %w", column, err)
	}
	return true, nil
}

// Create inserts a new teacher.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now
	const q = `INSERT INTO teachers (id, first_name, last_name, email, employee_id, department, courses, qualifications, specialization,
        phone_number, office_room, office_hours, status, hire_date, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :email, :employee_id, :department, :courses, :qualifications, :specialization,
        :phone_number, :office_room, :office_hours, :status, :hire_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update rewrites an existing teacher.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const q = `UPDATE teachers SET first_name = :first_name, last_name = :last_name, email = :email, employee_id = :employee_id,
        department = :department, courses = :courses, qualifications = :qualifications, specialization = :specialization,
        phone_number = :phone_number, office_room = :office_room, office_hours = :office_hours,
        status = :status, hire_date = :hire_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, q, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// Delete removes the teacher, reporting whether it existed.
func (r *TeacherRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM teachers WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete teacher: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete teacher: %w", err)
	}
	return affected > 0, nil
}
