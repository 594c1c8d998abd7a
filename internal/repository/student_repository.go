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

const studentColumns = `id, first_name, last_name, email, student_id, date_of_birth, enrollment_date, courses, grade, phone,
        street, city, state, zip_code, country, guardian_name, guardian_phone, guardian_email, status, created_at, updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the filter, newest enrollment first.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	b := query.NewBuilder().
		Equals("status", filter.Status).
		Equals("grade", filter.Grade).
		ContainsAny(filter.Search, "first_name", "last_name", "student_id")
	page := query.Page{Page: filter.Page, Limit: filter.Limit}.Clamp()

	q := fmt.Sprintf("SELECT %s FROM students%s ORDER BY enrollment_date DESC LIMIT %d OFFSET %d",
		studentColumns, b.Where(), page.Limit, page.Offset())

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, q, b.Args()...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students%s", b.Where())
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, b.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by its opaque identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	q := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, q, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByEmail checks email uniqueness, optionally excluding a record.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return r.exists(ctx, "email", email, excludeID)
}

// ExistsByStudentID checks studentId uniqueness, optionally excluding a record.
func (r *StudentRepository) ExistsByStudentID(ctx context.Context, studentID, excludeID string) (bool, error) {
	return r.exists(ctx, "student_id", studentID, excludeID)
}

func (r *StudentRepository) exists(ctx context.Context, column, value, excludeID string) (bool, error) {
	q := fmt.Sprintf("SELECT 1 FROM students WHERE %s = $1", column)
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
		return false, fmt.Errorf("check student %s: %w", column, err)
	}
	return true, nil
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const q = `INSERT INTO students (id, first_name, last_name, email, student_id, date_of_birth, enrollment_date, courses, grade, phone,
        street, city, state, zip_code, country, guardian_name, guardian_phone, guardian_email, status, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :email, :student_id, :date_of_birth, :enrollment_date, :courses, :grade, :phone,
        :street, :city, :state, :zip_code, :country, :guardian_name, :guardian_phone, :guardian_email, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update rewrites an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const q = `UPDATE students SET first_name = :first_name, last_name = :last_name, email = :email, student_id = :student_id,
        date_of_birth = :date_of_birth, enrollment_date = :enrollment_date, courses = :courses, grade = :grade, phone = :phone,
        street = :street, city = :city, state = :state, zip_code = :zip_code, country = :country,
        guardian_name = :guardian_name, guardian_phone = :guardian_phone, guardian_email = :guardian_email,
        status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, q, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes the student, reporting whether it existed. Attendance and
// activity records referencing the student are left untouched.
func (r *StudentRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	return affected > 0, nil
}
