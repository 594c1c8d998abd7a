package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classledger/records-api/internal/models"
	"github.com/classledger/records-api/internal/query"
)

const attendanceColumns = `a.id, a.student_name, a.student_id, a.course, a.date, a.status, a.notes, a.recorded_by, a.created_at, a.updated_at,
        u.username AS recorder_username, u.email AS recorder_email`

// AttendanceRepository manages persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func attendanceQuery(filter models.AttendanceFilter) *query.Builder {
	return query.NewBuilder().
		DateFrom("a.date", filter.StartDate).
		DateTo("a.date", filter.EndDate).
		Equals("a.status", filter.Status).
		Contains("a.course", filter.Course).
		Contains("a.student_name", filter.StudentName)
}

// List returns the page of attendance records matching the filter, newest
// first, together with the unpaginated match total.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	b := attendanceQuery(filter)
	page := query.Page{Page: filter.Page, Limit: filter.Limit}.Clamp()

	q := fmt.Sprintf(`SELECT %s FROM attendance a LEFT JOIN users u ON u.id = a.recorded_by%s ORDER BY a.date DESC LIMIT %d OFFSET %d`,
		attendanceColumns, b.Where(), page.Limit, page.Offset())

	var records []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &records, q, b.Args()...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}
	for i := range records {
		records[i].Resolve()
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendance a%s", b.Where())
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, b.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return records, total, nil
}

// FindByID fetches a single attendance record.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceDetail, error) {
	q := fmt.Sprintf("SELECT %s FROM attendance a LEFT JOIN users u ON u.id = a.recorded_by WHERE a.id = $1", attendanceColumns)
	var record models.AttendanceDetail
	if err := r.db.GetContext(ctx, &record, q, id); err != nil {
		return nil, err
	}
	record.Resolve()
	return &record, nil
}

// ListByStudentName returns every record for a student name substring,
// newest first.
func (r *AttendanceRepository) ListByStudentName(ctx context.Context, studentName string) ([]models.AttendanceDetail, error) {
	b := query.NewBuilder().Contains("a.student_name", studentName)
	q := fmt.Sprintf("SELECT %s FROM attendance a LEFT JOIN users u ON u.id = a.recorded_by%s ORDER BY a.date DESC", attendanceColumns, b.Where())

	var records []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &records, q, b.Args()...); err != nil {
		return nil, fmt.Errorf("list attendance by student: %w", err)
	}
	for i := range records {
		records[i].Resolve()
	}
	return records, nil
}

// ListByStudentID returns every record referencing the student, newest first.
func (r *AttendanceRepository) ListByStudentID(ctx context.Context, studentID string) ([]models.AttendanceDetail, error) {
	q := fmt.Sprintf("SELECT %s FROM attendance a LEFT JOIN users u ON u.id = a.recorded_by WHERE a.student_id = $1 ORDER BY a.date DESC", attendanceColumns)
	var records []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &records, q, studentID); err != nil {
		return nil, fmt.Errorf("list attendance by student id: %w", err)
	}
	for i := range records {
		records[i].Resolve()
	}
	return records, nil
}

// StatusSummary groups matching records by status. Statuses with no
// occurrences produce no row.
func (r *AttendanceRepository) StatusSummary(ctx context.Context, startDate, endDate *time.Time) ([]models.StatusCount, error) {
	b := query.NewBuilder().DateFrom("date", startDate).DateTo("date", endDate)
	q := fmt.Sprintf("SELECT status, COUNT(*) AS count FROM attendance%s GROUP BY status", b.Where())

	var summary []models.StatusCount
	if err := r.db.SelectContext(ctx, &summary, q, b.Args()...); err != nil {
		return nil, fmt.Errorf("attendance status summary: %w", err)
	}
	return summary, nil
}

// CountByCourse counts records whose course matches exactly.
func (r *AttendanceRepository) CountByCourse(ctx context.Context, course string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM attendance WHERE course = $1", course); err != nil {
		return 0, fmt.Errorf("count attendance by course: %w", err)
	}
	return total, nil
}

// Create inserts a new attendance record.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	const q = `INSERT INTO attendance (id, student_name, student_id, course, date, status, notes, recorded_by, created_at, updated_at)
        VALUES (:id, :student_name, :student_id, :course, :date, :status, :notes, :recorded_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, record); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// Update rewrites a record's mutable fields. The recorder reference is
// never reassigned.
func (r *AttendanceRepository) Update(ctx context.Context, record *models.Attendance) error {
	record.UpdatedAt = time.Now().UTC()
	const q = `UPDATE attendance SET student_name = :student_name, student_id = :student_id, course = :course, date = :date, status = :status, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, q, record); err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return nil
}

// Delete removes the record, reporting whether it existed.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM attendance WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete attendance: %w", err)
	}
	return affected > 0, nil
}
