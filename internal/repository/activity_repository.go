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

const activityColumns = `a.id, a.student_name, a.student_id, a.course, a.activity, a.grade, a.score, a.date, a.due_date, a.notes, a.status, a.recorded_by, a.created_at, a.updated_at,
        u.username AS recorder_username, u.email AS recorder_email`

// ActivityRepository manages persistence for activity records.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func activityQuery(filter models.ActivityFilter) *query.Builder {
	return query.NewBuilder().
		DateFrom("a.date", filter.StartDate).
		DateTo("a.date", filter.EndDate).
		Equals("a.activity", filter.Activity).
		Contains("a.course", filter.Course).
		Contains("a.student_name", filter.StudentName)
}

// List returns the page of activity records matching the filter, newest
// first, together with the unpaginated match total.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityDetail, int, error) {
	b := activityQuery(filter)
	page := query.Page{Page: filter.Page, Limit: filter.Limit}.Clamp()

	q := fmt.Sprintf(`SELECT %s FROM activities a LEFT JOIN users u ON u.id = a.recorded_by%s ORDER BY a.date DESC LIMIT %d OFFSET %d`,
		activityColumns, b.Where(), page.Limit, page.Offset())

	var records []models.ActivityDetail
	if err := r.db.SelectContext(ctx, &records, q, b.Args()...); err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	for i := range records {
		records[i].Resolve()
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM activities a%s", b.Where())
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, b.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}
	return records, total, nil
}

// FindByID fetches a single activity record.
func (r *ActivityRepository) FindByID(ctx context.Context, id string) (*models.ActivityDetail, error) {
	q := fmt.Sprintf("SELECT %s FROM activities a LEFT JOIN users u ON u.id = a.recorded_by WHERE a.id = $1", activityColumns)
	var record models.ActivityDetail
	if err := r.db.GetContext(ctx, &record, q, id); err != nil {
		return nil, err
	}
	record.Resolve()
	return &record, nil
}

// ListByStudentName returns every record for a student name substring,
// newest first.
func (r *ActivityRepository) ListByStudentName(ctx context.Context, studentName string) ([]models.ActivityDetail, error) {
	b := query.NewBuilder().Contains("a.student_name", studentName)
	q := fmt.Sprintf("SELECT %s FROM activities a LEFT JOIN users u ON u.id = a.recorded_by%s ORDER BY a.date DESC", activityColumns, b.Where())

	var records []models.ActivityDetail
	if err := r.db.SelectContext(ctx, &records, q, b.Args()...); err != nil {
		return nil, fmt.Errorf("list activities by student: %w", err)
	}
	for i := range records {
		records[i].Resolve()
	}
	return records, nil
}

// ListByStudentID returns every record referencing the student, newest first.
func (r *ActivityRepository) ListByStudentID(ctx context.Context, studentID string) ([]models.ActivityDetail, error) {
	q := fmt.Sprintf("SELECT %s FROM activities a LEFT JOIN users u ON u.id = a.recorded_by WHERE a.student_id = $1 ORDER BY a.date DESC", activityColumns)
	var records []models.ActivityDetail
	if err := r.db.SelectContext(ctx, &records, q, studentID); err != nil {
		return nil, fmt.Errorf("list activities by student id: %w", err)
	}
	for i := range records {
		records[i].Resolve()
	}
	return records, nil
}

// AverageByStudentName computes the mean score over records carrying a
// score for a student name substring match. Unscored records never enter
// the numerator or denominator.
func (r *ActivityRepository) AverageByStudentName(ctx context.Context, studentName string) (*models.ScoreAverage, error) {
	b := query.NewBuilder().Contains("student_name", studentName)
	where := b.Where()
	if where == "" {
		where = " WHERE score IS NOT NULL"
	} else {
		where += " AND score IS NOT NULL"
	}
	q := fmt.Sprintf("SELECT COALESCE(AVG(score), 0) AS average, COUNT(score) AS count FROM activities%s", where)

	var avg models.ScoreAverage
	if err := r.db.GetContext(ctx, &avg, q, b.Args()...); err != nil {
		return nil, fmt.Errorf("average score by student: %w", err)
	}
	return &avg, nil
}

// AverageByStudentID computes the scored-only mean for one student id.
func (r *ActivityRepository) AverageByStudentID(ctx context.Context, studentID string) (*models.ScoreAverage, error) {
	const q = "SELECT COALESCE(AVG(score), 0) AS average, COUNT(score) AS count FROM activities WHERE student_id = $1 AND score IS NOT NULL"
	var avg models.ScoreAverage
	if err := r.db.GetContext(ctx, &avg, q, studentID); err != nil {
		return nil, fmt.Errorf("average score by student id: %w", err)
	}
	return &avg, nil
}

// AverageByCourse computes the scored-only mean over a course's activities.
func (r *ActivityRepository) AverageByCourse(ctx context.Context, course string) (*models.ScoreAverage, error) {
	const q = "SELECT COALESCE(AVG(score), 0) AS average, COUNT(score) AS count FROM activities WHERE course = $1 AND score IS NOT NULL"
	var avg models.ScoreAverage
	if err := r.db.GetContext(ctx, &avg, q, course); err != nil {
		return nil, fmt.Errorf("average score by course: %w", err)
	}
	return &avg, nil
}

// CountByCourse counts records whose course matches exactly.
func (r *ActivityRepository) CountByCourse(ctx context.Context, course string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM activities WHERE course = $1", course); err != nil {
		return 0, fmt.Errorf("count activities by course: %w", err)
	}
	return total, nil
}

// Create inserts a new activity record.
func (r *ActivityRepository) Create(ctx context.Context, record *models.Activity) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	const q = `INSERT INTO activities (id, student_name, student_id, course, activity, grade, score, date, due_date, notes, status, recorded_by, created_at, updated_at)
        VALUES (:id, :student_name, :student_id, :course, :activity, :grade, :score, :date, :due_date, :notes, :status, :recorded_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, record); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// Update rewrites a record's mutable fields, leaving the recorder alone.
func (r *ActivityRepository) Update(ctx context.Context, record *models.Activity) error {
	record.UpdatedAt = time.Now().UTC()
	const q = `UPDATE activities SET student_name = :student_name, student_id = :student_id, course = :course, activity = :activity, grade = :grade, score = :score, date = :date, due_date = :due_date, notes = :notes, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, q, record); err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return nil
}

// Delete removes the record, reporting whether it existed.
func (r *ActivityRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM activities WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete activity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete activity: %w", err)
	}
	return affected > 0, nil
}
