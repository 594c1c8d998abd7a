package models

import "time"

// ActivityType enumerates graded activity kinds.
type ActivityType string

const (
	ActivityAssignment   ActivityType = "Assignment"
	ActivityQuiz         ActivityType = "Quiz"
	ActivityExam         ActivityType = "Exam"
	ActivityProject      ActivityType = "Project"
	ActivityPresentation ActivityType = "Presentation"
	ActivityLabWork      ActivityType = "Lab Work"
)

// ActivityStatus enumerates submission states. Lateness is a derived
// observation (IsLate), not a transition guard; callers may set any value.
type ActivityStatus string

const (
	ActivityPending   ActivityStatus = "Pending"
	ActivitySubmitted ActivityStatus = "Submitted"
	ActivityGraded    ActivityStatus = "Graded"
	ActivityLate      ActivityStatus = "Late"
)

// Activity is a graded academic activity record.
type Activity struct {
	ID           string         `db:"id" json:"id"`
	StudentName  string         `db:"student_name" json:"studentName" validate:"required"`
	StudentID    *string        `db:"student_id" json:"studentId,omitempty"`
	Course       string         `db:"course" json:"course" validate:"required"`
	Activity     ActivityType   `db:"activity" json:"activity" validate:"required,oneof=Assignment Quiz Exam Project Presentation 'Lab Work'"`
	Grade        string         `db:"grade" json:"grade,omitempty"`
	Score        *float64       `db:"score" json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	Date         time.Time      `db:"date" json:"date" validate:"required"`
	DueDate      *time.Time     `db:"due_date" json:"dueDate,omitempty"`
	Notes        string         `db:"notes" json:"notes,omitempty" validate:"max=1000"`
	Status       ActivityStatus `db:"status" json:"status" validate:"required,oneof=Pending Submitted Graded Late"`
	RecordedByID *string        `db:"recorded_by" json:"-"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`

	RecordedBy *RecordedBy `db:"-" json:"recordedBy,omitempty"`
}

// LetterGrade derives the letter grade from the numeric score. An absent
// score yields the empty string.
func (a Activity) LetterGrade() string {
	if a.Score == nil {
		return ""
	}
	switch score := *a.Score; {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// IsLate reports whether the activity date falls after its due date. False
// when no due date is set.
func (a Activity) IsLate() bool {
	if a.DueDate == nil {
		return false
	}
	return a.Date.After(*a.DueDate)
}

// ActivityDetail carries the joined recorder identity out of list queries.
type ActivityDetail struct {
	Activity
	RecorderUsername *string `db:"recorder_username" json:"-"`
	RecorderEmail    *string `db:"recorder_email" json:"-"`
}

// Resolve materialises the embedded RecordedBy projection.
func (d *ActivityDetail) Resolve() {
	if d.RecordedByID != nil && d.RecorderUsername != nil {
		d.RecordedBy = &RecordedBy{
			ID:       *d.RecordedByID,
			Username: *d.RecorderUsername,
		}
		if d.RecorderEmail != nil {
			d.RecordedBy.Email = *d.RecorderEmail
		}
	}
}

// ActivityFilter captures the list filters for activity records.
type ActivityFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	Activity    string
	Course      string
	StudentName string
	Page        int
	Limit       int
}

// ScoreAverage is the arithmetic mean over records carrying a score, with
// the count of such records. Zero-valued when no scored records exist.
type ScoreAverage struct {
	Average float64 `db:"average" json:"average"`
	Count   int     `db:"count" json:"count"`
}
