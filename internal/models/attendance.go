package models

import "time"

// AttendanceStatus enumerates attendance outcomes.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLate    AttendanceStatus = "Late"
)

// Attendance is a single attendance record. RecordedByID is set from the
// authenticated caller at creation time and never reassigned.
type Attendance struct {
	ID           string           `db:"id" json:"id"`
	StudentName  string           `db:"student_name" json:"studentName" validate:"required,min=2"`
	StudentID    *string          `db:"student_id" json:"studentId,omitempty"`
	Course       string           `db:"course" json:"course" validate:"required"`
	Date         time.Time        `db:"date" json:"date" validate:"required"`
	Status       AttendanceStatus `db:"status" json:"status" validate:"required,oneof=Present Absent Late"`
	Notes        string           `db:"notes" json:"notes,omitempty" validate:"max=500"`
	RecordedByID *string          `db:"recorded_by" json:"-"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updatedAt"`

	RecordedBy *RecordedBy `db:"-" json:"recordedBy,omitempty"`
}

// IsPresent reports whether the record counts toward the attendance rate.
func (a Attendance) IsPresent() bool {
	return a.Status == AttendancePresent
}

// AttendanceDetail carries the joined recorder identity out of list queries.
type AttendanceDetail struct {
	Attendance
	RecorderUsername *string `db:"recorder_username" json:"-"`
	RecorderEmail    *string `db:"recorder_email" json:"-"`
}

// Resolve materialises the embedded RecordedBy projection from the joined
// columns.
func (d *AttendanceDetail) Resolve() {
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

// AttendanceFilter captures the list filters for attendance records.
type AttendanceFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	Status      string
	Course      string
	StudentName string
	Page        int
	Limit       int
}

// StatusCount is one row of the grouped attendance summary. Statuses that
// never occur are omitted rather than zero-filled.
type StatusCount struct {
	Status AttendanceStatus `db:"status" json:"status"`
	Count  int              `db:"count" json:"count"`
}

// AttendanceStats aggregates one student's attendance records.
type AttendanceStats struct {
	Total          int     `json:"total"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Late           int     `json:"late"`
	AttendanceRate float64 `json:"attendanceRate"`
}
