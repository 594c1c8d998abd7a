package models

import (
	"time"

	"github.com/lib/pq"
)

// Semester enumerates academic terms.
type Semester string

const (
	SemesterFall   Semester = "Fall"
	SemesterSpring Semester = "Spring"
	SemesterSummer Semester = "Summer"
)

// CourseStatus enumerates course availability.
type CourseStatus string

const (
	CourseOpen   CourseStatus = "Open"
	CourseClosed CourseStatus = "Closed"
	CourseFull   CourseStatus = "Full"
)

// Course represents a taught course. The code is stored uppercase and is
// unique within the collection.
type Course struct {
	ID           string         `db:"id" json:"id"`
	CourseName   string         `db:"course_name" json:"courseName" validate:"required"`
	CourseCode   string         `db:"course_code" json:"courseCode" validate:"required"`
	Description  string         `db:"description" json:"description" validate:"required"`
	Credits      int            `db:"credits" json:"credits" validate:"required,min=1,max=6"`
	TeacherID    string         `db:"teacher_id" json:"teacher" validate:"required"`
	Students     pq.StringArray `db:"students" json:"students"`
	ScheduleDays pq.StringArray `db:"schedule_days" json:"scheduleDays"`
	ScheduleTime string         `db:"schedule_time" json:"scheduleTime,omitempty"`
	ScheduleRoom string         `db:"schedule_room" json:"scheduleRoom,omitempty"`
	Semester     Semester       `db:"semester" json:"semester,omitempty" validate:"omitempty,oneof=Fall Spring Summer"`
	Year         int            `db:"year" json:"year" validate:"required"`
	Capacity     int            `db:"capacity" json:"capacity"`
	Status       CourseStatus   `db:"status" json:"status" validate:"required,oneof=Open Closed Full"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
}

// CourseFilter captures the list filters for courses.
type CourseFilter struct {
	Semester string
	Status   string
	Search   string
	Page     int
	Limit    int
}
