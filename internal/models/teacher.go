package models

import (
	"time"

	"github.com/lib/pq"
)

// TeacherStatus enumerates employment states.
type TeacherStatus string

const (
	TeacherActive  TeacherStatus = "Active"
	TeacherOnLeave TeacherStatus = "On Leave"
	TeacherRetired TeacherStatus = "Retired"
)

// Teacher represents a staff member.
type Teacher struct {
	ID             string         `db:"id" json:"id"`
	FirstName      string         `db:"first_name" json:"firstName" validate:"required"`
	LastName       string         `db:"last_name" json:"lastName" validate:"required"`
	Email          string         `db:"email" json:"email" validate:"required,email"`
	EmployeeID     string         `db:"employee_id" json:"employeeId" validate:"required"`
	Department     string         `db:"department" json:"department" validate:"required"`
	Courses        pq.StringArray `db:"courses" json:"courses"`
	Qualifications pq.StringArray `db:"qualifications" json:"qualifications"`
	Specialization string         `db:"specialization" json:"specialization,omitempty"`
	PhoneNumber    string         `db:"phone_number" json:"phoneNumber,omitempty"`
	OfficeRoom     string         `db:"office_room" json:"officeRoom,omitempty"`
	OfficeHours    string         `db:"office_hours" json:"officeHours,omitempty"`
	Status         TeacherStatus  `db:"status" json:"status" validate:"required,oneof=Active 'On Leave' Retired"`
	HireDate       time.Time      `db:"hire_date" json:"hireDate"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// FullName joins the stored name parts.
func (t Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// TeacherFilter captures the list filters for teachers.
type TeacherFilter struct {
	Status     string
	Department string
	Search     string
	Page       int
	Limit      int
}
