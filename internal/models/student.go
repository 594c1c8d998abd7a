package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// StudentGrade enumerates grade levels.
type StudentGrade string

const (
	GradeFreshman  StudentGrade = "Freshman"
	GradeSophomore StudentGrade = "Sophomore"
	GradeJunior    StudentGrade = "Junior"
	GradeSenior    StudentGrade = "Senior"
	GradeGraduate  StudentGrade = "Graduate"
)

// StudentStatus enumerates enrollment states.
type StudentStatus string

const (
	StudentActive    StudentStatus = "Active"
	StudentInactive  StudentStatus = "Inactive"
	StudentGraduated StudentStatus = "Graduated"
	StudentSuspended StudentStatus = "Suspended"
)

// Student represents a learner registered in the institution.
type Student struct {
	ID             string         `db:"id" json:"id"`
	FirstName      string         `db:"first_name" json:"firstName" validate:"required"`
	LastName       string         `db:"last_name" json:"lastName" validate:"required"`
	Email          string         `db:"email" json:"email" validate:"required,email"`
	StudentID      string         `db:"student_id" json:"studentId" validate:"required"`
	DateOfBirth    *time.Time     `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	EnrollmentDate time.Time      `db:"enrollment_date" json:"enrollmentDate"`
	Courses        pq.StringArray `db:"courses" json:"courses"`
	Grade          StudentGrade   `db:"grade" json:"grade,omitempty" validate:"omitempty,oneof=Freshman Sophomore Junior Senior Graduate"`
	Phone          string         `db:"phone" json:"phone,omitempty"`
	Street         string         `db:"street" json:"street,omitempty"`
	City           string         `db:"city" json:"city,omitempty"`
	State          string         `db:"state" json:"state,omitempty"`
	ZipCode        string         `db:"zip_code" json:"zipCode,omitempty"`
	Country        string         `db:"country" json:"country,omitempty"`
	GuardianName   string         `db:"guardian_name" json:"guardianName,omitempty"`
	GuardianPhone  string         `db:"guardian_phone" json:"guardianPhone,omitempty"`
	GuardianEmail  string         `db:"guardian_email" json:"guardianEmail,omitempty" validate:"omitempty,email"`
	Status         StudentStatus  `db:"status" json:"status" validate:"required,oneof=Active Inactive Graduated Suspended"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// FullName joins the stored name parts. Never persisted.
func (s Student) FullName() string {
	return fmt.Sprintf("%s %s", s.FirstName, s.LastName)
}

// Age computes whole years between the birth date and now, decrementing by
// one when the current month/day precedes the birth month/day. Returns nil
// when no birth date is recorded.
func (s Student) Age(now time.Time) *int {
	if s.DateOfBirth == nil {
		return nil
	}
	birth := *s.DateOfBirth
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return &age
}

// MarshalJSON appends the derived fullName and age fields to the stored
// columns, mirroring what the admin UI consumed from the legacy API.
func (s Student) MarshalJSON() ([]byte, error) {
	type plain Student
	return json.Marshal(struct {
		plain
		FullName string `json:"fullName"`
		Age      *int   `json:"age"`
	}{
		plain:    plain(s),
		FullName: s.FullName(),
		Age:      s.Age(time.Now()),
	})
}

// StudentFilter captures the list filters for students.
type StudentFilter struct {
	Status string
	Grade  string
	Search string
	Page   int
	Limit  int
}
