package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scorePtr(v float64) *float64 { return &v }

func TestActivityLetterGrade(t *testing.T) {
	cases := []struct {
		score    *float64
		expected string
	}{
		{scorePtr(95), "A"},
		{scorePtr(90), "A"},
		{scorePtr(82), "B"},
		{scorePtr(74), "C"},
		{scorePtr(61), "D"},
		{scorePtr(40), "F"},
		{scorePtr(0), "F"},
		{nil, ""},
	}
	for _, tc := range cases {
		a := Activity{Score: tc.score}
		assert.Equal(t, tc.expected, a.LetterGrade())
	}
}

func TestActivityIsLate(t *testing.T) {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	onTime := Activity{Date: due.Add(-24 * time.Hour), DueDate: &due}
	assert.False(t, onTime.IsLate())

	exact := Activity{Date: due, DueDate: &due}
	assert.False(t, exact.IsLate())

	late := Activity{Date: due.Add(time.Hour), DueDate: &due}
	assert.True(t, late.IsLate())

	noDue := Activity{Date: due}
	assert.False(t, noDue.IsLate())
}

func TestStudentFullName(t *testing.T) {
	s := Student{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", s.FullName())
}

func TestStudentAge(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	birthday := time.Date(2005, 6, 15, 0, 0, 0, 0, time.UTC)
	s := Student{DateOfBirth: &birthday}
	require.NotNil(t, s.Age(now))
	assert.Equal(t, 20, *s.Age(now))

	beforeBirthday := time.Date(2005, 6, 16, 0, 0, 0, 0, time.UTC)
	s = Student{DateOfBirth: &beforeBirthday}
	assert.Equal(t, 19, *s.Age(now))

	afterBirthday := time.Date(2005, 1, 2, 0, 0, 0, 0, time.UTC)
	s = Student{DateOfBirth: &afterBirthday}
	assert.Equal(t, 20, *s.Age(now))

	s = Student{}
	assert.Nil(t, s.Age(now))
}

func TestStudentJSONCarriesDerivedFields(t *testing.T) {
	birthday := time.Now().AddDate(-20, 0, -1)
	s := Student{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		DateOfBirth: &birthday,
	}

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "Ada Lovelace", out["fullName"])
	assert.Equal(t, float64(20), out["age"])
	assert.Equal(t, "Ada", out["firstName"])
}

func TestStudentJSONAgeNullWithoutBirthDate(t *testing.T) {
	raw, err := json.Marshal(Student{FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Nil(t, out["age"])
}

func TestAttendanceIsPresent(t *testing.T) {
	assert.True(t, Attendance{Status: AttendancePresent}.IsPresent())
	assert.False(t, Attendance{Status: AttendanceLate}.IsPresent())
}
