package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. Dropped is terminal.
const (
	EnrollmentStatusOngoing   EnrollmentStatus = "ongoing"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// Valid reports whether s is a known status.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusOngoing, EnrollmentStatusCompleted, EnrollmentStatusDropped:
		return true
	}
	return false
}

// Enrollment is the (student, course) relationship.
type Enrollment struct {
	StudentID      string           `db:"student_id" json:"student_id"`
	CourseID       string           `db:"course_id" json:"course_id"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	EnrollDate     time.Time        `db:"enroll_date" json:"enroll_date"`
	Grade          *string          `db:"grade" json:"grade,omitempty"`
	CompletionDate *time.Time       `db:"completion_date" json:"completion_date,omitempty"`
}

// EnrollmentDetail enriches Enrollment with course info for the student view.
type EnrollmentDetail struct {
	Enrollment
	CourseTitle string `db:"course_title" json:"course_title"`
	CourseLevel string `db:"course_level" json:"course_level"`
}

// GradeEnrollmentRequest records a final course grade for a student.
type GradeEnrollmentRequest struct {
	StudentID string           `json:"student_id" validate:"required"`
	Grade     string           `json:"grade" validate:"required,max=16"`
	Status    EnrollmentStatus `json:"status" validate:"omitempty,oneof=completed"`
}

// DropEnrollmentRequest removes a student from a course.
type DropEnrollmentRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}

// RosterEntry is one non-dropped student of a course with running totals.
type RosterEntry struct {
	StudentID  string           `db:"student_id" json:"student_id"`
	Name       string           `db:"name" json:"name"`
	Email      string           `db:"email" json:"email"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	EnrollDate time.Time        `db:"enroll_date" json:"enroll_date"`
	Grade      *string          `db:"grade" json:"grade,omitempty"`
	Totals     CourseTotals     `db:"-" json:"totals"`
}

// StatusCounts tallies enrollments by lifecycle state.
type StatusCounts struct {
	Ongoing   int `db:"ongoing" json:"ongoing"`
	Completed int `db:"completed" json:"completed"`
	Dropped   int `db:"dropped" json:"dropped"`
}

// Active returns the non-dropped total.
func (c StatusCounts) Active() int {
	return c.Ongoing + c.Completed
}
