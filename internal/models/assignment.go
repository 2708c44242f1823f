package models

import "time"

// DefaultMaxMarks applies when an assignment is created without a ceiling.
const DefaultMaxMarks = 20

// Assignment is a gradable task within a course.
type Assignment struct {
	ID            string     `db:"id" json:"id"`
	CourseID      string     `db:"course_id" json:"course_id"`
	ModuleNumber  *int       `db:"module_number" json:"module_number,omitempty"`
	InstructorID  string     `db:"instructor_id" json:"instructor_id"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	AssignmentURL string     `db:"assignment_url" json:"assignment_url"`
	DueDate       *time.Time `db:"due_date" json:"due_date,omitempty"`
	MaxMarks      int        `db:"max_marks" json:"max_marks"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// CreateAssignmentRequest is the instructor payload for a new assignment.
type CreateAssignmentRequest struct {
	Title         string     `json:"title" validate:"required,max=255"`
	Description   string     `json:"description"`
	AssignmentURL string     `json:"assignment_url" validate:"omitempty,url"`
	ModuleNumber  *int       `json:"module_number" validate:"omitempty,gt=0"`
	DueDate       *time.Time `json:"due_date"`
	MaxMarks      *int       `json:"max_marks"`
}

// StudentAssignment is an assignment as seen by an enrolled student, with
// their own submission when one exists.
type StudentAssignment struct {
	Assignment
	SubmissionID  *string    `db:"submission_id" json:"submission_id,omitempty"`
	SubmissionURL *string    `db:"submission_url" json:"submission_url,omitempty"`
	SubmittedAt   *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	MarksObtained *float64   `db:"marks_obtained" json:"marks_obtained,omitempty"`
	Feedback      *string    `db:"feedback" json:"feedback,omitempty"`
}
