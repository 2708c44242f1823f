package models

import "time"

// Submission is a student's single response to an assignment.
type Submission struct {
	ID            string    `db:"id" json:"id"`
	AssignmentID  string    `db:"assignment_id" json:"assignment_id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	SubmissionURL string    `db:"submission_url" json:"submission_url"`
	SubmittedAt   time.Time `db:"submitted_at" json:"submitted_at"`
	MarksObtained *float64  `db:"marks_obtained" json:"marks_obtained,omitempty"`
	Feedback      *string   `db:"feedback" json:"feedback,omitempty"`
}

// SubmissionDetail joins the submitting student and their course totals.
type SubmissionDetail struct {
	Submission
	StudentName  string       `db:"student_name" json:"student_name"`
	StudentEmail string       `db:"student_email" json:"student_email"`
	Totals       CourseTotals `db:"-" json:"totals"`
}

// SubmitRequest records or replaces the submission URL.
type SubmitRequest struct {
	SubmissionURL string `json:"submission_url" validate:"required,url"`
}

// GradeSubmissionRequest scores a submission.
type GradeSubmissionRequest struct {
	Marks    *float64 `json:"marks" validate:"required"`
	Feedback string   `json:"feedback"`
}
