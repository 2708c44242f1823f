package models

import "time"

// Course is the unit students enroll into.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Level       string    `db:"level" json:"level"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// InstructorCourse is a taught course with its active enrollment count.
type InstructorCourse struct {
	Course
	EnrolledCount int `db:"enrolled_count" json:"enrolled_count"`
}

// CourseInstructor lists an instructor attached to a course.
type CourseInstructor struct {
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	AssignedAt   time.Time `db:"assigned_at" json:"assigned_at"`
}

// CreateCourseRequest is the administrator payload for a new course.
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Level       string `json:"level" validate:"omitempty,max=64"`
	Description string `json:"description"`
}

// AssignInstructorRequest attaches an instructor to a course.
type AssignInstructorRequest struct {
	InstructorID string `json:"instructor_id" validate:"required"`
}

// Module is a numbered section of a course that assignments may reference.
type Module struct {
	CourseID     string `db:"course_id" json:"course_id"`
	ModuleNumber int    `db:"module_number" json:"module_number"`
	Name         string `db:"name" json:"name"`
	Duration     string `db:"duration" json:"duration"`
}

// CreateModuleRequest adds a module to a course.
type CreateModuleRequest struct {
	ModuleNumber int    `json:"module_number" validate:"required,gt=0"`
	Name         string `json:"name" validate:"required,max=255"`
	Duration     string `json:"duration" validate:"omitempty,max=64"`
}
