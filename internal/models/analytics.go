package models

import (
	"strconv"
	"time"
)

// CourseTotals is a student's running mark tally for one course. Possible
// covers every assignment in the course, graded or not.
type CourseTotals struct {
	Obtained   float64 `db:"obtained" json:"obtained"`
	Possible   float64 `db:"possible" json:"possible"`
	Percentage float64 `json:"percentage"`
}

// NewCourseTotals derives the percentage, rounded to one decimal place. A
// course without assignments yields 0.
func NewCourseTotals(obtained, possible float64) CourseTotals {
	return CourseTotals{
		Obtained:   obtained,
		Possible:   possible,
		Percentage: Percent(obtained, possible),
	}
}

// Percent returns part/whole*100 rounded to one decimal, or 0 when whole is 0.
// Rounding is half-to-even on the exact binary value, so 6.25 becomes 6.2.
func Percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(part/whole*100, 'f', 1, 64), 64)
	return rounded
}

// GradeBucket counts completed enrollments sharing a grade.
type GradeBucket struct {
	Grade string `db:"grade" json:"grade"`
	Count int    `db:"count" json:"count"`
}

// CourseRollup summarises one course.
type CourseRollup struct {
	CourseID     string        `json:"course_id"`
	Enrolled     int           `json:"enrolled"`
	Completed    int           `json:"completed"`
	Ongoing      int           `json:"ongoing"`
	Distribution []GradeBucket `json:"grade_distribution"`
}

// PlatformOverview is the analyst headline view.
type PlatformOverview struct {
	TotalUsers           int     `db:"total_users" json:"total_users"`
	TotalCourses         int     `db:"total_courses" json:"total_courses"`
	TotalEnrollments     int     `db:"total_enrollments" json:"total_enrollments"`
	CompletedEnrollments int     `db:"completed_enrollments" json:"completed_enrollments"`
	CompletionRate       float64 `json:"completion_rate"`
	TotalAssignments     int     `db:"total_assignments" json:"total_assignments"`
}

// CourseStat is the per-course row of the analyst course table.
type CourseStat struct {
	CourseID        string  `db:"course_id" json:"course_id"`
	Title           string  `db:"title" json:"title"`
	Level           string  `db:"level" json:"level"`
	Enrolled        int     `db:"enrolled" json:"enrolled"`
	Completed       int     `db:"completed" json:"completed"`
	CompletionRate  float64 `db:"-" json:"completion_rate"`
	AssignmentCount int     `db:"assignment_count" json:"assignment_count"`
}

// Dashboard carries role-specific counters. Fields irrelevant to the role
// are omitted.
type Dashboard struct {
	Role              UserRole `json:"role"`
	EnrolledCourses   *int     `json:"enrolled_courses,omitempty"`
	CompletedCourses  *int     `json:"completed_courses,omitempty"`
	TaughtCourses     *int     `json:"taught_courses,omitempty"`
	TotalUsers        *int     `json:"total_users,omitempty"`
	TotalCourses      *int     `json:"total_courses,omitempty"`
	PendingApprovals  *int     `json:"pending_approvals,omitempty"`
	ActiveEnrollments *int     `json:"active_enrollments,omitempty"`
}

// SystemMetrics represents request instrumentation captured in-process.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
