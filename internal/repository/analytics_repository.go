package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/database"
)

// AnalyticsRepository exposes read-only aggregate queries. Derived values
// are never persisted.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// CoursePossibleMarks sums max_marks over every assignment in a course.
func (r *AnalyticsRepository) CoursePossibleMarks(ctx context.Context, courseID string) (float64, error) {
	const query = `SELECT COALESCE(SUM(max_marks), 0) FROM assignments WHERE course_id = $1`
	var possible float64
	if err := database.Conn(ctx, r.db).GetContext(ctx, &possible, query, courseID); err != nil {
		return 0, fmt.Errorf("sum possible marks: %w", err)
	}
	return possible, nil
}

// StudentObtainedMarks sums a student's graded marks within a course.
func (r *AnalyticsRepository) StudentObtainedMarks(ctx context.Context, courseID, studentID string) (float64, error) {
	const query = `SELECT COALESCE(SUM(s.marks_obtained), 0)
FROM assignment_submissions s
JOIN assignments a ON a.id = s.assignment_id
WHERE a.course_id = $1 AND s.student_id = $2 AND s.marks_obtained IS NOT NULL`
	var obtained float64
	if err := database.Conn(ctx, r.db).GetContext(ctx, &obtained, query, courseID, studentID); err != nil {
		return 0, fmt.Errorf("sum obtained marks: %w", err)
	}
	return obtained, nil
}

// CourseObtainedMarks sums graded marks per student within a course.
// Students without graded submissions are absent from the map.
func (r *AnalyticsRepository) CourseObtainedMarks(ctx context.Context, courseID string) (map[string]float64, error) {
	const query = `SELECT s.student_id, COALESCE(SUM(s.marks_obtained), 0) AS obtained
FROM assignment_submissions s
JOIN assignments a ON a.id = s.assignment_id
WHERE a.course_id = $1 AND s.marks_obtained IS NOT NULL
GROUP BY s.student_id`
	var rows []struct {
		StudentID string  `db:"student_id"`
		Obtained  float64 `db:"obtained"`
	}
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, fmt.Errorf("sum course obtained marks: %w", err)
	}
	result := make(map[string]float64, len(rows))
	for _, row := range rows {
		result[row.StudentID] = row.Obtained
	}
	return result, nil
}

// PlatformOverview gathers the headline counters in one round trip.
func (r *AnalyticsRepository) PlatformOverview(ctx context.Context) (*models.PlatformOverview, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM users) AS total_users,
	(SELECT COUNT(*) FROM courses) AS total_courses,
	(SELECT COUNT(*) FROM enrollments WHERE status <> 'dropped') AS total_enrollments,
	(SELECT COUNT(*) FROM enrollments WHERE status = 'completed') AS completed_enrollments,
	(SELECT COUNT(*) FROM assignments) AS total_assignments`
	var overview models.PlatformOverview
	if err := database.Conn(ctx, r.db).GetContext(ctx, &overview, query); err != nil {
		return nil, fmt.Errorf("platform overview: %w", err)
	}
	return &overview, nil
}

// CourseStats returns per-course enrollment and assignment counts ordered
// by enrolled students, most first.
func (r *AnalyticsRepository) CourseStats(ctx context.Context) ([]models.CourseStat, error) {
	const query = `SELECT c.id AS course_id, c.title, c.level,
	COUNT(e.student_id) FILTER (WHERE e.status <> 'dropped') AS enrolled,
	COUNT(e.student_id) FILTER (WHERE e.status = 'completed') AS completed,
	(SELECT COUNT(*) FROM assignments a WHERE a.course_id = c.id) AS assignment_count
FROM courses c
LEFT JOIN enrollments e ON e.course_id = c.id
GROUP BY c.id
ORDER BY enrolled DESC, c.title ASC`
	var stats []models.CourseStat
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("course stats: %w", err)
	}
	return stats, nil
}
