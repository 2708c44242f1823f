package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/database"
)

// EnrollmentRepository provides access to the enrollments ledger.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Enroll inserts an ongoing enrollment. It reports false when a row for the
// pair already exists, whatever its status.
func (r *EnrollmentRepository) Enroll(ctx context.Context, studentID, courseID string, at time.Time) (bool, error) {
	const query = `INSERT INTO enrollments (student_id, course_id, status, enroll_date) VALUES ($1, $2, $3, $4) ON CONFLICT (student_id, course_id) DO NOTHING`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query, studentID, courseID, models.EnrollmentStatusOngoing, at)
	if err != nil {
		return false, fmt.Errorf("enroll student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Find returns the enrollment for a pair.
func (r *EnrollmentRepository) Find(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	const query = `SELECT student_id, course_id, status, enroll_date, grade, completion_date FROM enrollments WHERE student_id = $1 AND course_id = $2`
	var enrollment models.Enrollment
	if err := database.Conn(ctx, r.db).GetContext(ctx, &enrollment, query, studentID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// IsActive reports whether the student holds a non-dropped enrollment.
func (r *EnrollmentRepository) IsActive(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 AND status <> 'dropped')`
	var ok bool
	if err := database.Conn(ctx, r.db).GetContext(ctx, &ok, query, studentID, courseID); err != nil {
		return false, fmt.Errorf("check active enrollment: %w", err)
	}
	return ok, nil
}

// ListByStudent returns a student's enrollments, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string, status *models.EnrollmentStatus) ([]models.EnrollmentDetail, error) {
	var b strings.Builder
	b.WriteString(`SELECT e.student_id, e.course_id, e.status, e.enroll_date, e.grade, e.completion_date,
	c.title AS course_title, c.level AS course_level
FROM enrollments e
JOIN courses c ON c.id = e.course_id
WHERE e.student_id = $1`)
	args := []interface{}{studentID}
	if status != nil {
		b.WriteString(" AND e.status = $2")
		args = append(args, *status)
	}
	b.WriteString(" ORDER BY e.enroll_date DESC")

	var enrollments []models.EnrollmentDetail
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &enrollments, b.String(), args...); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// Grade records a grade and status on a non-dropped enrollment. It reports
// false when no such enrollment matched.
func (r *EnrollmentRepository) Grade(ctx context.Context, studentID, courseID, grade string, status models.EnrollmentStatus, completedOn time.Time) (bool, error) {
	const query = `UPDATE enrollments SET grade = $3, status = $4, completion_date = $5 WHERE student_id = $1 AND course_id = $2 AND status <> 'dropped'`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query, studentID, courseID, grade, status, completedOn)
	if err != nil {
		return false, fmt.Errorf("grade enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Drop marks an enrollment dropped. Dropping twice succeeds.
func (r *EnrollmentRepository) Drop(ctx context.Context, studentID, courseID string) error {
	const query = `UPDATE enrollments SET status = $3 WHERE student_id = $1 AND course_id = $2`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query, studentID, courseID, models.EnrollmentStatusDropped)
	if err != nil {
		return fmt.Errorf("drop enrollment: %w", err)
	}
	return requireAffected(res)
}

// EnrollmentCountFilter scopes CountByStatus. Empty fields match everything.
type EnrollmentCountFilter struct {
	StudentID string
	CourseID  string
}

// CountByStatus tallies enrollments per status.
func (r *EnrollmentRepository) CountByStatus(ctx context.Context, filter EnrollmentCountFilter) (models.StatusCounts, error) {
	var b strings.Builder
	b.WriteString(`SELECT
	COUNT(*) FILTER (WHERE status = 'ongoing') AS ongoing,
	COUNT(*) FILTER (WHERE status = 'completed') AS completed,
	COUNT(*) FILTER (WHERE status = 'dropped') AS dropped
FROM enrollments WHERE 1=1`)
	var args []interface{}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		fmt.Fprintf(&b, " AND student_id = $%d", len(args))
	}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		fmt.Fprintf(&b, " AND course_id = $%d", len(args))
	}

	var counts models.StatusCounts
	if err := database.Conn(ctx, r.db).GetContext(ctx, &counts, b.String(), args...); err != nil {
		return models.StatusCounts{}, fmt.Errorf("count enrollments: %w", err)
	}
	return counts, nil
}

// Roster returns non-dropped students of a course ordered by name.
func (r *EnrollmentRepository) Roster(ctx context.Context, courseID string) ([]models.RosterEntry, error) {
	const query = `SELECT e.student_id, u.name, u.email, e.status, e.enroll_date, e.grade
FROM enrollments e
JOIN users u ON u.id = e.student_id
WHERE e.course_id = $1 AND e.status <> 'dropped'
ORDER BY u.name ASC`
	var entries []models.RosterEntry
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &entries, query, courseID); err != nil {
		return nil, fmt.Errorf("list course roster: %w", err)
	}
	return entries, nil
}

// GradeDistribution counts completed enrollments per non-empty grade.
func (r *EnrollmentRepository) GradeDistribution(ctx context.Context, courseID string) ([]models.GradeBucket, error) {
	const query = `SELECT grade, COUNT(*) AS count
FROM enrollments
WHERE course_id = $1 AND status = 'completed' AND grade IS NOT NULL AND grade <> ''
GROUP BY grade
ORDER BY grade ASC`
	var buckets []models.GradeBucket
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &buckets, query, courseID); err != nil {
		return nil, fmt.Errorf("grade distribution: %w", err)
	}
	return buckets, nil
}
