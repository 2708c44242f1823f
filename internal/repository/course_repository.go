package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/database"
)

// CourseRepository manages courses and the teaches relation.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO courses (id, title, level, description, created_at) VALUES (:id, :title, :level, :description, :created_at)`
	if _, err := database.Conn(ctx, r.db).NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// FindByID returns a course.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, title, level, description, created_at FROM courses WHERE id = $1`
	var course models.Course
	if err := database.Conn(ctx, r.db).GetContext(ctx, &course, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// List returns every course ordered by title.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, title, level, description, created_at FROM courses ORDER BY title ASC`
	var courses []models.Course
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Delete removes a course and everything hanging off it.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return requireAffected(res)
}

// Count returns the number of courses.
func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := database.Conn(ctx, r.db).GetContext(ctx, &total, `SELECT COUNT(*) FROM courses`); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return total, nil
}

// Teaches reports whether instructorID teaches courseID.
func (r *CourseRepository) Teaches(ctx context.Context, instructorID, courseID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM teaches WHERE instructor_id = $1 AND course_id = $2)`
	var ok bool
	if err := database.Conn(ctx, r.db).GetContext(ctx, &ok, query, instructorID, courseID); err != nil {
		return false, fmt.Errorf("check teaches: %w", err)
	}
	return ok, nil
}

// AssignInstructor links an instructor to a course. It reports whether a new
// row was written.
func (r *CourseRepository) AssignInstructor(ctx context.Context, instructorID, courseID string) (bool, error) {
	const query = `INSERT INTO teaches (instructor_id, course_id, assigned_at) VALUES ($1, $2, $3) ON CONFLICT (instructor_id, course_id) DO NOTHING`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query, instructorID, courseID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("assign instructor: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// RemoveInstructor unlinks an instructor from a course.
func (r *CourseRepository) RemoveInstructor(ctx context.Context, instructorID, courseID string) error {
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM teaches WHERE instructor_id = $1 AND course_id = $2`, instructorID, courseID)
	if err != nil {
		return fmt.Errorf("remove instructor: %w", err)
	}
	return requireAffected(res)
}

// ListInstructors returns the instructors attached to a course.
func (r *CourseRepository) ListInstructors(ctx context.Context, courseID string) ([]models.CourseInstructor, error) {
	const query = `SELECT t.instructor_id, u.name, u.email, t.assigned_at
FROM teaches t
JOIN users u ON u.id = t.instructor_id
WHERE t.course_id = $1
ORDER BY u.name ASC`
	var instructors []models.CourseInstructor
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &instructors, query, courseID); err != nil {
		return nil, fmt.Errorf("list course instructors: %w", err)
	}
	return instructors, nil
}

// ListByInstructor returns the courses an instructor teaches with their
// non-dropped enrollment counts.
func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID string) ([]models.InstructorCourse, error) {
	const query = `SELECT c.id, c.title, c.level, c.description, c.created_at,
	COUNT(e.student_id) AS enrolled_count
FROM teaches t
JOIN courses c ON c.id = t.course_id
LEFT JOIN enrollments e ON e.course_id = c.id AND e.status <> 'dropped'
WHERE t.instructor_id = $1
GROUP BY c.id
ORDER BY c.title ASC`
	var courses []models.InstructorCourse
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &courses, query, instructorID); err != nil {
		return nil, fmt.Errorf("list instructor courses: %w", err)
	}
	return courses, nil
}

// CountByInstructor returns how many courses an instructor teaches.
func (r *CourseRepository) CountByInstructor(ctx context.Context, instructorID string) (int, error) {
	var total int
	if err := database.Conn(ctx, r.db).GetContext(ctx, &total, `SELECT COUNT(*) FROM teaches WHERE instructor_id = $1`, instructorID); err != nil {
		return 0, fmt.Errorf("count instructor courses: %w", err)
	}
	return total, nil
}
