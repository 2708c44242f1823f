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

const assignmentColumns = `id, course_id, module_number, instructor_id, title, description, assignment_url, due_date, max_marks, created_at`

// AssignmentRepository stores assignment definitions.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts an assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (` + assignmentColumns + `) VALUES (:id, :course_id, :module_number, :instructor_id, :title, :description, :assignment_url, :due_date, :max_marks, :created_at)`
	if _, err := database.Conn(ctx, r.db).NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// FindByID returns an assignment.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`
	var assignment models.Assignment
	if err := database.Conn(ctx, r.db).GetContext(ctx, &assignment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &assignment, nil
}

// ListByCourse returns a course's assignments, newest first.
func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM assignments WHERE course_id = $1 ORDER BY created_at DESC`
	var assignments []models.Assignment
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &assignments, query, courseID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// ListForStudent returns a course's assignments joined with the student's
// own submission, newest first.
func (r *AssignmentRepository) ListForStudent(ctx context.Context, courseID, studentID string) ([]models.StudentAssignment, error) {
	const query = `SELECT a.id, a.course_id, a.module_number, a.instructor_id, a.title, a.description, a.assignment_url, a.due_date, a.max_marks, a.created_at,
	s.id AS submission_id, s.submission_url, s.submitted_at, s.marks_obtained, s.feedback
FROM assignments a
LEFT JOIN assignment_submissions s ON s.assignment_id = a.id AND s.student_id = $2
WHERE a.course_id = $1
ORDER BY a.created_at DESC`
	var assignments []models.StudentAssignment
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &assignments, query, courseID, studentID); err != nil {
		return nil, fmt.Errorf("list student assignments: %w", err)
	}
	return assignments, nil
}

// Count returns the number of assignments on the platform.
func (r *AssignmentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := database.Conn(ctx, r.db).GetContext(ctx, &total, `SELECT COUNT(*) FROM assignments`); err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return total, nil
}
