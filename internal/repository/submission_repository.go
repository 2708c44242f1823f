package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/database"
)

const submissionColumns = `id, assignment_id, student_id, submission_url, submitted_at, marks_obtained, feedback`

// SubmissionRepository stores assignment submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Upsert records a submission or replaces the URL and timestamp of the
// existing one. Marks and feedback are left untouched. The stored row is
// scanned back into sub.
func (r *SubmissionRepository) Upsert(ctx context.Context, sub *models.Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	const query = `INSERT INTO assignment_submissions (id, assignment_id, student_id, submission_url, submitted_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (assignment_id, student_id) DO UPDATE SET submission_url = EXCLUDED.submission_url, submitted_at = EXCLUDED.submitted_at
RETURNING ` + submissionColumns
	if err := database.Conn(ctx, r.db).GetContext(ctx, sub, query, sub.ID, sub.AssignmentID, sub.StudentID, sub.SubmissionURL, sub.SubmittedAt); err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	return nil
}

// FindByID returns a submission.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	const query = `SELECT ` + submissionColumns + ` FROM assignment_submissions WHERE id = $1`
	var sub models.Submission
	if err := database.Conn(ctx, r.db).GetContext(ctx, &sub, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &sub, nil
}

// Grade sets marks and feedback on a submission.
func (r *SubmissionRepository) Grade(ctx context.Context, id string, marks float64, feedback string) error {
	const query = `UPDATE assignment_submissions SET marks_obtained = $2, feedback = $3 WHERE id = $1`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query, id, marks, feedback)
	if err != nil {
		return fmt.Errorf("grade submission: %w", err)
	}
	return requireAffected(res)
}

// ListByAssignment returns submissions with the submitting student, newest
// first.
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]models.SubmissionDetail, error) {
	const query = `SELECT s.id, s.assignment_id, s.student_id, s.submission_url, s.submitted_at, s.marks_obtained, s.feedback,
	u.name AS student_name, u.email AS student_email
FROM assignment_submissions s
JOIN users u ON u.id = s.student_id
WHERE s.assignment_id = $1
ORDER BY s.submitted_at DESC`
	var subs []models.SubmissionDetail
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &subs, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}
