package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
)

var submissionRowColumns = []string{"id", "assignment_id", "student_id", "submission_url", "submitted_at", "marks_obtained", "feedback"}

func TestSubmissionRepositoryUpsertScansStoredRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)
	at := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	// the conflicting row keeps its id and marks
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (assignment_id, student_id) DO UPDATE SET submission_url = EXCLUDED.submission_url, submitted_at = EXCLUDED.submitted_at")).
		WithArgs(sqlmock.AnyArg(), "a-1", "stu-1", "https://files.example.com/v2", at).
		WillReturnRows(sqlmock.NewRows(submissionRowColumns).
			AddRow("sub-original", "a-1", "stu-1", "https://files.example.com/v2", at, 15.0, "good"))

	sub := &models.Submission{AssignmentID: "a-1", StudentID: "stu-1", SubmissionURL: "https://files.example.com/v2", SubmittedAt: at}
	require.NoError(t, repo.Upsert(context.Background(), sub))
	require.Equal(t, "sub-original", sub.ID)
	require.NotNil(t, sub.MarksObtained)
	require.Equal(t, 15.0, *sub.MarksObtained)
	require.Equal(t, "good", *sub.Feedback)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryGrade(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE assignment_submissions SET marks_obtained = $2, feedback = $3 WHERE id = $1")).
		WithArgs("sub-1", 18.5, "nice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Grade(context.Background(), "sub-1", 18.5, "nice"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE assignment_submissions")).
		WithArgs("sub-404", 1.0, "").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Grade(context.Background(), "sub-404", 1, ""), sql.ErrNoRows)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryFindAndList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("FROM assignment_submissions WHERE id = $1")).
		WithArgs("sub-1").
		WillReturnRows(sqlmock.NewRows(submissionRowColumns).
			AddRow("sub-1", "a-1", "stu-1", "https://files.example.com/v1", time.Now(), nil, nil))
	sub, err := repo.FindByID(ctx, "sub-1")
	require.NoError(t, err)
	require.Nil(t, sub.MarksObtained)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY s.submitted_at DESC")).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows(append(append([]string{}, submissionRowColumns...), "student_name", "student_email")).
			AddRow("sub-2", "a-1", "stu-2", "https://files.example.com/b", time.Now(), nil, nil, "Bob", "bob@example.com").
			AddRow("sub-1", "a-1", "stu-1", "https://files.example.com/a", time.Now().Add(-time.Hour), 12.0, "ok", "Ada", "ada@example.com"))
	subs, err := repo.ListByAssignment(ctx, "a-1")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	require.Equal(t, "Bob", subs[0].StudentName)

	require.NoError(t, mock.ExpectationsWereMet())
}
