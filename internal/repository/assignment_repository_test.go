package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/database"
)

var assignmentRowColumns = []string{"id", "course_id", "module_number", "instructor_id", "title", "description", "assignment_url", "due_date", "max_marks", "created_at"}

func TestAssignmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignments (id, course_id, module_number")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	assignment := &models.Assignment{CourseID: "course-1", InstructorID: "inst-1", Title: "Essay", MaxMarks: 20}
	require.NoError(t, repo.Create(context.Background(), assignment))
	require.NotEmpty(t, assignment.ID)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "fk_assignments_module"})
	err := repo.Create(context.Background(), &models.Assignment{CourseID: "course-1", Title: "Quiz"})
	require.True(t, database.IsForeignKeyViolation(err))
	require.Equal(t, "fk_assignments_module", database.ConstraintName(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryLists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE course_id = $1 ORDER BY created_at DESC")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows(assignmentRowColumns).
			AddRow("a-1", "course-1", 2, "inst-1", "Essay", "", "", nil, 20, time.Now()))
	list, err := repo.ListByCourse(ctx, "course-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 2, *list[0].ModuleNumber)

	studentColumns := append(append([]string{}, assignmentRowColumns...), "submission_id", "submission_url", "submitted_at", "marks_obtained", "feedback")
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN assignment_submissions s ON s.assignment_id = a.id AND s.student_id = $2")).
		WithArgs("course-1", "stu-1").
		WillReturnRows(sqlmock.NewRows(studentColumns).
			AddRow("a-1", "course-1", nil, "inst-1", "Essay", "", "", nil, 20, time.Now(), "sub-1", "https://files.example.com/a", time.Now(), 15.0, "good").
			AddRow("a-2", "course-1", nil, "inst-1", "Quiz", "", "", nil, 30, time.Now(), nil, nil, nil, nil, nil))
	mine, err := repo.ListForStudent(ctx, "course-1", "stu-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, "sub-1", *mine[0].SubmissionID)
	require.Nil(t, mine[1].SubmissionID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM assignments")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))
	total, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 9, total)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestModuleRepository(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewModuleRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_modules (course_id, module_number, name, duration)")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "course_modules_pkey"})
	err := repo.Create(ctx, &models.Module{CourseID: "course-1", ModuleNumber: 1, Name: "Intro"})
	require.True(t, database.IsUniqueViolation(err))

	mock.ExpectQuery(regexp.QuoteMeta("FROM course_modules WHERE course_id = $1 ORDER BY module_number ASC")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "module_number", "name", "duration"}).
			AddRow("course-1", 1, "Intro", "1 week").
			AddRow("course-1", 2, "Joins", "2 weeks"))
	modules, err := repo.ListByCourse(ctx, "course-1")
	require.NoError(t, err)
	require.Len(t, modules, 2)

	require.NoError(t, mock.ExpectationsWereMet())
}
