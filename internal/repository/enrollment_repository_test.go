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

func TestEnrollmentRepositoryEnrollReportsConflicts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments (student_id, course_id, status, enroll_date) VALUES ($1, $2, $3, $4) ON CONFLICT (student_id, course_id) DO NOTHING")).
		WithArgs("stu-1", "course-1", models.EnrollmentStatusOngoing, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	inserted, err := repo.Enroll(context.Background(), "stu-1", "course-1", at)
	require.NoError(t, err)
	require.True(t, inserted)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WithArgs("stu-1", "course-1", models.EnrollmentStatusOngoing, at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	inserted, err = repo.Enroll(context.Background(), "stu-1", "course-1", at)
	require.NoError(t, err)
	require.False(t, inserted)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryGradeSkipsDropped(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)
	on := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET grade = $3, status = $4, completion_date = $5 WHERE student_id = $1 AND course_id = $2 AND status <> 'dropped'")).
		WithArgs("stu-1", "course-1", "A", models.EnrollmentStatusCompleted, on).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.Grade(context.Background(), "stu-1", "course-1", "A", models.EnrollmentStatusCompleted, on)
	require.NoError(t, err)
	require.False(t, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDropAndFind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $3")).
		WithArgs("stu-1", "course-1", models.EnrollmentStatusDropped).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Drop(ctx, "stu-1", "course-1"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $3")).
		WithArgs("stu-9", "course-1", models.EnrollmentStatusDropped).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Drop(ctx, "stu-9", "course-1"), sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id, course_id, status, enroll_date, grade, completion_date FROM enrollments")).
		WithArgs("stu-1", "course-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "course_id", "status", "enroll_date", "grade", "completion_date"}).
			AddRow("stu-1", "course-1", "dropped", time.Now(), nil, nil))
	enrollment, err := repo.Find(ctx, "stu-1", "course-1")
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusDropped, enrollment.Status)
	require.Nil(t, enrollment.Grade)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryIsActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 AND status <> 'dropped')")).
		WithArgs("stu-1", "course-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsActive(context.Background(), "stu-1", "course-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByStudentFiltersStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)
	status := models.EnrollmentStatusCompleted

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.student_id = $1 AND e.status = $2 ORDER BY e.enroll_date DESC")).
		WithArgs("stu-1", status).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "course_id", "status", "enroll_date", "grade", "completion_date", "course_title", "course_level"}).
			AddRow("stu-1", "course-1", "completed", time.Now(), "A", time.Now(), "Databases", "beginner"))

	list, err := repo.ListByStudent(context.Background(), "stu-1", &status)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Databases", list[0].CourseTitle)
	require.Equal(t, "A", *list[0].Grade)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCountByStatusScopes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)
	countColumns := []string{"ongoing", "completed", "dropped"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments WHERE 1=1 AND course_id = $1")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows(countColumns).AddRow(2, 3, 1))
	counts, err := repo.CountByStatus(context.Background(), EnrollmentCountFilter{CourseID: "course-1"})
	require.NoError(t, err)
	require.Equal(t, models.StatusCounts{Ongoing: 2, Completed: 3, Dropped: 1}, counts)

	mock.ExpectQuery(regexp.QuoteMeta("FROM enrollments WHERE 1=1 AND student_id = $1 AND course_id = $2")).
		WithArgs("stu-1", "course-1").
		WillReturnRows(sqlmock.NewRows(countColumns).AddRow(1, 0, 0))
	_, err = repo.CountByStatus(context.Background(), EnrollmentCountFilter{StudentID: "stu-1", CourseID: "course-1"})
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryRosterAndDistribution(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.course_id = $1 AND e.status <> 'dropped'")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "name", "email", "status", "enroll_date", "grade"}).
			AddRow("stu-1", "Ada", "ada@example.com", "ongoing", time.Now(), nil).
			AddRow("stu-2", "Bob", "bob@example.com", "completed", time.Now(), "B"))
	roster, err := repo.Roster(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, roster, 2)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY grade")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"grade", "count"}).AddRow("A", 1).AddRow("B", 2).AddRow("C", 1))
	buckets, err := repo.GradeDistribution(context.Background(), "course-1")
	require.NoError(t, err)
	require.Equal(t, []models.GradeBucket{{Grade: "A", Count: 1}, {Grade: "B", Count: 2}, {Grade: "C", Count: 1}}, buckets)

	require.NoError(t, mock.ExpectationsWereMet())
}
