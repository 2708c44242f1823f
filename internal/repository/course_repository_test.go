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

func TestCourseRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses (id, title, level, description, created_at)")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{Title: "Databases", Level: "beginner"}
	require.NoError(t, repo.Create(context.Background(), course))
	require.NotEmpty(t, course.ID)
	require.False(t, course.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindListDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)
	ctx := context.Background()
	columns := []string{"id", "title", "level", "description", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE id = $1")).
		WithArgs("course-404").
		WillReturnError(sql.ErrNoRows)
	_, err := repo.FindByID(ctx, "course-404")
	require.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses ORDER BY title ASC")).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("course-1", "Algorithms", "advanced", "", time.Now()).
			AddRow("course-2", "Databases", "beginner", "", time.Now()))
	courses, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses WHERE id = $1")).
		WithArgs("course-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(ctx, "course-1"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryTeachingRelation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teaches (instructor_id, course_id, assigned_at) VALUES ($1, $2, $3) ON CONFLICT (instructor_id, course_id) DO NOTHING")).
		WithArgs("inst-1", "course-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	created, err := repo.AssignInstructor(ctx, "inst-1", "course-1")
	require.NoError(t, err)
	require.False(t, created)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM teaches WHERE instructor_id = $1 AND course_id = $2)")).
		WithArgs("inst-1", "course-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	ok, err := repo.Teaches(ctx, "inst-1", "course-1")
	require.NoError(t, err)
	require.True(t, ok)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teaches")).
		WithArgs("inst-1", "course-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.RemoveInstructor(ctx, "inst-1", "course-1"), sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.course_id = $1")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"instructor_id", "name", "email", "assigned_at"}).
			AddRow("inst-1", "Grace", "grace@example.com", time.Now()))
	instructors, err := repo.ListInstructors(ctx, "course-1")
	require.NoError(t, err)
	require.Equal(t, "Grace", instructors[0].Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryInstructorViews(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN enrollments e ON e.course_id = c.id AND e.status <> 'dropped'")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "level", "description", "created_at", "enrolled_count"}).
			AddRow("course-1", "Databases", "beginner", "", time.Now(), 12))
	taught, err := repo.ListByInstructor(ctx, "inst-1")
	require.NoError(t, err)
	require.Len(t, taught, 1)
	require.Equal(t, 12, taught[0].EnrolledCount)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teaches WHERE instructor_id = $1")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	count, err := repo.CountByInstructor(ctx, "inst-1")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	total, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, total)

	require.NoError(t, mock.ExpectationsWereMet())
}
