package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
)

func TestAnalyticsRepositoryMarks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(max_marks), 0) FROM assignments WHERE course_id = $1")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(50))
	possible, err := repo.CoursePossibleMarks(ctx, "course-1")
	require.NoError(t, err)
	require.Equal(t, 50.0, possible)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.course_id = $1 AND s.student_id = $2 AND s.marks_obtained IS NOT NULL")).
		WithArgs("course-1", "stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(15.0))
	obtained, err := repo.StudentObtainedMarks(ctx, "course-1", "stu-1")
	require.NoError(t, err)
	require.Equal(t, 15.0, obtained)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY s.student_id")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "obtained"}).AddRow("stu-1", 15.0).AddRow("stu-2", 7.5))
	perStudent, err := repo.CourseObtainedMarks(ctx, "course-1")
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"stu-1": 15, "stu-2": 7.5}, perStudent)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryPlatformViews(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("(SELECT COUNT(*) FROM users) AS total_users")).
		WillReturnRows(sqlmock.NewRows([]string{"total_users", "total_courses", "total_enrollments", "completed_enrollments", "total_assignments"}).
			AddRow(40, 6, 120, 30, 18))
	overview, err := repo.PlatformOverview(ctx)
	require.NoError(t, err)
	require.Equal(t, models.PlatformOverview{TotalUsers: 40, TotalCourses: 6, TotalEnrollments: 120, CompletedEnrollments: 30, TotalAssignments: 18}, *overview)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY enrolled DESC, c.title ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "title", "level", "enrolled", "completed", "assignment_count"}).
			AddRow("course-1", "Databases", "beginner", 80, 20, 5).
			AddRow("course-2", "Algorithms", "advanced", 0, 0, 0))
	stats, err := repo.CourseStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	require.Equal(t, 80, stats[0].Enrolled)

	require.NoError(t, mock.ExpectationsWereMet())
}
