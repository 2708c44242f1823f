package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/repository"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type marksReader interface {
	CoursePossibleMarks(ctx context.Context, courseID string) (float64, error)
	StudentObtainedMarks(ctx context.Context, courseID, studentID string) (float64, error)
	CourseObtainedMarks(ctx context.Context, courseID string) (map[string]float64, error)
}

type analyticsStore interface {
	PlatformOverview(ctx context.Context) (*models.PlatformOverview, error)
	CourseStats(ctx context.Context) ([]models.CourseStat, error)
}

type enrollmentAggregates interface {
	CountByStatus(ctx context.Context, filter repository.EnrollmentCountFilter) (models.StatusCounts, error)
	GradeDistribution(ctx context.Context, courseID string) ([]models.GradeBucket, error)
}

type courseCounter interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Count(ctx context.Context) (int, error)
	CountByInstructor(ctx context.Context, instructorID string) (int, error)
}

type userCounter interface {
	CountAll(ctx context.Context) (int, error)
	CountPending(ctx context.Context) (int, error)
}

// AggregationService computes totals, rollups and dashboards from current
// rows. Nothing it derives is stored.
type AggregationService struct {
	marks       marksReader
	analytics   analyticsStore
	enrollments enrollmentAggregates
	courses     courseCounter
	users       userCounter
	policy      *AccessPolicy
	logger      *zap.Logger
}

// NewAggregationService constructs AggregationService.
func NewAggregationService(marks marksReader, analytics analyticsStore, enrollments enrollmentAggregates, courses courseCounter, users userCounter, policy *AccessPolicy, logger *zap.Logger) *AggregationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AggregationService{
		marks:       marks,
		analytics:   analytics,
		enrollments: enrollments,
		courses:     courses,
		users:       users,
		policy:      policy,
		logger:      logger,
	}
}

// StudentCourseTotals sums a student's graded marks against the ceiling of
// every assignment in the course.
func (s *AggregationService) StudentCourseTotals(ctx context.Context, studentID, courseID string) (models.CourseTotals, error) {
	possible, err := s.marks.CoursePossibleMarks(ctx, courseID)
	if err != nil {
		return models.CourseTotals{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute possible marks")
	}
	obtained, err := s.marks.StudentObtainedMarks(ctx, courseID, studentID)
	if err != nil {
		return models.CourseTotals{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute obtained marks")
	}
	return models.NewCourseTotals(obtained, possible), nil
}

// MyTotals returns the calling student's totals in a course they attend.
func (s *AggregationService) MyTotals(ctx context.Context, caller *models.Identity, courseID string) (models.CourseTotals, error) {
	if err := s.policy.RequireActiveStudent(ctx, caller, courseID); err != nil {
		return models.CourseTotals{}, err
	}
	return s.StudentCourseTotals(ctx, caller.UserID, courseID)
}

// CourseRollup summarises enrollment states and the grade distribution of
// completed enrollments.
func (s *AggregationService) CourseRollup(ctx context.Context, caller *models.Identity, courseID string) (*models.CourseRollup, error) {
	if err := RequireRole(caller, models.RoleInstructor, models.RoleAdministrator, models.RoleDataAnalyst); err != nil {
		return nil, err
	}
	if caller.Is(models.RoleInstructor) {
		if err := s.policy.RequireInstructorOf(ctx, caller, courseID); err != nil {
			return nil, err
		}
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	counts, err := s.enrollments.CountByStatus(ctx, repository.EnrollmentCountFilter{CourseID: courseID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	distribution, err := s.enrollments.GradeDistribution(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade distribution")
	}
	if distribution == nil {
		distribution = []models.GradeBucket{}
	}
	return &models.CourseRollup{
		CourseID:     courseID,
		Enrolled:     counts.Active(),
		Completed:    counts.Completed,
		Ongoing:      counts.Ongoing,
		Distribution: distribution,
	}, nil
}

// PlatformOverview returns the headline counters for analysts and
// administrators.
func (s *AggregationService) PlatformOverview(ctx context.Context, caller *models.Identity) (*models.PlatformOverview, error) {
	if err := RequireRole(caller, models.RoleDataAnalyst, models.RoleAdministrator); err != nil {
		return nil, err
	}
	overview, err := s.analytics.PlatformOverview(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load platform overview")
	}
	overview.CompletionRate = models.Percent(float64(overview.CompletedEnrollments), float64(overview.TotalEnrollments))
	return overview, nil
}

// CourseStats returns per-course enrollment figures, busiest first.
func (s *AggregationService) CourseStats(ctx context.Context, caller *models.Identity) ([]models.CourseStat, error) {
	if err := RequireRole(caller, models.RoleDataAnalyst, models.RoleAdministrator); err != nil {
		return nil, err
	}
	stats, err := s.analytics.CourseStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course stats")
	}
	for i := range stats {
		stats[i].CompletionRate = models.Percent(float64(stats[i].Completed), float64(stats[i].Enrolled))
	}
	return stats, nil
}

// Dashboard returns the counters relevant to the caller's role.
func (s *AggregationService) Dashboard(ctx context.Context, caller *models.Identity) (*models.Dashboard, error) {
	if err := RequireRole(caller, models.RoleStudent, models.RoleInstructor, models.RoleAdministrator, models.RoleDataAnalyst); err != nil {
		return nil, err
	}
	dash := &models.Dashboard{Role: caller.Role}
	switch caller.Role {
	case models.RoleStudent:
		counts, err := s.enrollments.CountByStatus(ctx, repository.EnrollmentCountFilter{StudentID: caller.UserID})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
		}
		enrolled, completed := counts.Active(), counts.Completed
		dash.EnrolledCourses, dash.CompletedCourses = &enrolled, &completed
	case models.RoleInstructor:
		taught, err := s.courses.CountByInstructor(ctx, caller.UserID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count taught courses")
		}
		dash.TaughtCourses = &taught
	case models.RoleAdministrator:
		users, err := s.users.CountAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
		}
		pending, err := s.users.CountPending(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending users")
		}
		courses, err := s.courses.Count(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count courses")
		}
		dash.TotalUsers, dash.PendingApprovals, dash.TotalCourses = &users, &pending, &courses
	case models.RoleDataAnalyst:
		counts, err := s.enrollments.CountByStatus(ctx, repository.EnrollmentCountFilter{})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
		}
		active := counts.Active()
		dash.ActiveEnrollments = &active
	}
	return dash, nil
}

// courseTotals loads the course ceiling and every student's obtained marks
// once, returning a lookup that yields each student's totals.
func courseTotals(ctx context.Context, marks marksReader, courseID string) (func(studentID string) models.CourseTotals, error) {
	possible, err := marks.CoursePossibleMarks(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute possible marks")
	}
	obtained, err := marks.CourseObtainedMarks(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute obtained marks")
	}
	return func(studentID string) models.CourseTotals {
		return models.NewCourseTotals(obtained[studentID], possible)
	}, nil
}
