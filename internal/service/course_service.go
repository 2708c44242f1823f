package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type courseStore interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context) ([]models.Course, error)
	Delete(ctx context.Context, id string) error
	AssignInstructor(ctx context.Context, instructorID, courseID string) (bool, error)
	RemoveInstructor(ctx context.Context, instructorID, courseID string) error
	ListInstructors(ctx context.Context, courseID string) ([]models.CourseInstructor, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]models.InstructorCourse, error)
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CourseService manages the course registry and teaching assignments.
type CourseService struct {
	courses   courseStore
	users     userReader
	tx        transactor
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(courses courseStore, users userReader, tx transactor, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, users: users, tx: orInline(tx), validator: validate, logger: logger}
}

// List returns every course.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create adds a course.
func (s *CourseService) Create(ctx context.Context, caller *models.Identity, req models.CreateCourseRequest) (*models.Course, error) {
	if err := RequireRole(caller, models.RoleAdministrator); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := &models.Course{Title: req.Title, Level: req.Level, Description: req.Description}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("by", caller.UserID))
	return course, nil
}

// Delete removes a course and everything that references it.
func (s *CourseService) Delete(ctx context.Context, caller *models.Identity, id string) error {
	if err := RequireRole(caller, models.RoleAdministrator); err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.String("course_id", id), zap.String("by", caller.UserID))
	return nil
}

// AssignInstructor lets an instructor teach a course. Repeating the
// assignment succeeds without a second row.
func (s *CourseService) AssignInstructor(ctx context.Context, caller *models.Identity, courseID string, req models.AssignInstructorRequest) error {
	if err := RequireRole(caller, models.RoleAdministrator); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.Get(ctx, courseID); err != nil {
			return err
		}
		user, err := s.users.FindByID(ctx, req.InstructorID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
		}
		if user.Role != models.RoleInstructor {
			return appErrors.Clone(appErrors.ErrValidation, "user is not an instructor")
		}
		created, err := s.courses.AssignInstructor(ctx, user.ID, courseID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign instructor")
		}
		if created {
			s.logger.Info("instructor assigned", zap.String("course_id", courseID), zap.String("instructor_id", user.ID))
		}
		return nil
	})
}

// RemoveInstructor detaches an instructor from a course.
func (s *CourseService) RemoveInstructor(ctx context.Context, caller *models.Identity, courseID, instructorID string) error {
	if err := RequireRole(caller, models.RoleAdministrator); err != nil {
		return err
	}
	if err := s.courses.RemoveInstructor(ctx, instructorID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor does not teach this course")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove instructor")
	}
	return nil
}

// ListInstructors returns the instructors of a course for administrators.
func (s *CourseService) ListInstructors(ctx context.Context, caller *models.Identity, courseID string) ([]models.CourseInstructor, error) {
	if err := RequireRole(caller, models.RoleAdministrator); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, courseID); err != nil {
		return nil, err
	}
	instructors, err := s.courses.ListInstructors(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	return instructors, nil
}

// TaughtCourses lists the caller's courses with active enrollment counts.
func (s *CourseService) TaughtCourses(ctx context.Context, caller *models.Identity) ([]models.InstructorCourse, error) {
	if err := RequireRole(caller, models.RoleInstructor); err != nil {
		return nil, err
	}
	courses, err := s.courses.ListByInstructor(ctx, caller.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list taught courses")
	}
	return courses, nil
}
