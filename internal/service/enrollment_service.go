package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/repository"
	"github.com/noah-isme/lms-api/pkg/database"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type enrollmentStore interface {
	Enroll(ctx context.Context, studentID, courseID string, at time.Time) (bool, error)
	Find(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string, status *models.EnrollmentStatus) ([]models.EnrollmentDetail, error)
	Grade(ctx context.Context, studentID, courseID, grade string, status models.EnrollmentStatus, completedOn time.Time) (bool, error)
	Drop(ctx context.Context, studentID, courseID string) error
	Roster(ctx context.Context, courseID string) ([]models.RosterEntry, error)
	CountByStatus(ctx context.Context, filter repository.EnrollmentCountFilter) (models.StatusCounts, error)
}

// EnrollmentService owns the (student, course) lifecycle.
type EnrollmentService struct {
	repo      enrollmentStore
	marks     marksReader
	policy    *AccessPolicy
	tx        transactor
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentStore, marks marksReader, policy *AccessPolicy, tx transactor, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		marks:     marks,
		policy:    policy,
		tx:        orInline(tx),
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Enroll registers the calling student in a course. Any existing row for the
// pair, including a dropped one, is a conflict.
func (s *EnrollmentService) Enroll(ctx context.Context, caller *models.Identity, courseID string) (*models.Enrollment, error) {
	if err := RequireRole(caller, models.RoleStudent); err != nil {
		return nil, err
	}
	now := s.now()
	inserted, err := s.repo.Enroll(ctx, caller.UserID, courseID, now)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll")
	}
	if !inserted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already enrolled in this course")
	}
	s.logger.Info("student enrolled", zap.String("student_id", caller.UserID), zap.String("course_id", courseID))
	return &models.Enrollment{
		StudentID:  caller.UserID,
		CourseID:   courseID,
		Status:     models.EnrollmentStatusOngoing,
		EnrollDate: now,
	}, nil
}

// ListMine returns the caller's enrollments, newest first, optionally
// filtered to one status.
func (s *EnrollmentService) ListMine(ctx context.Context, caller *models.Identity, status string) ([]models.EnrollmentDetail, error) {
	if err := RequireRole(caller, models.RoleStudent); err != nil {
		return nil, err
	}
	var filter *models.EnrollmentStatus
	if status != "" {
		st := models.EnrollmentStatus(status)
		if !st.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
		}
		filter = &st
	}
	enrollments, err := s.repo.ListByStudent(ctx, caller.UserID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// Grade records a final course grade. The status defaults to completed and
// the completion date is set to today. Dropped enrollments cannot be graded.
func (s *EnrollmentService) Grade(ctx context.Context, caller *models.Identity, courseID string, req models.GradeEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	status := req.Status
	if status == "" {
		status = models.EnrollmentStatusCompleted
	}

	var enrollment *models.Enrollment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.policy.RequireInstructorOf(ctx, caller, courseID); err != nil {
			return err
		}
		updated, err := s.repo.Grade(ctx, req.StudentID, courseID, req.Grade, status, s.now())
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grade enrollment")
		}
		enrollment, err = s.repo.Find(ctx, req.StudentID, courseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		}
		if !updated {
			return appErrors.Clone(appErrors.ErrConflict, "enrollment has been dropped")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("enrollment graded",
		zap.String("student_id", req.StudentID),
		zap.String("course_id", courseID),
		zap.String("status", string(status)),
	)
	return enrollment, nil
}

// Drop removes a student from a course the caller teaches. Dropping an
// already dropped enrollment succeeds.
func (s *EnrollmentService) Drop(ctx context.Context, caller *models.Identity, courseID string, req models.DropEnrollmentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid drop payload")
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.policy.RequireInstructorOf(ctx, caller, courseID); err != nil {
			return err
		}
		if err := s.repo.Drop(ctx, req.StudentID, courseID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to drop enrollment")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("enrollment dropped", zap.String("student_id", req.StudentID), zap.String("course_id", courseID))
	return nil
}

// Roster returns the non-dropped students of a course with their totals.
func (s *EnrollmentService) Roster(ctx context.Context, caller *models.Identity, courseID string) ([]models.RosterEntry, error) {
	if err := s.policy.RequireInstructorOf(ctx, caller, courseID); err != nil {
		return nil, err
	}
	entries, err := s.repo.Roster(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	totals, err := courseTotals(ctx, s.marks, courseID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Totals = totals(entries[i].StudentID)
	}
	return entries, nil
}
