package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/database"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type submissionStore interface {
	Upsert(ctx context.Context, sub *models.Submission) error
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	Grade(ctx context.Context, id string, marks float64, feedback string) error
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.SubmissionDetail, error)
}

type assignmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
}

// SubmissionService records submissions and grades them.
type SubmissionService struct {
	repo        submissionStore
	assignments assignmentReader
	marks       marksReader
	policy      *AccessPolicy
	tx          transactor
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewSubmissionService constructs SubmissionService.
func NewSubmissionService(repo submissionStore, assignments assignmentReader, marks marksReader, policy *AccessPolicy, tx transactor, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		repo:        repo,
		assignments: assignments,
		marks:       marks,
		policy:      policy,
		tx:          orInline(tx),
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Submit records the caller's submission, replacing the URL and timestamp of
// an earlier one. Existing marks and feedback are kept.
func (s *SubmissionService) Submit(ctx context.Context, caller *models.Identity, assignmentID string, req models.SubmitRequest) (*models.Submission, error) {
	if err := RequireRole(caller, models.RoleStudent); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	sub := &models.Submission{
		AssignmentID:  assignmentID,
		StudentID:     caller.UserID,
		SubmissionURL: req.SubmissionURL,
		SubmittedAt:   s.now(),
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		assignment, err := s.loadAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}
		if err := s.policy.RequireActiveStudent(ctx, caller, assignment.CourseID); err != nil {
			return err
		}
		if err := s.repo.Upsert(ctx, sub); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record submission")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("submission recorded", zap.String("assignment_id", assignmentID), zap.String("student_id", caller.UserID))
	return sub, nil
}

// marksScale is the number of decimals marks_obtained stores.
const marksScale = 2

// Grade scores a submission to an assignment the caller created. Marks must
// lie within [0, max_marks] with at most two decimals; nothing is written
// otherwise.
func (s *SubmissionService) Grade(ctx context.Context, caller *models.Identity, submissionID string, req models.GradeSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grading payload")
	}
	marks := *req.Marks

	var graded *models.Submission
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := s.repo.FindByID(ctx, submissionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
		}
		assignment, err := s.loadAssignment(ctx, sub.AssignmentID)
		if err != nil {
			return err
		}
		if err := s.policy.RequireAssignmentOwner(caller, assignment); err != nil {
			return err
		}
		if marks < 0 || marks > float64(assignment.MaxMarks) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Marks must be between 0 and %d", assignment.MaxMarks))
		}
		if decimalPlaces(marks) > marksScale {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Marks may have at most %d decimal places", marksScale))
		}
		if err := s.repo.Grade(ctx, sub.ID, marks, req.Feedback); err != nil {
			if database.IsCheckViolation(err) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Marks must be between 0 and %d", assignment.MaxMarks))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grade submission")
		}
		feedback := req.Feedback
		sub.MarksObtained = &marks
		sub.Feedback = &feedback
		graded = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("submission graded", zap.String("submission_id", submissionID), zap.Float64("marks", marks))
	return graded, nil
}

// List returns every submission to an assignment the caller created, newest
// first, each with the student's course-wide totals.
func (s *SubmissionService) List(ctx context.Context, caller *models.Identity, assignmentID string) ([]models.SubmissionDetail, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.RequireAssignmentOwner(caller, assignment); err != nil {
		return nil, err
	}
	subs, err := s.repo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	totals, err := courseTotals(ctx, s.marks, assignment.CourseID)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		subs[i].Totals = totals(subs[i].StudentID)
	}
	return subs, nil
}

func (s *SubmissionService) loadAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

func decimalPlaces(v float64) int {
	text := strconv.FormatFloat(v, 'f', -1, 64)
	if _, frac, ok := strings.Cut(text, "."); ok {
		return len(frac)
	}
	return 0
}
