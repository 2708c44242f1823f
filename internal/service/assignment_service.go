package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/database"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

const moduleForeignKey = "fk_assignments_module"

type assignmentStore interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error)
	ListForStudent(ctx context.Context, courseID, studentID string) ([]models.StudentAssignment, error)
}

// AssignmentService maintains the assignment catalog.
type AssignmentService struct {
	repo      assignmentStore
	policy    *AccessPolicy
	tx        transactor
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs AssignmentService.
func NewAssignmentService(repo assignmentStore, policy *AccessPolicy, tx transactor, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, policy: policy, tx: orInline(tx), validator: validate, logger: logger}
}

// Create adds an assignment to a course the caller teaches. Titles need not
// be unique.
func (s *AssignmentService) Create(ctx context.Context, caller *models.Identity, courseID string, req models.CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	maxMarks := models.DefaultMaxMarks
	if req.MaxMarks != nil {
		maxMarks = *req.MaxMarks
	}
	if maxMarks <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "max_marks must be positive")
	}

	assignment := &models.Assignment{
		CourseID:      courseID,
		ModuleNumber:  req.ModuleNumber,
		Title:         req.Title,
		Description:   req.Description,
		AssignmentURL: req.AssignmentURL,
		DueDate:       req.DueDate,
		MaxMarks:      maxMarks,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.policy.RequireInstructorOf(ctx, caller, courseID); err != nil {
			return err
		}
		assignment.InstructorID = caller.UserID
		if err := s.repo.Create(ctx, assignment); err != nil {
			if database.IsForeignKeyViolation(err) {
				if database.ConstraintName(err) == moduleForeignKey {
					return appErrors.Clone(appErrors.ErrNotFound, "module not found")
				}
				return appErrors.Clone(appErrors.ErrNotFound, "course not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("assignment created", zap.String("assignment_id", assignment.ID), zap.String("course_id", courseID))
	return assignment, nil
}

// Get returns an assignment to callers who may view its course.
func (s *AssignmentService) Get(ctx context.Context, caller *models.Identity, id string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if err := s.policy.CanViewCourse(ctx, caller, assignment.CourseID); err != nil {
		return nil, err
	}
	return assignment, nil
}

// ListForInstructor returns a taught course's assignments, newest first.
func (s *AssignmentService) ListForInstructor(ctx context.Context, caller *models.Identity, courseID string) ([]models.Assignment, error) {
	if err := s.policy.RequireInstructorOf(ctx, caller, courseID); err != nil {
		return nil, err
	}
	assignments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// ListForStudent returns a course's assignments with the caller's own
// submission attached when present.
func (s *AssignmentService) ListForStudent(ctx context.Context, caller *models.Identity, courseID string) ([]models.StudentAssignment, error) {
	if err := s.policy.RequireActiveStudent(ctx, caller, courseID); err != nil {
		return nil, err
	}
	assignments, err := s.repo.ListForStudent(ctx, courseID, caller.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}
