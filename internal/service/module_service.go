package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/database"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type moduleStore interface {
	Create(ctx context.Context, module *models.Module) error
	ListByCourse(ctx context.Context, courseID string) ([]models.Module, error)
}

// ModuleService manages numbered course modules.
type ModuleService struct {
	modules   moduleStore
	policy    *AccessPolicy
	tx        transactor
	validator *validator.Validate
	logger    *zap.Logger
}

// NewModuleService constructs ModuleService.
func NewModuleService(modules moduleStore, policy *AccessPolicy, tx transactor, validate *validator.Validate, logger *zap.Logger) *ModuleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModuleService{modules: modules, policy: policy, tx: orInline(tx), validator: validate, logger: logger}
}

// Create adds a module to a course the caller teaches.
func (s *ModuleService) Create(ctx context.Context, caller *models.Identity, courseID string, req models.CreateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}
	module := &models.Module{CourseID: courseID, ModuleNumber: req.ModuleNumber, Name: req.Name, Duration: req.Duration}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.policy.RequireInstructorOf(ctx, caller, courseID); err != nil {
			return err
		}
		if err := s.modules.Create(ctx, module); err != nil {
			if database.IsUniqueViolation(err) {
				return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("module %d already exists", req.ModuleNumber))
			}
			if database.IsForeignKeyViolation(err) {
				return appErrors.Clone(appErrors.ErrNotFound, "course not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create module")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

// List returns the modules of a course visible to the caller.
func (s *ModuleService) List(ctx context.Context, caller *models.Identity, courseID string) ([]models.Module, error) {
	if err := s.policy.CanViewCourse(ctx, caller, courseID); err != nil {
		return nil, err
	}
	modules, err := s.modules.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}
	return modules, nil
}
