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

type userStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	Identity(ctx context.Context, id string) (*models.Identity, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	LockRegistration(ctx context.Context) error
	CountApprovedAdmins(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.User) error
	CreateProfile(ctx context.Context, userID string, role models.UserRole) error
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// IdentityService resolves callers and manages account lifecycle.
type IdentityService struct {
	users     userStore
	tx        transactor
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIdentityService constructs IdentityService.
func NewIdentityService(users userStore, tx transactor, validate *validator.Validate, logger *zap.Logger) *IdentityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{users: users, tx: orInline(tx), validator: validate, logger: logger}
}

// Resolve maps an identity-provider subject to its role and approval flag.
func (s *IdentityService) Resolve(ctx context.Context, userID string) (*models.Identity, error) {
	if userID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	identity, err := s.users.Identity(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve identity")
	}
	return identity, nil
}

// Register creates the local account for a verified subject. The first
// administrator to register while no approved administrator exists is
// approved immediately; every other account awaits approval.
func (s *IdentityService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	user := &models.User{ID: req.UserID, Name: req.Name, Email: req.Email, Role: req.Role}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if req.Role == models.RoleAdministrator {
			if err := s.users.LockRegistration(ctx); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock registration")
			}
			admins, err := s.users.CountApprovedAdmins(ctx)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count administrators")
			}
			user.Approved = admins == 0
		}
		if err := s.users.Create(ctx, user); err != nil {
			if database.IsUniqueViolation(err) {
				return appErrors.Clone(appErrors.ErrConflict, "user already registered")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
		}
		if err := s.users.CreateProfile(ctx, user.ID, user.Role); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if user.Approved {
		s.logger.Info("bootstrap administrator approved", zap.String("user_id", user.ID))
	} else {
		s.logger.Info("user registered pending approval", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	}
	return user, nil
}

// Me returns the caller's own account.
func (s *IdentityService) Me(ctx context.Context, caller *models.Identity) (*models.User, error) {
	if caller == nil {
		return nil, appErrors.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// ListUsers returns users matching filter for administrators.
func (s *IdentityService) ListUsers(ctx context.Context, caller *models.Identity, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	if err := RequireRole(caller, models.RoleAdministrator); err != nil {
		return nil, nil, err
	}
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Approve marks a pending account approved.
func (s *IdentityService) Approve(ctx context.Context, caller *models.Identity, userID string) error {
	if err := RequireRole(caller, models.RoleAdministrator); err != nil {
		return err
	}
	if err := s.users.Approve(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve user")
	}
	s.logger.Info("user approved", zap.String("user_id", userID), zap.String("by", caller.UserID))
	return nil
}

// Delete removes an account together with its profile, teaching,
// enrollment and submission rows.
func (s *IdentityService) Delete(ctx context.Context, caller *models.Identity, userID string) error {
	if err := RequireRole(caller, models.RoleAdministrator); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		if database.IsForeignKeyViolation(err) && database.ConstraintName(err) == "fk_assignments_instructor" {
			return appErrors.Clone(appErrors.ErrConflict, "instructor owns assignments")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	s.logger.Info("user deleted", zap.String("user_id", userID), zap.String("by", caller.UserID))
	return nil
}
