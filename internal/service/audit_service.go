package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type auditQueue interface {
	TryEnqueue(entry *models.AuditLog) error
}

type auditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// AuditService records and lists administrative actions.
type AuditService struct {
	repo   auditStore
	queue  auditQueue
	logger *zap.Logger
}

// NewAuditService constructs AuditService.
func NewAuditService(repo auditStore, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// UseQueue moves audit writes off the request path. Entries the queue
// cannot take are written inline.
func (s *AuditService) UseQueue(queue auditQueue) {
	s.queue = queue
}

// Record stores an entry. Failures are logged and never surface to callers.
func (s *AuditService) Record(ctx context.Context, entry *models.AuditLog) {
	if s.queue != nil {
		err := s.queue.TryEnqueue(entry)
		if err == nil {
			return
		}
		s.logger.Debug("audit queue unavailable, writing inline", zap.Error(err))
	}
	if err := s.Write(ctx, entry); err != nil {
		s.logger.Warn("audit log write failed", zap.String("action", entry.Action), zap.Error(err))
	}
}

// Write persists entry. It is the queue handler for asynchronous recording.
func (s *AuditService) Write(ctx context.Context, entry *models.AuditLog) error {
	return s.repo.Create(ctx, entry)
}

// Recent returns the newest entries for administrators.
func (s *AuditService) Recent(ctx context.Context, caller *models.Identity, limit int) ([]models.AuditLog, error) {
	if err := RequireRole(caller, models.RoleAdministrator); err != nil {
		return nil, err
	}
	logs, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	return logs, nil
}
