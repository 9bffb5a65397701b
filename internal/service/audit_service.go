package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stampjoy/internal/model"
	"stampjoy/internal/repository"
)

var ErrInvalidAuditInput = errors.New("invalid audit input")

type AuditEntry struct {
	ActorID      *string                `json:"actor_id,omitempty"`
	Action       string                 `json:"action"`
	ResourceType *string                `json:"resource_type,omitempty"`
	ResourceID   *string                `json:"resource_id,omitempty"`
	OldValue     map[string]interface{} `json:"old_value,omitempty"`
	NewValue     map[string]interface{} `json:"new_value,omitempty"`
	IPAddress    *string                `json:"ip_address,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

type AuditService struct {
	auditRepo repository.AuditRepository
	logger    *zap.Logger
}

func NewAuditService(auditRepo repository.AuditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuditService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	if s.auditRepo == nil {
		return errors.New("audit repository is nil")
	}

	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return ErrInvalidAuditInput
	}

	var actorID *uuid.UUID
	if entry.ActorID != nil && strings.TrimSpace(*entry.ActorID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*entry.ActorID))
		if err != nil {
			return ErrInvalidAuditInput
		}
		actorID = &parsed
	}

	logItem := &model.AuditLog{
		ActorID:      actorID,
		Action:       action,
		ResourceType: trimStringPtr(entry.ResourceType),
		ResourceID:   trimStringPtr(entry.ResourceID),
		OldValue:     entry.OldValue,
		NewValue:     entry.NewValue,
		IPAddress:    trimStringPtr(entry.IPAddress),
		CreatedAt:    entry.CreatedAt.UTC(),
	}
	if logItem.CreatedAt.IsZero() {
		logItem.CreatedAt = time.Now().UTC()
	}

	return s.auditRepo.Create(ctx, logItem)
}

func (s *AuditService) List(ctx context.Context, filter repository.AuditListFilter, page, pageSize int) ([]*model.AuditLog, error) {
	page, pageSize = normalizePagination(page, pageSize)
	filter.Pagination = repository.Pagination{
		Limit:  int32(pageSize),
		Offset: int32((page - 1) * pageSize),
	}
	return s.auditRepo.List(ctx, filter)
}
