package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stampjoy/internal/repository"
)

const auditRetention = 180 * 24 * time.Hour

type AuditJob struct {
	auditRepo repository.AuditRepository
	logger    *zap.Logger
}

func NewAuditJob(auditRepo repository.AuditRepository, logger *zap.Logger) *AuditJob {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuditJob{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (j *AuditJob) PurgeOld() {
	if j == nil || j.auditRepo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	deleted, err := j.auditRepo.DeleteBefore(ctx, time.Now().UTC().Add(-auditRetention))
	if err != nil {
		j.logger.Warn("audit purge failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		j.logger.Info("old audit entries purged", zap.Int64("count", deleted))
	}
}
