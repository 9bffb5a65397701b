package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stampjoy/internal/service"
)

// One sweep handles at most this many restaurants; stragglers are
// picked up by the next run.
const qrSweepBatchSize = 500

type QRJob struct {
	restaurantService *service.RestaurantService
	logger            *zap.Logger
}

func NewQRJob(restaurantService *service.RestaurantService, logger *zap.Logger) *QRJob {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &QRJob{
		restaurantService: restaurantService,
		logger:            logger,
	}
}

func (j *QRJob) RotateExpired() {
	if j == nil || j.restaurantService == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rotated, err := j.restaurantService.RotateExpired(ctx, qrSweepBatchSize)
	if err != nil {
		j.logger.Warn("expired qr sweep failed", zap.Error(err))
		return
	}
	if rotated > 0 {
		j.logger.Info("expired qr tokens rotated", zap.Int("count", rotated))
	}
}
