package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"stampjoy/internal/event"
	"stampjoy/internal/ledger"
	"stampjoy/internal/metrics"
	"stampjoy/internal/model"
	"stampjoy/internal/repository"
	"stampjoy/internal/sse"
)

const referralCodeDrawAttempts = 5

// StampService runs the scan transition: one QR scan turns into one
// stamp, a reward unlock, or a rejection, atomically per card.
type StampService struct {
	restaurantRepo repository.RestaurantRepository
	clientRepo     repository.ClientRepository
	cardRepo       repository.CardRepository
	rewardRepo     repository.PendingRewardRepository
	auditRepo      repository.AuditRepository
	pool           *pgxpool.Pool
	bus            *event.Bus
	sseHub         *sse.SSEHub
	logger         *zap.Logger

	scanTxFn func(ctx context.Context, restaurant *model.Restaurant, client *model.Client, token string) (*ledger.ScanResult, error)
	nowFn    func() time.Time
}

func NewStampService(
	restaurantRepo repository.RestaurantRepository,
	clientRepo repository.ClientRepository,
	cardRepo repository.CardRepository,
	rewardRepo repository.PendingRewardRepository,
	auditRepo repository.AuditRepository,
	pool *pgxpool.Pool,
	bus *event.Bus,
	sseHub *sse.SSEHub,
	logger *zap.Logger,
) *StampService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StampService{
		restaurantRepo: restaurantRepo,
		clientRepo:     clientRepo,
		cardRepo:       cardRepo,
		rewardRepo:     rewardRepo,
		auditRepo:      auditRepo,
		pool:           pool,
		bus:            bus,
		sseHub:         sseHub,
		logger:         logger,
	}
}

func (s *StampService) now() time.Time {
	if s.nowFn != nil {
		return s.nowFn()
	}
	return time.Now().UTC()
}

// ApplyScan processes one scanned QR payload for the calling client.
// Validation failures are business outcomes and leave no trace; an
// accepted scan commits the card mutation before counters, events and
// notifications fire.
func (s *StampService) ApplyScan(ctx context.Context, identity model.Identity, rawPayload string) (*ledger.ScanResult, error) {
	if !identity.IsClient() {
		return nil, ErrForbidden
	}

	started := s.now()

	payload, err := ledger.ParseStampPayload(rawPayload)
	if err != nil {
		metrics.IncScan("invalid_qr")
		return nil, err
	}

	restaurant, err := s.restaurantRepo.FindByID(ctx, payload.RestaurantID)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.IncScan("unknown_restaurant")
		return nil, ledger.ErrUnknownRestaurant
	}
	if err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindByID(ctx, identity.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	var result *ledger.ScanResult
	err = withConflictRetry(ctx, scanMaxAttempts, func(ctx context.Context) error {
		var txErr error
		result, txErr = s.runScanTx(ctx, restaurant, client, payload.Token)
		if isRetryableWriteError(txErr) {
			metrics.IncScanRetry()
		}
		return txErr
	})
	if err != nil {
		metrics.IncScan(scanFailureOutcome(err))
		return nil, err
	}

	s.afterScan(ctx, restaurant, client, result)
	metrics.ObserveScanDuration(time.Since(started))

	return result, nil
}

func (s *StampService) runScanTx(ctx context.Context, restaurant *model.Restaurant, client *model.Client, token string) (*ledger.ScanResult, error) {
	if s.scanTxFn != nil {
		return s.scanTxFn(ctx, restaurant, client, token)
	}
	if s.pool == nil {
		return nil, errors.New("database pool is nil")
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	card, err := s.cardRepo.FindByClientAndRestaurantForUpdate(ctx, tx, client.ID, restaurant.ID)
	created := false
	if errors.Is(err, repository.ErrNotFound) {
		card, err = s.newCard(ctx, client.ID, restaurant.ID)
		created = true
	}
	if err != nil {
		return nil, err
	}

	result, err := ledger.ApplyScan(card, restaurant, token, s.now())
	if err != nil {
		return nil, err
	}

	if result.Bonus != nil {
		if err := s.pushReferralReward(ctx, tx, restaurant, client, result.Bonus); err != nil {
			return nil, err
		}
	}

	if created {
		err = s.cardRepo.CreateTx(ctx, tx, card)
	} else {
		err = s.cardRepo.UpdateTx(ctx, tx, card)
	}
	if err != nil {
		return nil, asRetryableInsertConflict(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// pushReferralReward moves the activated bonus onto the referrer's
// record. A dangling referrer id (that client was since deleted) is
// tolerated: the activation still clears the card's referrer, the
// reward simply has nobody to go to.
func (s *StampService) pushReferralReward(ctx context.Context, tx pgx.Tx, restaurant *model.Restaurant, client *model.Client, bonus *ledger.ReferralBonus) error {
	if _, err := s.clientRepo.FindByID(ctx, bonus.ReferrerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("referral activated for deleted referrer",
				zap.String("referrer_id", bonus.ReferrerID.String()),
				zap.String("restaurant_id", restaurant.ID.String()),
			)
			return nil
		}
		return err
	}

	return s.rewardRepo.CreateTx(ctx, tx, &model.PendingReferralReward{
		ClientID:           bonus.ReferrerID,
		RestaurantID:       restaurant.ID,
		Reward:             bonus.Reward,
		ReferredClientName: client.Name,
	})
}

func (s *StampService) newCard(ctx context.Context, clientID, restaurantID uuid.UUID) (*model.ClientCard, error) {
	for i := 0; i < referralCodeDrawAttempts; i++ {
		code := ledger.NewReferralCode()
		exists, err := s.cardRepo.ReferralCodeExists(ctx, restaurantID, code)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		return &model.ClientCard{
			ClientID:     clientID,
			RestaurantID: restaurantID,
			ReferralCode: code,
		}, nil
	}
	return nil, errors.New("could not draw a unique referral code")
}

// afterScan handles everything that must not undo an accepted scan:
// counter increments are best-effort, events and notifications are
// fire-and-forget.
func (s *StampService) afterScan(ctx context.Context, restaurant *model.Restaurant, client *model.Client, result *ledger.ScanResult) {
	var stampsGiven, rewardsGiven, referrals int64
	if result.Outcome == ledger.OutcomeRewardUnlocked {
		rewardsGiven = 1
	} else {
		stampsGiven = 1
	}
	if result.Bonus != nil {
		referrals = 1
	}

	if err := s.restaurantRepo.IncrementCounters(ctx, restaurant.ID, stampsGiven, rewardsGiven, referrals); err != nil {
		s.logger.Warn("restaurant counter increment failed",
			zap.String("restaurant_id", restaurant.ID.String()),
			zap.Error(err),
		)
	}

	metrics.IncScan(string(result.Outcome))

	if s.auditRepo != nil {
		clientID := client.ID
		resourceID := restaurant.ID.String()
		_ = s.auditRepo.Create(ctx, &model.AuditLog{
			ActorID:      &clientID,
			Action:       "card.scan",
			ResourceType: strPtr("restaurant"),
			ResourceID:   &resourceID,
			NewValue: map[string]interface{}{
				"outcome": string(result.Outcome),
				"stamps":  result.Stamps,
			},
			CreatedAt: s.now(),
		})
	}

	switch result.Outcome {
	case ledger.OutcomeRewardUnlocked:
		metrics.IncRewardUnlocked()
		payload := event.RewardUnlockedPayload{
			ClientID:     client.ID,
			RestaurantID: restaurant.ID,
			Reward:       result.Reward,
		}
		if s.bus != nil {
			s.bus.Publish(event.EventRewardUnlocked, payload)
		}
		if s.sseHub != nil {
			s.sseHub.SendToUser(client.ID.String(), sse.NewEvent(sse.EventRewardUnlocked, payload))
		}
	default:
		payload := event.StampAddedPayload{
			ClientID:     client.ID,
			RestaurantID: restaurant.ID,
			Stamps:       result.Stamps,
			Required:     result.Required,
		}
		if s.bus != nil {
			s.bus.Publish(event.EventStampAdded, payload)
		}
		if s.sseHub != nil {
			s.sseHub.SendToUser(client.ID.String(), sse.NewEvent(sse.EventStampAdded, payload))
		}
	}

	if result.Bonus != nil {
		metrics.IncReferralActivated()
		payload := event.ReferralActivatedPayload{
			ReferrerID:         result.Bonus.ReferrerID,
			RestaurantID:       restaurant.ID,
			Reward:             result.Bonus.Reward,
			ReferredClientName: client.Name,
		}
		if s.bus != nil {
			s.bus.Publish(event.EventReferralActivated, payload)
		}
		if s.sseHub != nil {
			s.sseHub.SendToUser(result.Bonus.ReferrerID.String(), sse.NewEvent(sse.EventReferralActivated, payload))
		}
	}
}

func scanFailureOutcome(err error) string {
	switch {
	case errors.Is(err, ledger.ErrDuplicateScan):
		return "duplicate"
	case errors.Is(err, ledger.ErrInvalidOrExpiredToken):
		return "invalid_token"
	case errors.Is(err, ErrTransientConflict):
		return "conflict"
	default:
		return "error"
	}
}

// asRetryableInsertConflict folds a unique-violation on the card insert
// into the retry path: the competing first scan created the row, the
// next attempt will lock it instead.
func asRetryableInsertConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrConflict
	}
	return err
}
