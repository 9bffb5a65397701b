package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stampjoy/internal/model"
	"stampjoy/internal/repository"
)

type pendingRewardRepository struct {
	pool *pgxpool.Pool
}

func NewPendingRewardRepository(pool *pgxpool.Pool) repository.PendingRewardRepository {
	return &pendingRewardRepository{pool: pool}
}

var _ repository.PendingRewardRepository = (*pendingRewardRepository)(nil)

const pendingRewardColumns = `
	id,
	client_id,
	restaurant_id,
	reward,
	referred_client_name,
	created_at
`

func (r *pendingRewardRepository) Create(ctx context.Context, reward *model.PendingReferralReward) error {
	return createPendingReward(ctx, r.pool, reward)
}

func (r *pendingRewardRepository) CreateTx(ctx context.Context, tx pgx.Tx, reward *model.PendingReferralReward) error {
	return createPendingReward(ctx, tx, reward)
}

func createPendingReward(ctx context.Context, db execer, reward *model.PendingReferralReward) error {
	if reward.ID == uuid.Nil {
		reward.ID = uuid.New()
	}
	if reward.CreatedAt.IsZero() {
		reward.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO pending_referral_rewards (
			id, client_id, restaurant_id, reward, referred_client_name, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := db.Exec(
		ctx,
		query,
		reward.ID,
		reward.ClientID,
		reward.RestaurantID,
		reward.Reward,
		reward.ReferredClientName,
		reward.CreatedAt,
	)
	return err
}

func (r *pendingRewardRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*model.PendingReferralReward, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+pendingRewardColumns+`
		   FROM pending_referral_rewards
		  WHERE client_id = $1
		  ORDER BY created_at ASC`,
		clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rewards := make([]*model.PendingReferralReward, 0, 4)
	for rows.Next() {
		item := &model.PendingReferralReward{}
		if err := rows.Scan(
			&item.ID,
			&item.ClientID,
			&item.RestaurantID,
			&item.Reward,
			&item.ReferredClientName,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		rewards = append(rewards, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rewards, nil
}

// Delete is scoped by client id so a caller can only remove rewards it owns.
func (r *pendingRewardRepository) Delete(ctx context.Context, id, clientID uuid.UUID) error {
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM pending_referral_rewards WHERE id = $1 AND client_id = $2`,
		id,
		clientID,
	)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}
