package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stampjoy/internal/model"
	"stampjoy/internal/repository"
)

type restaurantRepository struct {
	pool *pgxpool.Pool
}

func NewRestaurantRepository(pool *pgxpool.Pool) repository.RestaurantRepository {
	return &restaurantRepository{pool: pool}
}

var _ repository.RestaurantRepository = (*restaurantRepository)(nil)

const restaurantColumns = `
	id,
	name,
	email,
	loyalty_reward,
	stamps_required,
	referral_reward,
	review_link,
	card_image_url,
	pin_hash,
	pin_editable,
	qr_token,
	qr_expires_at,
	stamps_given,
	rewards_given,
	referrals_count,
	created_at,
	updated_at
`

func (r *restaurantRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`
	restaurant, err := scanRestaurant(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return restaurant, nil
}

func (r *restaurantRepository) FindByEmail(ctx context.Context, email string) (*model.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE email = $1`
	restaurant, err := scanRestaurant(r.pool.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return restaurant, nil
}

func (r *restaurantRepository) Create(ctx context.Context, restaurant *model.Restaurant) error {
	if restaurant.ID == uuid.Nil {
		restaurant.ID = uuid.New()
	}

	now := time.Now().UTC()
	if restaurant.CreatedAt.IsZero() {
		restaurant.CreatedAt = now
	}
	if restaurant.UpdatedAt.IsZero() {
		restaurant.UpdatedAt = restaurant.CreatedAt
	}

	query := `
		INSERT INTO restaurants (
			id, name, email, loyalty_reward, stamps_required, referral_reward,
			review_link, card_image_url, pin_hash, pin_editable,
			qr_token, qr_expires_at,
			stamps_given, rewards_given, referrals_count,
			created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12,
			$13, $14, $15,
			$16, $17
		)
	`

	_, err := r.pool.Exec(
		ctx,
		query,
		restaurant.ID,
		restaurant.Name,
		restaurant.Email,
		restaurant.LoyaltyReward,
		restaurant.StampsRequired,
		restaurant.ReferralReward,
		restaurant.ReviewLink,
		restaurant.CardImageURL,
		restaurant.PINHash,
		restaurant.PINEditable,
		restaurant.QRToken,
		restaurant.QRExpiresAt,
		restaurant.StampsGiven,
		restaurant.RewardsGiven,
		restaurant.ReferralsCount,
		restaurant.CreatedAt,
		restaurant.UpdatedAt,
	)
	return err
}

func (r *restaurantRepository) Update(ctx context.Context, restaurant *model.Restaurant) error {
	restaurant.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE restaurants
		SET name = $2,
			email = $3,
			loyalty_reward = $4,
			stamps_required = $5,
			referral_reward = $6,
			review_link = $7,
			card_image_url = $8,
			pin_hash = $9,
			pin_editable = $10,
			updated_at = $11
		WHERE id = $1
	`

	tag, err := r.pool.Exec(
		ctx,
		query,
		restaurant.ID,
		restaurant.Name,
		restaurant.Email,
		restaurant.LoyaltyReward,
		restaurant.StampsRequired,
		restaurant.ReferralReward,
		restaurant.ReviewLink,
		restaurant.CardImageURL,
		restaurant.PINHash,
		restaurant.PINEditable,
		restaurant.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *restaurantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM restaurants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *restaurantRepository) UpdateQRToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	query := `
		UPDATE restaurants
		SET qr_token = $2,
			qr_expires_at = $3,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, token, expiresAt)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *restaurantRepository) IncrementCounters(ctx context.Context, id uuid.UUID, stampsGiven, rewardsGiven, referralsCount int64) error {
	query := `
		UPDATE restaurants
		SET stamps_given = stamps_given + $2,
			rewards_given = rewards_given + $3,
			referrals_count = referrals_count + $4,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, stampsGiven, rewardsGiven, referralsCount)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *restaurantRepository) ResetCounters(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE restaurants
		SET stamps_given = 0,
			rewards_given = 0,
			referrals_count = 0,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *restaurantRepository) ListExpiredTokens(ctx context.Context, now time.Time, limit int32) ([]*model.Restaurant, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT `+restaurantColumns+`
		   FROM restaurants
		  WHERE qr_token IS NOT NULL
		    AND qr_expires_at IS NOT NULL
		    AND qr_expires_at <= $1
		  ORDER BY qr_expires_at ASC
		  LIMIT $2`,
		now,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*model.Restaurant, 0, limit)
	for rows.Next() {
		item, scanErr := scanRestaurant(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *restaurantRepository) List(ctx context.Context, p repository.Pagination) ([]*model.Restaurant, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT `+restaurantColumns+`
		   FROM restaurants
		  ORDER BY name ASC, id ASC
		  LIMIT $1 OFFSET $2`,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*model.Restaurant, 0, limit)
	for rows.Next() {
		item, scanErr := scanRestaurant(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *restaurantRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM restaurants`).Scan(&count)
	return count, err
}

func scanRestaurant(src scanTarget) (*model.Restaurant, error) {
	restaurant := &model.Restaurant{}
	err := src.Scan(
		&restaurant.ID,
		&restaurant.Name,
		&restaurant.Email,
		&restaurant.LoyaltyReward,
		&restaurant.StampsRequired,
		&restaurant.ReferralReward,
		&restaurant.ReviewLink,
		&restaurant.CardImageURL,
		&restaurant.PINHash,
		&restaurant.PINEditable,
		&restaurant.QRToken,
		&restaurant.QRExpiresAt,
		&restaurant.StampsGiven,
		&restaurant.RewardsGiven,
		&restaurant.ReferralsCount,
		&restaurant.CreatedAt,
		&restaurant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return restaurant, nil
}
