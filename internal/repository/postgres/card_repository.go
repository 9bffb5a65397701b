package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"stampjoy/internal/model"
	"stampjoy/internal/repository"
)

type cardRepository struct {
	pool *pgxpool.Pool
}

func NewCardRepository(pool *pgxpool.Pool) repository.CardRepository {
	return &cardRepository{pool: pool}
}

var _ repository.CardRepository = (*cardRepository)(nil)

const cardColumns = `
	id,
	client_id,
	restaurant_id,
	stamps,
	referral_code,
	scanned_tokens,
	referrer_code,
	referrer_reward,
	referrer_id,
	referrer_name,
	referrer_activated,
	version,
	created_at,
	updated_at
`

func (r *cardRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ClientCard, error) {
	query := `SELECT ` + cardColumns + ` FROM client_cards WHERE id = $1`
	card, err := scanCard(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (r *cardRepository) FindByClientAndRestaurant(ctx context.Context, clientID, restaurantID uuid.UUID) (*model.ClientCard, error) {
	query := `SELECT ` + cardColumns + ` FROM client_cards WHERE client_id = $1 AND restaurant_id = $2`
	card, err := scanCard(r.pool.QueryRow(ctx, query, clientID, restaurantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (r *cardRepository) FindByClientAndRestaurantForUpdate(ctx context.Context, tx pgx.Tx, clientID, restaurantID uuid.UUID) (*model.ClientCard, error) {
	query := `SELECT ` + cardColumns + ` FROM client_cards WHERE client_id = $1 AND restaurant_id = $2 FOR UPDATE`
	card, err := scanCard(tx.QueryRow(ctx, query, clientID, restaurantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (r *cardRepository) FindByReferralCode(ctx context.Context, restaurantID uuid.UUID, code string) (*model.ClientCard, error) {
	query := `SELECT ` + cardColumns + ` FROM client_cards WHERE restaurant_id = $1 AND referral_code = $2`
	card, err := scanCard(r.pool.QueryRow(ctx, query, restaurantID, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (r *cardRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*model.ClientCard, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+cardColumns+` FROM client_cards WHERE client_id = $1 ORDER BY created_at ASC`,
		clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := make([]*model.ClientCard, 0, 8)
	for rows.Next() {
		card, scanErr := scanCard(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

func (r *cardRepository) Create(ctx context.Context, card *model.ClientCard) error {
	return createCard(ctx, r.pool, card)
}

func (r *cardRepository) CreateTx(ctx context.Context, tx pgx.Tx, card *model.ClientCard) error {
	return createCard(ctx, tx, card)
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func createCard(ctx context.Context, db execer, card *model.ClientCard) error {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	if card.Version == 0 {
		card.Version = 1
	}

	now := time.Now().UTC()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = now
	}
	if card.UpdatedAt.IsZero() {
		card.UpdatedAt = card.CreatedAt
	}
	if card.ScannedTokens == nil {
		card.ScannedTokens = []string{}
	}

	code, reward, referrerID, referrerName, activated := flattenReferrer(card.Referrer)

	query := `
		INSERT INTO client_cards (
			id, client_id, restaurant_id, stamps, referral_code, scanned_tokens,
			referrer_code, referrer_reward, referrer_id, referrer_name, referrer_activated,
			version, created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14
		)
	`

	_, err := db.Exec(
		ctx,
		query,
		card.ID,
		card.ClientID,
		card.RestaurantID,
		card.Stamps,
		card.ReferralCode,
		card.ScannedTokens,
		code,
		reward,
		referrerID,
		referrerName,
		activated,
		card.Version,
		card.CreatedAt,
		card.UpdatedAt,
	)
	return err
}

func (r *cardRepository) UpdateTx(ctx context.Context, tx pgx.Tx, card *model.ClientCard) error {
	card.UpdatedAt = time.Now().UTC()
	code, reward, referrerID, referrerName, activated := flattenReferrer(card.Referrer)

	query := `
		UPDATE client_cards
		SET stamps = $3,
			scanned_tokens = $4,
			referrer_code = $5,
			referrer_reward = $6,
			referrer_id = $7,
			referrer_name = $8,
			referrer_activated = $9,
			version = version + 1,
			updated_at = $10
		WHERE id = $1 AND version = $2
	`

	tag, err := tx.Exec(
		ctx,
		query,
		card.ID,
		card.Version,
		card.Stamps,
		card.ScannedTokens,
		code,
		reward,
		referrerID,
		referrerName,
		activated,
		card.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	card.Version++
	return nil
}

func (r *cardRepository) UpdateReferrer(ctx context.Context, card *model.ClientCard) error {
	card.UpdatedAt = time.Now().UTC()
	code, reward, referrerID, referrerName, activated := flattenReferrer(card.Referrer)

	query := `
		UPDATE client_cards
		SET referrer_code = $3,
			referrer_reward = $4,
			referrer_id = $5,
			referrer_name = $6,
			referrer_activated = $7,
			version = version + 1,
			updated_at = $8
		WHERE id = $1 AND version = $2
	`

	tag, err := r.pool.Exec(
		ctx,
		query,
		card.ID,
		card.Version,
		code,
		reward,
		referrerID,
		referrerName,
		activated,
		card.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	card.Version++
	return nil
}

func (r *cardRepository) ReferralCodeExists(ctx context.Context, restaurantID uuid.UUID, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM client_cards WHERE restaurant_id = $1 AND referral_code = $2)`,
		restaurantID,
		code,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *cardRepository) CountByRestaurant(ctx context.Context, restaurantID uuid.UUID) (int64, error) {
	var total int64
	err := r.pool.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM client_cards WHERE restaurant_id = $1`,
		restaurantID,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *cardRepository) CountClients(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func flattenReferrer(ref *model.ReferrerInfo) (code, reward *string, referrerID *uuid.UUID, referrerName *string, activated *bool) {
	if ref == nil {
		return nil, nil, nil, nil, nil
	}
	return &ref.Code, &ref.Reward, &ref.ReferrerID, &ref.ReferrerName, &ref.Activated
}

func scanCard(src scanTarget) (*model.ClientCard, error) {
	card := &model.ClientCard{}
	var (
		referrerCode      *string
		referrerReward    *string
		referrerID        *uuid.UUID
		referrerName      *string
		referrerActivated *bool
	)

	err := src.Scan(
		&card.ID,
		&card.ClientID,
		&card.RestaurantID,
		&card.Stamps,
		&card.ReferralCode,
		&card.ScannedTokens,
		&referrerCode,
		&referrerReward,
		&referrerID,
		&referrerName,
		&referrerActivated,
		&card.Version,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if referrerCode != nil && referrerID != nil {
		card.Referrer = &model.ReferrerInfo{
			Code:       *referrerCode,
			ReferrerID: *referrerID,
		}
		if referrerReward != nil {
			card.Referrer.Reward = *referrerReward
		}
		if referrerName != nil {
			card.Referrer.ReferrerName = *referrerName
		}
		if referrerActivated != nil {
			card.Referrer.Activated = *referrerActivated
		}
	}

	return card, nil
}
