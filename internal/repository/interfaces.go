package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"stampjoy/internal/model"
)

type Pagination struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

type ReviewListFilter struct {
	RestaurantID uuid.UUID  `json:"restaurant_id"`
	MinRating    *int       `json:"min_rating,omitempty"`
	Pagination   Pagination `json:"pagination"`
}

type AuditListFilter struct {
	ActorID      *uuid.UUID `json:"actor_id,omitempty"`
	ResourceType *string    `json:"resource_type,omitempty"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Pagination   Pagination `json:"pagination"`
}

type RestaurantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error)
	FindByEmail(ctx context.Context, email string) (*model.Restaurant, error)
	Create(ctx context.Context, restaurant *model.Restaurant) error
	Update(ctx context.Context, restaurant *model.Restaurant) error
	Delete(ctx context.Context, id uuid.UUID) error
	// UpdateQRToken overwrites the live token pair, invalidating the
	// previous token for every future scan.
	UpdateQRToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	// IncrementCounters bumps the cumulative stats. Best-effort from the
	// caller's perspective: failures are logged, never fatal to a scan.
	IncrementCounters(ctx context.Context, id uuid.UUID, stampsGiven, rewardsGiven, referralsCount int64) error
	ResetCounters(ctx context.Context, id uuid.UUID) error
	ListExpiredTokens(ctx context.Context, now time.Time, limit int32) ([]*model.Restaurant, error)
	List(ctx context.Context, p Pagination) ([]*model.Restaurant, error)
	Count(ctx context.Context) (int64, error)
}

type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	Create(ctx context.Context, client *model.Client) error
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CardRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.ClientCard, error)
	FindByClientAndRestaurant(ctx context.Context, clientID, restaurantID uuid.UUID) (*model.ClientCard, error)
	// FindByClientAndRestaurantForUpdate locks the card row for the
	// duration of tx. Callers mutate and then Update inside the same tx.
	FindByClientAndRestaurantForUpdate(ctx context.Context, tx pgx.Tx, clientID, restaurantID uuid.UUID) (*model.ClientCard, error)
	FindByReferralCode(ctx context.Context, restaurantID uuid.UUID, code string) (*model.ClientCard, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*model.ClientCard, error)
	Create(ctx context.Context, card *model.ClientCard) error
	CreateTx(ctx context.Context, tx pgx.Tx, card *model.ClientCard) error
	// UpdateTx writes the card guarded by its version field and bumps the
	// version. Returns ErrConflict when the stored version moved.
	UpdateTx(ctx context.Context, tx pgx.Tx, card *model.ClientCard) error
	UpdateReferrer(ctx context.Context, card *model.ClientCard) error
	ReferralCodeExists(ctx context.Context, restaurantID uuid.UUID, code string) (bool, error)
	CountByRestaurant(ctx context.Context, restaurantID uuid.UUID) (int64, error)
	CountClients(ctx context.Context) (int64, error)
}

type PendingRewardRepository interface {
	Create(ctx context.Context, reward *model.PendingReferralReward) error
	CreateTx(ctx context.Context, tx pgx.Tx, reward *model.PendingReferralReward) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*model.PendingReferralReward, error)
	Delete(ctx context.Context, id, clientID uuid.UUID) error
}

type ReviewRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	Create(ctx context.Context, review *model.Review) error
	SetAIResponse(ctx context.Context, id uuid.UUID, response string) error
	List(ctx context.Context, filter ReviewListFilter) ([]*model.Review, error)
	Count(ctx context.Context, filter ReviewListFilter) (int64, error)
}

type AuditRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	List(ctx context.Context, filter AuditListFilter) ([]*model.AuditLog, error)
	// DeleteBefore drops entries older than cutoff and reports how many
	// rows went away.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
