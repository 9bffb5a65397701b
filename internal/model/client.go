package model

import (
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Contact   string    `db:"contact" json:"contact"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PendingReferralReward is owned by the referrer's client record. It is created
// when a referral activates and destroyed when the referrer uses or dismisses it.
type PendingReferralReward struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	ClientID           uuid.UUID `db:"client_id" json:"client_id"`
	RestaurantID       uuid.UUID `db:"restaurant_id" json:"restaurant_id"`
	Reward             string    `db:"reward" json:"reward"`
	ReferredClientName string    `db:"referred_client_name" json:"referred_client_name"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
