package model

import (
	"time"

	"github.com/google/uuid"
)

const DefaultStampsRequired = 10

type Restaurant struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Email          *string    `db:"email" json:"email,omitempty"`
	LoyaltyReward  string     `db:"loyalty_reward" json:"loyalty_reward"`
	StampsRequired int        `db:"stamps_required" json:"stamps_required"`
	ReferralReward string     `db:"referral_reward" json:"referral_reward"`
	ReviewLink     string     `db:"review_link" json:"review_link"`
	CardImageURL   string     `db:"card_image_url" json:"card_image_url,omitempty"`
	PINHash        string     `db:"pin_hash" json:"-"`
	PINEditable    bool       `db:"pin_editable" json:"pin_editable"`
	QRToken        *string    `db:"qr_token" json:"-"`
	QRExpiresAt    *time.Time `db:"qr_expires_at" json:"qr_expires_at,omitempty"`
	StampsGiven    int64      `db:"stamps_given" json:"stamps_given"`
	RewardsGiven   int64      `db:"rewards_given" json:"rewards_given"`
	ReferralsCount int64      `db:"referrals_count" json:"referrals_count"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
