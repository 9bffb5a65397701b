package model

import (
	"time"

	"github.com/google/uuid"
)

// ReferrerInfo records who referred this card and the reward promised to the
// referrer, snapshotted at binding time. ReferrerID is a back-reference, not an
// ownership edge: the referenced client may no longer exist.
type ReferrerInfo struct {
	Code         string    `json:"code"`
	Reward       string    `json:"reward"`
	ReferrerID   uuid.UUID `json:"referrer_id"`
	ReferrerName string    `json:"referrer_name"`
	Activated    bool      `json:"activated"`
}

// ClientCard is a client's per-restaurant loyalty record. Stamps stays in
// [0, stamps_required): reaching the threshold resets it to zero in the same
// transaction that reports the unlock.
type ClientCard struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	ClientID      uuid.UUID     `db:"client_id" json:"client_id"`
	RestaurantID  uuid.UUID     `db:"restaurant_id" json:"restaurant_id"`
	Stamps        int           `db:"stamps" json:"stamps"`
	ReferralCode  string        `db:"referral_code" json:"referral_code"`
	ScannedTokens []string      `db:"scanned_tokens" json:"-"`
	Referrer      *ReferrerInfo `json:"referrer,omitempty"`
	Version       int           `db:"version" json:"-"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

func (c *ClientCard) HasScanned(token string) bool {
	for _, t := range c.ScannedTokens {
		if t == token {
			return true
		}
	}
	return false
}
