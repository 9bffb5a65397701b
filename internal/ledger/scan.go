package ledger

import (
	"time"

	"github.com/google/uuid"

	"stampjoy/internal/model"
)

type ScanOutcome string

const (
	OutcomeStampAdded     ScanOutcome = "stamp-added"
	OutcomeRewardUnlocked ScanOutcome = "reward-unlocked"
)

// ReferralBonus describes a referral that activated during a scan. The
// reward text is the value snapshotted at binding time, not the
// restaurant's current configuration.
type ReferralBonus struct {
	ReferrerID   uuid.UUID
	ReferrerName string
	Reward       string
}

// ScanResult reports the effect of one accepted scan. Bonus is non-nil
// only when this scan activated a pending referral.
type ScanResult struct {
	Outcome  ScanOutcome
	Stamps   int
	Required int
	Reward   string
	Bonus    *ReferralBonus
}

// ValidateToken checks a presented token against the restaurant's live
// token and expiry. A nil stored token means the restaurant has never
// rotated; a nil expiry means the stored token never expires.
func ValidateToken(current *string, expiresAt *time.Time, presented string, now time.Time) error {
	if current == nil || *current == "" || *current != presented {
		return ErrInvalidOrExpiredToken
	}
	if expiresAt != nil && !now.Before(*expiresAt) {
		return ErrInvalidOrExpiredToken
	}
	return nil
}

// ApplyScan runs the stamp transition for one scan against a card. It
// mutates card in place and returns what happened; on any error the card
// is untouched. Persisting the mutation, retrying write conflicts, and
// bumping restaurant counters are the caller's job; this function must
// run inside the same transaction that re-read the card.
func ApplyScan(card *model.ClientCard, restaurant *model.Restaurant, token string, now time.Time) (*ScanResult, error) {
	if restaurant == nil {
		return nil, ErrUnknownRestaurant
	}
	if err := ValidateToken(restaurant.QRToken, restaurant.QRExpiresAt, token, now); err != nil {
		return nil, err
	}
	if card.HasScanned(token) {
		return nil, ErrDuplicateScan
	}

	card.ScannedTokens = append(card.ScannedTokens, token)

	result := &ScanResult{Required: restaurant.StampsRequired}

	if ref := card.Referrer; ref != nil && !ref.Activated {
		result.Bonus = &ReferralBonus{
			ReferrerID:   ref.ReferrerID,
			ReferrerName: ref.ReferrerName,
			Reward:       ref.Reward,
		}
		// One-shot: the bonus moves to the referrer's record, the
		// back-reference is dropped from this card.
		card.Referrer = nil
	}

	if card.Stamps+1 >= restaurant.StampsRequired {
		card.Stamps = 0
		result.Outcome = OutcomeRewardUnlocked
		result.Reward = restaurant.LoyaltyReward
	} else {
		card.Stamps++
		result.Outcome = OutcomeStampAdded
	}
	result.Stamps = card.Stamps

	return result, nil
}
