package ledger

import (
	"strings"

	"github.com/google/uuid"

	"stampjoy/internal/model"
)

// ParentLookup resolves the referrer bound to a client's card for one
// restaurant. It returns nil when the client has no card there or the
// card carries no referrer. A dangling referrer id (the referenced
// client was deleted) is reported the same way: chain ends.
type ParentLookup func(clientID uuid.UUID) (*uuid.UUID, error)

// NormalizeReferralCode trims and uppercases a user-entered code.
func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CheckReferralChain walks referrer links upward from the candidate
// referrer and rejects the bind if the referred client appears among the
// ancestors. maxDepth bounds the walk against pre-existing corrupted
// cycles; exceeding it fails closed as circular.
func CheckReferralChain(referrerID, referredID uuid.UUID, maxDepth int, parentOf ParentLookup) error {
	if referrerID == referredID {
		return ErrSelfReferral
	}

	current := referrerID
	for i := 0; i < maxDepth; i++ {
		parent, err := parentOf(current)
		if err != nil {
			return err
		}
		if parent == nil {
			return nil
		}
		if *parent == referredID {
			return ErrCircularReferral
		}
		current = *parent
	}
	return ErrCircularReferral
}

// BindReferrer attaches a referrer to a fresh card. The reward text is
// snapshotted from the restaurant's current configuration so later
// config edits do not change an already-made promise. Chain validation
// happens before this call.
func BindReferrer(card *model.ClientCard, referrer *model.ClientCard, referrerName, rewardSnapshot string) error {
	if card.Referrer != nil {
		return ErrAlreadyReferred
	}
	if referrer.ClientID == card.ClientID {
		return ErrSelfReferral
	}
	card.Referrer = &model.ReferrerInfo{
		Code:         referrer.ReferralCode,
		Reward:       rewardSnapshot,
		ReferrerID:   referrer.ClientID,
		ReferrerName: referrerName,
		Activated:    false,
	}
	return nil
}
