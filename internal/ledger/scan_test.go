package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"stampjoy/internal/model"
)

func testRestaurant(token string, expiresAt time.Time, required int) *model.Restaurant {
	return &model.Restaurant{
		ID:             uuid.New(),
		Name:           "Chez Test",
		LoyaltyReward:  "Free dessert",
		StampsRequired: required,
		QRToken:        &token,
		QRExpiresAt:    &expiresAt,
	}
}

func testCard(restaurantID uuid.UUID) *model.ClientCard {
	return &model.ClientCard{
		ID:           uuid.New(),
		ClientID:     uuid.New(),
		RestaurantID: restaurantID,
		ReferralCode: "ABC123",
	}
}

func TestApplyScan_StampThenRewardCycle(t *testing.T) {
	now := time.Now().UTC()
	resto := testRestaurant("t1", now.Add(time.Hour), 3)
	card := testCard(resto.ID)

	result, err := ApplyScan(card, resto, "t1", now)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if result.Outcome != OutcomeStampAdded || result.Stamps != 1 {
		t.Fatalf("expected stamp-added with 1 stamp, got %s/%d", result.Outcome, result.Stamps)
	}

	if _, err := ApplyScan(card, resto, "t1", now); !errors.Is(err, ErrDuplicateScan) {
		t.Fatalf("expected ErrDuplicateScan on replay, got %v", err)
	}
	if card.Stamps != 1 {
		t.Fatalf("replay must not change stamps, got %d", card.Stamps)
	}

	token2 := "t2"
	resto.QRToken = &token2
	result, err = ApplyScan(card, resto, "t2", now)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if result.Stamps != 2 {
		t.Fatalf("expected 2 stamps, got %d", result.Stamps)
	}

	if _, err := ApplyScan(card, resto, "t2", now); !errors.Is(err, ErrDuplicateScan) {
		t.Fatalf("expected ErrDuplicateScan on second replay, got %v", err)
	}

	token3 := "t3"
	resto.QRToken = &token3
	result, err = ApplyScan(card, resto, "t3", now)
	if err != nil {
		t.Fatalf("third scan: %v", err)
	}
	if result.Outcome != OutcomeRewardUnlocked {
		t.Fatalf("expected reward-unlocked, got %s", result.Outcome)
	}
	if result.Reward != "Free dessert" {
		t.Fatalf("expected loyalty reward text, got %q", result.Reward)
	}
	if card.Stamps != 0 {
		t.Fatalf("reward must reset stamps to 0, got %d", card.Stamps)
	}
}

func TestApplyScan_ExpiredToken(t *testing.T) {
	now := time.Now().UTC()
	resto := testRestaurant("t1", now.Add(-time.Minute), 10)
	card := testCard(resto.ID)

	_, err := ApplyScan(card, resto, "t1", now)
	if !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
	if card.Stamps != 0 || len(card.ScannedTokens) != 0 {
		t.Fatalf("rejected scan must not mutate the card: %+v", card)
	}
}

func TestApplyScan_WrongToken(t *testing.T) {
	now := time.Now().UTC()
	resto := testRestaurant("t1", now.Add(time.Hour), 10)
	card := testCard(resto.ID)

	if _, err := ApplyScan(card, resto, "stale", now); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestApplyScan_NilRestaurant(t *testing.T) {
	card := testCard(uuid.New())
	if _, err := ApplyScan(card, nil, "t1", time.Now()); !errors.Is(err, ErrUnknownRestaurant) {
		t.Fatalf("expected ErrUnknownRestaurant, got %v", err)
	}
}

func TestApplyScan_ActivatesReferralOnce(t *testing.T) {
	now := time.Now().UTC()
	resto := testRestaurant("t1", now.Add(time.Hour), 10)
	card := testCard(resto.ID)

	referrerID := uuid.New()
	card.Referrer = &model.ReferrerInfo{
		Code:         "XYZ789",
		Reward:       "Free drink",
		ReferrerID:   referrerID,
		ReferrerName: "Alice",
	}

	result, err := ApplyScan(card, resto, "t1", now)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Bonus == nil {
		t.Fatal("expected referral bonus on first scan")
	}
	if result.Bonus.ReferrerID != referrerID || result.Bonus.Reward != "Free drink" {
		t.Fatalf("bonus must carry the snapshotted reward, got %+v", result.Bonus)
	}
	if card.Referrer != nil {
		t.Fatal("referrer info must be cleared after activation")
	}

	token2 := "t2"
	resto.QRToken = &token2
	result, err = ApplyScan(card, resto, "t2", now)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if result.Bonus != nil {
		t.Fatal("referral bonus must fire at most once")
	}
}

func TestApplyScan_RewardAndReferralSameScan(t *testing.T) {
	now := time.Now().UTC()
	resto := testRestaurant("t1", now.Add(time.Hour), 1)
	card := testCard(resto.ID)
	card.Referrer = &model.ReferrerInfo{
		Code:       "XYZ789",
		Reward:     "Free drink",
		ReferrerID: uuid.New(),
	}

	result, err := ApplyScan(card, resto, "t1", now)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Outcome != OutcomeRewardUnlocked {
		t.Fatalf("expected reward-unlocked, got %s", result.Outcome)
	}
	if result.Bonus == nil {
		t.Fatal("expected referral bonus alongside reward unlock")
	}
}

func TestValidateToken_NilExpiryNeverExpires(t *testing.T) {
	token := "t1"
	if err := ValidateToken(&token, nil, "t1", time.Now()); err != nil {
		t.Fatalf("nil expiry must accept a matching token: %v", err)
	}
}

func TestValidateToken_MissingToken(t *testing.T) {
	if err := ValidateToken(nil, nil, "t1", time.Now()); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
	empty := ""
	if err := ValidateToken(&empty, nil, "", time.Now()); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken for empty token, got %v", err)
	}
}
