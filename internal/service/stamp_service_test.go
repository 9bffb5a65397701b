package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stampjoy/internal/ledger"
	"stampjoy/internal/model"
	"stampjoy/internal/repository"
)

func testIdentity(role model.Role) model.Identity {
	return model.Identity{ID: uuid.New(), Role: role, Name: "Tester"}
}

func newScanFixture(t *testing.T) (*StampService, *model.Restaurant, model.Identity, *fakeRestaurantRepo) {
	t.Helper()

	token := "tok-1"
	expiresAt := time.Now().UTC().Add(time.Hour)
	restaurant := &model.Restaurant{
		ID:             uuid.New(),
		Name:           "Chez Test",
		LoyaltyReward:  "Free dessert",
		StampsRequired: 3,
		QRToken:        &token,
		QRExpiresAt:    &expiresAt,
	}
	identity := testIdentity(model.RoleClient)
	client := &model.Client{ID: identity.ID, Name: "Tester"}

	restaurantRepo := newFakeRestaurantRepo(restaurant)
	svc := NewStampService(
		restaurantRepo,
		newFakeClientRepo(client),
		newFakeCardRepo(),
		&fakeRewardRepo{},
		nil,
		nil,
		nil,
		nil,
		zap.NewNop(),
	)
	return svc, restaurant, identity, restaurantRepo
}

func validPayload(t *testing.T, restaurantID uuid.UUID, token string) string {
	t.Helper()
	raw, err := ledger.EncodeStampPayload(restaurantID, token)
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	return raw
}

func TestApplyScan_RejectsNonClient(t *testing.T) {
	svc, restaurant, _, _ := newScanFixture(t)

	_, err := svc.ApplyScan(context.Background(), testIdentity(model.RoleRestaurant), validPayload(t, restaurant.ID, "tok-1"))
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestApplyScan_InvalidPayload(t *testing.T) {
	svc, _, identity, _ := newScanFixture(t)

	_, err := svc.ApplyScan(context.Background(), identity, "not a qr payload")
	if !errors.Is(err, ledger.ErrInvalidQRCode) {
		t.Fatalf("expected ErrInvalidQRCode, got %v", err)
	}
}

func TestApplyScan_UnknownRestaurant(t *testing.T) {
	svc, _, identity, _ := newScanFixture(t)

	_, err := svc.ApplyScan(context.Background(), identity, validPayload(t, uuid.New(), "tok-1"))
	if !errors.Is(err, ledger.ErrUnknownRestaurant) {
		t.Fatalf("expected ErrUnknownRestaurant, got %v", err)
	}
}

func TestApplyScan_StampAddedIncrementsStampsGiven(t *testing.T) {
	svc, restaurant, identity, restaurantRepo := newScanFixture(t)
	svc.scanTxFn = func(context.Context, *model.Restaurant, *model.Client, string) (*ledger.ScanResult, error) {
		return &ledger.ScanResult{Outcome: ledger.OutcomeStampAdded, Stamps: 1, Required: 3}, nil
	}

	result, err := svc.ApplyScan(context.Background(), identity, validPayload(t, restaurant.ID, "tok-1"))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Outcome != ledger.OutcomeStampAdded {
		t.Fatalf("expected stamp-added, got %s", result.Outcome)
	}

	if len(restaurantRepo.incrementCalls) != 1 {
		t.Fatalf("expected one counter increment, got %d", len(restaurantRepo.incrementCalls))
	}
	call := restaurantRepo.incrementCalls[0]
	if call.stamps != 1 || call.rewards != 0 || call.referrals != 0 {
		t.Fatalf("unexpected counter deltas: %+v", call)
	}
}

func TestApplyScan_RewardUnlockCountsRewardAndReferral(t *testing.T) {
	svc, restaurant, identity, restaurantRepo := newScanFixture(t)
	svc.scanTxFn = func(context.Context, *model.Restaurant, *model.Client, string) (*ledger.ScanResult, error) {
		return &ledger.ScanResult{
			Outcome:  ledger.OutcomeRewardUnlocked,
			Stamps:   0,
			Required: 3,
			Reward:   "Free dessert",
			Bonus: &ledger.ReferralBonus{
				ReferrerID: uuid.New(),
				Reward:     "Free drink",
			},
		}, nil
	}

	if _, err := svc.ApplyScan(context.Background(), identity, validPayload(t, restaurant.ID, "tok-1")); err != nil {
		t.Fatalf("scan: %v", err)
	}

	call := restaurantRepo.incrementCalls[0]
	if call.stamps != 0 || call.rewards != 1 || call.referrals != 1 {
		t.Fatalf("unexpected counter deltas: %+v", call)
	}
}

func TestApplyScan_CounterFailureIsSwallowed(t *testing.T) {
	svc, restaurant, identity, restaurantRepo := newScanFixture(t)
	restaurantRepo.incrementErr = errors.New("counter table on fire")
	svc.scanTxFn = func(context.Context, *model.Restaurant, *model.Client, string) (*ledger.ScanResult, error) {
		return &ledger.ScanResult{Outcome: ledger.OutcomeStampAdded, Stamps: 1, Required: 3}, nil
	}

	if _, err := svc.ApplyScan(context.Background(), identity, validPayload(t, restaurant.ID, "tok-1")); err != nil {
		t.Fatalf("counter failure must not fail the scan: %v", err)
	}
}

func TestApplyScan_BusinessErrorNotRetried(t *testing.T) {
	svc, restaurant, identity, _ := newScanFixture(t)

	attempts := 0
	svc.scanTxFn = func(context.Context, *model.Restaurant, *model.Client, string) (*ledger.ScanResult, error) {
		attempts++
		return nil, ledger.ErrDuplicateScan
	}

	_, err := svc.ApplyScan(context.Background(), identity, validPayload(t, restaurant.ID, "tok-1"))
	if !errors.Is(err, ledger.ErrDuplicateScan) {
		t.Fatalf("expected ErrDuplicateScan, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("business rejections must not retry, got %d attempts", attempts)
	}
}

func TestApplyScan_ConflictRetriesThenTransient(t *testing.T) {
	svc, restaurant, identity, _ := newScanFixture(t)

	attempts := 0
	svc.scanTxFn = func(context.Context, *model.Restaurant, *model.Client, string) (*ledger.ScanResult, error) {
		attempts++
		return nil, repository.ErrConflict
	}

	_, err := svc.ApplyScan(context.Background(), identity, validPayload(t, restaurant.ID, "tok-1"))
	if !errors.Is(err, ErrTransientConflict) {
		t.Fatalf("expected ErrTransientConflict, got %v", err)
	}
	if attempts != scanMaxAttempts {
		t.Fatalf("expected %d attempts, got %d", scanMaxAttempts, attempts)
	}
}

func TestApplyScan_ConflictThenSuccess(t *testing.T) {
	svc, restaurant, identity, _ := newScanFixture(t)

	attempts := 0
	svc.scanTxFn = func(context.Context, *model.Restaurant, *model.Client, string) (*ledger.ScanResult, error) {
		attempts++
		if attempts == 1 {
			return nil, repository.ErrConflict
		}
		return &ledger.ScanResult{Outcome: ledger.OutcomeStampAdded, Stamps: 2, Required: 3}, nil
	}

	result, err := svc.ApplyScan(context.Background(), identity, validPayload(t, restaurant.ID, "tok-1"))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Stamps != 2 || attempts != 2 {
		t.Fatalf("expected success on second attempt, got stamps=%d attempts=%d", result.Stamps, attempts)
	}
}
