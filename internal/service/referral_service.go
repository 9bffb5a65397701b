package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stampjoy/internal/ledger"
	"stampjoy/internal/model"
	"stampjoy/internal/repository"
)

// chainWalkFallbackBound caps the ancestor walk when the client count
// cannot be determined.
const chainWalkFallbackBound = 10000

// ReferralService binds referral codes to cards. Activation of the
// bound bonus happens later, during the referred client's next scan.
type ReferralService struct {
	restaurantRepo repository.RestaurantRepository
	clientRepo     repository.ClientRepository
	cardRepo       repository.CardRepository
	auditRepo      repository.AuditRepository
	logger         *zap.Logger
}

func NewReferralService(
	restaurantRepo repository.RestaurantRepository,
	clientRepo repository.ClientRepository,
	cardRepo repository.CardRepository,
	auditRepo repository.AuditRepository,
	logger *zap.Logger,
) *ReferralService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ReferralService{
		restaurantRepo: restaurantRepo,
		clientRepo:     clientRepo,
		cardRepo:       cardRepo,
		auditRepo:      auditRepo,
		logger:         logger,
	}
}

// Bind attaches the owner of code as referrer on the caller's card for
// restaurantID. The promised reward text is snapshotted now; later
// configuration edits do not change it.
func (s *ReferralService) Bind(ctx context.Context, identity model.Identity, restaurantID uuid.UUID, code string) (*model.ClientCard, error) {
	if !identity.IsClient() {
		return nil, ErrForbidden
	}

	normalized := ledger.NormalizeReferralCode(code)
	if normalized == "" {
		return nil, ErrInvalidInput
	}

	restaurant, err := s.restaurantRepo.FindByID(ctx, restaurantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ledger.ErrUnknownRestaurant
	}
	if err != nil {
		return nil, err
	}

	// Validate against the existing card, if any, without creating one.
	// A bind rejected below must not leave a fresh card behind.
	existing, err := s.cardRepo.FindByClientAndRestaurant(ctx, identity.ID, restaurantID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Referrer != nil {
		return nil, ledger.ErrAlreadyReferred
	}

	referrerCard, err := s.cardRepo.FindByReferralCode(ctx, restaurantID, normalized)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ledger.ErrUnknownCode
	}
	if err != nil {
		return nil, err
	}
	if referrerCard.ClientID == identity.ID {
		return nil, ledger.ErrSelfReferral
	}

	if err := s.checkChain(ctx, referrerCard.ClientID, identity.ID, restaurantID); err != nil {
		return nil, err
	}

	referrerName := ""
	referrer, err := s.clientRepo.FindByID(ctx, referrerCard.ClientID)
	switch {
	case err == nil:
		referrerName = referrer.Name
	case errors.Is(err, repository.ErrNotFound):
		// Referrer record already gone; the code still works, the
		// bonus will just carry no display name.
	default:
		return nil, err
	}

	// A version conflict here may just be a concurrent scan moving the
	// card, so re-read and re-apply instead of mapping every conflict to
	// an already-made binding. Only a referrer visible after a fresh read
	// means another bind actually won.
	var card *model.ClientCard
	err = withConflictRetry(ctx, scanMaxAttempts, func(ctx context.Context) error {
		current, err := s.ensureCard(ctx, identity.ID, restaurantID)
		if err != nil {
			return err
		}
		if current.Referrer != nil {
			return ledger.ErrAlreadyReferred
		}
		if err := ledger.BindReferrer(current, referrerCard, referrerName, restaurant.ReferralReward); err != nil {
			return err
		}
		if err := s.cardRepo.UpdateReferrer(ctx, current); err != nil {
			// Keep the in-memory card consistent with storage: the
			// binding did not happen.
			current.Referrer = nil
			return err
		}
		card = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.auditRepo != nil {
		actorID := identity.ID
		resourceID := restaurantID.String()
		_ = s.auditRepo.Create(ctx, &model.AuditLog{
			ActorID:      &actorID,
			Action:       "referral.bind",
			ResourceType: strPtr("restaurant"),
			ResourceID:   &resourceID,
			NewValue: map[string]interface{}{
				"code":        normalized,
				"referrer_id": referrerCard.ClientID.String(),
			},
		})
	}

	return card, nil
}

func (s *ReferralService) ensureCard(ctx context.Context, clientID, restaurantID uuid.UUID) (*model.ClientCard, error) {
	card, err := s.cardRepo.FindByClientAndRestaurant(ctx, clientID, restaurantID)
	if err == nil {
		return card, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	for i := 0; i < referralCodeDrawAttempts; i++ {
		code := ledger.NewReferralCode()
		exists, err := s.cardRepo.ReferralCodeExists(ctx, restaurantID, code)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		card = &model.ClientCard{
			ClientID:     clientID,
			RestaurantID: restaurantID,
			ReferralCode: code,
		}
		if err := s.cardRepo.Create(ctx, card); err != nil {
			return nil, err
		}
		return card, nil
	}
	return nil, errors.New("could not draw a unique referral code")
}

// checkChain walks the sponsorship ancestry bounded by the total client
// count, so a corrupted pre-existing cycle cannot spin forever.
func (s *ReferralService) checkChain(ctx context.Context, referrerID, referredID, restaurantID uuid.UUID) error {
	bound := int64(chainWalkFallbackBound)
	if count, err := s.cardRepo.CountClients(ctx); err == nil && count > 0 {
		bound = count
	}

	parentOf := func(clientID uuid.UUID) (*uuid.UUID, error) {
		card, err := s.cardRepo.FindByClientAndRestaurant(ctx, clientID, restaurantID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if card.Referrer == nil {
			return nil, nil
		}
		id := card.Referrer.ReferrerID
		return &id, nil
	}

	return ledger.CheckReferralChain(referrerID, referredID, int(bound), parentOf)
}
