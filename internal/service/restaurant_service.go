package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"stampjoy/internal/event"
	"stampjoy/internal/ledger"
	"stampjoy/internal/metrics"
	"stampjoy/internal/model"
	"stampjoy/internal/repository"
	"stampjoy/pkg/qr"
)

// Every restaurant starts with this PIN; the owner must replace it, and
// may do so exactly once.
const defaultPIN = "1234"

var (
	ErrInvalidPIN            = errors.New("invalid pin")
	ErrPINLocked             = errors.New("pin can no longer be changed")
	ErrWeakPIN               = errors.New("pin must differ from the default")
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidStampsRequired = errors.New("stamps required must be at least 1")
)

type RegisterRestaurantRequest struct {
	Name           string  `json:"name"`
	Email          *string `json:"email,omitempty"`
	LoyaltyReward  string  `json:"loyalty_reward"`
	ReferralReward string  `json:"referral_reward"`
}

type UpdateRestaurantConfigRequest struct {
	Name           *string `json:"name,omitempty"`
	LoyaltyReward  *string `json:"loyalty_reward,omitempty"`
	StampsRequired *int    `json:"stamps_required,omitempty"`
	ReferralReward *string `json:"referral_reward,omitempty"`
	ReviewLink     *string `json:"review_link,omitempty"`
	CardImageURL   *string `json:"card_image_url,omitempty"`
	NewPIN         *string `json:"new_pin,omitempty"`
}

type RestaurantStats struct {
	StampsGiven    int64 `json:"stamps_given"`
	RewardsGiven   int64 `json:"rewards_given"`
	ReferralsCount int64 `json:"referrals_count"`
	CardCount      int64 `json:"card_count"`
}

type RestaurantService struct {
	restaurantRepo repository.RestaurantRepository
	cardRepo       repository.CardRepository
	auditRepo      repository.AuditRepository
	bus            *event.Bus
	logger         *zap.Logger

	nowFn func() time.Time
}

func NewRestaurantService(
	restaurantRepo repository.RestaurantRepository,
	cardRepo repository.CardRepository,
	auditRepo repository.AuditRepository,
	bus *event.Bus,
	logger *zap.Logger,
) *RestaurantService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RestaurantService{
		restaurantRepo: restaurantRepo,
		cardRepo:       cardRepo,
		auditRepo:      auditRepo,
		bus:            bus,
		logger:         logger,
	}
}

func (s *RestaurantService) now() time.Time {
	if s.nowFn != nil {
		return s.nowFn()
	}
	return time.Now().UTC()
}

func (s *RestaurantService) Register(ctx context.Context, identity model.Identity, req RegisterRestaurantRequest) (*model.Restaurant, error) {
	if !identity.IsRestaurant() {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(identity.Name)
	}
	if name == "" {
		return nil, ErrInvalidInput
	}

	email := trimStringPtr(req.Email)
	if email != nil {
		if _, err := s.restaurantRepo.FindByEmail(ctx, *email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(defaultPIN), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	token, expiresAt := ledger.NewQRToken(s.now())
	restaurant := &model.Restaurant{
		ID:             identity.ID,
		Name:           name,
		Email:          email,
		LoyaltyReward:  strings.TrimSpace(req.LoyaltyReward),
		StampsRequired: model.DefaultStampsRequired,
		ReferralReward: strings.TrimSpace(req.ReferralReward),
		PINHash:        string(pinHash),
		PINEditable:    true,
		QRToken:        &token,
		QRExpiresAt:    &expiresAt,
	}
	if err := s.restaurantRepo.Create(ctx, restaurant); err != nil {
		return nil, err
	}

	return restaurant, nil
}

func (s *RestaurantService) Get(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ledger.ErrUnknownRestaurant
	}
	return restaurant, err
}

// List returns the public directory of restaurants, used by card and
// referral pickers.
func (s *RestaurantService) List(ctx context.Context, page, pageSize int) ([]*model.Restaurant, int64, error) {
	page, pageSize = normalizePagination(page, pageSize)

	items, err := s.restaurantRepo.List(ctx, repository.Pagination{
		Limit:  int32(pageSize), // #nosec G115 -- bounded by listMaxPageSize.
		Offset: int32((page - 1) * pageSize),
	})
	if err != nil {
		return nil, 0, err
	}

	total, err := s.restaurantRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (s *RestaurantService) UpdateConfig(ctx context.Context, identity model.Identity, req UpdateRestaurantConfigRequest) (*model.Restaurant, error) {
	if !identity.IsRestaurant() {
		return nil, ErrForbidden
	}

	restaurant, err := s.Get(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		restaurant.Name = name
	}
	if req.LoyaltyReward != nil {
		restaurant.LoyaltyReward = strings.TrimSpace(*req.LoyaltyReward)
	}
	if req.StampsRequired != nil {
		if *req.StampsRequired < 1 {
			return nil, ErrInvalidStampsRequired
		}
		restaurant.StampsRequired = *req.StampsRequired
	}
	if req.ReferralReward != nil {
		restaurant.ReferralReward = strings.TrimSpace(*req.ReferralReward)
	}
	if req.ReviewLink != nil {
		restaurant.ReviewLink = strings.TrimSpace(*req.ReviewLink)
	}
	if req.CardImageURL != nil {
		restaurant.CardImageURL = strings.TrimSpace(*req.CardImageURL)
	}

	if req.NewPIN != nil {
		if err := s.applyPINChange(restaurant, strings.TrimSpace(*req.NewPIN)); err != nil {
			return nil, err
		}
	}

	if err := s.restaurantRepo.Update(ctx, restaurant); err != nil {
		return nil, err
	}

	if s.auditRepo != nil {
		actorID := identity.ID
		resourceID := restaurant.ID.String()
		_ = s.auditRepo.Create(ctx, &model.AuditLog{
			ActorID:      &actorID,
			Action:       "restaurant.config_update",
			ResourceType: strPtr("restaurant"),
			ResourceID:   &resourceID,
			NewValue: map[string]interface{}{
				"stamps_required": restaurant.StampsRequired,
				"pin_changed":     req.NewPIN != nil,
			},
			CreatedAt: s.now(),
		})
	}

	return restaurant, nil
}

// applyPINChange enforces the one-shot rule: the PIN can be changed
// exactly once, and never back to the default.
func (s *RestaurantService) applyPINChange(restaurant *model.Restaurant, newPIN string) error {
	if !restaurant.PINEditable {
		return ErrPINLocked
	}
	if len(newPIN) != 4 {
		return ErrInvalidPIN
	}
	for _, r := range newPIN {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	if newPIN == defaultPIN {
		return ErrWeakPIN
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPIN), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	restaurant.PINHash = string(hash)
	restaurant.PINEditable = false
	return nil
}

func (s *RestaurantService) VerifyPIN(ctx context.Context, id uuid.UUID, pin string) error {
	restaurant, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(restaurant.PINHash), []byte(pin)) != nil {
		return ErrInvalidPIN
	}
	return nil
}

// CurrentQR returns the restaurant's live QR payload, rotating first
// when the stored token is missing or already expired.
func (s *RestaurantService) CurrentQR(ctx context.Context, identity model.Identity, id uuid.UUID) (string, time.Time, error) {
	if !identity.IsRestaurant() || identity.ID != id {
		return "", time.Time{}, ErrForbidden
	}

	restaurant, err := s.Get(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.now()
	if restaurant.QRToken == nil || restaurant.QRExpiresAt == nil || !now.Before(*restaurant.QRExpiresAt) {
		if restaurant, err = s.rotate(ctx, restaurant, "auto"); err != nil {
			return "", time.Time{}, err
		}
	}

	payload, err := ledger.EncodeStampPayload(restaurant.ID, *restaurant.QRToken)
	if err != nil {
		return "", time.Time{}, err
	}
	return payload, *restaurant.QRExpiresAt, nil
}

// Rotate issues a fresh token on operator request, invalidating the
// previous one immediately.
func (s *RestaurantService) Rotate(ctx context.Context, identity model.Identity, id uuid.UUID) (*model.Restaurant, error) {
	if !identity.IsRestaurant() || identity.ID != id {
		return nil, ErrForbidden
	}

	restaurant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	restaurant, err = s.rotate(ctx, restaurant, "manual")
	if err != nil {
		return nil, err
	}

	if s.auditRepo != nil {
		actorID := identity.ID
		resourceID := id.String()
		_ = s.auditRepo.Create(ctx, &model.AuditLog{
			ActorID:      &actorID,
			Action:       "restaurant.qr_rotate",
			ResourceType: strPtr("restaurant"),
			ResourceID:   &resourceID,
			CreatedAt:    s.now(),
		})
	}

	return restaurant, nil
}

func (s *RestaurantService) rotate(ctx context.Context, restaurant *model.Restaurant, trigger string) (*model.Restaurant, error) {
	token, expiresAt := ledger.NewQRToken(s.now())
	if err := s.restaurantRepo.UpdateQRToken(ctx, restaurant.ID, token, expiresAt); err != nil {
		return nil, err
	}
	restaurant.QRToken = &token
	restaurant.QRExpiresAt = &expiresAt

	metrics.IncQRRotation(trigger)
	if s.bus != nil {
		s.bus.Publish(event.EventQRRotated, event.QRRotatedPayload{RestaurantID: restaurant.ID})
	}

	return restaurant, nil
}

// RotateExpired sweeps restaurants whose token is past its expiry and
// issues fresh ones. Returns the number of restaurants rotated.
func (s *RestaurantService) RotateExpired(ctx context.Context, limit int32) (int, error) {
	expired, err := s.restaurantRepo.ListExpiredTokens(ctx, s.now(), limit)
	if err != nil {
		return 0, err
	}

	rotated := 0
	for _, restaurant := range expired {
		if _, err := s.rotate(ctx, restaurant, "expired_sweep"); err != nil {
			s.logger.Warn("expired qr rotation failed",
				zap.String("restaurant_id", restaurant.ID.String()),
				zap.Error(err),
			)
			continue
		}
		rotated++
	}

	return rotated, nil
}

// QRImagePNG renders the live payload as a PNG for display or print.
func (s *RestaurantService) QRImagePNG(ctx context.Context, identity model.Identity, id uuid.UUID, size int) ([]byte, error) {
	payload, _, err := s.CurrentQR(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	return qr.EncodePNG(payload, size)
}

func (s *RestaurantService) Stats(ctx context.Context, identity model.Identity, id uuid.UUID) (*RestaurantStats, error) {
	if !identity.IsRestaurant() || identity.ID != id {
		return nil, ErrForbidden
	}

	restaurant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cardCount, err := s.cardRepo.CountByRestaurant(ctx, id)
	if err != nil {
		return nil, err
	}

	return &RestaurantStats{
		StampsGiven:    restaurant.StampsGiven,
		RewardsGiven:   restaurant.RewardsGiven,
		ReferralsCount: restaurant.ReferralsCount,
		CardCount:      cardCount,
	}, nil
}

// ResetStats zeroes the cumulative counters. Customer cards are not
// touched.
func (s *RestaurantService) ResetStats(ctx context.Context, identity model.Identity, id uuid.UUID, pin string) error {
	if !identity.IsRestaurant() || identity.ID != id {
		return ErrForbidden
	}
	if err := s.VerifyPIN(ctx, id, pin); err != nil {
		return err
	}

	if err := s.restaurantRepo.ResetCounters(ctx, id); err != nil {
		return err
	}

	if s.auditRepo != nil {
		actorID := identity.ID
		resourceID := id.String()
		_ = s.auditRepo.Create(ctx, &model.AuditLog{
			ActorID:      &actorID,
			Action:       "restaurant.stats_reset",
			ResourceType: strPtr("restaurant"),
			ResourceID:   &resourceID,
			CreatedAt:    s.now(),
		})
	}

	return nil
}

func (s *RestaurantService) Delete(ctx context.Context, identity model.Identity, id uuid.UUID, pin string) error {
	if !identity.IsRestaurant() || identity.ID != id {
		return ErrForbidden
	}
	if err := s.VerifyPIN(ctx, id, pin); err != nil {
		return err
	}
	return s.restaurantRepo.Delete(ctx, id)
}
