package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stampjoy/internal/model"
	"stampjoy/internal/repository"
)

// ClientProfile is the client's own view: their record, every loyalty
// card, and the referral rewards waiting for them.
type ClientProfile struct {
	Client         *model.Client                  `json:"client"`
	Cards          []*model.ClientCard            `json:"cards"`
	PendingRewards []*model.PendingReferralReward `json:"pending_rewards"`
}

type RegisterClientRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type ClientService struct {
	clientRepo repository.ClientRepository
	cardRepo   repository.CardRepository
	rewardRepo repository.PendingRewardRepository
	auditRepo  repository.AuditRepository
	logger     *zap.Logger
}

func NewClientService(
	clientRepo repository.ClientRepository,
	cardRepo repository.CardRepository,
	rewardRepo repository.PendingRewardRepository,
	auditRepo repository.AuditRepository,
	logger *zap.Logger,
) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ClientService{
		clientRepo: clientRepo,
		cardRepo:   cardRepo,
		rewardRepo: rewardRepo,
		auditRepo:  auditRepo,
		logger:     logger,
	}
}

// Register creates the client record for an identity issued by the
// external provider. The record id matches the identity subject so the
// two stay linked.
func (s *ClientService) Register(ctx context.Context, identity model.Identity, req RegisterClientRequest) (*model.Client, error) {
	if !identity.IsClient() {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(req.Name)
	contact := strings.TrimSpace(req.Contact)
	if name == "" || contact == "" {
		return nil, ErrInvalidInput
	}

	client := &model.Client{
		ID:      identity.ID,
		Name:    name,
		Contact: contact,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) Profile(ctx context.Context, identity model.Identity) (*ClientProfile, error) {
	if !identity.IsClient() {
		return nil, ErrForbidden
	}

	client, err := s.clientRepo.FindByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	cards, err := s.cardRepo.ListByClient(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	rewards, err := s.rewardRepo.ListByClient(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	return &ClientProfile{
		Client:         client,
		Cards:          cards,
		PendingRewards: rewards,
	}, nil
}

func (s *ClientService) PendingRewards(ctx context.Context, identity model.Identity) ([]*model.PendingReferralReward, error) {
	if !identity.IsClient() {
		return nil, ErrForbidden
	}
	return s.rewardRepo.ListByClient(ctx, identity.ID)
}

func (s *ClientService) Update(ctx context.Context, identity model.Identity, req RegisterClientRequest) (*model.Client, error) {
	if !identity.IsClient() {
		return nil, ErrForbidden
	}

	client, err := s.clientRepo.FindByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		client.Name = name
	}
	if contact := strings.TrimSpace(req.Contact); contact != "" {
		client.Contact = contact
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// AcknowledgeReward removes a pending referral reward once the referrer
// has used or dismissed it.
func (s *ClientService) AcknowledgeReward(ctx context.Context, identity model.Identity, rewardID uuid.UUID) error {
	if !identity.IsClient() {
		return ErrForbidden
	}

	err := s.rewardRepo.Delete(ctx, rewardID, identity.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.ErrNotFound
	}
	if err != nil {
		return err
	}

	if s.auditRepo != nil {
		actorID := identity.ID
		resourceID := rewardID.String()
		_ = s.auditRepo.Create(ctx, &model.AuditLog{
			ActorID:      &actorID,
			Action:       "referral_reward.acknowledge",
			ResourceType: strPtr("pending_referral_reward"),
			ResourceID:   &resourceID,
		})
	}
	return nil
}

// Delete removes the client and their cards. Cards that reference this
// client as a referrer elsewhere keep their dangling back-reference;
// scans tolerate it.
func (s *ClientService) Delete(ctx context.Context, identity model.Identity) error {
	if !identity.IsClient() {
		return ErrForbidden
	}
	return s.clientRepo.Delete(ctx, identity.ID)
}
