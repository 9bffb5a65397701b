package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"stampjoy/internal/model"
	"stampjoy/internal/repository"
)

type fakeRestaurantRepo struct {
	restaurants map[uuid.UUID]*model.Restaurant

	incrementCalls []counterCall
	incrementErr   error
}

type counterCall struct {
	stamps, rewards, referrals int64
}

func newFakeRestaurantRepo(restaurants ...*model.Restaurant) *fakeRestaurantRepo {
	repo := &fakeRestaurantRepo{restaurants: make(map[uuid.UUID]*model.Restaurant)}
	for _, r := range restaurants {
		repo.restaurants[r.ID] = r
	}
	return repo
}

func (f *fakeRestaurantRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Restaurant, error) {
	if r, ok := f.restaurants[id]; ok {
		return r, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRestaurantRepo) FindByEmail(_ context.Context, email string) (*model.Restaurant, error) {
	for _, r := range f.restaurants {
		if r.Email != nil && *r.Email == email {
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRestaurantRepo) Create(_ context.Context, r *model.Restaurant) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	f.restaurants[r.ID] = r
	return nil
}

func (f *fakeRestaurantRepo) Update(_ context.Context, r *model.Restaurant) error {
	if _, ok := f.restaurants[r.ID]; !ok {
		return repository.ErrNotFound
	}
	f.restaurants[r.ID] = r
	return nil
}

func (f *fakeRestaurantRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.restaurants[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.restaurants, id)
	return nil
}

func (f *fakeRestaurantRepo) UpdateQRToken(_ context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	r, ok := f.restaurants[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.QRToken = &token
	r.QRExpiresAt = &expiresAt
	return nil
}

func (f *fakeRestaurantRepo) IncrementCounters(_ context.Context, id uuid.UUID, stamps, rewards, referrals int64) error {
	f.incrementCalls = append(f.incrementCalls, counterCall{stamps, rewards, referrals})
	if f.incrementErr != nil {
		return f.incrementErr
	}
	r, ok := f.restaurants[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.StampsGiven += stamps
	r.RewardsGiven += rewards
	r.ReferralsCount += referrals
	return nil
}

func (f *fakeRestaurantRepo) ResetCounters(_ context.Context, id uuid.UUID) error {
	r, ok := f.restaurants[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.StampsGiven, r.RewardsGiven, r.ReferralsCount = 0, 0, 0
	return nil
}

func (f *fakeRestaurantRepo) ListExpiredTokens(_ context.Context, now time.Time, _ int32) ([]*model.Restaurant, error) {
	out := make([]*model.Restaurant, 0)
	for _, r := range f.restaurants {
		if r.QRToken != nil && r.QRExpiresAt != nil && !now.Before(*r.QRExpiresAt) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRestaurantRepo) List(_ context.Context, p repository.Pagination) ([]*model.Restaurant, error) {
	out := make([]*model.Restaurant, 0, len(f.restaurants))
	for _, r := range f.restaurants {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	start := int(p.Offset)
	if start > len(out) {
		return nil, nil
	}
	end := len(out)
	if p.Limit > 0 && start+int(p.Limit) < end {
		end = start + int(p.Limit)
	}
	return out[start:end], nil
}

func (f *fakeRestaurantRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.restaurants)), nil
}

type fakeClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

func newFakeClientRepo(clients ...*model.Client) *fakeClientRepo {
	repo := &fakeClientRepo{clients: make(map[uuid.UUID]*model.Client)}
	for _, c := range clients {
		repo.clients[c.ID] = c
	}
	return repo
}

func (f *fakeClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	if c, ok := f.clients[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeClientRepo) Create(_ context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.clients[c.ID] = c
	return nil
}

func (f *fakeClientRepo) Update(_ context.Context, c *model.Client) error {
	if _, ok := f.clients[c.ID]; !ok {
		return repository.ErrNotFound
	}
	f.clients[c.ID] = c
	return nil
}

func (f *fakeClientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.clients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.clients, id)
	return nil
}

type fakeCardRepo struct {
	cards []*model.ClientCard

	// updateReferrerConflicts makes the next N UpdateReferrer calls lose
	// the optimistic version check, as a concurrent writer would cause.
	updateReferrerConflicts int
	updateReferrerErr       error
}

func newFakeCardRepo(cards ...*model.ClientCard) *fakeCardRepo {
	return &fakeCardRepo{cards: cards}
}

func (f *fakeCardRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ClientCard, error) {
	for _, c := range f.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCardRepo) FindByClientAndRestaurant(_ context.Context, clientID, restaurantID uuid.UUID) (*model.ClientCard, error) {
	for _, c := range f.cards {
		if c.ClientID == clientID && c.RestaurantID == restaurantID {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCardRepo) FindByClientAndRestaurantForUpdate(ctx context.Context, _ pgx.Tx, clientID, restaurantID uuid.UUID) (*model.ClientCard, error) {
	return f.FindByClientAndRestaurant(ctx, clientID, restaurantID)
}

func (f *fakeCardRepo) FindByReferralCode(_ context.Context, restaurantID uuid.UUID, code string) (*model.ClientCard, error) {
	for _, c := range f.cards {
		if c.RestaurantID == restaurantID && c.ReferralCode == code {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCardRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]*model.ClientCard, error) {
	out := make([]*model.ClientCard, 0)
	for _, c := range f.cards {
		if c.ClientID == clientID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCardRepo) Create(_ context.Context, card *model.ClientCard) error {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	if card.Version == 0 {
		card.Version = 1
	}
	f.cards = append(f.cards, card)
	return nil
}

func (f *fakeCardRepo) CreateTx(ctx context.Context, _ pgx.Tx, card *model.ClientCard) error {
	return f.Create(ctx, card)
}

func (f *fakeCardRepo) UpdateTx(_ context.Context, _ pgx.Tx, card *model.ClientCard) error {
	card.Version++
	return nil
}

func (f *fakeCardRepo) UpdateReferrer(_ context.Context, card *model.ClientCard) error {
	if f.updateReferrerConflicts > 0 {
		f.updateReferrerConflicts--
		return repository.ErrConflict
	}
	if f.updateReferrerErr != nil {
		return f.updateReferrerErr
	}
	card.Version++
	return nil
}

func (f *fakeCardRepo) ReferralCodeExists(_ context.Context, restaurantID uuid.UUID, code string) (bool, error) {
	for _, c := range f.cards {
		if c.RestaurantID == restaurantID && c.ReferralCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCardRepo) CountByRestaurant(_ context.Context, restaurantID uuid.UUID) (int64, error) {
	var n int64
	for _, c := range f.cards {
		if c.RestaurantID == restaurantID {
			n++
		}
	}
	return n, nil
}

func (f *fakeCardRepo) CountClients(_ context.Context) (int64, error) {
	seen := make(map[uuid.UUID]struct{})
	for _, c := range f.cards {
		seen[c.ClientID] = struct{}{}
	}
	return int64(len(seen)), nil
}

type fakeRewardRepo struct {
	rewards []*model.PendingReferralReward
}

func (f *fakeRewardRepo) Create(_ context.Context, reward *model.PendingReferralReward) error {
	if reward.ID == uuid.Nil {
		reward.ID = uuid.New()
	}
	f.rewards = append(f.rewards, reward)
	return nil
}

func (f *fakeRewardRepo) CreateTx(ctx context.Context, _ pgx.Tx, reward *model.PendingReferralReward) error {
	return f.Create(ctx, reward)
}

func (f *fakeRewardRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]*model.PendingReferralReward, error) {
	out := make([]*model.PendingReferralReward, 0)
	for _, r := range f.rewards {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRewardRepo) Delete(_ context.Context, id, clientID uuid.UUID) error {
	for i, r := range f.rewards {
		if r.ID == id && r.ClientID == clientID {
			f.rewards = append(f.rewards[:i], f.rewards[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

var (
	_ repository.RestaurantRepository   = (*fakeRestaurantRepo)(nil)
	_ repository.ClientRepository      = (*fakeClientRepo)(nil)
	_ repository.CardRepository        = (*fakeCardRepo)(nil)
	_ repository.PendingRewardRepository = (*fakeRewardRepo)(nil)
)
