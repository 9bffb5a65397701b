package event

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	EventStampAdded        = "stamp.added"
	EventRewardUnlocked    = "reward.unlocked"
	EventReferralActivated = "referral.bonus.activated"
	EventQRRotated         = "qr.rotated"
)

type StampAddedPayload struct {
	ClientID     uuid.UUID `json:"client_id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Stamps       int       `json:"stamps"`
	Required     int       `json:"required"`
}

type RewardUnlockedPayload struct {
	ClientID     uuid.UUID `json:"client_id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Reward       string    `json:"reward"`
}

type ReferralActivatedPayload struct {
	ReferrerID         uuid.UUID `json:"referrer_id"`
	RestaurantID       uuid.UUID `json:"restaurant_id"`
	Reward             string    `json:"reward"`
	ReferredClientName string    `json:"referred_client_name"`
}

type QRRotatedPayload struct {
	RestaurantID uuid.UUID `json:"restaurant_id"`
}

type Bus struct {
	handlers sync.Map
	mu       sync.Mutex
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(event string, handler func(payload any)) {
	if b == nil || handler == nil {
		return
	}

	eventName := strings.TrimSpace(event)
	if eventName == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := make([]func(payload any), 0, 1)
	if current, ok := b.handlers.Load(eventName); ok {
		if casted, valid := current.([]func(payload any)); valid {
			handlers = append(handlers, casted...)
		}
	}
	handlers = append(handlers, handler)
	b.handlers.Store(eventName, handlers)
}

func (b *Bus) Publish(event string, payload any) {
	if b == nil {
		return
	}

	eventName := strings.TrimSpace(event)
	if eventName == "" {
		return
	}

	current, ok := b.handlers.Load(eventName)
	if !ok {
		return
	}

	handlers, ok := current.([]func(payload any))
	if !ok || len(handlers) == 0 {
		return
	}

	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		go handler(payload)
	}
}
