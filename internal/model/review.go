package model

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RestaurantID uuid.UUID `db:"restaurant_id" json:"restaurant_id"`
	Author       string    `db:"author" json:"author"`
	Rating       int       `db:"rating" json:"rating"`
	Body         string    `db:"body" json:"body"`
	Language     string    `db:"language" json:"language"`
	AIResponse   *string   `db:"ai_response" json:"ai_response,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
