package ledger

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

const stampPayloadType = "stamp"

// StampPayload is the JSON document embedded in a restaurant's QR image.
// It carries no validity of its own; the token is checked against the
// restaurant's current value and expiry at scan time.
type StampPayload struct {
	Type         string    `json:"type"`
	RestaurantID uuid.UUID `json:"restoId"`
	Token        string    `json:"value"`
}

func EncodeStampPayload(restaurantID uuid.UUID, token string) (string, error) {
	raw, err := json.Marshal(StampPayload{
		Type:         stampPayloadType,
		RestaurantID: restaurantID,
		Token:        token,
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ParseStampPayload decodes a scanned QR payload. Malformed JSON, an
// unrecognized type, or a missing field all yield ErrInvalidQRCode.
func ParseStampPayload(raw string) (StampPayload, error) {
	var payload StampPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return StampPayload{}, ErrInvalidQRCode
	}
	if payload.Type != stampPayloadType {
		return StampPayload{}, ErrInvalidQRCode
	}
	if payload.RestaurantID == uuid.Nil || strings.TrimSpace(payload.Token) == "" {
		return StampPayload{}, ErrInvalidQRCode
	}
	return payload, nil
}
