package model

import "github.com/google/uuid"

type Role string

const (
	RoleClient     Role = "client"
	RoleRestaurant Role = "restaurant"
)

// Identity is the caller resolved from the external identity provider's token.
// It is passed explicitly into every operation, never read from ambient state.
type Identity struct {
	ID   uuid.UUID
	Role Role
	Name string
}

func (i Identity) IsClient() bool     { return i.Role == RoleClient }
func (i Identity) IsRestaurant() bool { return i.Role == RoleRestaurant }
