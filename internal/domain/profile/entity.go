package profile

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// Profile represents the profiles table: every registered account of the
// directory. All profiles are newsletter-eligible for the "members" audience
// unless their email is independently suppressed.
type Profile struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	DisplayName  string
	Role         string // ADMIN, MEMBER
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Profile) TableName() string {
	return "profiles"
}

func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
