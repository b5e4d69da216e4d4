package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user account. Accounts are created and mutated by the
// identity service; this service only reads them.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserProfile is the public subset of a user account embedded in listings.
type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatarUrl"`
}

// AuthUser is the caller identity injected by the auth middleware.
type AuthUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}
