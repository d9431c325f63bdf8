package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account in the system, either the signed-in user
// or a member of their friend circle
type User struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	AvatarPath  string
	CreatedAt   time.Time
}

// DisplayNameOrUsername returns the display name, falling back to the
// username when no display name has been set
func (u *User) DisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
