package models

import (
	"time"
)

type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleAdmin
}

type Account struct {
	AccountID    string    `json:"id" db:"account_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	DisplayName  string    `json:"displayName" db:"display_name"`
	AvatarURL    *string   `json:"avatarUrl" db:"avatar_url"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// PublicAccount is what other callers may see of an account.
type PublicAccount struct {
	AccountID   string  `json:"id"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

func (a *Account) Public() PublicAccount {
	return PublicAccount{
		AccountID:   a.AccountID,
		DisplayName: a.DisplayName,
		AvatarURL:   a.AvatarURL,
	}
}

// ViewFor returns the full account for admins and the public view for everyone else.
func (a *Account) ViewFor(role Role) any {
	if role == RoleAdmin {
		return a
	}
	return a.Public()
}

type Listing struct {
	ListingID   string         `json:"id" db:"listing_id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	ImageURL    *string        `json:"imageUrl" db:"image_url"`
	OwnerID     *string        `json:"ownerId" db:"owner_id"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
	Owner       *PublicAccount `json:"owner,omitempty" db:"-"`
}

// Identity is the verified caller of a request.
type Identity struct {
	SubjectID string
	Role      Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
