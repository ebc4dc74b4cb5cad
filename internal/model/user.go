// Package model holds the persistent entities shared by the feature packages.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleUser is a regular account (view, share own experiences)
	RoleUser UserRole = "user"
	// RoleCreator is a content creator (RoleUser plus user listing)
	RoleCreator UserRole = "creator"
	// RoleAdmin is an administrator (everything, including user deletion)
	RoleAdmin UserRole = "admin"
)

// DefaultBio is assigned to accounts that have not written one yet.
const DefaultBio = "I am a new user."

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleCreator, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(s string) (UserRole, bool) {
	role := UserRole(s)
	return role, role.IsValid()
}

// User is a registered account. Password holds the bcrypt hash of the
// account secret; the plaintext never reaches this struct and the field is
// excluded from every JSON shape.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Name       string             `bson:"name" json:"-"`
	Email      string             `bson:"email" json:"-"`
	Password   string             `bson:"password" json:"-"`
	Photo      string             `bson:"photo" json:"-"`
	Bio        string             `bson:"bio" json:"-"`
	Role       UserRole           `bson:"role" json:"-"`
	IsVerified bool               `bson:"isVerified" json:"-"`
	CreatedAt  time.Time          `bson:"createdAt" json:"-"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"-"`
}

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsCreator reports whether the account may use creator endpoints. Admins
// qualify as well.
func (u *User) IsCreator() bool {
	return u.Role == RoleCreator || u.Role == RoleAdmin
}

// PublicUser is the identity projection returned by every endpoint that
// exposes account data. There is exactly one shape; handlers never build
// ad hoc field subsets.
type PublicUser struct {
	ID         string   `json:"_id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Role       UserRole `json:"role"`
	Photo      string   `json:"photo"`
	Bio        string   `json:"bio"`
	IsVerified bool     `json:"isVerified"`
}

// Public returns the identity projection for this user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID.Hex(),
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Photo:      u.Photo,
		Bio:        u.Bio,
		IsVerified: u.IsVerified,
	}
}
