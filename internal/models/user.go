package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleUser      Role = "user"
	RoleAuthority Role = "authority"
)

// NormalizeRole maps legacy role strings still sent by old clients onto the
// closed Role set. "student" and "faculty" were member roles in an earlier
// schema and collapse to "user".
func NormalizeRole(raw string) (Role, bool) {
	switch raw {
	case "user", "student", "faculty":
		return RoleUser, true
	case "authority":
		return RoleAuthority, true
	default:
		return "", false
	}
}

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email" validate:"required,email"`
	Password   string             `bson:"password,omitempty" json:"-"`
	Role       Role               `bson:"role" json:"role"`
	Department string             `bson:"department,omitempty" json:"department,omitempty"`
	Categories []Category         `bson:"categories,omitempty" json:"categories,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// HandlesCategory reports whether an authority user is assigned the given
// category. Always false for non-authority users and for authorities with no
// categories assigned.
func (u *User) HandlesCategory(cat Category) bool {
	if u.Role != RoleAuthority {
		return false
	}
	for _, c := range u.Categories {
		if c == cat {
			return true
		}
	}
	return false
}
