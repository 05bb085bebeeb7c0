package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OTPTTL is how long a pending registration stays verifiable. The otps
// collection carries a TTL index on created_at with this expiry; the store's
// background sweep does the purging, not application code.
const OTPTTL = 600 * time.Second

// PendingUser is the registration payload staged alongside an OTP code. The
// password is hashed before staging, never stored in the clear.
type PendingUser struct {
	Name         string     `bson:"name" json:"name"`
	Email        string     `bson:"email" json:"email"`
	PasswordHash string     `bson:"password_hash" json:"-"`
	Role         Role       `bson:"role" json:"role"`
	Department   string     `bson:"department,omitempty" json:"department,omitempty"`
	Categories   []Category `bson:"categories,omitempty" json:"categories,omitempty"`
}

// OTP is an ephemeral registration record. At most one live record exists per
// email; issuing a new code deletes prior ones.
type OTP struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Code      string             `bson:"code" json:"-"`
	UserData  PendingUser        `bson:"user_data" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
