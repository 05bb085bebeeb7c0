package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/arzan03/campus-connect/internal/models"
)

// OTPStore is the MongoDB-backed implementation of models.OTPStore. Expiry
// is delegated to the TTL index on created_at.
type OTPStore struct {
	coll *mongo.Collection
}

func NewOTPStore(db *mongo.Database) *OTPStore {
	return &OTPStore{coll: db.Collection("otps")}
}

func (s *OTPStore) Put(ctx context.Context, otp models.OTP) error {
	// One live code per email: drop any prior records first.
	if _, err := s.coll.DeleteMany(ctx, bson.M{"email": otp.Email}); err != nil {
		return err
	}
	if otp.ID.IsZero() {
		otp.ID = primitive.NewObjectID()
	}
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now()
	}
	_, err := s.coll.InsertOne(ctx, otp)
	return err
}

func (s *OTPStore) Consume(ctx context.Context, email, code string) (models.OTP, error) {
	var otp models.OTP
	err := s.coll.FindOneAndDelete(ctx, bson.M{"email": email, "code": code}).Decode(&otp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.OTP{}, models.ErrNotFound
	}
	return otp, err
}
