package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenKind selects the collection a single-use token record lives in.
type TokenKind string

const (
	TokenVerification  TokenKind = "verification"
	TokenPasswordReset TokenKind = "password_reset"
)

func (k TokenKind) collection() string {
	if k == TokenPasswordReset {
		return PasswordResetColName
	}
	return VerificationColName
}

// TokenRecord stores the hash of a single-use token mailed to a user.
type TokenRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	HashedCode string             `bson:"hashedCode" json:"-"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	ExpiresAt  time.Time          `bson:"expiresAt" json:"expiresAt"`
}

func (r *TokenRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

type TokenRepo interface {
	// ReplaceToken removes any live record for the user before storing the new one.
	ReplaceToken(ctx context.Context, kind TokenKind, record *TokenRecord) error
	GetToken(ctx context.Context, kind TokenKind, userID primitive.ObjectID) (*TokenRecord, error)
	DeleteToken(ctx context.Context, kind TokenKind, userID primitive.ObjectID) error
}

func (mdb *MongodbRepo) ReplaceToken(ctx context.Context, kind TokenKind, record *TokenRecord) error {
	col, err := mdb.GetCollection(ctx, kind.collection())
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.DeleteMany(ctx, bson.M{"userId": record.UserID}); err != nil {
		return fmt.Errorf("error clearing token records: %w", err)
	}
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, record); err != nil {
		return storeErr("error storing token record", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetToken(ctx context.Context, kind TokenKind, userID primitive.ObjectID) (*TokenRecord, error) {
	col, err := mdb.GetCollection(ctx, kind.collection())
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var record TokenRecord
	if err := col.FindOne(ctx, bson.M{"userId": userID}).Decode(&record); err != nil {
		return nil, storeErr("error finding token record", err)
	}
	return &record, nil
}

func (mdb *MongodbRepo) DeleteToken(ctx context.Context, kind TokenKind, userID primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, kind.collection())
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("error deleting token record: %w", err)
	}
	return nil
}
