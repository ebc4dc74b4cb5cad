package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/triplog/triplog/internal/model"
)

// TokenStore persists model.ActionToken documents.
//
// One-token-per-purpose is enforced with a delete-then-insert pair. The two
// operations are not atomic; two racing issuances for the same user and
// purpose can briefly leave both tokens live, with the later writer winning
// any subsequent replacement. Given the short TTLs this is accepted weak
// consistency rather than a correctness bug.
type TokenStore struct {
	col *mongo.Collection
}

func (r *TokenStore) ensureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		// Mongo reaps expired documents on its own; lookups still filter on
		// expiresAt because the reaper runs at minute granularity.
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	return err
}

// Replace removes any stored token for (user, purpose) and inserts the new
// document, keeping at most one live token per purpose.
func (r *TokenStore) Replace(ctx context.Context, token *model.ActionToken, purpose model.TokenPurpose) error {
	_, err := r.col.DeleteMany(ctx, bson.M{
		"userId":         token.UserID,
		purpose.Field(): bson.M{"$exists": true},
	})
	if err != nil {
		return err
	}

	token.ID = primitive.NewObjectID()
	_, err = r.col.InsertOne(ctx, token)
	return err
}

// FindLive returns the unexpired token whose purpose field matches the given
// digest. Missing, expired, and already consumed tokens are all ErrNotFound.
func (r *TokenStore) FindLive(ctx context.Context, digest string, purpose model.TokenPurpose) (*model.ActionToken, error) {
	var token model.ActionToken
	err := r.col.FindOne(ctx, bson.M{
		purpose.Field(): digest,
		"expiresAt":     bson.M{"$gt": time.Now()},
	}).Decode(&token)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}

// Delete removes a consumed token.
func (r *TokenStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
