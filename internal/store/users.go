package store

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/triplog/triplog/internal/model"
)

// UserStore persists model.User documents.
type UserStore struct {
	col *mongo.Collection
}

func (r *UserStore) ensureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Create inserts a new user. Email uniqueness is enforced by the index;
// violations surface as ErrDuplicate.
func (r *UserStore) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByID returns the user with the given id.
func (r *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var user model.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns the user with the given email. Comparison is
// case-insensitive: addresses are lowercased on write and on lookup.
func (r *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.col.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns every user, newest first.
func (r *UserStore) List(ctx context.Context) ([]*model.User, error) {
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []*model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Update replaces the mutable fields of an existing user.
func (r *UserStore) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"name":       user.Name,
		"password":   user.Password,
		"photo":      user.Photo,
		"bio":        user.Bio,
		"role":       user.Role,
		"isVerified": user.IsVerified,
		"updatedAt":  user.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user with the given id.
func (r *UserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
