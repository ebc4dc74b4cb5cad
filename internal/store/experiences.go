package store

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/triplog/triplog/internal/model"
)

// ExperienceStore persists model.Experience documents.
type ExperienceStore struct {
	col *mongo.Collection
}

func (r *ExperienceStore) ensureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "destination", Value: 1}}},
	})
	return err
}

// Create inserts a new experience.
func (r *ExperienceStore) Create(ctx context.Context, exp *model.Experience) error {
	now := time.Now()
	exp.ID = primitive.NewObjectID()
	exp.CreatedAt = now
	exp.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, exp)
	return err
}

// FindByID returns the experience with the given id.
func (r *ExperienceStore) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Experience, error) {
	var exp model.Experience
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&exp)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &exp, nil
}

// List returns every experience, newest first.
func (r *ExperienceStore) List(ctx context.Context) ([]*model.Experience, error) {
	return r.find(ctx, bson.M{})
}

// SearchByDestination returns experiences whose destination matches the term
// as a case-insensitive substring.
func (r *ExperienceStore) SearchByDestination(ctx context.Context, destination string) ([]*model.Experience, error) {
	return r.find(ctx, bson.M{"destination": primitive.Regex{
		Pattern: regexp.QuoteMeta(destination),
		Options: "i",
	}})
}

func (r *ExperienceStore) find(ctx context.Context, filter bson.M) ([]*model.Experience, error) {
	cur, err := r.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var exps []*model.Experience
	if err := cur.All(ctx, &exps); err != nil {
		return nil, err
	}
	return exps, nil
}

// Update applies the given field set to an experience.
func (r *ExperienceStore) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*model.Experience, error) {
	fields["updatedAt"] = time.Now()

	var exp model.Experience
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&exp)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &exp, nil
}

// Delete removes the experience with the given id.
func (r *ExperienceStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
