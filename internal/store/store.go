// Package store provides MongoDB-backed persistence for users, action
// tokens, and experiences.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotFound is returned when a document does not exist. Callers map it to
// their own taxonomy; the store never exposes driver errors for misses.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicate is returned when a unique index rejects an insert.
var ErrDuplicate = errors.New("store: duplicate key")

const (
	usersCollection       = "users"
	tokensCollection      = "tokens"
	experiencesCollection = "experiences"
)

// Store bundles the repositories backed by one Mongo database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *logrus.Logger

	Users       *UserStore
	Tokens      *TokenStore
	Experiences *ExperienceStore
}

// Connect dials MongoDB, verifies the connection, and prepares the
// repositories with their indexes.
func Connect(ctx context.Context, uri, database string, logger *logrus.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	db := client.Database(database)
	s := &Store{
		client: client,
		db:     db,
		logger: logger,
		Users:  &UserStore{col: db.Collection(usersCollection)},
		Tokens: &TokenStore{col: db.Collection(tokensCollection)},
		Experiences: &ExperienceStore{
			col: db.Collection(experiencesCollection),
		},
	}

	s.ensureIndexes(ctx)

	return s, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.Users.ensureIndexes(ctx); err != nil {
		s.logger.WithError(err).Warn("could not create user indexes")
	}
	if err := s.Tokens.ensureIndexes(ctx); err != nil {
		s.logger.WithError(err).Warn("could not create token indexes")
	}
	if err := s.Experiences.ensureIndexes(ctx); err != nil {
		s.logger.WithError(err).Warn("could not create experience indexes")
	}
}
