// Package experience implements the trip-report feature: ownership-gated
// CRUD plus destination search.
package experience

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/triplog/triplog/internal/model"
	"github.com/triplog/triplog/internal/store"
)

// ErrNotFound is returned for unknown experience ids.
var ErrNotFound = errors.New("experience not found")

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, exp *model.Experience) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Experience, error)
	List(ctx context.Context) ([]*model.Experience, error)
	SearchByDestination(ctx context.Context, destination string) ([]*model.Experience, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*model.Experience, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserFinder resolves experience authors for embedding in responses.
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
}

// Service owns the experience business logic.
type Service struct {
	experiences Store
	users       UserFinder
	logger      *logrus.Logger
}

// NewService wires up the experience service.
func NewService(experiences Store, users UserFinder, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{experiences: experiences, users: users, logger: logger}
}

// Create stores a new experience owned by the given user.
func (s *Service) Create(ctx context.Context, owner *model.User, exp *model.Experience) (*model.Experience, error) {
	exp.UserID = owner.ID
	if err := s.experiences.Create(ctx, exp); err != nil {
		return nil, err
	}

	s.logger.WithField("experience", exp.ID.Hex()).WithField("user", owner.ID.Hex()).Info("experience shared")
	return exp, nil
}

// List returns every experience, newest first, with authors resolved.
func (s *Service) List(ctx context.Context) ([]model.ExperienceView, error) {
	exps, err := s.experiences.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, exps), nil
}

// Get returns one experience with its author resolved.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*model.ExperienceView, error) {
	exp, err := s.experiences.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	views := s.withAuthors(ctx, []*model.Experience{exp})
	return &views[0], nil
}

// Search returns experiences matching the destination, case-insensitively.
func (s *Service) Search(ctx context.Context, destination string) ([]model.ExperienceView, error) {
	exps, err := s.experiences.SearchByDestination(ctx, destination)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, exps), nil
}

// Update applies the given fields to an experience. Ownership is enforced by
// the route gate before this runs.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*model.Experience, error) {
	exp, err := s.experiences.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return exp, nil
}

// Delete removes an experience. Ownership is enforced by the route gate.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.experiences.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// FindByID exposes the raw record for the ownership gate.
func (s *Service) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Experience, error) {
	exp, err := s.experiences.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return exp, nil
}

// withAuthors resolves each distinct owner once. A missing author (deleted
// account) leaves the author field empty rather than failing the request.
func (s *Service) withAuthors(ctx context.Context, exps []*model.Experience) []model.ExperienceView {
	authors := make(map[primitive.ObjectID]*model.ExperienceAuthor)
	views := make([]model.ExperienceView, 0, len(exps))

	for _, exp := range exps {
		author, seen := authors[exp.UserID]
		if !seen {
			if user, err := s.users.FindByID(ctx, exp.UserID); err == nil {
				author = &model.ExperienceAuthor{
					ID:    user.ID.Hex(),
					Name:  user.Name,
					Photo: user.Photo,
				}
			}
			authors[exp.UserID] = author
		}
		views = append(views, model.ExperienceView{Experience: *exp, Author: author})
	}
	return views
}
