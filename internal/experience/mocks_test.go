package experience_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/triplog/triplog/internal/model"
	"github.com/triplog/triplog/internal/store"
)

// memUserStore implements auth.UserStore for gate wiring in tests.
type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[primitive.ObjectID]*model.User{}}
}

func (m *memUserStore) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(user.Email)
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Email == strings.ToLower(email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memUserStore) List(_ context.Context) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]*model.User, 0, len(m.users))
	for _, user := range m.users {
		clone := *user
		users = append(users, &clone)
	}
	return users, nil
}

func (m *memUserStore) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// memExperienceStore implements experience.Store in memory.
type memExperienceStore struct {
	mu          sync.Mutex
	experiences map[primitive.ObjectID]*model.Experience
}

func newMemExperienceStore() *memExperienceStore {
	return &memExperienceStore{experiences: map[primitive.ObjectID]*model.Experience{}}
}

func (m *memExperienceStore) Create(_ context.Context, exp *model.Experience) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	exp.ID = primitive.NewObjectID()
	exp.CreatedAt = now
	exp.UpdatedAt = now

	clone := *exp
	m.experiences[exp.ID] = &clone
	return nil
}

func (m *memExperienceStore) FindByID(_ context.Context, id primitive.ObjectID) (*model.Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.experiences[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *exp
	return &clone, nil
}

func (m *memExperienceStore) List(_ context.Context) ([]*model.Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exps := make([]*model.Experience, 0, len(m.experiences))
	for _, exp := range m.experiences {
		clone := *exp
		exps = append(exps, &clone)
	}
	return exps, nil
}

func (m *memExperienceStore) SearchByDestination(_ context.Context, destination string) ([]*model.Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var exps []*model.Experience
	for _, exp := range m.experiences {
		if strings.Contains(strings.ToLower(exp.Destination), strings.ToLower(destination)) {
			clone := *exp
			exps = append(exps, &clone)
		}
	}
	return exps, nil
}

func (m *memExperienceStore) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (*model.Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.experiences[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	for key, value := range fields {
		switch key {
		case "destination":
			exp.Destination = value.(string)
		case "itineraryDays":
			exp.ItineraryDays = value.(int)
		case "placesCovered":
			exp.PlacesCovered = value.([]string)
		case "details":
			exp.Details = value.([]model.DayDetail)
		case "totalCost":
			exp.TotalCost = value.(float64)
		case "driverContact":
			exp.DriverContact = value.(string)
		case "suggestions":
			exp.Suggestions = value.([]string)
		}
	}
	exp.UpdatedAt = time.Now()

	clone := *exp
	return &clone, nil
}

func (m *memExperienceStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.experiences[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.experiences, id)
	return nil
}
