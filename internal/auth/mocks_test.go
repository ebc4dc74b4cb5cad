package auth_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/triplog/triplog/internal/mailer"
	"github.com/triplog/triplog/internal/model"
	"github.com/triplog/triplog/internal/store"
)

// memUserStore is an in-memory auth.UserStore.
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

	email := strings.ToLower(user.Email)
	for _, u := range m.users {
		if u.Email == email {
			return store.ErrDuplicate
		}
	}

	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now

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

	email = strings.ToLower(email)
	for _, user := range m.users {
		if user.Email == email {
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
	user.UpdatedAt = time.Now()
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

// memTokenStore is an in-memory auth.TokenStore with the same
// delete-then-insert replacement semantics as the Mongo implementation.
type memTokenStore struct {
	mu     sync.Mutex
	tokens []*model.ActionToken
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{}
}

func (m *memTokenStore) Replace(_ context.Context, token *model.ActionToken, purpose model.TokenPurpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tokens[:0]
	for _, t := range m.tokens {
		if t.UserID == token.UserID && matchesPurpose(t, purpose) {
			continue
		}
		kept = append(kept, t)
	}
	m.tokens = kept

	token.ID = primitive.NewObjectID()
	clone := *token
	m.tokens = append(m.tokens, &clone)
	return nil
}

func (m *memTokenStore) FindLive(_ context.Context, digest string, purpose model.TokenPurpose) (*model.ActionToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, t := range m.tokens {
		if !t.ExpiresAt.After(now) {
			continue
		}
		if purpose == model.PurposePasswordReset && t.PasswordResetToken == digest {
			clone := *t
			return &clone, nil
		}
		if purpose == model.PurposeVerification && t.VerificationToken == digest {
			clone := *t
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memTokenStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tokens[:0]
	for _, t := range m.tokens {
		if t.ID == id {
			continue
		}
		kept = append(kept, t)
	}
	m.tokens = kept
	return nil
}

func (m *memTokenStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

func matchesPurpose(t *model.ActionToken, purpose model.TokenPurpose) bool {
	if purpose == model.PurposePasswordReset {
		return t.PasswordResetToken != ""
	}
	return t.VerificationToken != ""
}

// memSender records messages instead of delivering them.
type memSender struct {
	mu       sync.Mutex
	messages []mailer.Message
	fail     error
}

func (m *memSender) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return m.fail
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memSender) last() (mailer.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.messages) == 0 {
		return mailer.Message{}, false
	}
	return m.messages[len(m.messages)-1], true
}
