package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"secure-rag/internal/config"
	"secure-rag/internal/models"
)

type Credentials struct {
	Login    string
	Password string
}

// Authenticator resolves credentials into the role of the caller.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (models.AccessTier, error)
}

type UserStore interface {
	FindUser(ctx context.Context, login string) (*models.User, error)
}

// PasswordAuthenticator checks bcrypt password hashes held in a UserStore.
type PasswordAuthenticator struct {
	store UserStore
}

func NewPasswordAuthenticator(store UserStore) *PasswordAuthenticator {
	return &PasswordAuthenticator{store: store}
}

// Authenticate returns models.ErrUnauthorized for any credential problem.
// Store faults are returned wrapped so outages are not reported as bad
// passwords.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, creds Credentials) (models.AccessTier, error) {
	if creds.Login == "" || creds.Password == "" {
		return "", models.ErrUnauthorized
	}

	user, err := a.store.FindUser(ctx, creds.Login)
	if errors.Is(err, models.ErrUserNotFound) {
		log.Debug().Str("login", creds.Login).Msg("Unknown login")
		return "", models.ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("failed to authenticate %s: %w", creds.Login, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		log.Debug().Str("login", creds.Login).Msg("Wrong password")
		return "", models.ErrUnauthorized
	}
	if user.Role == "" {
		log.Warn().Str("login", creds.Login).Msg("User has no role")
		return "", models.ErrUnauthorized
	}
	return user.Role, nil
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// MemoryStore is a UserStore backed by a map, used for statically
// configured users.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryStore(users ...models.User) *MemoryStore {
	s := &MemoryStore{users: make(map[string]models.User, len(users))}
	for _, u := range users {
		s.users[u.Login] = u
	}
	return s
}

// NewMemoryStoreFromConfig seeds a store with the users section of the config.
func NewMemoryStoreFromConfig(users []config.UserConfig) *MemoryStore {
	s := NewMemoryStore()
	for _, u := range users {
		s.users[u.Login] = models.User{
			Login:        u.Login,
			PasswordHash: u.PasswordHash,
			Role:         models.ParseAccessTier(u.Role),
		}
	}
	return s
}

func (s *MemoryStore) FindUser(_ context.Context, login string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[strings.TrimSpace(login)]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &u, nil
}

func (s *MemoryStore) SaveUser(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Login] = user
	return nil
}

// ChainStore tries each store in order and returns the first user found.
type ChainStore []UserStore

func (c ChainStore) FindUser(ctx context.Context, login string) (*models.User, error) {
	for _, s := range c {
		u, err := s.FindUser(ctx, login)
		if errors.Is(err, models.ErrUserNotFound) {
			continue
		}
		return u, err
	}
	return nil, models.ErrUserNotFound
}
