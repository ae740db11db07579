package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/cartstore"
	"storefront/internal/models"
	"storefront/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserStore struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		byID:    map[string]*models.User{},
		byEmail: map[string]*models.User{},
	}
}

func (s *memUserStore) CreateUser(ctx context.Context, user *models.User) error {
	if _, exists := s.byEmail[user.Email]; exists {
		return fmt.Errorf("user %s: %w", user.Email, store.ErrEmailTaken)
	}
	user.CreatedAt = time.Now()
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user
	return nil
}

func (s *memUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, store.ErrNotFound)
	}
	return user, nil
}

func (s *memUserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, store.ErrNotFound)
	}
	return user, nil
}

type memSessionStore struct {
	sessions map[string]string
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]string{}}
}

func (s *memSessionStore) SetSession(ctx context.Context, token, userID string, ttl time.Duration) error {
	s.sessions[token] = userID
	return nil
}

func (s *memSessionStore) GetSession(ctx context.Context, token string) (string, error) {
	userID, ok := s.sessions[token]
	if !ok {
		return "", cartstore.ErrSessionNotFound
	}
	return userID, nil
}

func (s *memSessionStore) DeleteSession(ctx context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

func newTestService() *Service {
	return NewService(newMemUserStore(), newMemSessionStore(), time.Hour)
}

func TestSignUpAssignsUserRole(t *testing.T) {
	svc := newTestService()

	user, err := svc.SignUp(context.Background(), "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "secret1", user.PasswordHash)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "Imposter", "ada@example.com", "secret2")
	assert.ErrorIs(t, err, store.ErrEmailTaken)
}

func TestSignInAndIdentity(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)

	token, signedIn, err := svc.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, signedIn.ID)

	identity, err := svc.Identity(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "ada@example.com", identity.Email)
	assert.False(t, identity.IsAdmin())
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = svc.SignIn(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignOutInvalidatesSession(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)
	token, _, err := svc.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, token))

	_, err = svc.Identity(ctx, token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestIdentityEmptyToken(t *testing.T) {
	svc := newTestService()

	_, err := svc.Identity(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestIsAdminIsARoleClaim(t *testing.T) {
	admin := Identity{UserID: "u1", Email: "ops@example.com", Role: models.RoleAdmin}
	assert.True(t, admin.IsAdmin())

	shopper := Identity{UserID: "u2", Email: "ops@example.com", Role: models.RoleUser}
	assert.False(t, shopper.IsAdmin(), "email must never grant admin access")
}
