package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/cartstore"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Identity is the authenticated caller. Admin access is a role claim
// resolved here, never an email comparison in a handler.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role claim.
func (id Identity) IsAdmin() bool {
	return id.Role == models.RoleAdmin
}

// UserStore is the account persistence boundary.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// SessionStore holds opaque session tokens.
type SessionStore interface {
	SetSession(ctx context.Context, token, userID string, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (string, error)
	DeleteSession(ctx context.Context, token string) error
}

// Service implements sign-up, sign-in, sign-out and identity resolution.
type Service struct {
	users      UserStore
	sessions   SessionStore
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewService creates a new auth service
func NewService(users UserStore, sessions SessionStore, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     util.GetLogger(),
	}
}

// SignUp registers a new account with the user role.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "Auth.SignUp")
	defer span.End()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID))
	return user, nil
}

// SignIn verifies credentials and issues an opaque session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *models.User, error) {
	ctx, span := util.StartSpan(ctx, "Auth.SignIn")
	defer span.End()

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		util.SignInsTotal.WithLabelValues("rejected").Inc()
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		util.SignInsTotal.WithLabelValues("rejected").Inc()
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.New().String()
	if err := s.sessions.SetSession(ctx, token, user.ID, s.sessionTTL); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	util.SignInsTotal.WithLabelValues("accepted").Inc()
	s.logger.Info("User signed in", zap.String("user_id", user.ID))
	return token, user, nil
}

// SignOut invalidates a session token.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// Identity resolves a session token to the authenticated caller.
func (s *Service) Identity(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrNotAuthenticated
	}

	userID, err := s.sessions.GetSession(ctx, token)
	if errors.Is(err, cartstore.ErrSessionNotFound) {
		return Identity{}, ErrNotAuthenticated
	}
	if err != nil {
		return Identity{}, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return Identity{}, err
	}

	return Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	}, nil
}
