package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned when a session token is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Client is the durable key-value store backing carts and session tokens.
// One key per browsing session holds the serialized cart; writes are
// unconditional last-writer-wins with no cross-session coordination.
type Client struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewClient creates a new cart store client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, logger: util.GetLogger()}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// Load restores the cart for a session. A missing key or malformed payload
// is an empty cart, never an error surfaced to the user.
func (c *Client) Load(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	raw, err := c.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if err == redis.Nil {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		c.logger.Warn("Discarding malformed cart payload",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return []models.CartItem{}, nil
	}
	return items, nil
}

// Persist overwrites the stored cart for a session with the full sequence.
func (c *Client) Persist(ctx context.Context, sessionID string, items []models.CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := c.rdb.Set(ctx, cartKey(sessionID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

// Clear removes the stored cart entirely. Called after an acknowledged
// checkout and on sign-out.
func (c *Client) Clear(ctx context.Context, sessionID string) error {
	if err := c.rdb.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// SetSession stores a session token mapped to a user ID with a TTL
func (c *Client) SetSession(ctx context.Context, token, userID string, ttl time.Duration) error {
	return c.rdb.Set(ctx, sessionKey(token), userID, ttl).Err()
}

// GetSession resolves a session token to a user ID
func (c *Client) GetSession(ctx context.Context, token string) (string, error) {
	userID, err := c.rdb.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve session: %w", err)
	}
	return userID, nil
}

// DeleteSession invalidates a session token
func (c *Client) DeleteSession(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, sessionKey(token)).Err()
}
