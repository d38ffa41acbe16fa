package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisCheckoutStore keeps pending checkouts in Redis so they survive
// process restarts but still expire on their own.
type RedisCheckoutStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCheckoutStore creates a new RedisCheckoutStore. Entries expire
// after ttl; an abandoned checkout simply disappears.
func NewRedisCheckoutStore(client *redis.Client, ttl time.Duration) *RedisCheckoutStore {
	return &RedisCheckoutStore{
		client: client,
		ttl:    ttl,
	}
}

func checkoutKey(userID string) string {
	return fmt.Sprintf("checkout:%s", userID)
}

// Save stores the pending checkout of a user, replacing any previous one.
func (s *RedisCheckoutStore) Save(userID string, checkout *models.PendingCheckout) error {
	payload, err := json.Marshal(checkout)
	if err != nil {
		return fmt.Errorf("failed to marshal pending checkout: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.client.Set(ctx, checkoutKey(userID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store pending checkout for user %s: %w", userID, err)
	}
	return nil
}

// Get returns the pending checkout of a user.
func (s *RedisCheckoutStore) Get(userID string) (*models.PendingCheckout, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	payload, err := s.client.Get(ctx, checkoutKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("pending checkout for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load pending checkout for user %s: %w", userID, err)
	}
	var checkout models.PendingCheckout
	if err := json.Unmarshal(payload, &checkout); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending checkout for user %s: %w", userID, err)
	}
	return &checkout, nil
}

// Delete discards the pending checkout of a user.
func (s *RedisCheckoutStore) Delete(userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.client.Del(ctx, checkoutKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete pending checkout for user %s: %w", userID, err)
	}
	return nil
}
