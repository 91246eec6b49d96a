package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	reservationTTL        = 30 * time.Second

	// pendingMarker holds a claimed key until the booking id is known.
	pendingMarker = "pending"
)

// IdempotencyStore remembers booking submission keys in Redis.
// Key format: idem:booking:<actorID>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore wraps client. Keys expire after ttl, or a day when ttl
// is not positive.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve claims key for actorID with SETNX. A claim that was never completed
// expires after reservationTTL so a crashed submission cannot block the key.
func (s *IdempotencyStore) Reserve(ctx context.Context, actorID, key string) (string, bool, error) {
	k := s.key(actorID, key)
	// A second pass covers a claim that expired or was released between
	// SETNX and GET.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, pendingMarker, reservationTTL).Result()
		if err != nil {
			return "", false, fmt.Errorf("idempotency reserve: %w", err)
		}
		if ok {
			return "", true, nil
		}
		id, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("idempotency reserve: %w", err)
		}
		if id == pendingMarker {
			return "", false, nil
		}
		return id, false, nil
	}
	return "", false, nil
}

// Remember completes a reservation with the booking id and the full ttl.
func (s *IdempotencyStore) Remember(ctx context.Context, actorID, key, appointmentID string) error {
	if err := s.client.Set(ctx, s.key(actorID, key), appointmentID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

// Release drops an unfinished reservation so the client can retry.
func (s *IdempotencyStore) Release(ctx context.Context, actorID, key string) error {
	if err := s.client.Del(ctx, s.key(actorID, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(actorID, k string) string {
	return "idem:booking:" + actorID + ":" + k
}
