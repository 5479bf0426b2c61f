package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PendingTTL bounds how long a reservation survives a crashed request.
const PendingTTL = 30 * time.Second

type IdempotencyEntry struct {
	Key          string    `json:"key"`
	UserID       uuid.UUID `json:"user_id"`
	RequestHash  string    `json:"request_hash"`
	Pending      bool      `json:"pending,omitempty"`
	StatusCode   int       `json:"status_code"`
	ResponseBody []byte    `json:"response_body"`
	CreatedAt    time.Time `json:"created_at"`
}

// IdempotencyStore keeps replayable responses per (user, key) until ttl.
// A key is reserved with a pending entry before the request runs, so only one
// request per key executes.
type IdempotencyStore struct {
	store *Store
	ttl   time.Duration
}

func NewIdempotencyStore(store *Store, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{store: store, ttl: ttl}
}

func idempotencyKey(key string, userID uuid.UUID) string {
	return userID.String() + ":" + key
}

func (s *IdempotencyStore) Get(ctx context.Context, key string, userID uuid.UUID) (*IdempotencyEntry, error) {
	raw, err := s.store.Get(ctx, idempotencyKey(key, userID))
	if errors.Is(err, ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	var e IdempotencyEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("Get: decode: %w", err)
	}
	return &e, nil
}

// Reserve claims the key with a pending entry. It reports false when another
// request already holds or completed the key.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, userID uuid.UUID, requestHash string) (bool, error) {
	raw, err := json.Marshal(&IdempotencyEntry{
		Key:         key,
		UserID:      userID,
		RequestHash: requestHash,
		Pending:     true,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("Reserve: encode: %w", err)
	}
	ok, err := s.store.SetNX(ctx, idempotencyKey(key, userID), raw, PendingTTL)
	if err != nil {
		return false, fmt.Errorf("Reserve: %w", err)
	}
	return ok, nil
}

// Set replaces the reservation with the completed response.
func (s *IdempotencyStore) Set(ctx context.Context, entry *IdempotencyEntry) error {
	entry.Pending = false
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("Set: encode: %w", err)
	}
	if err := s.store.Set(ctx, idempotencyKey(entry.Key, entry.UserID), raw, s.ttl); err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

// Release drops a reservation so the client may retry the key.
func (s *IdempotencyStore) Release(ctx context.Context, key string, userID uuid.UUID) error {
	if err := s.store.Delete(ctx, idempotencyKey(key, userID)); err != nil {
		return fmt.Errorf("Release: %w", err)
	}
	return nil
}
