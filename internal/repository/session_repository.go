package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/model"
)

// SessionRepositoryInterface persists intake sessions, including the holding
// lists the outreach screens read. Save overwrites the whole session when
// s.Version matches the stored one, then bumps s.Version; otherwise it returns
// a ConflictError and stores nothing.
type SessionRepositoryInterface interface {
	Get(ctx context.Context, sessionID string) (*model.IntakeSession, error)
	Save(ctx context.Context, s *model.IntakeSession) error
}

// ====================== Redis ======================

type RedisSessionRepository struct {
	Client *redis.Client
	TTL    time.Duration
}

func sessionKey(sessionID string) string {
	return "intake:session:" + sessionID
}

func (r *RedisSessionRepository) Get(ctx context.Context, sessionID string) (*model.IntakeSession, error) {
	raw, err := r.Client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.NewNotFound("intake session", sessionID)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var s model.IntakeSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &s, nil
}

func (r *RedisSessionRepository) Save(ctx context.Context, s *model.IntakeSession) error {
	next := *s
	next.Version++
	raw, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	key := sessionKey(s.ID)
	err = r.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := storedVersion(tx.Get(ctx, key))
		if err != nil {
			return err
		}
		if current != s.Version {
			return appErrors.NewConflict("intake session", s.ID)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, r.TTL)
			return nil
		})
		return err
	}, key)

	var conflict *appErrors.ConflictError
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return appErrors.NewConflict("intake session", s.ID)
	case errors.As(err, &conflict):
		return err
	case err != nil:
		return fmt.Errorf("save session: %w", err)
	}
	s.Version = next.Version
	return nil
}

func storedVersion(cmd *redis.StringCmd) (int64, error) {
	raw, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return decodeVersion(raw)
}

func decodeVersion(raw []byte) (int64, error) {
	var v struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("decode session version: %w", err)
	}
	return v.Version, nil
}

// ====================== Memory ======================

type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string][]byte)}
}

// Sessions are stored encoded so callers never share state with the store.
func (r *MemorySessionRepository) Get(ctx context.Context, sessionID string) (*model.IntakeSession, error) {
	r.mu.Lock()
	raw, ok := r.sessions[sessionID]
	r.mu.Unlock()
	if !ok {
		return nil, appErrors.NewNotFound("intake session", sessionID)
	}

	var s model.IntakeSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &s, nil
}

func (r *MemorySessionRepository) Save(ctx context.Context, s *model.IntakeSession) error {
	next := *s
	next.Version++
	raw, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var current int64
	if stored, ok := r.sessions[s.ID]; ok {
		if current, err = decodeVersion(stored); err != nil {
			return err
		}
	}
	if current != s.Version {
		return appErrors.NewConflict("intake session", s.ID)
	}
	r.sessions[s.ID] = raw
	s.Version = next.Version
	return nil
}

var (
	_ SessionRepositoryInterface = (*RedisSessionRepository)(nil)
	_ SessionRepositoryInterface = (*MemorySessionRepository)(nil)
)
