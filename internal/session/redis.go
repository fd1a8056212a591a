package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "partyplnr/internal/common/errors"
	"partyplnr/internal/models"
)

// RedisStore keeps session state as JSON under prefix+id. A positive idle
// TTL expires sessions that have not been read or written for that long.
type RedisStore struct {
	client  redis.Cmdable
	prefix  string
	idleTTL time.Duration
}

func NewRedisStore(client redis.Cmdable, prefix string, idleTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, idleTTL: idleTTL}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (string, bool, error) {
	if id == "" {
		return "", false, nil
	}
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.NewSessionStoreFailedError("get", err)
	}

	var state models.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return "", false, apperrors.NewSessionStoreFailedError("decode", err)
	}
	if s.idleTTL > 0 {
		if err := s.client.Expire(ctx, s.key(id), s.idleTTL).Err(); err != nil {
			return "", false, apperrors.NewSessionStoreFailedError("touch", err)
		}
	}
	if state.RememberedLocation == "" {
		return "", false, nil
	}
	return state.RememberedLocation, true, nil
}

func (s *RedisStore) Set(ctx context.Context, id, location string) error {
	if id == "" || location == "" {
		return nil
	}
	raw, err := json.Marshal(models.SessionState{
		ID:                 id,
		RememberedLocation: location,
		UpdatedAt:          time.Now().UTC(),
	})
	if err != nil {
		return apperrors.NewSessionStoreFailedError("encode", err)
	}
	if err := s.client.Set(ctx, s.key(id), raw, s.idleTTL).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError("set", err)
	}
	return nil
}
