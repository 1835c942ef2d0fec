package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"plenum/internal/domain"
	"plenum/internal/storage"
)

const redisKeyPrefix = "plenum:session:"

// RedisStore keeps sessions in Redis so a restart of the coordinator does not
// log everyone out even without PostgreSQL. Tokens are stored without TTL;
// sessions do not expire.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

var _ storage.SessionStore = (*RedisStore)(nil)

func (s *RedisStore) Save(ctx context.Context, session domain.Session) error {
	if err := s.client.Set(ctx, redisKeyPrefix+session.ID, session.UserID, 0).Err(); err != nil {
		return fmt.Errorf("save session in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, id string) (domain.Session, error) {
	userID, err := s.client.Get(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, storage.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("find session in redis: %w", err)
	}
	return domain.Session{ID: id, UserID: userID}, nil
}
