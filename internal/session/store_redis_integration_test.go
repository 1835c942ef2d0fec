//go:build integration

package session_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"plenum/internal/domain"
	"plenum/internal/session"
	"plenum/internal/storage"
	"plenum/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
	ctx   context.Context
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
	s.store = session.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisStoreSuite) TestSaveAndFind() {
	sess := domain.Session{ID: uuid.NewString(), UserID: uuid.NewString()}
	s.Require().NoError(s.store.Save(s.ctx, sess))

	found, err := s.store.FindByID(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess, found)
}

func (s *RedisStoreSuite) TestFindUnknown() {
	_, err := s.store.FindByID(s.ctx, uuid.NewString())
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *RedisStoreSuite) TestSessionsHaveNoTTL() {
	sess := domain.Session{ID: uuid.NewString(), UserID: uuid.NewString()}
	s.Require().NoError(s.store.Save(s.ctx, sess))

	ttl, err := s.redis.Client.TTL(s.ctx, "plenum:session:"+sess.ID).Result()
	s.Require().NoError(err)
	s.Negative(int64(ttl), "session keys must not expire")
}
