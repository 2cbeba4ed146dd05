//go:build integration

package otp_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"complyd/internal/otp"
	"complyd/pkg/platform/sentinel"
	"complyd/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *otp.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = otp.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestConsumeRoundTrip() {
	ctx := context.Background()

	s.Require().NoError(s.store.Put(ctx, "pat@corp.example", "123456", time.Minute))
	s.Require().NoError(s.store.Consume(ctx, "pat@corp.example", "123456"))

	err := s.store.Consume(ctx, "pat@corp.example", "123456")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestWrongCodeDoesNotConsume() {
	ctx := context.Background()

	s.Require().NoError(s.store.Put(ctx, "pat@corp.example", "123456", time.Minute))

	err := s.store.Consume(ctx, "pat@corp.example", "654321")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.Consume(ctx, "pat@corp.example", "123456"))
}

func (s *RedisStoreSuite) TestTTLExpiry() {
	ctx := context.Background()

	s.Require().NoError(s.store.Put(ctx, "pat@corp.example", "123456", 50*time.Millisecond))
	time.Sleep(100 * time.Millisecond)

	err := s.store.Consume(ctx, "pat@corp.example", "123456")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
