package oauth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/deppfellow/quiz-api/internal/lib/password"
)

// DefaultStateTTL bounds how long a user may take on the consent screen.
const DefaultStateTTL = 10 * time.Minute

// ErrInvalidState is returned for unknown, expired or reused states.
var ErrInvalidState = errors.New("oauth: invalid or expired state")

// StateStore remembers issued state values so a callback can be tied to a
// login this server started. A state can be consumed once.
type StateStore interface {
	Save(ctx context.Context, state, provider string) error
	Consume(ctx context.Context, state string) (string, error)
}

type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &RedisStateStore{client: client, ttl: ttl}
}

func stateKey(state string) string {
	return "oauth:state:" + state
}

func (s *RedisStateStore) Save(ctx context.Context, state, provider string) error {
	return s.client.Set(ctx, stateKey(state), provider, s.ttl).Err()
}

// Consume returns the provider the state was issued for and deletes it.
func (s *RedisStateStore) Consume(ctx context.Context, state string) (string, error) {
	provider, err := s.client.GetDel(ctx, stateKey(state)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidState
	}
	if err != nil {
		return "", err
	}
	return provider, nil
}

// NewState returns a random URL-safe state value.
func NewState() (string, error) {
	return password.Random(32)
}
