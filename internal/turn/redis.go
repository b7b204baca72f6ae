package turn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// casScript swaps the turn only when the current value (or the initial
// participant, for a missing key) equals ARGV[1].
var casScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then cur = ARGV[3] end
if cur ~= ARGV[1] then return 0 end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[4])
return 1
`)

// RedisStore shares turn state between service instances.
type RedisStore struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	initial Participant
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets how long idle discussion state is kept.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

func NewRedisStore(client redis.UniversalClient, initial Participant, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "gd", ttl: 24 * time.Hour, initial: initial}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *RedisStore) key(discussionID string) string {
	return fmt.Sprintf("%s:turn:%s", s.prefix, discussionID)
}

func (s *RedisStore) Current(ctx context.Context, discussionID string) (Participant, error) {
	v, err := s.client.Get(ctx, s.key(discussionID)).Result()
	if errors.Is(err, redis.Nil) {
		return s.initial, nil
	}
	if err != nil {
		return "", fmt.Errorf("turn get: %w", err)
	}
	return Participant(v), nil
}

func (s *RedisStore) CompareAndSwap(ctx context.Context, discussionID string, from, to Participant) (bool, error) {
	n, err := casScript.Run(ctx, s.client,
		[]string{s.key(discussionID)},
		string(from), string(to), string(s.initial), s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("turn cas: %w", err)
	}
	return n == 1, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
