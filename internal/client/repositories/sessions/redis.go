package sessions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/fmdata/internal/client/models"
)

const redisKeyPrefix = "fmdata:session:"

// saveIfNewerScript writes token and expiry unless the stored expiry is
// later, and lets Redis drop the key once the session has expired.
// ARGV: [1]=token, [2]=expires_ms
var saveIfNewerScript = goredis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], 'expires_ms'))
if cur and cur > tonumber(ARGV[2]) then
  return 0
end
redis.call('HSET', KEYS[1], 'token', ARGV[1], 'expires_ms', ARGV[2])
redis.call('PEXPIREAT', KEYS[1], ARGV[2])
return 1
`)

// RedisStore shares one session between processes through a Redis hash.
type RedisStore struct {
	rdb *goredis.Client
	key string
}

// NewRedisClient creates a go-redis client from a URL such as
// redis://localhost:6379/0.
func NewRedisClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

func NewRedisStore(rdb *goredis.Client, namespace string) *RedisStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &RedisStore{rdb: rdb, key: redisKeyPrefix + namespace}
}

func (s *RedisStore) Load(ctx context.Context) (models.Session, error) {
	vals, err := s.rdb.HMGet(ctx, s.key, "token", "expires_ms").Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return models.Session{}, nil
	}

	token, _ := vals[0].(string)
	rawExpiry, _ := vals[1].(string)
	ms, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to decode session expiry %q: %w", rawExpiry, err)
	}
	return models.Session{Token: token, ExpiresAt: time.UnixMilli(ms)}, nil
}

func (s *RedisStore) Save(ctx context.Context, next models.Session) (bool, error) {
	res, err := saveIfNewerScript.Run(ctx, s.rdb, []string{s.key},
		next.Token,
		strconv.FormatInt(next.ExpiresAt.UnixMilli(), 10),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to save session: %w", err)
	}
	return res == 1, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
