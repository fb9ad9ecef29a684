package redis

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/muhammadchandra19/matching-core/pkg/errors"
	"github.com/muhammadchandra19/matching-core/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type client struct {
	logger  *logger.Logger
	config  *Config
	cmdable redis.Cmdable
}

// NewClient creates a new Redis client with the provided logger and configuration.
func NewClient(logger *logger.Logger, config *Config) Client {
	return &client{
		logger: logger,
		config: config,
	}
}

func (c *client) Connect(ctx context.Context) error {
	var cmdable redis.Cmdable
	if c.config == nil {
		return errors.NewErrorDetails("Redis config is nil", string(errors.RedisConfigError), "connect")
	}

	if len(c.config.Addrs) == 0 {
		return errors.NewErrorDetails("Redis addresses are empty", string(errors.RedisConfigError), "connect")
	}

	if c.config.Mode != Standalone && c.config.Mode != Cluster {
		return errors.NewErrorDetails("Invalid Redis mode", string(errors.RedisConfigError), "connect")
	}

	if c.config.ConnectTimeout <= 0 {
		return errors.NewErrorDetails("Invalid Redis connect timeout", string(errors.RedisConfigError), "connect")
	}

	if c.config.PoolSize <= 0 {
		return errors.NewErrorDetails("Invalid Redis pool size", string(errors.RedisConfigError), "connect")
	}

	switch c.config.Mode {
	case Standalone:
		cmdable = redis.NewClient(&redis.Options{
			Addr:            c.config.Addrs[0],
			Username:        c.config.Username,
			Password:        c.config.Password,
			DB:              c.config.DB,
			MaxRetries:      c.config.MaxRetries,
			MinRetryBackoff: c.config.MinRetryBackoff,
			MaxRetryBackoff: c.config.MaxRetryBackoff,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			MinIdleConns:    c.config.MinIdleConns,
			MaxIdleConns:    c.config.MaxIdleConns,
			ConnMaxLifetime: c.config.ConnMaxLifetime,
			ConnMaxIdleTime: c.config.ConnMaxIdleTime,
			PoolTimeout:     c.config.PoolTimeout,
		})
	case Cluster:
		cmdable = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           c.config.Addrs,
			Username:        c.config.Username,
			Password:        c.config.Password,
			MaxRetries:      c.config.MaxRetries,
			MinRetryBackoff: c.config.MinRetryBackoff,
			MaxRetryBackoff: c.config.MaxRetryBackoff,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			MinIdleConns:    c.config.MinIdleConns,
			MaxIdleConns:    c.config.MaxIdleConns,
			ConnMaxLifetime: c.config.ConnMaxLifetime,
			ConnMaxIdleTime: c.config.ConnMaxIdleTime,
			PoolTimeout:     c.config.PoolTimeout,
		})
	default:
		return errors.NewErrorDetails("Unsupported Redis mode", string(errors.RedisConnectionError), "connect")
	}

	c.cmdable = cmdable

	return c.Ping(ctx)
}

func (c *client) Disconnect(ctx context.Context) error {
	if c.cmdable == nil {
		return nil
	}

	closer, ok := c.cmdable.(interface{ Close() error })
	if !ok {
		return errors.NewErrorDetails("Redis client does not support close", string(errors.RedisDisconnectionError), "disconnect")
	}

	if err := closer.Close(); err != nil {
		return errors.NewTracer("redis_disconnect_error").Wrap(err)
	}

	c.cmdable = nil
	return nil
}

func (c *client) Ping(ctx context.Context) error {
	if c.cmdable == nil {
		return errors.NewErrorDetails("Redis client is not connected", string(errors.RedisPingError), "ping")
	}

	if err := c.cmdable.Ping(ctx).Err(); err != nil {
		return errors.NewTracer("redis_ping_error").Wrap(err)
	}

	return nil
}

// Reconnect attempts to re-establish the connection with jittered
// exponential backoff. Returns true once a ping succeeds.
func (c *client) Reconnect(ctx context.Context) bool {
	for attempt := 0; attempt < c.config.ReconnectMaxRetries; attempt++ {
		backoff := c.config.MinRetryBackoff * time.Duration(math.Pow(2, float64(attempt)))
		if backoff > c.config.MaxRetryBackoff {
			backoff = c.config.MaxRetryBackoff
		}
		jitter := time.Duration(rand.Int64N(int64(backoff) + 1))

		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff + jitter):
		}

		if err := c.Connect(ctx); err != nil {
			c.logger.Error(err, logger.Field{Key: "attempt", Value: attempt + 1})
			continue
		}

		return true
	}

	return false
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	if c.cmdable == nil {
		return "", errors.NewErrorDetails("Redis client is not connected", string(errors.RedisGetError), "get")
	}

	val, err := c.cmdable.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.NewTracer("redis_get_error").Wrap(err)
	}

	return val, nil
}

func (c *client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if c.cmdable == nil {
		return errors.NewErrorDetails("Redis client is not connected", string(errors.RedisSetError), "set")
	}

	if err := c.cmdable.Set(ctx, key, value, expiration).Err(); err != nil {
		return errors.NewTracer("redis_set_error").Wrap(err)
	}

	return nil
}

func (c *client) Del(ctx context.Context, keys ...string) (int64, error) {
	if c.cmdable == nil {
		return 0, errors.NewErrorDetails("Redis client is not connected", string(errors.RedisDelError), "del")
	}

	deleted, err := c.cmdable.Del(ctx, keys...).Result()
	if err != nil {
		return 0, errors.NewTracer("redis_del_error").Wrap(err)
	}

	return deleted, nil
}
