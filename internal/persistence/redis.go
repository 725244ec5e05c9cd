package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/contest-provisioner/internal/config"
	apperrors "github.com/spec-kit/contest-provisioner/pkg/util"
)

const lockKeyPrefix = "contest-provisioner:lock:"

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis wraps the go-redis client used for the batch lock.
type Redis struct {
	Client *redis.Client
	logger *zap.Logger
}

// NewRedis connects to Redis when an address is configured.
// Without one, the returned value is disabled and locking is a no-op.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Debug("REDIS_ADDR not provided; batch lock disabled")
		return &Redis{logger: logger}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client, logger: logger}
}

// Enabled reports whether a client is configured.
func (r *Redis) Enabled() bool {
	return r != nil && r.Client != nil
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// AcquireBatchLock takes the per-contest lock so two operators cannot provision the
// same contest at once. runID is stored as the lock value so a blocked operator can see
// who holds it. The returned release func is safe to call more than once.
func (r *Redis) AcquireBatchLock(ctx context.Context, contestID, runID string, ttl time.Duration) (func(context.Context), error) {
	if !r.Enabled() {
		return func(context.Context) {}, nil
	}

	key := lockKeyPrefix + contestID
	token := runID
	if token == "" {
		token = uuid.NewString()
	}
	ok, err := r.Client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !ok {
		holder, _ := r.Client.Get(ctx, key).Result()
		return nil, apperrors.NewConflict("another provisioning run holds the contest lock", map[string]any{
			"contest_id": contestID,
			"holder":     holder,
		})
	}

	released := false
	return func(ctx context.Context) {
		if released {
			return
		}
		released = true
		if err := releaseScript.Run(ctx, r.Client, []string{key}, token).Err(); err != nil {
			r.logger.Warn("failed to release batch lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
