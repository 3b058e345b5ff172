package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis is the ledger backend for a horizontally scaled deployment: the
// conditional put (SET NX PX) gives the same exactly-one-winner guarantee as
// the in-process mutex, across processes. Expiry is enforced server-side by
// the key TTL, so SweepExpired has nothing to do.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Connect builds and pings a Redis client suitable for the ledger.
func Connect(addr, username, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Username:     username,
		Password:     password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

func holdKey(slotID uuid.UUID) string {
	return "hold:slot:" + slotID.String()
}

func (r *Redis) Place(ctx context.Context, slotID uuid.UUID, ttl time.Duration) (time.Time, error) {
	expiry := time.Now().Add(ttl)

	ok, err := r.client.SetNX(ctx, holdKey(slotID), expiry.UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return time.Time{}, fmt.Errorf("place hold: %w", err)
	}
	if !ok {
		return time.Time{}, ErrAlreadyHeld
	}
	return expiry, nil
}

func (r *Redis) Remove(ctx context.Context, slotID uuid.UUID) (bool, error) {
	n, err := r.client.Del(ctx, holdKey(slotID)).Result()
	if err != nil {
		return false, fmt.Errorf("remove hold: %w", err)
	}
	return n > 0, nil
}

func (r *Redis) IsHeld(ctx context.Context, slotID uuid.UUID) (bool, error) {
	n, err := r.client.Exists(ctx, holdKey(slotID)).Result()
	if err != nil {
		return false, fmt.Errorf("check hold: %w", err)
	}
	return n > 0, nil
}

// SweepExpired is a no-op: Redis expires hold keys itself.
func (r *Redis) SweepExpired(ctx context.Context) (int, error) {
	return 0, nil
}
