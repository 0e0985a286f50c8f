package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/krylovda/pitchbook/config"
	"github.com/krylovda/pitchbook/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	pitchesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, pitchesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		pitchesTTL: pitchesTTL,
	}
}

func (c *RedisCache) GetPitches(ctx context.Context) ([]domain.Pitch, error) {
	data, err := c.client.Get(ctx, pitchesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var pitches []domain.Pitch
	if err := json.Unmarshal(data, &pitches); err != nil {
		return nil, err
	}
	return pitches, nil
}

func (c *RedisCache) SetPitches(ctx context.Context, pitches []domain.Pitch) error {
	payload, err := json.Marshal(pitches)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, pitchesKey(), payload, c.pitchesTTL).Err()
}

// AcquireSlotLock takes a short-lived hold on a pitch time slot while the
// booking transaction runs, keeping concurrent requests for the same window
// from racing to the database.
func (c *RedisCache) AcquireSlotLock(ctx context.Context, pitchID int64, date time.Time, start, end domain.TimeOfDay, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, slotLockKey(pitchID, date, start, end), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSlotLock(ctx context.Context, pitchID int64, date time.Time, start, end domain.TimeOfDay) error {
	return c.client.Del(ctx, slotLockKey(pitchID, date, start, end)).Err()
}

func pitchesKey() string {
	return "cache:pitches"
}

func slotLockKey(pitchID int64, date time.Time, start, end domain.TimeOfDay) string {
	return fmt.Sprintf("lock:pitch:%d:%s:%s-%s", pitchID, date.Format("2006-01-02"), start, end)
}
