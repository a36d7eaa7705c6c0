package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/safein/safein-server/daterange"
)

var Client *redis.Client

// InitRedis connects the shared client and verifies it with a PING.
func InitRedis(ctx context.Context, addr string) error {
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	if _, err := Client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	log.Info().Str("addr", addr).Msg("connected to redis")
	return nil
}

// FilterKey identifies a saved date-range picker: one per user and scope.
type FilterKey struct {
	CompanyID  uint
	EmployeeID uint
	Scope      string
}

func (k FilterKey) String() string {
	return fmt.Sprintf("safein:daterange:%d:%d:%s", k.CompanyID, k.EmployeeID, k.Scope)
}

// FilterStore persists date-range picker state between requests.
type FilterStore interface {
	Load(ctx context.Context, key FilterKey) (daterange.Snapshot, error)
	Save(ctx context.Context, key FilterKey, snap daterange.Snapshot) error
}

// RedisFilterStore keeps picker snapshots as JSON strings with a TTL.
type RedisFilterStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFilterStore(client *redis.Client, ttl time.Duration) *RedisFilterStore {
	return &RedisFilterStore{client: client, ttl: ttl}
}

// Load returns an empty snapshot when nothing has been saved yet.
func (s *RedisFilterStore) Load(ctx context.Context, key FilterKey) (daterange.Snapshot, error) {
	var snap daterange.Snapshot

	raw, err := s.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return snap, nil
	}
	if err != nil {
		return snap, fmt.Errorf("load filter %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, &snap); err != nil {
		return daterange.Snapshot{}, fmt.Errorf("decode filter %s: %w", key, err)
	}
	return snap, nil
}

func (s *RedisFilterStore) Save(ctx context.Context, key FilterKey, snap daterange.Snapshot) error {
	// Calendar cells are derived on read.
	snap.Days = nil

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode filter %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key.String(), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save filter %s: %w", key, err)
	}
	return nil
}
