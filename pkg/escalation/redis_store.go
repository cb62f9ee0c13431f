package escalation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the escalation log in a per-user sorted set scored by
// timestamp. A rolling time window maps directly onto ZRANGEBYSCORE, which
// makes the cooldown query a single round trip. Entries expire after the
// retention period; the durable log lives in Postgres when configured.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	retention time.Duration
}

// NewRedisStore wraps an existing Redis client. keyPrefix namespaces the
// log (BEACON_ESCALATION_COLLECTION); retention bounds key lifetime and
// must be at least the cooldown window.
func NewRedisStore(client *redis.Client, keyPrefix string, retention time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "escalations"
	}
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, retention: retention}
}

func (s *RedisStore) key(userID string) string {
	return s.keyPrefix + ":" + userID
}

// Append persists one record.
func (s *RedisStore) Append(ctx context.Context, rec *Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("escalation marshal: %w", err)
	}

	key := s.key(rec.UserID)
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(rec.Timestamp.UnixMilli()),
		Member: string(payload),
	})
	pipe.Expire(ctx, key, s.retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("escalation append: %w", err)
	}
	return nil
}

// Since returns records for a user newer than cutoff, oldest first.
func (s *RedisStore) Since(ctx context.Context, userID string, cutoff time.Time) ([]Record, error) {
	// "(": exclusive lower bound - the window is strictly after cutoff.
	members, err := s.client.ZRangeByScore(ctx, s.key(userID), &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("escalation query: %w", err)
	}

	out := make([]Record, 0, len(members))
	for _, m := range members {
		var rec Record
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			return nil, fmt.Errorf("escalation unmarshal: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
