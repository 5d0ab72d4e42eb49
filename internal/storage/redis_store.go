package storage

import (
	"context"
	"encoding/json"
	"time"

	"tweetwatch/internal/model"

	"github.com/redis/go-redis/v9"
)

const historyKey = "tweetwatch:cycles"

// RedisStore keeps a capped history of dispatch cycles. It is an audit
// trail only; the watermark is never restored from it.
type RedisStore struct {
	rdb   *redis.Client
	limit int64
	ttl   time.Duration
}

// NewRedisStore keeps at most limit records (default 100).
func NewRedisStore(rdb *redis.Client, limit int) *RedisStore {
	if limit <= 0 {
		limit = 100
	}
	return &RedisStore{rdb: rdb, limit: int64(limit), ttl: 30 * 24 * time.Hour}
}

// RecordCycle prepends a record and trims the list to the configured size.
func (s *RedisStore) RecordCycle(ctx context.Context, rec model.CycleRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, historyKey, b)
	pipe.LTrim(ctx, historyKey, 0, s.limit-1)
	pipe.Expire(ctx, historyKey, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// RecentCycles returns up to n records, newest first.
func (s *RedisStore) RecentCycles(ctx context.Context, n int) ([]model.CycleRecord, error) {
	if n <= 0 {
		n = 10
	}
	raw, err := s.rdb.LRange(ctx, historyKey, 0, int64(n-1)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]model.CycleRecord, 0, len(raw))
	for _, r := range raw {
		var rec model.CycleRecord
		if err := json.Unmarshal([]byte(r), &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
