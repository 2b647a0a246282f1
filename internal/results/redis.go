package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ahrav/mibench/internal/domain"
)

// KeyPrefix namespaces every key written by RedisStore.
const KeyPrefix = "mibench:results:"

// RedisStore keeps each task's results in one hash, field run id, value the
// JSON-encoded result.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore wraps client. A positive ttl refreshes the expiry of a task's
// hash on every write; zero keeps results forever.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Key returns the hash key holding a task's results.
func Key(taskID string) string { return KeyPrefix + taskID }

func (s *RedisStore) Put(ctx context.Context, r domain.RunResult) error {
	r, err := prepare(r)
	if err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	key := Key(r.TaskID)
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, r.RunID, data)
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store result %s: %w", r.Key(), err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, taskID string) ([]domain.RunResult, error) {
	fields, err := s.client.HGetAll(ctx, Key(taskID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list results for %s: %w", taskID, err)
	}
	out := make([]domain.RunResult, 0, len(fields))
	for runID, raw := range fields {
		var r domain.RunResult
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("%w: result %s of %s: %w", domain.ErrCorruptData, runID, taskID, err)
		}
		out = append(out, r)
	}
	sortResults(out)
	return out, nil
}
