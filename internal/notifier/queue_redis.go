package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisQueueKey = "notifications:queue"
	redisRetryKey = "notifications:retry"

	dequeuePollInterval = time.Second
	retryPromoteBatch   = 16
)

// RedisQueue is a Redis-backed queue: pending jobs live in a list, delayed
// retries in a sorted set scored by their due time. Jobs survive process
// restarts, which the in-memory queue cannot offer.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue builds a queue on the given client.
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return q.client.LPush(ctx, redisQueueKey, payload).Err()
}

func (q *RedisQueue) EnqueueAfter(ctx context.Context, job Job, delay time.Duration) error {
	if delay <= 0 {
		return q.Enqueue(ctx, job)
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	due := float64(time.Now().Add(delay).UnixMilli())
	return q.client.ZAdd(ctx, redisRetryKey, redis.Z{Score: due, Member: payload}).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context) (Job, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Job{}, err
		}
		if err := q.promoteDue(ctx); err != nil && ctx.Err() != nil {
			return Job{}, ctx.Err()
		}

		res, err := q.client.BRPop(ctx, dequeuePollInterval, redisQueueKey).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return Job{}, ctx.Err()
			}
			return Job{}, err
		}
		// BRPop returns [key, value]
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return Job{}, fmt.Errorf("unmarshal job: %w", err)
		}
		return job, nil
	}
}

// promoteDue moves retry-set members whose due time has passed back onto
// the pending list.
func (q *RedisQueue) promoteDue(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	members, err := q.client.ZRangeByScore(ctx, redisRetryKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: retryPromoteBatch,
	}).Result()
	if err != nil {
		return err
	}
	for _, member := range members {
		removed, err := q.client.ZRem(ctx, redisRetryKey, member).Result()
		if err != nil {
			return err
		}
		// another worker may have promoted it first
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, redisQueueKey, member).Err(); err != nil {
			return err
		}
	}
	return nil
}
