package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"zuhaoku/pkg/config"
	"zuhaoku/pkg/redis"
)

// QueueService Redis 队列，LPUSH 入队、BRPOP 出队，同一交易的任务用 SETNX 去重
type QueueService struct {
	client      *redis.RedisClient
	prefix      string
	timeout     time.Duration
	rateLimiter *rate.Limiter
	metrics     *QueueMetrics
}

// NewQueueService 创建新的队列服务实例
func NewQueueService(client *redis.RedisClient) *QueueService {
	rateLimit := config.GetInt("queue.rate_limit", 50)
	burst := config.GetInt("queue.rate_burst", rateLimit)

	return &QueueService{
		client:      client,
		prefix:      config.GetString("redis.queue_prefix", "zuhaoku:reconcile"),
		timeout:     time.Duration(config.GetInt("redis.queue_timeout", 3600)) * time.Second,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), burst),
		metrics:     NewQueueMetrics("redis"),
	}
}

func (q *QueueService) tasksKey() string {
	return fmt.Sprintf("%s:tasks", q.prefix)
}

func (q *QueueService) pendingKey(task *Task) string {
	return fmt.Sprintf("%s:pending:%s", q.prefix, task.dedupKey())
}

// Dispatch 将任务推送到队列，已在队列中的同类任务直接忽略
func (q *QueueService) Dispatch(ctx context.Context, task *Task) error {
	if err := q.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	start := time.Now()
	defer func() {
		q.metrics.RecordLatency(OpPush, time.Since(start))
	}()

	taskJSON, err := json.Marshal(task)
	if err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	fresh, err := q.client.SetNX(ctx, q.pendingKey(task), task.ID, q.timeout)
	if err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to mark task: %w", err)
	}
	if !fresh {
		q.metrics.RecordSkip(OpPush)
		return nil
	}

	if err := q.client.Client.LPush(ctx, q.tasksKey(), taskJSON).Err(); err != nil {
		_ = q.client.Del(ctx, q.pendingKey(task))
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to push task: %w", err)
	}

	q.metrics.RecordSuccess(OpPush)
	return nil
}

// Pop 从队列中获取任务
func (q *QueueService) Pop(ctx context.Context, timeout time.Duration) (*Task, error) {
	result, err := q.client.Client.BRPop(ctx, timeout, q.tasksKey()).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		q.metrics.RecordError(OpPop)
		return nil, fmt.Errorf("failed to pop task from queue: %w", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("invalid result from queue")
	}

	var task Task
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		q.metrics.RecordError(OpPop)
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}

	q.metrics.RecordSuccess(OpPop)
	return &task, nil
}

// Done 释放去重标记
func (q *QueueService) Done(ctx context.Context, task *Task) error {
	return q.client.Del(ctx, q.pendingKey(task))
}

// Len 队列长度
func (q *QueueService) Len(ctx context.Context) (int64, error) {
	return q.client.Client.LLen(ctx, q.tasksKey()).Result()
}

// Ping 检查队列服务健康状态
func (q *QueueService) Ping() error {
	return q.client.Ping()
}
