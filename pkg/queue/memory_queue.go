package queue

import (
	"context"
	"sync"
	"time"

	"zuhaoku/pkg/errs"
)

// MemoryQueue 进程内队列，未配置 Redis 时使用
type MemoryQueue struct {
	tasks   chan *Task
	mu      sync.Mutex
	pending map[string]struct{}
	metrics *QueueMetrics
}

// NewMemoryQueue 创建进程内队列
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1024
	}
	return &MemoryQueue{
		tasks:   make(chan *Task, size),
		pending: make(map[string]struct{}),
		metrics: NewQueueMetrics("memory"),
	}
}

// Dispatch 入队，重复任务直接忽略
func (q *MemoryQueue) Dispatch(ctx context.Context, task *Task) error {
	q.mu.Lock()
	if _, ok := q.pending[task.dedupKey()]; ok {
		q.mu.Unlock()
		q.metrics.RecordSkip(OpPush)
		return nil
	}
	q.pending[task.dedupKey()] = struct{}{}
	q.mu.Unlock()

	select {
	case q.tasks <- task:
		q.metrics.RecordSuccess(OpPush)
		return nil
	case <-ctx.Done():
		q.release(task)
		q.metrics.RecordError(OpPush)
		return ctx.Err()
	default:
		q.release(task)
		q.metrics.RecordError(OpPush)
		return errs.Wrap(errs.KindInternal, "QUEUE_FULL", "对账队列已满", nil)
	}
}

// Pop 取出任务
func (q *MemoryQueue) Pop(ctx context.Context, timeout time.Duration) (*Task, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case task := <-q.tasks:
		q.metrics.RecordSuccess(OpPop)
		return task, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done 释放去重标记
func (q *MemoryQueue) Done(_ context.Context, task *Task) error {
	q.release(task)
	return nil
}

// Len 队列长度
func (q *MemoryQueue) Len() int {
	return len(q.tasks)
}

func (q *MemoryQueue) release(task *Task) {
	q.mu.Lock()
	delete(q.pending, task.dedupKey())
	q.mu.Unlock()
}
