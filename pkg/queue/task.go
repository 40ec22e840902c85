package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind 对账任务类型
type Kind string

const (
	// KindPoll 向网关查询待支付记录的状态
	KindPoll Kind = "poll"
	// KindRepair 支付已成功但订单仍待支付，按本地记录修复
	KindRepair Kind = "repair"
)

// Task 对账任务
type Task struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	TransactionID string    `json:"transaction_id"`
	Attempts      int       `json:"attempts"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewTask 创建任务
func NewTask(kind Kind, transactionID string) *Task {
	return &Task{
		ID:            uuid.NewString(),
		Kind:          kind,
		TransactionID: transactionID,
		CreatedAt:     time.Now(),
	}
}

// dedupKey 同一交易同一类型的任务在队列中只保留一个
func (t *Task) dedupKey() string {
	return string(t.Kind) + ":" + t.TransactionID
}

// Handler 任务处理器
type Handler interface {
	HandleTask(ctx context.Context, task *Task) error
}

// HandlerFunc 函数适配为 Handler
type HandlerFunc func(ctx context.Context, task *Task) error

// HandleTask 实现 Handler
func (f HandlerFunc) HandleTask(ctx context.Context, task *Task) error {
	return f(ctx, task)
}

// Dispatcher 任务投递
type Dispatcher interface {
	Dispatch(ctx context.Context, task *Task) error
}

// Queue 工作器消费的队列
type Queue interface {
	Dispatcher
	// Pop 最多阻塞 timeout，队列为空时返回 nil, nil
	Pop(ctx context.Context, timeout time.Duration) (*Task, error)
	// Done 任务处理结束，释放去重标记
	Done(ctx context.Context, task *Task) error
}
