package bootstrap

import (
	"context"
	"fmt"
	"time"

	"zuhaoku/app/services/lease"
	"zuhaoku/pkg/config"
	"zuhaoku/pkg/logger"
	"zuhaoku/pkg/queue"
	"zuhaoku/pkg/redis"
)

// Reconciler 对账任务：定时扫描投递到队列，工作器消费
type Reconciler struct {
	queue     queue.Queue
	worker    *queue.Worker
	scheduler *queue.Scheduler
}

// SetupQueue 有 Redis 时使用 Redis 队列，多实例共享去重；否则使用进程内队列
func SetupQueue(svc *lease.Service) (*Reconciler, error) {
	var q queue.Queue
	if redis.Enabled() {
		q = queue.NewQueueService(redis.GetRedis(redis.QueueDB))
	} else {
		q = queue.NewMemoryQueue(config.GetInt("queue.memory_size", 1024))
	}

	worker := queue.NewWorker(q, svc, queue.WorkerConfig{
		WorkerCount:   config.GetInt("queue.worker_count", 4),
		MaxRetries:    config.GetInt("queue.retry_times", 3),
		RetryInterval: time.Duration(config.GetInt("queue.retry_delay", 5)) * time.Second,
		TaskTimeout:   time.Duration(config.GetInt("order.poll_timeout", 8)+2) * time.Second,
	})

	scheduler, err := queue.NewScheduler(config.GetString("queue.sweep_spec", "@every 1m"), func(ctx context.Context) {
		if _, err := svc.Sweep(ctx, q); err != nil {
			logger.ErrorString("Queue", "Sweep", "对账扫描失败: "+err.Error())
		}
	})
	if err != nil {
		return nil, err
	}

	return &Reconciler{queue: q, worker: worker, scheduler: scheduler}, nil
}

// Start 启动工作器和定时扫描
func (r *Reconciler) Start() {
	r.worker.Start()
	r.scheduler.Start()
	logger.InfoString("Queue", "Setup", "对账服务启动成功")
}

// Stop 先停止扫描，再等待工作器处理完手上的任务
func (r *Reconciler) Stop() {
	r.scheduler.Stop()
	r.worker.Stop()
}

// ReconcileOnce 扫描一次并在当前协程内逐个执行任务，单个任务失败只记录日志
func ReconcileOnce(ctx context.Context, svc *lease.Service) (lease.SweepReport, error) {
	var failed int
	inline := dispatchFunc(func(ctx context.Context, task *queue.Task) error {
		if err := svc.HandleTask(ctx, task); err != nil {
			failed++
			logger.WarnString("Queue", "ReconcileOnce", fmt.Sprintf("任务 %s %s 失败: %v", task.Kind, task.TransactionID, err))
		}
		return nil
	})

	report, err := svc.Sweep(ctx, inline)
	if err != nil {
		return report, err
	}
	logger.InfoString("Queue", "ReconcileOnce", fmt.Sprintf("对账完成：查询 %d，修复 %d，失败 %d", report.Polls, report.Repairs, failed))
	return report, nil
}

type dispatchFunc func(ctx context.Context, task *queue.Task) error

func (f dispatchFunc) Dispatch(ctx context.Context, task *queue.Task) error {
	return f(ctx, task)
}
