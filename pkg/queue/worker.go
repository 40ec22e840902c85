package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/logger"
)

// Worker 队列工作器
type Worker struct {
	queue    Queue
	handler  Handler
	stopChan chan struct{}
	stopOnce sync.Once
	metrics  *QueueMetrics
	wg       sync.WaitGroup
	config   WorkerConfig
}

// WorkerConfig 工作器配置
type WorkerConfig struct {
	WorkerCount     int           // 并发工作器数量
	MaxRetries      int           // 网关错误的最大重试次数
	RetryInterval   time.Duration // 重试间隔
	TaskTimeout     time.Duration // 单个任务超时时间
	PollInterval    time.Duration // 空队列时单次阻塞等待时间
	ShutdownTimeout time.Duration // 关闭超时时间
}

// NewWorker 创建新的工作器组
func NewWorker(q Queue, handler Handler, config WorkerConfig) *Worker {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 4
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = 30 * time.Second
	}
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 30 * time.Second
	}

	return &Worker{
		queue:    q,
		handler:  handler,
		stopChan: make(chan struct{}),
		metrics:  NewQueueMetrics("worker"),
		config:   config,
	}
}

// Start 启动工作器组
func (w *Worker) Start() {
	for i := 0; i < w.config.WorkerCount; i++ {
		w.wg.Add(1)
		go w.startWorker(i)
	}
}

// startWorker 启动单个工作器
func (w *Worker) startWorker(id int) {
	defer w.wg.Done()

	logger.InfoString("Worker", "Start", fmt.Sprintf("Worker %d started", id))

	for {
		select {
		case <-w.stopChan:
			logger.InfoString("Worker", "Stop", fmt.Sprintf("Worker %d stopping", id))
			return
		default:
		}

		if err := w.processNextTask(); err != nil {
			logger.ErrorString("Worker", "Error", fmt.Sprintf("Worker %d error: %v", id, err))
			w.sleep(time.Second)
		}
	}
}

// processNextTask 取出并处理一个任务
func (w *Worker) processNextTask() error {
	task, err := w.queue.Pop(context.Background(), w.config.PollInterval)
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}

	defer func() {
		if err := w.queue.Done(context.Background(), task); err != nil {
			logger.WarnString("Worker", "Done", err.Error())
		}
	}()
	return w.handleTask(task)
}

// handleTask 处理单个任务，只有网关错误会重试
func (w *Worker) handleTask(task *Task) error {
	start := time.Now()
	defer func() {
		w.metrics.RecordLatency(OpProcess, time.Since(start))
	}()

	for {
		task.Attempts++
		ctx, cancel := context.WithTimeout(context.Background(), w.config.TaskTimeout)
		err := w.handler.HandleTask(ctx, task)
		cancel()

		if err == nil {
			w.metrics.RecordSuccess(OpProcess)
			return nil
		}
		if !errs.IsRetryable(err) || task.Attempts > w.config.MaxRetries {
			w.metrics.RecordError(OpProcess)
			return fmt.Errorf("task %s (%s %s) failed after %d attempts: %w", task.ID, task.Kind, task.TransactionID, task.Attempts, err)
		}

		logger.WarnString("Worker", "Retry", fmt.Sprintf("task %s attempt %d: %v", task.ID, task.Attempts, err))
		if !w.sleep(w.config.RetryInterval) {
			return nil
		}
	}
}

// sleep 可被 Stop 打断，被打断时返回 false
func (w *Worker) sleep(d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-w.stopChan:
		return false
	}
}

// Stop 优雅关闭工作器组
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoString("Worker", "Stop", "All workers stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		logger.WarnString("Worker", "Stop", "Worker shutdown timed out")
	}
}
