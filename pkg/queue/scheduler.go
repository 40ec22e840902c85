package queue

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"zuhaoku/pkg/logger"
)

// Scheduler 定时对账，上一轮未结束时跳过本轮
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler 按 cron 表达式（支持 @every）注册任务
func NewScheduler(spec string, job func(ctx context.Context)) (*Scheduler, error) {
	cl := cronLogger{}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := c.AddFunc(spec, func() { job(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

// Start 启动调度
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger 把 cron 日志写入 zap
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Logger.Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Logger.Sugar().Errorw("cron: "+msg, append(keysAndValues, zap.Error(err))...)
}
