package lease

import (
	"context"
	"fmt"

	"zuhaoku/pkg/errs"
	"zuhaoku/pkg/logger"
	"zuhaoku/pkg/payment/types"
	"zuhaoku/pkg/queue"
)

// SweepReport 一轮对账扫描的结果
type SweepReport struct {
	Polls   int
	Repairs int
}

// Sweep 扫描需要对账的支付记录并投递任务：
// 超过宽限期仍待支付的记录向网关查询；支付已成功但订单仍待支付的记录按本地记录修复
func (s *Service) Sweep(ctx context.Context, d queue.Dispatcher) (SweepReport, error) {
	var report SweepReport

	stale, err := s.payments.ListStalePending(ctx, s.now().Add(-s.cfg.PendingGrace), s.cfg.SweepLimit)
	if err != nil {
		return report, err
	}
	for _, p := range stale {
		if err := d.Dispatch(ctx, queue.NewTask(queue.KindPoll, p.TransactionID)); err != nil {
			return report, err
		}
		report.Polls++
	}

	paid, err := s.payments.ListPaidButPaying(ctx, s.cfg.SweepLimit)
	if err != nil {
		return report, err
	}
	for _, p := range paid {
		if err := d.Dispatch(ctx, queue.NewTask(queue.KindRepair, p.TransactionID)); err != nil {
			return report, err
		}
		report.Repairs++
	}

	if report.Polls > 0 || report.Repairs > 0 {
		logger.InfoString("Lease", "Sweep", fmt.Sprintf("投递对账任务：查询 %d，修复 %d", report.Polls, report.Repairs))
	}
	return report, nil
}

// HandleTask 执行对账任务，实现 queue.Handler
func (s *Service) HandleTask(ctx context.Context, task *queue.Task) error {
	var sig Signal
	switch task.Kind {
	case queue.KindPoll:
		sig = Signal{TransactionID: task.TransactionID, Trust: TrustUnverified, Source: SourceSweep}
	case queue.KindRepair:
		sig = Signal{TransactionID: task.TransactionID, Status: types.TradeSuccess, Trust: TrustRecorded, Source: SourceRepair}
	default:
		return errs.Validation("TASK_KIND_UNKNOWN", "未知的对账任务类型: "+string(task.Kind))
	}

	_, err := s.ConfirmPayment(ctx, sig)
	return err
}
