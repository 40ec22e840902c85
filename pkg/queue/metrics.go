package queue

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"zuhaoku/pkg/metrics"
)

// MetricOperation 定义指标操作类型
type MetricOperation string

const (
	OpPush    MetricOperation = "push"
	OpPop     MetricOperation = "pop"
	OpProcess MetricOperation = "process"
)

var (
	taskOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zuhaoku",
			Subsystem: "queue",
			Name:      "operations_total",
			Help:      "Queue operations by backend, operation and result.",
		},
		[]string{"backend", "op", "result"},
	)

	opLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zuhaoku",
			Subsystem: "queue",
			Name:      "operation_duration_seconds",
			Help:      "Duration of queue operations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"backend", "op"},
	)
)

func init() {
	metrics.Registry.MustRegister(taskOps, opLatency)
}

// QueueMetrics 队列指标，按后端区分
type QueueMetrics struct {
	backend string
}

// NewQueueMetrics 创建指标收集器
func NewQueueMetrics(backend string) *QueueMetrics {
	return &QueueMetrics{backend: backend}
}

// RecordSuccess 记录成功操作
func (m *QueueMetrics) RecordSuccess(op MetricOperation) {
	taskOps.WithLabelValues(m.backend, string(op), "success").Inc()
}

// RecordError 记录失败操作
func (m *QueueMetrics) RecordError(op MetricOperation) {
	taskOps.WithLabelValues(m.backend, string(op), "error").Inc()
}

// RecordSkip 记录被去重跳过的操作
func (m *QueueMetrics) RecordSkip(op MetricOperation) {
	taskOps.WithLabelValues(m.backend, string(op), "skipped").Inc()
}

// RecordLatency 记录耗时
func (m *QueueMetrics) RecordLatency(op MetricOperation, d time.Duration) {
	opLatency.WithLabelValues(m.backend, string(op)).Observe(d.Seconds())
}
