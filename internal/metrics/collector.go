// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector 指标收集器
type Collector struct {
	// 会话池指标
	poolSessions      *prometheus.GaugeVec
	poolAcquiresTotal *prometheus.CounterVec
	poolEvictions     prometheus.Counter

	// 任务执行指标
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	taskResultsTotal   *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.poolSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_sessions",
			Help:      "Number of automation sessions in the pool by state",
		},
		[]string{"state"},
	)

	c.poolAcquiresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_acquires_total",
			Help:      "Total context acquisitions by outcome",
		},
		[]string{"outcome"},
	)

	c.poolEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_evictions_total",
			Help:      "Total idle sessions torn down by maintenance",
		},
	)

	c.evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Total job evaluations by result",
		},
		[]string{"job_id", "result"},
	)

	c.evaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Wall-clock duration of job evaluations",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	c.taskResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_results_total",
			Help:      "Total task attempts by task id and outcome",
		},
		[]string{"task_id", "outcome"},
	)

	return c
}

// SetPoolSessions 更新池内会话状态计数
func (c *Collector) SetPoolSessions(idle, active int) {
	if c == nil {
		return
	}
	c.poolSessions.WithLabelValues("idle").Set(float64(idle))
	c.poolSessions.WithLabelValues("active").Set(float64(active))
}

// RecordAcquire 记录一次上下文获取
func (c *Collector) RecordAcquire(outcome string) {
	if c == nil {
		return
	}
	c.poolAcquiresTotal.WithLabelValues(outcome).Inc()
}

// RecordEviction 记录一次空闲会话回收
func (c *Collector) RecordEviction() {
	if c == nil {
		return
	}
	c.poolEvictions.Inc()
}

// RecordEvaluation 记录一次评估结果
func (c *Collector) RecordEvaluation(jobID string, success bool, duration time.Duration) {
	if c == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	c.evaluationsTotal.WithLabelValues(jobID, result).Inc()
	c.evaluationDuration.Observe(duration.Seconds())
}

// RecordTaskResult 记录一次任务尝试
func (c *Collector) RecordTaskResult(taskID string, success bool) {
	if c == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.taskResultsTotal.WithLabelValues(taskID, outcome).Inc()
}
