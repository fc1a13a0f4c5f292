/*
 * @module service/monitoring/metrics_collector
 * @description 指标收集器，将流水线统计快照导出为Prometheus指标，并收集Go运行时指标
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 采集请求 -> 读取统计快照 -> 构造指标 -> 暴露给/metrics
 * @rules 计数类指标来自快照的单调计数，瞬时指标在采集时刻读取
 * @dependencies github.com/prometheus/client_golang/prometheus
 * @refs service/pipeline/pipeline_service.go, main.go
 */

package monitoring

import (
	"runtime"
	"time"

	"burnout-service/service/models"

	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource 流水线统计来源
type StatsSource interface {
	GetStatistics() models.StatsSnapshot
	State() models.PipelineState
}

// PipelineCollector 流水线指标采集器
// 统计计数由流水线自己维护，这里在每次采集时读取快照导出
type PipelineCollector struct {
	source StatsSource

	processedDesc    *prometheus.Desc
	errorsDesc       *prometheus.Desc
	cacheHitsDesc    *prometheus.Desc
	alertsDesc       *prometheus.Desc
	errorRateDesc    *prometheus.Desc
	avgLatencyDesc   *prometheus.Desc
	cacheEntriesDesc *prometheus.Desc
	cacheHitRateDesc *prometheus.Desc
	queueDepthDesc   *prometheus.Desc
	runningDesc      *prometheus.Desc
}

// NewPipelineCollector 创建流水线指标采集器
func NewPipelineCollector(source StatsSource) *PipelineCollector {
	return &PipelineCollector{
		source: source,
		processedDesc: prometheus.NewDesc(
			"burnout_pipeline_processed_total",
			"已完成处理的请求总数（含失败）", nil, nil),
		errorsDesc: prometheus.NewDesc(
			"burnout_pipeline_errors_total",
			"处理失败的请求总数", nil, nil),
		cacheHitsDesc: prometheus.NewDesc(
			"burnout_pipeline_cache_hits_total",
			"结果缓存命中总数", nil, nil),
		alertsDesc: prometheus.NewDesc(
			"burnout_pipeline_alerts_total",
			"已触发的高风险告警总数", nil, nil),
		errorRateDesc: prometheus.NewDesc(
			"burnout_pipeline_error_rate",
			"错误率（失败数/处理数）", nil, nil),
		avgLatencyDesc: prometheus.NewDesc(
			"burnout_pipeline_avg_latency_ms",
			"成功请求的增量加权平均延迟（毫秒）", nil, nil),
		cacheEntriesDesc: prometheus.NewDesc(
			"burnout_pipeline_cache_entries",
			"当前结果缓存条目数", nil, nil),
		cacheHitRateDesc: prometheus.NewDesc(
			"burnout_pipeline_cache_hit_rate",
			"缓存命中率（当前缓存条目数/处理数）", nil, nil),
		queueDepthDesc: prometheus.NewDesc(
			"burnout_pipeline_queue_depth",
			"当前请求队列深度", nil, nil),
		runningDesc: prometheus.NewDesc(
			"burnout_pipeline_running",
			"流水线是否处于运行状态（1运行/0停止）", nil, nil),
	}
}

// Describe 实现prometheus.Collector
func (c *PipelineCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.processedDesc
	ch <- c.errorsDesc
	ch <- c.cacheHitsDesc
	ch <- c.alertsDesc
	ch <- c.errorRateDesc
	ch <- c.avgLatencyDesc
	ch <- c.cacheEntriesDesc
	ch <- c.cacheHitRateDesc
	ch <- c.queueDepthDesc
	ch <- c.runningDesc
}

// Collect 实现prometheus.Collector
func (c *PipelineCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot := c.source.GetStatistics()

	ch <- prometheus.MustNewConstMetric(c.processedDesc, prometheus.CounterValue, float64(snapshot.ProcessedCount))
	ch <- prometheus.MustNewConstMetric(c.errorsDesc, prometheus.CounterValue, float64(snapshot.ErrorCount))
	ch <- prometheus.MustNewConstMetric(c.cacheHitsDesc, prometheus.CounterValue, float64(snapshot.CacheHits))
	ch <- prometheus.MustNewConstMetric(c.alertsDesc, prometheus.CounterValue, float64(snapshot.AlertCount))
	ch <- prometheus.MustNewConstMetric(c.errorRateDesc, prometheus.GaugeValue, snapshot.ErrorRate)
	ch <- prometheus.MustNewConstMetric(c.avgLatencyDesc, prometheus.GaugeValue, snapshot.AvgLatencyMs)
	ch <- prometheus.MustNewConstMetric(c.cacheEntriesDesc, prometheus.GaugeValue, float64(snapshot.CacheEntries))
	ch <- prometheus.MustNewConstMetric(c.cacheHitRateDesc, prometheus.GaugeValue, snapshot.CacheHitRate)
	ch <- prometheus.MustNewConstMetric(c.queueDepthDesc, prometheus.GaugeValue, float64(snapshot.QueueDepth))

	running := 0.0
	if c.source.State() == models.PipelineStateRunning {
		running = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.runningDesc, prometheus.GaugeValue, running)
}

// SystemMetrics 系统运行时指标
type SystemMetrics struct {
	Timestamp      time.Time `json:"timestamp"`
	GoroutineCount int       `json:"goroutine_count"` // Goroutine数量
	HeapSize       uint64    `json:"heap_size"`       // 堆内存大小
	HeapObjects    uint64    `json:"heap_objects"`    // 堆对象数量
	GCCount        uint32    `json:"gc_count"`        // GC次数
}

// CollectSystemMetrics 收集系统运行时指标
func CollectSystemMetrics() *SystemMetrics {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &SystemMetrics{
		Timestamp:      time.Now(),
		GoroutineCount: runtime.NumGoroutine(),
		HeapSize:       memStats.HeapAlloc,
		HeapObjects:    memStats.HeapObjects,
		GCCount:        memStats.NumGC,
	}
}
