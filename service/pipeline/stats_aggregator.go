/*
 * @module service/pipeline/stats_aggregator
 * @description 流水线滚动统计聚合器，维护处理量、错误率、增量加权平均延迟与缓存命中指标
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 批处理工作器写入计数 -> 统计刷新循环更新瞬时指标 -> 健康检查/接口读取快照
 * @rules 计数字段只增不减，瞬时指标（队列深度、缓存命中率）可回落
 * @dependencies sync, sync/atomic
 * @refs service/pipeline/batch_worker.go, service/monitoring
 */

package pipeline

import (
	"burnout-service/service/models"
	"sync"
	"sync/atomic"
	"time"
)

// StatsAggregator 滚动统计聚合器
// 计数用原子变量避免热路径加锁，平均延迟与瞬时指标由互斥锁保护
type StatsAggregator struct {
	processedCount atomic.Int64
	errorCount     atomic.Int64
	cacheHits      atomic.Int64
	alertCount     atomic.Int64

	mutex          sync.RWMutex
	latencySamples int64
	avgLatencyMs   float64
	queueDepth     int
	cacheEntries   int
	cacheHitRate   float64
}

// NewStatsAggregator 创建统计聚合器
func NewStatsAggregator() *StatsAggregator {
	return &StatsAggregator{}
}

// RecordSuccess 记录一次成功处理及其延迟
// 平均延迟采用增量加权均值: avg += (x - avg) / n，n为延迟样本数
func (s *StatsAggregator) RecordSuccess(latencyMs int64) {
	s.processedCount.Add(1)

	s.mutex.Lock()
	s.latencySamples++
	s.avgLatencyMs += (float64(latencyMs) - s.avgLatencyMs) / float64(s.latencySamples)
	s.mutex.Unlock()
}

// RecordFailures 记录n次失败处理，失败同样计入处理总数
func (s *StatsAggregator) RecordFailures(n int) {
	if n <= 0 {
		return
	}
	s.processedCount.Add(int64(n))
	s.errorCount.Add(int64(n))
}

// RecordCacheHit 记录一次缓存命中
func (s *StatsAggregator) RecordCacheHit() {
	s.cacheHits.Add(1)
}

// RecordAlert 记录一次告警触发
func (s *StatsAggregator) RecordAlert() {
	s.alertCount.Add(1)
}

// UpdateGauges 刷新瞬时指标
// 缓存命中率按「存活缓存条目数/处理总数」口径周期性重算
func (s *StatsAggregator) UpdateGauges(queueDepth, cacheEntries int) {
	processed := s.processedCount.Load()

	s.mutex.Lock()
	s.queueDepth = queueDepth
	s.cacheEntries = cacheEntries
	if processed > 0 {
		s.cacheHitRate = float64(cacheEntries) / float64(processed)
	} else {
		s.cacheHitRate = 0
	}
	s.mutex.Unlock()
}

// Snapshot 取当前统计快照，调用方只读
func (s *StatsAggregator) Snapshot() models.StatsSnapshot {
	processed := s.processedCount.Load()
	errors := s.errorCount.Load()

	var errorRate float64
	if processed > 0 {
		errorRate = float64(errors) / float64(processed)
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return models.StatsSnapshot{
		ProcessedCount: processed,
		ErrorCount:     errors,
		ErrorRate:      errorRate,
		AvgLatencyMs:   s.avgLatencyMs,
		CacheHits:      s.cacheHits.Load(),
		CacheEntries:   s.cacheEntries,
		CacheHitRate:   s.cacheHitRate,
		QueueDepth:     s.queueDepth,
		AlertCount:     s.alertCount.Load(),
		CollectedAt:    time.Now(),
	}
}

// Reset 清零全部统计，仅在流水线重新启动时调用
func (s *StatsAggregator) Reset() {
	s.processedCount.Store(0)
	s.errorCount.Store(0)
	s.cacheHits.Store(0)
	s.alertCount.Store(0)

	s.mutex.Lock()
	s.latencySamples = 0
	s.avgLatencyMs = 0
	s.queueDepth = 0
	s.cacheEntries = 0
	s.cacheHitRate = 0
	s.mutex.Unlock()
}
