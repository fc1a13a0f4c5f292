/*
 * @module service/models/pipeline
 * @description 推理流水线相关模型定义，包括流水线状态机、运行配置、统计快照与健康状态
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow Stopped -> Starting -> Running -> Stopping -> Stopped
 * @rules 配置必须通过 Validate 校验后才能用于启动流水线
 * @dependencies time, gopkg.in/yaml.v3
 * @refs service/pipeline
 */

package models

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// PipelineState 流水线状态枚举
type PipelineState string

const (
	PipelineStateStopped  PipelineState = "stopped"
	PipelineStateStarting PipelineState = "starting"
	PipelineStateRunning  PipelineState = "running"
	PipelineStateStopping PipelineState = "stopping"
)

// PipelineHealth 流水线健康状态枚举
type PipelineHealth string

const (
	PipelineHealthy   PipelineHealth = "healthy"
	PipelineDegraded  PipelineHealth = "degraded"
	PipelineUnhealthy PipelineHealth = "unhealthy"
)

// PipelineConfig 流水线运行配置
type PipelineConfig struct {
	BatchSize           int           `json:"batch_size" yaml:"batch_size"`                       // 单批最大请求数
	BatchWindow         time.Duration `json:"batch_window" yaml:"batch_window"`                   // 凑批等待窗口
	CacheTTL            time.Duration `json:"cache_ttl" yaml:"cache_ttl"`                         // 结果缓存存活时间
	SweepInterval       time.Duration `json:"sweep_interval" yaml:"sweep_interval"`               // 缓存清扫周期
	QueueCapacity       int           `json:"queue_capacity" yaml:"queue_capacity"`               // 请求队列容量
	MaxWorkers          int           `json:"max_workers" yaml:"max_workers"`                     // 批处理并发上限
	RequestTimeout      time.Duration `json:"request_timeout" yaml:"request_timeout"`             // 单请求等待超时
	IdleSleep           time.Duration `json:"idle_sleep" yaml:"idle_sleep"`                       // 空批休眠时间
	StatsRefreshInterval time.Duration `json:"stats_refresh_interval" yaml:"stats_refresh_interval"` // 统计刷新周期
	StopGraceTimeout    time.Duration `json:"stop_grace_timeout" yaml:"stop_grace_timeout"`       // 停止时的排空宽限
	QueueDepthThreshold int           `json:"queue_depth_threshold" yaml:"queue_depth_threshold"` // 队列深度健康阈值
	ErrorRateThreshold  float64       `json:"error_rate_threshold" yaml:"error_rate_threshold"`   // 错误率健康阈值
	LatencyThresholdMs  float64       `json:"latency_threshold_ms" yaml:"latency_threshold_ms"`   // 平均延迟健康阈值（毫秒）
}

// GetDefaultPipelineConfig 获取流水线默认配置
func GetDefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		BatchSize:            32,
		BatchWindow:          200 * time.Millisecond,
		CacheTTL:             5 * time.Minute,
		SweepInterval:        60 * time.Second,
		QueueCapacity:        1000,
		MaxWorkers:           4,
		RequestTimeout:       30 * time.Second,
		IdleSleep:            50 * time.Millisecond,
		StatsRefreshInterval: 10 * time.Second,
		StopGraceTimeout:     30 * time.Second,
		QueueDepthThreshold:  1000,
		ErrorRateThreshold:   0.1,
		LatencyThresholdMs:   5000,
	}
}

// Validate 校验流水线配置
func (c *PipelineConfig) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size 必须大于0")
	}
	if c.BatchWindow <= 0 {
		return fmt.Errorf("batch_window 必须大于0")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl 必须大于0")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval 必须大于0")
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("queue_capacity 必须大于0")
	}
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers 必须大于0")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout 必须大于0")
	}
	if c.ErrorRateThreshold <= 0 || c.ErrorRateThreshold > 1 {
		return fmt.Errorf("error_rate_threshold 必须在(0,1]区间内")
	}
	return nil
}

// UnmarshalYAML 支持 "200ms"、"5m" 这类时长字符串写法，未出现的字段保留原值
func (c *PipelineConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		BatchSize            *int     `yaml:"batch_size"`
		BatchWindow          *string  `yaml:"batch_window"`
		CacheTTL             *string  `yaml:"cache_ttl"`
		SweepInterval        *string  `yaml:"sweep_interval"`
		QueueCapacity        *int     `yaml:"queue_capacity"`
		MaxWorkers           *int     `yaml:"max_workers"`
		RequestTimeout       *string  `yaml:"request_timeout"`
		IdleSleep            *string  `yaml:"idle_sleep"`
		StatsRefreshInterval *string  `yaml:"stats_refresh_interval"`
		StopGraceTimeout     *string  `yaml:"stop_grace_timeout"`
		QueueDepthThreshold  *int     `yaml:"queue_depth_threshold"`
		ErrorRateThreshold   *float64 `yaml:"error_rate_threshold"`
		LatencyThresholdMs   *float64 `yaml:"latency_threshold_ms"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	setIntField := func(target *int, value *int) {
		if value != nil {
			*target = *value
		}
	}
	setDurationField := func(target *time.Duration, value *string, name string) error {
		if value == nil {
			return nil
		}
		parsed, err := time.ParseDuration(*value)
		if err != nil {
			return fmt.Errorf("%s 不是合法的时长格式: %v", name, err)
		}
		*target = parsed
		return nil
	}
	setIntField(&c.BatchSize, raw.BatchSize)
	setIntField(&c.QueueCapacity, raw.QueueCapacity)
	setIntField(&c.MaxWorkers, raw.MaxWorkers)
	setIntField(&c.QueueDepthThreshold, raw.QueueDepthThreshold)
	if raw.ErrorRateThreshold != nil {
		c.ErrorRateThreshold = *raw.ErrorRateThreshold
	}
	if raw.LatencyThresholdMs != nil {
		c.LatencyThresholdMs = *raw.LatencyThresholdMs
	}
	durations := []struct {
		target *time.Duration
		value  *string
		name   string
	}{
		{&c.BatchWindow, raw.BatchWindow, "batch_window"},
		{&c.CacheTTL, raw.CacheTTL, "cache_ttl"},
		{&c.SweepInterval, raw.SweepInterval, "sweep_interval"},
		{&c.RequestTimeout, raw.RequestTimeout, "request_timeout"},
		{&c.IdleSleep, raw.IdleSleep, "idle_sleep"},
		{&c.StatsRefreshInterval, raw.StatsRefreshInterval, "stats_refresh_interval"},
		{&c.StopGraceTimeout, raw.StopGraceTimeout, "stop_grace_timeout"},
	}
	for _, item := range durations {
		if err := setDurationField(item.target, item.value, item.name); err != nil {
			return err
		}
	}
	return nil
}

// StatsSnapshot 流水线运行统计快照
// 计数类字段单调递增，队列深度与缓存命中率为瞬时值
type StatsSnapshot struct {
	ProcessedCount int64     `json:"processed_count"` // 已完成处理的请求数（含失败）
	ErrorCount     int64     `json:"error_count"`     // 失败请求数
	ErrorRate      float64   `json:"error_rate"`      // 错误率 = 失败数/处理数
	AvgLatencyMs   float64   `json:"avg_latency_ms"`  // 增量加权平均延迟
	CacheHits      int64     `json:"cache_hits"`      // 缓存命中次数
	CacheEntries   int       `json:"cache_entries"`   // 当前缓存条目数
	CacheHitRate   float64   `json:"cache_hit_rate"`  // 缓存命中率 = 缓存条目数/处理数
	QueueDepth     int       `json:"queue_depth"`     // 当前队列深度
	AlertCount     int64     `json:"alert_count"`     // 已触发告警数
	CollectedAt    time.Time `json:"collected_at"`
}

// HealthIssue 健康问题描述
type HealthIssue struct {
	Component string `json:"component"` // queue/error_rate/latency/state
	Severity  string `json:"severity"`  // warning/critical
	Message   string `json:"message"`
}

// HealthStatus 流水线健康状态
type HealthStatus struct {
	Status    PipelineHealth `json:"status"`
	State     PipelineState  `json:"state"`
	Issues    []HealthIssue  `json:"issues"`
	CheckedAt time.Time      `json:"checked_at"`
}
