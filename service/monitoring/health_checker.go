/*
 * @module service/monitoring/health_checker
 * @description 健康检查器，聚合流水线、数据库、Redis等组件的健康状态
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 组件检测 -> 状态聚合 -> 整体评级
 * @rules 任一组件critical则整体critical，任一warning则整体warning
 * @dependencies gorm.io/gorm, github.com/go-redis/redis/v8
 * @refs api/controllers/health_controller.go
 */

package monitoring

import (
	"context"
	"sync"
	"time"

	"burnout-service/service/models"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 组件健康等级
const (
	ComponentHealthy  = "healthy"
	ComponentWarning  = "warning"
	ComponentCritical = "critical"
)

// PipelineHealthSource 流水线健康来源
type PipelineHealthSource interface {
	HealthCheck() models.HealthStatus
}

// HealthChecker 健康检查器
type HealthChecker struct {
	db          *gorm.DB
	redisClient *redis.Client
	pipeline    PipelineHealthSource
	startedAt   time.Time
	mutex       sync.RWMutex
	lastResult  *ServiceHealth
}

// ComponentHealth 组件健康状态
type ComponentHealth struct {
	Name         string                 `json:"name"`
	Status       string                 `json:"status"` // healthy, warning, critical
	LastChecked  time.Time              `json:"last_checked"`
	ResponseTime time.Duration          `json:"response_time"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// ServiceHealth 服务整体健康状态
type ServiceHealth struct {
	Overall    string                      `json:"overall"` // healthy, warning, critical
	Timestamp  time.Time                   `json:"timestamp"`
	Uptime     string                      `json:"uptime"`
	Components map[string]*ComponentHealth `json:"components"`
	System     *SystemMetrics              `json:"system"`
}

// NewHealthChecker 创建健康检查器，db与redisClient可为空
func NewHealthChecker(db *gorm.DB, redisClient *redis.Client, pipeline PipelineHealthSource) *HealthChecker {
	return &HealthChecker{
		db:          db,
		redisClient: redisClient,
		pipeline:    pipeline,
		startedAt:   time.Now(),
	}
}

// CheckHealth 执行一次完整健康检查
func (h *HealthChecker) CheckHealth(ctx context.Context) *ServiceHealth {
	components := make(map[string]*ComponentHealth)

	components["pipeline"] = h.checkPipeline()
	if h.db != nil {
		components["database"] = h.checkDatabase(ctx)
	}
	if h.redisClient != nil {
		components["redis"] = h.checkRedis(ctx)
	}

	result := &ServiceHealth{
		Overall:    aggregateStatus(components),
		Timestamp:  time.Now(),
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Components: components,
		System:     CollectSystemMetrics(),
	}

	h.mutex.Lock()
	h.lastResult = result
	h.mutex.Unlock()

	return result
}

// LastResult 返回最近一次检查结果，尚未检查过时返回nil
func (h *HealthChecker) LastResult() *ServiceHealth {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.lastResult
}

// checkPipeline 检查流水线健康
func (h *HealthChecker) checkPipeline() *ComponentHealth {
	start := time.Now()
	status := h.pipeline.HealthCheck()

	component := &ComponentHealth{
		Name:         "pipeline",
		Status:       ComponentHealthy,
		LastChecked:  time.Now(),
		ResponseTime: time.Since(start),
		Details: map[string]interface{}{
			"state":  status.State,
			"issues": status.Issues,
		},
	}

	switch status.Status {
	case models.PipelineDegraded:
		component.Status = ComponentWarning
	case models.PipelineUnhealthy:
		component.Status = ComponentCritical
	}
	if len(status.Issues) > 0 {
		component.ErrorMessage = status.Issues[0].Message
	}
	return component
}

// checkDatabase 检查数据库连通性
func (h *HealthChecker) checkDatabase(ctx context.Context) *ComponentHealth {
	component := &ComponentHealth{
		Name:        "database",
		Status:      ComponentHealthy,
		LastChecked: time.Now(),
	}

	start := time.Now()
	sqlDB, err := h.db.DB()
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		err = sqlDB.PingContext(pingCtx)
	}
	component.ResponseTime = time.Since(start)

	if err != nil {
		component.Status = ComponentCritical
		component.ErrorMessage = err.Error()
	}
	return component
}

// checkRedis 检查Redis连通性
func (h *HealthChecker) checkRedis(ctx context.Context) *ComponentHealth {
	component := &ComponentHealth{
		Name:        "redis",
		Status:      ComponentHealthy,
		LastChecked: time.Now(),
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	err := h.redisClient.Ping(pingCtx).Err()
	component.ResponseTime = time.Since(start)

	if err != nil {
		// Redis只承担限流与结果分发，故障降级为warning
		component.Status = ComponentWarning
		component.ErrorMessage = err.Error()
	}
	return component
}

// aggregateStatus 聚合所有组件状态为整体评级
func aggregateStatus(components map[string]*ComponentHealth) string {
	overall := ComponentHealthy
	for _, component := range components {
		switch component.Status {
		case ComponentCritical:
			return ComponentCritical
		case ComponentWarning:
			overall = ComponentWarning
		}
	}
	return overall
}
