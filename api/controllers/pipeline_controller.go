/*
 * @module api/controllers/pipeline_controller
 * @description 流水线管理控制器，提供启停、状态、统计与配置管理API
 * @architecture RESTful API架构 - 控制器层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow HTTP请求 -> 流水线控制 -> 响应返回
 * @rules 配置更新仅在流水线停止状态下生效，时长字段统一使用毫秒整数
 * @dependencies burnout-service/service/pipeline, github.com/go-chi/render
 * @refs service/pipeline/pipeline_service.go, service/config/config_manager.go
 */

package controllers

import (
	"net/http"
	"time"

	"burnout-service/service/config"
	"burnout-service/service/models"
	"burnout-service/service/pipeline"

	"github.com/go-chi/render"
)

// PipelineController 流水线管理控制器
type PipelineController struct {
	pipelineService *pipeline.PipelineService
	configManager   *config.Manager
}

// NewPipelineController 创建流水线管理控制器实例
func NewPipelineController(pipelineService *pipeline.PipelineService, configManager *config.Manager) *PipelineController {
	return &PipelineController{
		pipelineService: pipelineService,
		configManager:   configManager,
	}
}

// PipelineConfigDTO 流水线配置传输结构，时长字段为毫秒
type PipelineConfigDTO struct {
	BatchSize              int     `json:"batch_size" example:"32"`
	BatchWindowMs          int64   `json:"batch_window_ms" example:"200"`
	CacheTTLMs             int64   `json:"cache_ttl_ms" example:"300000"`
	SweepIntervalMs        int64   `json:"sweep_interval_ms" example:"60000"`
	QueueCapacity          int     `json:"queue_capacity" example:"1000"`
	MaxWorkers             int     `json:"max_workers" example:"4"`
	RequestTimeoutMs       int64   `json:"request_timeout_ms" example:"30000"`
	IdleSleepMs            int64   `json:"idle_sleep_ms" example:"50"`
	StatsRefreshIntervalMs int64   `json:"stats_refresh_interval_ms" example:"10000"`
	StopGraceTimeoutMs     int64   `json:"stop_grace_timeout_ms" example:"30000"`
	QueueDepthThreshold    int     `json:"queue_depth_threshold" example:"1000"`
	ErrorRateThreshold     float64 `json:"error_rate_threshold" example:"0.1"`
	LatencyThresholdMs     float64 `json:"latency_threshold_ms" example:"5000"`
}

// fromConfig 由内部配置构造传输结构
func fromConfig(cfg models.PipelineConfig) PipelineConfigDTO {
	return PipelineConfigDTO{
		BatchSize:              cfg.BatchSize,
		BatchWindowMs:          cfg.BatchWindow.Milliseconds(),
		CacheTTLMs:             cfg.CacheTTL.Milliseconds(),
		SweepIntervalMs:        cfg.SweepInterval.Milliseconds(),
		QueueCapacity:          cfg.QueueCapacity,
		MaxWorkers:             cfg.MaxWorkers,
		RequestTimeoutMs:       cfg.RequestTimeout.Milliseconds(),
		IdleSleepMs:            cfg.IdleSleep.Milliseconds(),
		StatsRefreshIntervalMs: cfg.StatsRefreshInterval.Milliseconds(),
		StopGraceTimeoutMs:     cfg.StopGraceTimeout.Milliseconds(),
		QueueDepthThreshold:    cfg.QueueDepthThreshold,
		ErrorRateThreshold:     cfg.ErrorRateThreshold,
		LatencyThresholdMs:     cfg.LatencyThresholdMs,
	}
}

// toConfig 转为内部配置，零值字段沿用当前配置
func (d *PipelineConfigDTO) toConfig(current models.PipelineConfig) models.PipelineConfig {
	cfg := current
	if d.BatchSize > 0 {
		cfg.BatchSize = d.BatchSize
	}
	if d.BatchWindowMs > 0 {
		cfg.BatchWindow = time.Duration(d.BatchWindowMs) * time.Millisecond
	}
	if d.CacheTTLMs > 0 {
		cfg.CacheTTL = time.Duration(d.CacheTTLMs) * time.Millisecond
	}
	if d.SweepIntervalMs > 0 {
		cfg.SweepInterval = time.Duration(d.SweepIntervalMs) * time.Millisecond
	}
	if d.QueueCapacity > 0 {
		cfg.QueueCapacity = d.QueueCapacity
	}
	if d.MaxWorkers > 0 {
		cfg.MaxWorkers = d.MaxWorkers
	}
	if d.RequestTimeoutMs > 0 {
		cfg.RequestTimeout = time.Duration(d.RequestTimeoutMs) * time.Millisecond
	}
	if d.IdleSleepMs > 0 {
		cfg.IdleSleep = time.Duration(d.IdleSleepMs) * time.Millisecond
	}
	if d.StatsRefreshIntervalMs > 0 {
		cfg.StatsRefreshInterval = time.Duration(d.StatsRefreshIntervalMs) * time.Millisecond
	}
	if d.StopGraceTimeoutMs > 0 {
		cfg.StopGraceTimeout = time.Duration(d.StopGraceTimeoutMs) * time.Millisecond
	}
	if d.QueueDepthThreshold > 0 {
		cfg.QueueDepthThreshold = d.QueueDepthThreshold
	}
	if d.ErrorRateThreshold > 0 {
		cfg.ErrorRateThreshold = d.ErrorRateThreshold
	}
	if d.LatencyThresholdMs > 0 {
		cfg.LatencyThresholdMs = d.LatencyThresholdMs
	}
	return cfg
}

// Start 启动流水线
// @Summary 启动流水线
// @Description 启动批处理工作器与缓存清扫器，重复启动返回错误
// @Tags 流水线管理
// @Produce json
// @Success 200 {object} APIResponse "启动成功"
// @Failure 409 {object} APIResponse "流水线已在运行"
// @Router /pipeline/start [post]
func (c *PipelineController) Start(w http.ResponseWriter, r *http.Request) {
	if err := c.pipelineService.Start(); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusConflict,
			Msg:    err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "流水线启动成功",
		Data:   map[string]string{"state": string(c.pipelineService.State())},
	})
}

// Stop 停止流水线
// @Summary 停止流水线
// @Description 停止接收新请求并在宽限期内排空在途批次
// @Tags 流水线管理
// @Produce json
// @Success 200 {object} APIResponse "停止成功"
// @Failure 409 {object} APIResponse "流水线未在运行"
// @Router /pipeline/stop [post]
func (c *PipelineController) Stop(w http.ResponseWriter, r *http.Request) {
	if err := c.pipelineService.Stop(); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusConflict,
			Msg:    err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "流水线停止成功",
		Data:   map[string]string{"state": string(c.pipelineService.State())},
	})
}

// GetStatus 查询流水线健康状态
// @Summary 查询流水线状态
// @Description 返回运行状态与健康评估，含降级原因列表
// @Tags 流水线管理
// @Produce json
// @Success 200 {object} APIResponse{data=models.HealthStatus} "查询成功"
// @Router /pipeline/status [get]
func (c *PipelineController) GetStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "查询成功",
		Data:   c.pipelineService.HealthCheck(),
	})
}

// GetStatistics 查询流水线统计
// @Summary 查询流水线统计
// @Description 返回处理量、错误率、平均延迟、缓存与队列指标的快照
// @Tags 流水线管理
// @Produce json
// @Success 200 {object} APIResponse{data=models.StatsSnapshot} "查询成功"
// @Router /pipeline/statistics [get]
func (c *PipelineController) GetStatistics(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "查询成功",
		Data:   c.pipelineService.GetStatistics(),
	})
}

// ResetStatistics 清零流水线统计
// @Summary 清零流水线统计
// @Tags 流水线管理
// @Produce json
// @Success 200 {object} APIResponse "清零成功"
// @Router /pipeline/statistics/reset [post]
func (c *PipelineController) ResetStatistics(w http.ResponseWriter, r *http.Request) {
	c.pipelineService.ResetStatistics()
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "统计已清零",
	})
}

// GetConfig 查询流水线配置
// @Summary 查询流水线配置
// @Tags 流水线管理
// @Produce json
// @Success 200 {object} APIResponse{data=PipelineConfigDTO} "查询成功"
// @Router /pipeline/config [get]
func (c *PipelineController) GetConfig(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "查询成功",
		Data:   fromConfig(c.pipelineService.Config()),
	})
}

// UpdateConfig 更新流水线配置
// @Summary 更新流水线配置
// @Description 仅在流水线停止状态下允许，未填写的字段沿用当前值
// @Tags 流水线管理
// @Accept json
// @Produce json
// @Param config body PipelineConfigDTO true "流水线配置"
// @Success 200 {object} APIResponse{data=PipelineConfigDTO} "更新成功"
// @Failure 400 {object} APIResponse "配置不合法"
// @Failure 409 {object} APIResponse "流水线正在运行"
// @Router /pipeline/config [put]
func (c *PipelineController) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var dto PipelineConfigDTO
	if err := render.DecodeJSON(r.Body, &dto); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	newConfig := dto.toConfig(c.pipelineService.Config())
	if err := c.pipelineService.ApplyConfig(&newConfig); err != nil {
		status := http.StatusConflict
		if pipeline.ErrorKind(err) == "validation" {
			status = http.StatusBadRequest
		}
		render.JSON(w, r, APIResponse{
			Status: status,
			Msg:    err.Error(),
		})
		return
	}

	c.configManager.SetPipeline(newConfig)

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "配置更新成功",
		Data:   fromConfig(newConfig),
	})
}
