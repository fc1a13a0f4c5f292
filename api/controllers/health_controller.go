/*
 * @module api/controllers/health_controller
 * @description 健康检查控制器，提供服务健康与就绪探针API
 * @architecture RESTful API架构 - 控制器层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow HTTP请求 -> 组件健康检查 -> 聚合状态返回
 * @rules 健康接口始终返回200，就绪接口在流水线未运行时返回503
 * @dependencies burnout-service/service/monitoring, github.com/go-chi/render
 * @refs service/monitoring/health_checker.go
 */

package controllers

import (
	"encoding/json"
	"net/http"

	"burnout-service/service/models"
	"burnout-service/service/monitoring"
	"burnout-service/service/pipeline"

	"github.com/go-chi/render"
)

// HealthController 健康检查控制器
type HealthController struct {
	healthChecker   *monitoring.HealthChecker
	pipelineService *pipeline.PipelineService
}

// NewHealthController 创建健康检查控制器实例
func NewHealthController(healthChecker *monitoring.HealthChecker, pipelineService *pipeline.PipelineService) *HealthController {
	return &HealthController{
		healthChecker:   healthChecker,
		pipelineService: pipelineService,
	}
}

// GetHealth 查询服务健康状态
// @Summary 查询服务健康状态
// @Description 检查流水线、数据库、Redis各组件健康并返回聚合结果
// @Tags 健康检查
// @Produce json
// @Success 200 {object} APIResponse{data=monitoring.ServiceHealth} "查询成功"
// @Router /health [get]
func (c *HealthController) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "查询成功",
		Data:   c.healthChecker.CheckHealth(r.Context()),
	})
}

// GetReady 就绪探针
// @Summary 就绪探针
// @Description 流水线处于运行状态时返回200，否则返回503，HTTP状态码供探针直接使用
// @Tags 健康检查
// @Produce json
// @Success 200 {object} APIResponse "服务就绪"
// @Failure 503 {object} APIResponse "服务未就绪"
// @Router /ready [get]
func (c *HealthController) GetReady(w http.ResponseWriter, r *http.Request) {
	state := c.pipelineService.State()

	status := http.StatusOK
	msg := "服务就绪"
	if state != models.PipelineStateRunning {
		status = http.StatusServiceUnavailable
		msg = "流水线未运行"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Status: status,
		Msg:    msg,
		Data:   map[string]string{"state": string(state)},
	})
}
