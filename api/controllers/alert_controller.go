/*
 * @module api/controllers/alert_controller
 * @description 告警查询控制器，提供历史告警的分页检索API
 * @architecture RESTful API架构 - 控制器层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow HTTP请求 -> 历史服务查询 -> 分页响应返回
 * @rules 告警由流水线回调落库，本控制器只读
 * @dependencies burnout-service/service/history, github.com/go-chi/render
 * @refs service/history/history_service.go
 */

package controllers

import (
	"net/http"

	"burnout-service/service/history"

	"github.com/go-chi/render"
)

// AlertController 告警查询控制器
type AlertController struct {
	historyService *history.HistoryService
}

// NewAlertController 创建告警查询控制器实例
func NewAlertController(historyService *history.HistoryService) *AlertController {
	return &AlertController{
		historyService: historyService,
	}
}

// GetAlerts 分页查询告警记录
// @Summary 分页查询告警记录
// @Description 按时间倒序返回告警，支持按对象ID和风险级别过滤
// @Tags 告警管理
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页大小" default(10)
// @Param subject_id query string false "对象ID"
// @Param risk_level query string false "风险级别" Enums(high, critical)
// @Success 200 {object} PaginatedResponse{data=[]models.AlertRecord} "查询成功"
// @Failure 500 {object} APIResponse "查询失败"
// @Router /alerts [get]
func (c *AlertController) GetAlerts(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)
	subjectID := r.URL.Query().Get("subject_id")
	riskLevel := r.URL.Query().Get("risk_level")

	alerts, total, err := c.historyService.GetAlerts(page, size, subjectID, riskLevel)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "查询告警记录失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "查询成功",
		Data:   alerts,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}
