/*
 * @module api/controllers/event_controller
 * @description 事件推送控制器，提供SSE实时事件流和连接管理API
 * @architecture RESTful API架构 - 控制器层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow HTTP请求 -> SSE连接建立 -> 事件循环推送
 * @rules SSE连接支持按对象ID过滤，断开时自动清理连接
 * @dependencies burnout-service/service/event, github.com/go-chi/render
 * @refs service/event/event_service.go
 */

package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"burnout-service/service/event"
	"burnout-service/service/models"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// EventController 事件推送控制器
type EventController struct {
	eventService *event.EventService
}

// NewEventController 创建事件推送控制器实例
func NewEventController(eventService *event.EventService) *EventController {
	return &EventController{
		eventService: eventService,
	}
}

// HandleSSE 处理SSE连接
// @Summary 建立SSE连接
// @Description 前端页面通过此接口建立SSE连接，实时接收预测结果与告警事件
// @Tags 事件管理
// @Param subject_id query string false "只接收该对象的事件"
// @Success 200 {string} string "SSE事件流"
// @Router /sse [get]
func (c *EventController) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "当前连接不支持流式响应", http.StatusInternalServerError)
		return
	}

	// 设置SSE响应头
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Cache-Control")

	// 生成连接ID
	connectionID := uuid.New().String()
	clientIP := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		clientIP = forwarded
	}
	subjectFilter := r.URL.Query().Get("subject_id")

	client := c.eventService.AddConnection(connectionID, clientIP, subjectFilter)
	defer c.eventService.RemoveConnection(connectionID)

	// 发送连接成功事件
	fmt.Fprintf(w, "event: connected\ndata: {\"connection_id\":\"%s\",\"timestamp\":\"%s\"}\n\n",
		connectionID, time.Now().Format(time.RFC3339))
	flusher.Flush()

	// 处理事件推送
	for {
		select {
		case evt := <-client.Channel:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.EventType, toJSON(evt))
			flusher.Flush()

		case <-client.Done:
			return

		case <-r.Context().Done():
			return
		}
	}
}

// BroadcastEventRequest 广播事件请求
type BroadcastEventRequest struct {
	EventType string      `json:"event_type" example:"system_notification"`
	Payload   interface{} `json:"payload"`
}

// BroadcastEvent 广播事件
// @Summary 广播事件
// @Description 向所有SSE连接广播一条事件，用于运维通知和联调
// @Tags 事件管理
// @Accept json
// @Produce json
// @Param request body BroadcastEventRequest true "广播事件请求"
// @Success 200 {object} APIResponse "广播成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /events/broadcast [post]
func (c *EventController) BroadcastEvent(w http.ResponseWriter, r *http.Request) {
	var req BroadcastEventRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if req.EventType == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "事件类型不能为空",
		})
		return
	}

	c.eventService.Broadcast(&models.StreamEvent{
		EventType: req.EventType,
		Payload:   req.Payload,
		EmittedAt: time.Now(),
	})

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "事件广播成功",
	})
}

// GetEventStats 查询事件推送统计
// @Summary 查询事件推送统计
// @Description 返回当前活跃的SSE连接数
// @Tags 事件管理
// @Produce json
// @Success 200 {object} APIResponse "查询成功"
// @Router /events/stats [get]
func (c *EventController) GetEventStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "查询成功",
		Data: map[string]interface{}{
			"active_connections": c.eventService.ConnectionCount(),
		},
	})
}

// toJSON 将对象转换为JSON字符串
func toJSON(v interface{}) string {
	data, _ := json.Marshal(v)
	return string(data)
}
