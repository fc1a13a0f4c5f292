/*
 * @module service/models/events
 * @description 事件流相关模型定义，SSE推送事件与MQTT信号消息
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 流水线回调 -> 事件构造 -> SSE推送/消息发布
 * @rules 事件只承载已完成的预测结果或告警，不包含中间状态
 * @dependencies time
 * @refs service/event/event_service.go, client/connectors
 */

package models

import "time"

// 事件类型
const (
	StreamEventResult = "prediction_result" // 预测结果事件
	StreamEventAlert  = "risk_alert"        // 高风险告警事件
)

// StreamEvent SSE推送事件
type StreamEvent struct {
	EventType string      `json:"event_type"`
	Payload   interface{} `json:"payload"`
	EmittedAt time.Time   `json:"emitted_at"`
}

// SignalMessage MQTT行为信号消息
// 信号源按主题发布，载荷为原始行为信号
type SignalMessage struct {
	SubjectID string                 `json:"subject_id"`
	CacheKey  string                 `json:"cache_key,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
}
