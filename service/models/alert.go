/*
 * @module service/models/alert
 * @description 高风险告警相关模型定义，包括告警事件与告警历史记录
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 批量评分 -> 风险分级 -> 告警分发 -> 回调消费（可选落库）
 * @rules 告警分发器自身不持久化告警，历史记录仅由注册的回调写入
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/pipeline/alert_dispatcher.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Alert 高风险告警事件
// 由告警分发器创建并交给注册的回调消费，事件本身不落库
type Alert struct {
	AlertID    string    `json:"alert_id"`
	RequestID  string    `json:"request_id"`
	SubjectID  string    `json:"subject_id"`
	RiskScore  float64   `json:"risk_score"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Confidence float64   `json:"confidence"`
	ProducedAt time.Time `json:"produced_at"`
	Message    string    `json:"message"`
}

// AlertRecord 告警历史记录
type AlertRecord struct {
	ID         string    `gorm:"type:uuid;primary_key" json:"id"`
	AlertID    string    `gorm:"not null;unique" json:"alert_id"`
	RequestID  string    `gorm:"index" json:"request_id"`
	SubjectID  string    `gorm:"not null;index;size:100" json:"subject_id"`
	RiskScore  float64   `gorm:"not null" json:"risk_score"`
	RiskLevel  string    `gorm:"not null;size:20;index" json:"risk_level"`
	Confidence float64   `json:"confidence"`
	Message    string    `gorm:"size:500" json:"message"`
	ProducedAt time.Time `gorm:"not null;index" json:"produced_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 指定表名
func (AlertRecord) TableName() string {
	return "alert_records"
}

// BeforeCreate 创建前钩子
func (a *AlertRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
