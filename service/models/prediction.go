/*
 * @module service/models/prediction
 * @description 倦怠风险预测相关模型定义，包括预测请求、预测结果、风险等级与历史记录
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 请求提交 -> 批量评分 -> 结果缓存 -> 历史落库
 * @rules riskLevel 必须由 riskScore 按固定阈值推导，禁止独立赋值
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/pipeline
 */

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RiskLevel 风险等级枚举
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"      // 低风险
	RiskLevelMedium   RiskLevel = "medium"   // 中风险
	RiskLevelHigh     RiskLevel = "high"     // 高风险
	RiskLevelCritical RiskLevel = "critical" // 严重风险
)

// 风险等级固定阈值
const (
	RiskThresholdMedium   = 0.3
	RiskThresholdHigh     = 0.6
	RiskThresholdCritical = 0.8
)

// RiskLevelFromScore 按固定阈值将风险分数映射为风险等级
func RiskLevelFromScore(score float64) RiskLevel {
	switch {
	case score < RiskThresholdMedium:
		return RiskLevelLow
	case score < RiskThresholdHigh:
		return RiskLevelMedium
	case score < RiskThresholdCritical:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

// RequiresAlert 判断风险等级是否需要触发告警
func (l RiskLevel) RequiresAlert() bool {
	return l == RiskLevelHigh || l == RiskLevelCritical
}

// PredictionRequest 预测请求
type PredictionRequest struct {
	RequestID   string                 `json:"request_id,omitempty"`  // 请求ID，为空时自动生成
	SubjectID   string                 `json:"subject_id"`            // 评估对象ID（员工）
	CacheKey    string                 `json:"cache_key,omitempty"`   // 显式缓存键，可选
	RawPayload  map[string]interface{} `json:"raw_payload"`           // 原始行为信号载荷
	SubmittedAt time.Time              `json:"submitted_at"`          // 提交时间
	Source      string                 `json:"source,omitempty"`      // 请求来源：http/mqtt/batch
}

// Fingerprint 计算请求的缓存键
// 优先使用显式缓存键，其次使用 subject_id + 载荷时间戳，最后退化为 subject_id
func (r *PredictionRequest) Fingerprint() string {
	if r.CacheKey != "" {
		return r.CacheKey
	}
	if r.RawPayload != nil {
		if ts, ok := r.RawPayload["timestamp"]; ok {
			return fmt.Sprintf("%s:%v", r.SubjectID, ts)
		}
	}
	return r.SubjectID
}

// PredictionResult 预测结果
type PredictionResult struct {
	RequestID  string    `json:"request_id"`
	SubjectID  string    `json:"subject_id"`
	CacheKey   string    `json:"cache_key,omitempty"` // 结果归属的缓存键
	RiskScore  float64   `json:"risk_score"`          // 风险分数 0-1
	RiskLevel  RiskLevel `json:"risk_level"`
	Confidence float64   `json:"confidence"` // 置信度 0-1
	ProducedAt time.Time `json:"produced_at"`
	LatencyMs  int64     `json:"latency_ms"`
	FromCache  bool      `json:"from_cache"`       // 是否命中缓存
	Source     string    `json:"source,omitempty"` // 请求来源，随请求透传
}

// BatchOutcome 批量提交中单个请求的处理结果
// 任何一项失败都不会影响其他项
type BatchOutcome struct {
	Index  int               `json:"index"`
	Result *PredictionResult `json:"result,omitempty"`
	Err    error             `json:"-"`
}

// PredictionRecord 预测结果历史记录
type PredictionRecord struct {
	ID         string    `gorm:"type:uuid;primary_key" json:"id"`
	RequestID  string    `gorm:"not null;index" json:"request_id"`
	SubjectID  string    `gorm:"not null;index;size:100" json:"subject_id"`
	CacheKey   string    `gorm:"size:200" json:"cache_key"`
	RiskScore  float64   `gorm:"not null" json:"risk_score"`
	RiskLevel  string    `gorm:"not null;size:20;index" json:"risk_level"`
	Confidence float64   `json:"confidence"`
	LatencyMs  int64     `json:"latency_ms"`
	Source     string    `gorm:"size:20" json:"source"`
	ProducedAt time.Time `gorm:"not null;index" json:"produced_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 指定表名
func (PredictionRecord) TableName() string {
	return "prediction_records"
}

// BeforeCreate 创建前钩子
func (p *PredictionRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
