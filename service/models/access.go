/*
 * @module service/models/access
 * @description 访问控制相关模型定义，API密钥的签发与校验记录
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 密钥签发 -> 请求校验 -> 使用计数 -> 过期/吊销
 * @rules 密钥仅存储bcrypt哈希，明文只在签发时返回一次
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/access/access_service.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApiKey API密钥模型
type ApiKey struct {
	ID           string     `gorm:"type:uuid;primary_key" json:"id"`
	Name         string     `gorm:"not null" json:"name"`              // 密钥名称
	KeyPrefix    string     `gorm:"not null;size:8" json:"key_prefix"` // 密钥前缀，用于快速定位
	KeyValueHash string     `gorm:"not null;unique" json:"-"`          // bcrypt哈希后的密钥值
	Description  string     `json:"description"`
	Status       string     `gorm:"not null;default:'active'" json:"status"` // active, inactive, revoked
	ExpiresAt    *time.Time `json:"expires_at"`
	LastUsedAt   *time.Time `json:"last_used_at"`
	UsageCount   int64      `gorm:"default:0" json:"usage_count"`
	CreatedBy    string     `gorm:"size:100" json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (ApiKey) TableName() string {
	return "api_keys"
}

// BeforeCreate 创建前钩子
func (k *ApiKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.New().String()
	}
	return nil
}
