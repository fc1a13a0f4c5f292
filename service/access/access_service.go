/*
 * @module service/access/access_service
 * @description 访问控制服务，提供API密钥的签发、校验、吊销与使用统计
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 密钥签发 -> 请求校验 -> 使用计数 -> 过期/吊销
 * @rules 明文密钥仅在签发时返回一次，数据库只保存bcrypt哈希
 * @dependencies burnout-service/service/models, gorm.io/gorm, golang.org/x/crypto/bcrypt
 * @refs api/middleware/api_key_auth.go
 */

package access

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"burnout-service/service/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AccessService 访问控制服务
type AccessService struct {
	db *gorm.DB
}

// NewAccessService 创建访问控制服务实例
func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// CreateApiKey 创建一个新的API密钥
// 返回的第二个值是完整密钥明文，仅此一次，数据库存储其哈希
func (s *AccessService) CreateApiKey(name, description, createdBy string, expiresAt *time.Time) (*models.ApiKey, string, error) {
	if name == "" {
		return nil, "", errors.New("密钥名称不能为空")
	}

	// 生成32字节的随机字符串，转为64字符的hex
	fullKey, err := generateRandomString(64)
	if err != nil {
		return nil, "", err
	}

	// 生成前缀（取前8个字符），用于校验时快速定位
	keyPrefix := fullKey[:8]

	hashedKey, err := bcrypt.GenerateFromPassword([]byte(fullKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	apiKey := &models.ApiKey{
		Name:         name,
		KeyPrefix:    keyPrefix,
		KeyValueHash: string(hashedKey),
		Description:  description,
		ExpiresAt:    expiresAt,
		Status:       "active",
		CreatedBy:    createdBy,
	}

	if err := s.db.Create(apiKey).Error; err != nil {
		return nil, "", err
	}

	return apiKey, fullKey, nil
}

// GetApiKeys 获取所有API密钥信息（不包含密钥本身）
func (s *AccessService) GetApiKeys() ([]models.ApiKey, error) {
	var keys []models.ApiKey
	if err := s.db.Order("created_at DESC").Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// GetApiKeyByID 根据ID获取API密钥
func (s *AccessService) GetApiKeyByID(keyID string) (*models.ApiKey, error) {
	var key models.ApiKey
	if err := s.db.First(&key, "id = ?", keyID).Error; err != nil {
		return nil, err
	}
	return &key, nil
}

// RevokeApiKey 吊销API密钥
func (s *AccessService) RevokeApiKey(keyID string) error {
	result := s.db.Model(&models.ApiKey{}).Where("id = ?", keyID).Update("status", "revoked")
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("API密钥不存在")
	}
	return nil
}

// DeleteApiKey 删除API密钥
func (s *AccessService) DeleteApiKey(keyID string) error {
	return s.db.Delete(&models.ApiKey{}, "id = ?", keyID).Error
}

// HasActiveKeys 检查是否存在有效密钥，用于鉴权中间件判断是否放行
func (s *AccessService) HasActiveKeys() (bool, error) {
	var count int64
	if err := s.db.Model(&models.ApiKey{}).Where("status = 'active'").Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// VerifyApiKey 校验API密钥并更新使用统计
func (s *AccessService) VerifyApiKey(keyValue string) (*models.ApiKey, error) {
	if len(keyValue) < 8 {
		return nil, errors.New("无效的API Key格式")
	}

	keyPrefix := keyValue[:8]

	var keys []models.ApiKey
	if err := s.db.Where("key_prefix = ? AND status = 'active'", keyPrefix).Find(&keys).Error; err != nil {
		return nil, err
	}

	// 遍历所有匹配前缀的密钥，验证完整密钥
	for _, key := range keys {
		if err := bcrypt.CompareHashAndPassword([]byte(key.KeyValueHash), []byte(keyValue)); err == nil {
			// 检查是否过期
			if key.ExpiresAt != nil && key.ExpiresAt.Before(time.Now()) {
				return nil, errors.New("API Key已过期")
			}

			// 更新最后使用时间和使用次数
			s.db.Model(&key).Updates(map[string]interface{}{
				"last_used_at": time.Now(),
				"usage_count":  key.UsageCount + 1,
			})

			return &key, nil
		}
	}

	return nil, errors.New("无效的API Key")
}

// generateRandomString 生成指定长度的随机hex字符串
func generateRandomString(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
