/*
 * @module service/models/prediction_test
 * @description 风险等级映射与缓存键计算的单元测试
 */

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRiskLevelFromScore_Boundaries 测试风险等级阈值边界
func TestRiskLevelFromScore_Boundaries(t *testing.T) {
	assert.Equal(t, RiskLevelLow, RiskLevelFromScore(0))
	assert.Equal(t, RiskLevelLow, RiskLevelFromScore(0.29))
	assert.Equal(t, RiskLevelMedium, RiskLevelFromScore(0.3), "0.3应该落入medium")
	assert.Equal(t, RiskLevelMedium, RiskLevelFromScore(0.59))
	assert.Equal(t, RiskLevelHigh, RiskLevelFromScore(0.6), "0.6应该落入high")
	assert.Equal(t, RiskLevelHigh, RiskLevelFromScore(0.79))
	assert.Equal(t, RiskLevelCritical, RiskLevelFromScore(0.8), "0.8应该落入critical")
	assert.Equal(t, RiskLevelCritical, RiskLevelFromScore(0.85))
	assert.Equal(t, RiskLevelCritical, RiskLevelFromScore(1.0))
}

// TestRiskLevel_RequiresAlert 测试告警门限
func TestRiskLevel_RequiresAlert(t *testing.T) {
	assert.False(t, RiskLevelLow.RequiresAlert())
	assert.False(t, RiskLevelMedium.RequiresAlert())
	assert.True(t, RiskLevelHigh.RequiresAlert())
	assert.True(t, RiskLevelCritical.RequiresAlert())
}

// TestPredictionRequest_Fingerprint 测试缓存键的三级推导
func TestPredictionRequest_Fingerprint(t *testing.T) {
	explicit := &PredictionRequest{
		SubjectID: "emp-001",
		CacheKey:  "custom-key",
		RawPayload: map[string]interface{}{
			"timestamp": "2025-08-18T08:00:00Z",
		},
	}
	assert.Equal(t, "custom-key", explicit.Fingerprint(), "显式缓存键优先")

	withTimestamp := &PredictionRequest{
		SubjectID: "emp-001",
		RawPayload: map[string]interface{}{
			"timestamp": "2025-08-18T08:00:00Z",
		},
	}
	assert.Equal(t, "emp-001:2025-08-18T08:00:00Z", withTimestamp.Fingerprint())

	bare := &PredictionRequest{
		SubjectID:  "emp-001",
		RawPayload: map[string]interface{}{"signal": 0.5},
	}
	assert.Equal(t, "emp-001", bare.Fingerprint(), "无时间戳时退化为对象ID")
}

// TestPipelineConfig_Validate 测试配置校验
func TestPipelineConfig_Validate(t *testing.T) {
	valid := GetDefaultPipelineConfig()
	assert.NoError(t, valid.Validate())

	badBatch := GetDefaultPipelineConfig()
	badBatch.BatchSize = 0
	assert.Error(t, badBatch.Validate())

	badWindow := GetDefaultPipelineConfig()
	badWindow.BatchWindow = 0
	assert.Error(t, badWindow.Validate())

	badRate := GetDefaultPipelineConfig()
	badRate.ErrorRateThreshold = 1.5
	assert.Error(t, badRate.Validate())
}
