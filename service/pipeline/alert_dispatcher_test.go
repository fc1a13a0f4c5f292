/*
 * @module service/pipeline/alert_dispatcher_test
 * @description 告警分发器单元测试，验证风险等级门限、告警字段与回调隔离
 */

package pipeline

import (
	"burnout-service/service/models"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultWithScore(subjectID string, score float64) *models.PredictionResult {
	return &models.PredictionResult{
		RequestID:  "req-" + subjectID,
		SubjectID:  subjectID,
		RiskScore:  score,
		RiskLevel:  models.RiskLevelFromScore(score),
		Confidence: 0.88,
		ProducedAt: time.Now(),
	}
}

// TestAlertDispatcher_Evaluate_OnlyHighAndCritical 测试只有high与critical触发告警
func TestAlertDispatcher_Evaluate_OnlyHighAndCritical(t *testing.T) {
	stats := NewStatsAggregator()
	dispatcher := NewAlertDispatcher(stats)

	var mu sync.Mutex
	fired := 0
	dispatcher.RegisterCallback(func(*models.Alert) {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	assert.False(t, dispatcher.Evaluate(resultWithScore("emp-001", 0.1)), "low不应该触发告警")
	assert.False(t, dispatcher.Evaluate(resultWithScore("emp-002", 0.45)), "medium不应该触发告警")
	assert.True(t, dispatcher.Evaluate(resultWithScore("emp-003", 0.65)), "high应该触发告警")
	assert.True(t, dispatcher.Evaluate(resultWithScore("emp-004", 0.85)), "critical应该触发告警")
	assert.False(t, dispatcher.Evaluate(nil), "空结果不应该触发告警")

	mu.Lock()
	assert.Equal(t, 2, fired)
	mu.Unlock()
	assert.Equal(t, int64(2), stats.Snapshot().AlertCount)
}

// TestAlertDispatcher_AlertCarriesResultFields 测试告警字段来自结果且ID带前缀
func TestAlertDispatcher_AlertCarriesResultFields(t *testing.T) {
	dispatcher := NewAlertDispatcher(NewStatsAggregator())

	var mu sync.Mutex
	var captured *models.Alert
	dispatcher.RegisterCallback(func(alert *models.Alert) {
		mu.Lock()
		captured = alert
		mu.Unlock()
	})

	result := resultWithScore("emp-001", 0.85)
	require.True(t, dispatcher.Evaluate(result))

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, captured)
	assert.True(t, strings.HasPrefix(captured.AlertID, "alert_"))
	assert.Equal(t, result.RequestID, captured.RequestID)
	assert.Equal(t, result.SubjectID, captured.SubjectID)
	assert.InDelta(t, result.RiskScore, captured.RiskScore, 1e-9)
	assert.Equal(t, models.RiskLevelCritical, captured.RiskLevel)
	assert.InDelta(t, result.Confidence, captured.Confidence, 1e-9)
	assert.Contains(t, captured.Message, "emp-001")
}

// TestAlertDispatcher_CallbackPanicIsolated 测试单个回调panic不影响其余回调
func TestAlertDispatcher_CallbackPanicIsolated(t *testing.T) {
	dispatcher := NewAlertDispatcher(NewStatsAggregator())

	var mu sync.Mutex
	secondCalled := 0
	dispatcher.RegisterCallback(func(*models.Alert) {
		panic("告警回调故意panic")
	})
	dispatcher.RegisterCallback(func(*models.Alert) {
		mu.Lock()
		secondCalled++
		mu.Unlock()
	})

	assert.NotPanics(t, func() {
		dispatcher.Evaluate(resultWithScore("emp-001", 0.9))
	}, "回调panic不应该向外传播")

	mu.Lock()
	assert.Equal(t, 1, secondCalled, "panic之后的回调仍应该被调用")
	mu.Unlock()
	assert.Equal(t, 2, dispatcher.CallbackCount())
}

// TestAlertDispatcher_NilCallbackIgnored 测试空回调注册被忽略
func TestAlertDispatcher_NilCallbackIgnored(t *testing.T) {
	dispatcher := NewAlertDispatcher(NewStatsAggregator())

	dispatcher.RegisterCallback(nil)
	assert.Equal(t, 0, dispatcher.CallbackCount())

	assert.NotPanics(t, func() {
		dispatcher.Evaluate(resultWithScore("emp-001", 0.9))
	})
}
