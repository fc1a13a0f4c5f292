/*
 * @module service/history/history_service_test
 * @description 预测历史服务的单元测试，使用内存sqlite验证落库、查询与清理
 */

package history

import (
	"testing"
	"time"

	"burnout-service/service/models"
	"burnout-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*HistoryService, *testutil.TestDataFactory) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	return NewHistoryService(tdb.DB), testutil.NewTestDataFactory(tdb.DB)
}

// TestRecordResult 测试预测结果落库
func TestRecordResult(t *testing.T) {
	service, _ := newTestService(t)

	result := &models.PredictionResult{
		RequestID:  "req-001",
		SubjectID:  "emp-001",
		RiskScore:  0.72,
		RiskLevel:  models.RiskLevelHigh,
		Confidence: 0.72,
		ProducedAt: time.Now(),
		LatencyMs:  150,
		Source:     "http",
	}
	require.NoError(t, service.RecordResult(result))

	record, err := service.GetPredictionByRequestID("req-001")
	require.NoError(t, err)
	assert.Equal(t, "emp-001", record.SubjectID)
	assert.Equal(t, 0.72, record.RiskScore)
	assert.Equal(t, "high", record.RiskLevel)
	assert.Equal(t, "http", record.Source)
	assert.NotEmpty(t, record.ID, "BeforeCreate钩子应该生成主键")

	assert.Error(t, service.RecordResult(nil), "空结果应该报错")
}

// TestRecordAlert 测试告警落库
func TestRecordAlert(t *testing.T) {
	service, _ := newTestService(t)

	alert := &models.Alert{
		AlertID:    "alert-001",
		RequestID:  "req-001",
		SubjectID:  "emp-001",
		RiskScore:  0.91,
		RiskLevel:  models.RiskLevelCritical,
		Confidence: 0.91,
		ProducedAt: time.Now(),
		Message:    "风险过高",
	}
	require.NoError(t, service.RecordAlert(alert))

	records, total, err := service.GetAlerts(1, 10, "emp-001", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "alert-001", records[0].AlertID)
	assert.Equal(t, "critical", records[0].RiskLevel)
}

// TestGetPredictions_Pagination 测试分页与过滤
func TestGetPredictions_Pagination(t *testing.T) {
	service, factory := newTestService(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		producedAt := base.Add(time.Duration(i) * time.Minute)
		level := string(models.RiskLevelLow)
		if i%3 == 0 {
			level = string(models.RiskLevelHigh)
		}
		factory.CreatePredictionRecord("emp-001", func(r *models.PredictionRecord) {
			r.ProducedAt = producedAt
			r.RiskLevel = level
		})
	}
	factory.CreatePredictionRecord("emp-002")

	// 按对象过滤 + 分页
	page1, total, err := service.GetPredictions(1, 5, "emp-001", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	assert.Len(t, page1, 5)

	page3, _, err := service.GetPredictions(3, 5, "emp-001", "", nil, nil)
	require.NoError(t, err)
	assert.Len(t, page3, 2, "最后一页只剩2条")

	// 按时间倒序
	assert.True(t, page1[0].ProducedAt.After(page1[4].ProducedAt))

	// 按风险等级过滤
	_, highTotal, err := service.GetPredictions(1, 10, "emp-001", "high", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), highTotal)

	// 按时间窗口过滤
	start := base.Add(6 * time.Minute)
	_, windowTotal, err := service.GetPredictions(1, 20, "emp-001", "", &start, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(6), windowTotal)
}

// TestGetLatestBySubject 测试查询对象最近一次预测
func TestGetLatestBySubject(t *testing.T) {
	service, factory := newTestService(t)

	factory.CreatePredictionRecord("emp-001", func(r *models.PredictionRecord) {
		r.RequestID = "req-old"
		r.ProducedAt = time.Now().Add(-time.Hour)
	})
	factory.CreatePredictionRecord("emp-001", func(r *models.PredictionRecord) {
		r.RequestID = "req-new"
		r.ProducedAt = time.Now()
	})

	record, err := service.GetLatestBySubject("emp-001")
	require.NoError(t, err)
	assert.Equal(t, "req-new", record.RequestID)

	_, err = service.GetLatestBySubject("emp-unknown")
	assert.Error(t, err, "无记录时应该返回未找到")
}

// TestCleanup_RemovesExpiredRecords 测试过期历史清理
func TestCleanup_RemovesExpiredRecords(t *testing.T) {
	service, factory := newTestService(t)

	old := time.Now().AddDate(0, 0, -100)
	for i := 0; i < 3; i++ {
		factory.CreatePredictionRecord("emp-001", func(r *models.PredictionRecord) {
			r.CreatedAt = old
		})
	}
	factory.CreatePredictionRecord("emp-001")
	factory.CreateAlertRecord("emp-001", func(r *models.AlertRecord) {
		r.CreatedAt = old
	})
	factory.CreateAlertRecord("emp-001")

	deleted, err := service.CleanupPredictions(90)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	deletedAlerts, err := service.CleanupAlerts(90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deletedAlerts)

	_, total, err := service.GetPredictions(1, 10, "", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

// TestCallbackAdapters 测试流水线回调适配器不抛错
func TestCallbackAdapters(t *testing.T) {
	service, _ := newTestService(t)

	result := &models.PredictionResult{
		RequestID: "req-cb", SubjectID: "emp-001",
		RiskScore: 0.5, RiskLevel: models.RiskLevelMedium, ProducedAt: time.Now(),
	}
	assert.NotPanics(t, func() { service.OnResult(result) })

	alert := &models.Alert{
		AlertID: "alert-cb", SubjectID: "emp-001",
		RiskScore: 0.9, RiskLevel: models.RiskLevelCritical, ProducedAt: time.Now(),
	}
	assert.NotPanics(t, func() { service.OnAlert(alert) })

	record, err := service.GetPredictionByRequestID("req-cb")
	require.NoError(t, err)
	assert.Equal(t, "emp-001", record.SubjectID)
}
