/*
 * @module service/pipeline/batch_worker_test
 * @description 批处理工作器单元测试，覆盖置信度解析、评分数量校验与单条失败隔离
 * @rules 直接调用processBatch并通过预先注册的等待者收取结果，与提交路径的时序解耦
 */

package pipeline

import (
	"burnout-service/service/features"
	"burnout-service/service/models"
	"burnout-service/service/scoring"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// probabilityStubModel 支持概率输出的桩模型
// 评分回传每行首个特征，概率矩阵与错误由测试注入
type probabilityStubModel struct {
	rows    [][]float64
	rowsErr error
}

func (m *probabilityStubModel) Predict(featureMatrix [][]float64) ([]float64, error) {
	scores := make([]float64, len(featureMatrix))
	for i, row := range featureMatrix {
		scores[i] = row[0]
	}
	return scores, nil
}

func (m *probabilityStubModel) PredictProbabilities(featureMatrix [][]float64) ([][]float64, error) {
	if m.rowsErr != nil {
		return nil, m.rowsErr
	}
	return m.rows, nil
}

// shortScoreModel 永远只返回一条评分，用于触发数量不符的整批失败
type shortScoreModel struct{}

func (m *shortScoreModel) Predict(featureMatrix [][]float64) ([]float64, error) {
	return []float64{0.5}, nil
}

// panicExtractor 载荷带panic_extract=true时panic，否则回传signal字段
type panicExtractor struct{}

func (e *panicExtractor) Extract(rawPayload map[string]interface{}) ([]float64, error) {
	if shouldPanic, _ := rawPayload["panic_extract"].(bool); shouldPanic {
		panic("提取器故意panic")
	}
	signal, _ := rawPayload["signal"].(float64)
	return []float64{signal}, nil
}

// workerHarness 直接驱动批处理工作器的测试装置
type workerHarness struct {
	worker *BatchWorker
	cache  *ResultCache
	stats  *StatsAggregator
}

func newWorkerHarness(extractor features.Extractor, model scoring.Model) *workerHarness {
	config := newTestConfig()
	stats := NewStatsAggregator()
	cache := NewResultCache(config.CacheTTL)
	queue := make(chan *models.PredictionRequest, config.QueueCapacity)
	worker := NewBatchWorker(config, queue, extractor, model,
		cache, stats, &resultCallbackRegistry{}, NewAlertDispatcher(stats))
	return &workerHarness{worker: worker, cache: cache, stats: stats}
}

// workerRequest 带显式缓存键的测试请求
func workerRequest(subjectID, cacheKey string, signal float64) *models.PredictionRequest {
	return &models.PredictionRequest{
		RequestID:   fmt.Sprintf("req-%s", cacheKey),
		SubjectID:   subjectID,
		CacheKey:    cacheKey,
		RawPayload:  map[string]interface{}{"signal": signal},
		SubmittedAt: time.Now(),
	}
}

// acquireAll 为每个请求注册在途等待者，模拟提交路径的键持有动作
func acquireAll(t *testing.T, cache *ResultCache, requests []*models.PredictionRequest) []*resultWaiter {
	waiters := make([]*resultWaiter, len(requests))
	for i, request := range requests {
		cached, waiter, owner := cache.Acquire(request.Fingerprint())
		require.Nil(t, cached, "测试键不应该命中缓存")
		require.True(t, owner, "测试键不应该已有在途计算")
		waiters[i] = waiter
	}
	return waiters
}

// TestBatchWorker_ConfidenceFromProbabilityRows 测试概率模型时置信度取每行概率的最大值
func TestBatchWorker_ConfidenceFromProbabilityRows(t *testing.T) {
	model := &probabilityStubModel{rows: [][]float64{{0.3, 0.7}, {0.9, 0.1}}}
	h := newWorkerHarness(&stubExtractor{}, model)

	requests := []*models.PredictionRequest{
		workerRequest("emp-001", "prob-high", 0.7),
		workerRequest("emp-002", "prob-low", 0.1),
	}
	waiters := acquireAll(t, h.cache, requests)

	h.worker.processBatch(requests)

	first, err := waiters[0].Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, first.Confidence, 1e-9, "置信度应该取概率行的最大值")
	assert.InDelta(t, 0.7, first.RiskScore, 1e-9)
	assert.Equal(t, "prob-high", first.CacheKey, "结果应该携带所属缓存键")

	second, err := waiters[1].Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, second.Confidence, 1e-9, "低风险行的置信度来自低风险类概率")
}

// TestBatchWorker_ConfidenceFallback_BoundaryDistance 测试无概率接口时按评分距离决策边界推算
func TestBatchWorker_ConfidenceFallback_BoundaryDistance(t *testing.T) {
	h := newWorkerHarness(&stubExtractor{}, &stubModel{})

	requests := []*models.PredictionRequest{
		workerRequest("emp-001", "fallback-low", 0.2),
		workerRequest("emp-002", "fallback-high", 0.8),
	}
	waiters := acquireAll(t, h.cache, requests)

	h.worker.processBatch(requests)

	low, err := waiters[0].Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, low.Confidence, 1e-9, "0.2评分的置信度应该推算为1-0.2")

	high, err := waiters[1].Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, high.Confidence, 1e-9, "0.8评分的置信度就是评分本身")
}

// TestBatchWorker_ConfidenceFallback_OnProbabilityError 测试概率预测失败时退化而非中断
func TestBatchWorker_ConfidenceFallback_OnProbabilityError(t *testing.T) {
	model := &probabilityStubModel{rowsErr: errors.New("模拟概率预测失败")}
	h := newWorkerHarness(&stubExtractor{}, model)

	requests := []*models.PredictionRequest{workerRequest("emp-001", "prob-err", 0.9)}
	waiters := acquireAll(t, h.cache, requests)

	h.worker.processBatch(requests)

	result, err := waiters[0].Wait(context.Background(), time.Second)
	require.NoError(t, err, "概率预测失败不应该影响评分结果")
	assert.InDelta(t, 0.9, result.RiskScore, 1e-9)
	assert.InDelta(t, 0.9, result.Confidence, 1e-9, "退化后按评分推算置信度")
}

// TestBatchWorker_ConfidenceFallback_OnRowCountMismatch 测试概率行数不符时退化为评分推算
func TestBatchWorker_ConfidenceFallback_OnRowCountMismatch(t *testing.T) {
	model := &probabilityStubModel{rows: [][]float64{{0.5, 0.5}}}
	h := newWorkerHarness(&stubExtractor{}, model)

	requests := []*models.PredictionRequest{
		workerRequest("emp-001", "mismatch-a", 0.3),
		workerRequest("emp-002", "mismatch-b", 0.6),
	}
	waiters := acquireAll(t, h.cache, requests)

	h.worker.processBatch(requests)

	first, err := waiters[0].Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, first.Confidence, 1e-9)

	second, err := waiters[1].Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, second.Confidence, 1e-9)
}

// TestBatchWorker_ScoreCountMismatch_FailsBatch 测试评分数量不符时整批按评分错误终止
func TestBatchWorker_ScoreCountMismatch_FailsBatch(t *testing.T) {
	h := newWorkerHarness(&stubExtractor{}, &shortScoreModel{})

	requests := []*models.PredictionRequest{
		workerRequest("emp-001", "count-a", 0.2),
		workerRequest("emp-002", "count-b", 0.3),
	}
	waiters := acquireAll(t, h.cache, requests)

	h.worker.processBatch(requests)

	for i, waiter := range waiters {
		_, err := waiter.Wait(context.Background(), time.Second)
		assert.True(t, errors.Is(err, ErrScoring), "第 %d 条应该返回评分错误", i)
	}
	assert.Equal(t, 0, h.cache.Size(), "失败批次不应该产生缓存条目")

	snapshot := h.stats.Snapshot()
	assert.Equal(t, int64(2), snapshot.ProcessedCount)
	assert.Equal(t, int64(2), snapshot.ErrorCount)
}

// TestBatchWorker_ExtractorPanic_IsolatedPerItem 测试提取器panic只影响该条目
func TestBatchWorker_ExtractorPanic_IsolatedPerItem(t *testing.T) {
	h := newWorkerHarness(&panicExtractor{}, &stubModel{})

	good := workerRequest("emp-001", "panic-good", 0.4)
	bad := workerRequest("emp-002", "panic-bad", 0)
	bad.RawPayload["panic_extract"] = true

	batch := []*models.PredictionRequest{good, bad}
	waiters := acquireAll(t, h.cache, batch)

	h.worker.processBatch(batch)

	result, err := waiters[0].Wait(context.Background(), time.Second)
	require.NoError(t, err, "panic条目不应该影响同批其他条目")
	assert.InDelta(t, 0.4, result.RiskScore, 1e-9)

	_, err = waiters[1].Wait(context.Background(), time.Second)
	assert.True(t, errors.Is(err, ErrExtraction), "提取器panic应该转换为提取错误")

	snapshot := h.stats.Snapshot()
	assert.Equal(t, int64(2), snapshot.ProcessedCount)
	assert.Equal(t, int64(1), snapshot.ErrorCount)
}
