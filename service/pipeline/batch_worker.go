/*
 * @module service/pipeline/batch_worker
 * @description 批处理工作器，按批量上限与时间窗收集请求，单次模型调用完成整批评分
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 收集批次 -> 逐条特征提取(失败隔离) -> 单次批量评分 -> 写缓存/统计/回调/告警
 * @rules 每个批次只调用一次模型；单条失败不中断批次；模型整体失败使该批全部条目失败
 * @dependencies context, sync, time, log/slog
 * @refs service/pipeline/pipeline_service.go, service/scoring/model.go, service/features/extractor.go
 */

package pipeline

import (
	"burnout-service/service/features"
	"burnout-service/service/models"
	"burnout-service/service/scoring"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// BatchWorker 批处理工作器
// 单个收集循环保证批次划分的确定性，批次处理分发到受限的工作槽
type BatchWorker struct {
	config      *models.PipelineConfig
	queue       <-chan *models.PredictionRequest
	extractor   features.Extractor
	model       scoring.Model
	cache       *ResultCache
	stats       *StatsAggregator
	results     *resultCallbackRegistry
	alerts      *AlertDispatcher
	workerSlots chan struct{}
	wg          sync.WaitGroup
}

// extractedItem 已通过特征提取的批次条目
type extractedItem struct {
	request  *models.PredictionRequest
	features []float64
}

// NewBatchWorker 创建批处理工作器
func NewBatchWorker(
	config *models.PipelineConfig,
	queue <-chan *models.PredictionRequest,
	extractor features.Extractor,
	model scoring.Model,
	cache *ResultCache,
	stats *StatsAggregator,
	results *resultCallbackRegistry,
	alerts *AlertDispatcher,
) *BatchWorker {
	return &BatchWorker{
		config:      config,
		queue:       queue,
		extractor:   extractor,
		model:       model,
		cache:       cache,
		stats:       stats,
		results:     results,
		alerts:      alerts,
		workerSlots: make(chan struct{}, config.MaxWorkers),
	}
}

// Run 收集循环，随context取消退出
// 已出队的请求在退出前仍会被处理，不会丢弃
func (w *BatchWorker) Run(ctx context.Context) {
	slog.Info("批处理工作器已启动",
		"batch_size", w.config.BatchSize,
		"batch_window", w.config.BatchWindow.String(),
		"max_workers", w.config.MaxWorkers)

	for {
		batch := w.collectBatch(ctx)
		if len(batch) > 0 {
			w.dispatchBatch(batch)
		}
		if ctx.Err() != nil {
			slog.Info("批处理工作器收到停止信号，收集循环退出")
			return
		}
		if len(batch) == 0 {
			// 空批次短暂休眠，避免队列空闲时空转
			select {
			case <-ctx.Done():
				slog.Info("批处理工作器收到停止信号，收集循环退出")
				return
			case <-time.After(w.config.IdleSleep):
			}
		}
	}
}

// collectBatch 收集一个批次：凑满batchSize或batchWindow到期，先到者为准
func (w *BatchWorker) collectBatch(ctx context.Context) []*models.PredictionRequest {
	batch := make([]*models.PredictionRequest, 0, w.config.BatchSize)
	timer := time.NewTimer(w.config.BatchWindow)
	defer timer.Stop()

	for len(batch) < w.config.BatchSize {
		select {
		case <-ctx.Done():
			return batch
		case request, ok := <-w.queue:
			if !ok {
				return batch
			}
			batch = append(batch, request)
		case <-timer.C:
			return batch
		}
	}
	return batch
}

// dispatchBatch 占用一个工作槽后异步处理批次
// 工作槽饱和时阻塞收集循环，形成天然的背压
func (w *BatchWorker) dispatchBatch(batch []*models.PredictionRequest) {
	w.workerSlots <- struct{}{}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.workerSlots }()
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("批次处理发生panic，工作器继续运行",
					"batch_size", len(batch), "panic", rec)
			}
		}()
		w.processBatch(batch)
	}()
}

// processBatch 处理单个批次
func (w *BatchWorker) processBatch(batch []*models.PredictionRequest) {
	started := time.Now()

	valid := make([]extractedItem, 0, len(batch))
	extractionFailures := 0
	for _, request := range batch {
		featureVector, err := w.extractFeatures(request)
		if err != nil {
			extractionFailures++
			w.cache.Fail(request.Fingerprint(), err)
			slog.Error("特征提取失败，条目已跳过",
				"request_id", request.RequestID,
				"subject_id", request.SubjectID,
				"error", err)
			continue
		}
		valid = append(valid, extractedItem{request: request, features: featureVector})
	}
	if extractionFailures > 0 {
		w.stats.RecordFailures(extractionFailures)
	}
	if len(valid) == 0 {
		return
	}

	matrix := make([][]float64, len(valid))
	for i, item := range valid {
		matrix[i] = item.features
	}

	scores, err := w.predict(matrix)
	if err != nil {
		w.failItems(valid, err)
		return
	}
	if len(scores) != len(valid) {
		w.failItems(valid, fmt.Errorf("%w: 模型返回 %d 条评分，期望 %d 条",
			ErrScoring, len(scores), len(valid)))
		return
	}

	confidences := w.resolveConfidences(matrix, scores)

	for i, item := range valid {
		score := scores[i]
		latencyMs := time.Since(item.request.SubmittedAt).Milliseconds()
		result := &models.PredictionResult{
			RequestID:  item.request.RequestID,
			SubjectID:  item.request.SubjectID,
			CacheKey:   item.request.Fingerprint(),
			RiskScore:  score,
			RiskLevel:  models.RiskLevelFromScore(score),
			Confidence: confidences[i],
			ProducedAt: time.Now(),
			LatencyMs:  latencyMs,
			FromCache:  false,
			Source:     item.request.Source,
		}

		w.cache.Complete(item.request.Fingerprint(), result)
		w.stats.RecordSuccess(latencyMs)
		w.results.Dispatch(result)
		w.alerts.Evaluate(result)
	}

	slog.Debug("批次处理完成",
		"batch_size", len(batch),
		"scored", len(valid),
		"extraction_failures", extractionFailures,
		"duration", time.Since(started).String())
}

// extractFeatures 单条特征提取，panic与错误都转换为提取错误
func (w *BatchWorker) extractFeatures(request *models.PredictionRequest) (featureVector []float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			featureVector = nil
			err = fmt.Errorf("%w: 提取器panic: %v", ErrExtraction, rec)
		}
	}()

	featureVector, err = w.extractor.Extract(request.RawPayload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if len(featureVector) == 0 {
		return nil, fmt.Errorf("%w: 提取结果为空特征向量", ErrExtraction)
	}
	return featureVector, nil
}

// predict 单次批量模型调用，panic与错误都转换为评分错误
func (w *BatchWorker) predict(matrix [][]float64) (scores []float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			scores = nil
			err = fmt.Errorf("%w: 模型panic: %v", ErrScoring, rec)
		}
	}()

	scores, err = w.model.Predict(matrix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoring, err)
	}
	return scores, nil
}

// resolveConfidences 计算置信度
// 模型实现了概率接口时取每行概率分布中的最大值，否则由评分距离决策边界的程度推算
func (w *BatchWorker) resolveConfidences(matrix [][]float64, scores []float64) []float64 {
	if predictor, ok := w.model.(scoring.ProbabilityPredictor); ok {
		probabilities, err := predictor.PredictProbabilities(matrix)
		if err == nil && len(probabilities) == len(scores) {
			confidences := make([]float64, len(scores))
			for i, row := range probabilities {
				confidences[i] = maxProbability(row, scores[i])
			}
			return confidences
		}
		if err != nil {
			slog.Warn("概率预测失败，退化为评分推算置信度", "error", err)
		}
	}

	confidences := make([]float64, len(scores))
	for i, score := range scores {
		confidences[i] = boundaryConfidence(score)
	}
	return confidences
}

// maxProbability 取概率行中的最大值，空行退化为评分推算
func maxProbability(row []float64, score float64) float64 {
	if len(row) == 0 {
		return boundaryConfidence(score)
	}
	max := row[0]
	for _, p := range row[1:] {
		if p > max {
			max = p
		}
	}
	return max
}

// boundaryConfidence 评分距离0.5决策边界越远置信度越高
func boundaryConfidence(score float64) float64 {
	if score >= 0.5 {
		return score
	}
	return 1 - score
}

// failItems 模型级失败，批内全部条目按评分错误处理
func (w *BatchWorker) failItems(items []extractedItem, err error) {
	slog.Error("批量评分失败，批内条目全部失败", "count", len(items), "error", err)
	for _, item := range items {
		w.cache.Fail(item.request.Fingerprint(), err)
	}
	w.stats.RecordFailures(len(items))
}

// WaitForDrain 等待在途批次完成，超时返回false
func (w *BatchWorker) WaitForDrain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
