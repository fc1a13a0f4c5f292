/*
 * @module service/pipeline
 * @description 倦怠风险推理流水线控制器，管理生命周期状态机、提交入口、缓存清扫与统计刷新
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow stopped -> starting -> running -> stopping -> stopped
 * @rules 仅running状态接受提交；同一缓存键共享一次在途计算；队列满立即失败不阻塞提交方
 * @dependencies context, sync, time, log/slog, github.com/google/uuid
 * @refs service/pipeline/batch_worker.go, service/pipeline/result_cache.go, api/controllers/prediction_controller.go
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

	"github.com/google/uuid"
)

// PipelineService 推理流水线控制器
type PipelineService struct {
	config    *models.PipelineConfig
	extractor features.Extractor
	model     scoring.Model

	cache  *ResultCache
	stats  *StatsAggregator
	alerts *AlertDispatcher

	results *resultCallbackRegistry

	mutex     sync.RWMutex
	state     models.PipelineState
	queue     chan *models.PredictionRequest
	worker    *BatchWorker
	ctx       context.Context
	cancel    context.CancelFunc
	loops     *sync.WaitGroup
	startedAt time.Time
}

// NewPipelineService 创建流水线控制器
// config传nil时使用默认配置；回调可在Start之前或运行中注册
func NewPipelineService(config *models.PipelineConfig, extractor features.Extractor, model scoring.Model) (*PipelineService, error) {
	if config == nil {
		defaults := models.GetDefaultPipelineConfig()
		config = &defaults
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("流水线配置无效: %w", err)
	}
	if extractor == nil {
		return nil, fmt.Errorf("特征提取器不能为空")
	}
	if model == nil {
		return nil, fmt.Errorf("评分模型不能为空")
	}

	stats := NewStatsAggregator()
	return &PipelineService{
		config:    config,
		extractor: extractor,
		model:     model,
		cache:     NewResultCache(config.CacheTTL),
		stats:     stats,
		alerts:    NewAlertDispatcher(stats),
		results:   &resultCallbackRegistry{},
		state:     models.PipelineStateStopped,
	}, nil
}

// Start 启动流水线
// 仅允许从stopped状态启动，重复启动返回错误
func (p *PipelineService) Start() error {
	p.mutex.Lock()
	if p.state != models.PipelineStateStopped {
		current := p.state
		p.mutex.Unlock()
		return fmt.Errorf("流水线当前状态为 %s，无法启动", current)
	}
	p.state = models.PipelineStateStarting

	// 每次启动重建队列与工作器，前一轮的残留请求不会串入新一轮
	p.queue = make(chan *models.PredictionRequest, p.config.QueueCapacity)
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.worker = NewBatchWorker(p.config, p.queue, p.extractor, p.model,
		p.cache, p.stats, p.results, p.alerts)
	p.startedAt = time.Now()
	// 每轮启动使用独立的WaitGroup，避免上一轮超时未归零的等待影响重启
	loops := &sync.WaitGroup{}
	p.loops = loops
	ctx := p.ctx
	worker := p.worker
	p.mutex.Unlock()

	loops.Add(3)
	go func() {
		defer loops.Done()
		worker.Run(ctx)
	}()
	go func() {
		defer loops.Done()
		p.runJanitor(ctx)
	}()
	go func() {
		defer loops.Done()
		p.runStatsRefresher(ctx)
	}()

	p.mutex.Lock()
	p.state = models.PipelineStateRunning
	p.mutex.Unlock()

	slog.Info("推理流水线已启动",
		"batch_size", p.config.BatchSize,
		"batch_window", p.config.BatchWindow.String(),
		"queue_capacity", p.config.QueueCapacity,
		"cache_ttl", p.config.CacheTTL.String())
	return nil
}

// Stop 停止流水线
// 停止接收新请求，在宽限时间内等待在途批次完成，剩余等待者以未运行错误终止
func (p *PipelineService) Stop() error {
	p.mutex.Lock()
	if p.state != models.PipelineStateRunning {
		current := p.state
		p.mutex.Unlock()
		return fmt.Errorf("流水线当前状态为 %s，无法停止", current)
	}
	p.state = models.PipelineStateStopping
	cancel := p.cancel
	worker := p.worker
	loops := p.loops
	p.mutex.Unlock()

	slog.Info("推理流水线开始停止", "pending_flights", p.cache.PendingCount())
	cancel()

	deadline := time.Now().Add(p.config.StopGraceTimeout)
	if !waitGroupWithTimeout(loops, time.Until(deadline)) {
		slog.Warn("等待后台循环退出超时")
	}
	if remaining := time.Until(deadline); remaining > 0 {
		if !worker.WaitForDrain(remaining) {
			slog.Warn("等待在途批次完成超时", "grace", p.config.StopGraceTimeout.String())
		}
	}

	// 未被任何批次认领的等待者到此统一失败
	p.cache.FailAllWaiters(ErrNotRunning)

	p.mutex.Lock()
	p.state = models.PipelineStateStopped
	p.mutex.Unlock()

	slog.Info("推理流水线已停止")
	return nil
}

// waitGroupWithTimeout 带超时的WaitGroup等待
func waitGroupWithTimeout(wg *sync.WaitGroup, timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Submit 提交单条预测请求并阻塞等待结果
// 命中缓存立即返回；同键在途计算只等待不重复入队；队列满立即返回错误
func (p *PipelineService) Submit(ctx context.Context, request *models.PredictionRequest) (*models.PredictionResult, error) {
	if err := validateRequest(request); err != nil {
		return nil, err
	}

	p.mutex.RLock()
	state := p.state
	queue := p.queue
	config := p.config
	p.mutex.RUnlock()
	if state != models.PipelineStateRunning {
		return nil, fmt.Errorf("%w: 当前状态 %s", ErrNotRunning, state)
	}

	if request.RequestID == "" {
		request.RequestID = uuid.New().String()
	}
	if request.SubmittedAt.IsZero() {
		request.SubmittedAt = time.Now()
	}
	key := request.Fingerprint()

	cached, waiter, owner := p.cache.Acquire(key)
	if cached != nil {
		p.stats.RecordCacheHit()
		slog.Debug("缓存命中", "cache_key", key, "subject_id", request.SubjectID)
		return cached, nil
	}

	if owner {
		select {
		case queue <- request:
		default:
			err := fmt.Errorf("%w: 队列已满(容量 %d)", ErrQueueFull, config.QueueCapacity)
			p.cache.AbandonWait(key, waiter, err)
			return nil, err
		}
	}

	return waiter.Wait(ctx, config.RequestTimeout)
}

// SubmitBatch 批量提交
// 条目之间完全隔离，单条失败不影响其它条目，返回结果与入参顺序一致
func (p *PipelineService) SubmitBatch(ctx context.Context, requests []*models.PredictionRequest) []models.BatchOutcome {
	outcomes := make([]models.BatchOutcome, len(requests))
	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			result, err := p.Submit(ctx, requests[index])
			outcomes[index] = models.BatchOutcome{Index: index, Result: result, Err: err}
		}(i)
	}
	wg.Wait()
	return outcomes
}

// RegisterResultCallback 注册结果回调，运行中注册立即生效
func (p *PipelineService) RegisterResultCallback(callback ResultCallback) {
	p.results.Register(callback)
}

// RegisterAlertCallback 注册告警回调，运行中注册立即生效
func (p *PipelineService) RegisterAlertCallback(callback AlertCallback) {
	p.alerts.RegisterCallback(callback)
}

// HealthCheck 健康检查，任何内部异常都不会向调用方抛出
func (p *PipelineService) HealthCheck() (status models.HealthStatus) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("健康检查发生panic", "panic", rec)
			status = models.HealthStatus{
				Status:    models.PipelineUnhealthy,
				State:     models.PipelineStateStopped,
				Issues:    []models.HealthIssue{{Component: "state", Severity: "critical", Message: "健康检查内部异常"}},
				CheckedAt: time.Now(),
			}
		}
	}()

	p.refreshGauges()
	snapshot := p.stats.Snapshot()

	p.mutex.RLock()
	state := p.state
	config := p.config
	p.mutex.RUnlock()

	issues := make([]models.HealthIssue, 0, 3)
	if state != models.PipelineStateRunning {
		return models.HealthStatus{
			Status: models.PipelineUnhealthy,
			State:  state,
			Issues: []models.HealthIssue{{
				Component: "state",
				Severity:  "critical",
				Message:   fmt.Sprintf("流水线未运行，当前状态 %s", state),
			}},
			CheckedAt: time.Now(),
		}
	}

	if snapshot.QueueDepth > config.QueueDepthThreshold {
		issues = append(issues, models.HealthIssue{
			Component: "queue",
			Severity:  "warning",
			Message:   fmt.Sprintf("队列积压 %d 条，超过阈值 %d", snapshot.QueueDepth, config.QueueDepthThreshold),
		})
	}
	if snapshot.ErrorRate > config.ErrorRateThreshold {
		issues = append(issues, models.HealthIssue{
			Component: "error_rate",
			Severity:  "warning",
			Message:   fmt.Sprintf("错误率 %.2f%% 超过阈值 %.2f%%", snapshot.ErrorRate*100, config.ErrorRateThreshold*100),
		})
	}
	if snapshot.AvgLatencyMs > config.LatencyThresholdMs {
		issues = append(issues, models.HealthIssue{
			Component: "latency",
			Severity:  "warning",
			Message:   fmt.Sprintf("平均延迟 %.1fms 超过阈值 %.0fms", snapshot.AvgLatencyMs, config.LatencyThresholdMs),
		})
	}

	health := models.PipelineHealthy
	if len(issues) > 0 {
		health = models.PipelineDegraded
	}
	return models.HealthStatus{
		Status:    health,
		State:     state,
		Issues:    issues,
		CheckedAt: time.Now(),
	}
}

// GetStatistics 获取统计快照，仪表值在快照前即时刷新
func (p *PipelineService) GetStatistics() models.StatsSnapshot {
	p.refreshGauges()
	return p.stats.Snapshot()
}

// refreshGauges 刷新队列深度与缓存条目仪表
func (p *PipelineService) refreshGauges() {
	p.mutex.RLock()
	queue := p.queue
	p.mutex.RUnlock()

	depth := 0
	if queue != nil {
		depth = len(queue)
	}
	p.stats.UpdateGauges(depth, p.cache.Size())
}

// runJanitor 缓存清扫循环
func (p *PipelineService) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(p.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if swept := p.cache.Sweep(); swept > 0 {
				slog.Debug("缓存清扫完成", "swept", swept, "remaining", p.cache.Size())
			}
		}
	}
}

// runStatsRefresher 仪表刷新循环，保证无人查询时统计也保持新鲜
func (p *PipelineService) runStatsRefresher(ctx context.Context) {
	ticker := time.NewTicker(p.config.StatsRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refreshGauges()
		}
	}
}

// State 当前状态
func (p *PipelineService) State() models.PipelineState {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.state
}

// Uptime 本轮启动以来的运行时长，未运行返回0
func (p *PipelineService) Uptime() time.Duration {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if p.state != models.PipelineStateRunning || p.startedAt.IsZero() {
		return 0
	}
	return time.Since(p.startedAt)
}

// Config 当前配置副本
func (p *PipelineService) Config() models.PipelineConfig {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return *p.config
}

// ApplyConfig 更新流水线配置，仅在停止状态下允许
func (p *PipelineService) ApplyConfig(config *models.PipelineConfig) error {
	if config == nil {
		return fmt.Errorf("%w: 配置不能为空", ErrValidation)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.state != models.PipelineStateStopped {
		return fmt.Errorf("流水线当前状态为 %s，请先停止再更新配置", p.state)
	}
	p.config = config
	p.cache.SetTTL(config.CacheTTL)
	return nil
}

// PendingFlights 当前在途计算数
func (p *PipelineService) PendingFlights() int {
	return p.cache.PendingCount()
}

// CacheSize 当前缓存条目数
func (p *PipelineService) CacheSize() int {
	return p.cache.Size()
}

// ResetStatistics 清零统计，用于运维接口
func (p *PipelineService) ResetStatistics() {
	p.stats.Reset()
}

// validateRequest 提交前的请求校验
func validateRequest(request *models.PredictionRequest) error {
	if request == nil {
		return fmt.Errorf("%w: 请求不能为空", ErrValidation)
	}
	if request.SubjectID == "" {
		return fmt.Errorf("%w: subject_id 不能为空", ErrValidation)
	}
	if len(request.RawPayload) == 0 {
		return fmt.Errorf("%w: 信号载荷不能为空", ErrValidation)
	}
	return nil
}
