/*
 * @module service/pipeline/callbacks
 * @description 结果与告警回调注册表，注册与分发并发安全，观察者异常不影响流水线
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 注册回调 -> 批处理产出结果 -> 快照遍历逐个调用
 * @rules 回调内的panic被捕获并记录日志，绝不向工作器传播
 * @dependencies sync, log/slog
 * @refs service/pipeline/batch_worker.go, service/pipeline/alert_dispatcher.go
 */

package pipeline

import (
	"burnout-service/service/models"
	"log/slog"
	"sync"
)

// ResultCallback 预测结果观察者
type ResultCallback func(*models.PredictionResult)

// AlertCallback 高风险告警观察者
type AlertCallback func(*models.Alert)

// resultCallbackRegistry 结果回调注册表
// 分发时先在读锁内取快照，避免注册与分发互相阻塞
type resultCallbackRegistry struct {
	mutex     sync.RWMutex
	callbacks []ResultCallback
}

// Register 注册结果回调
func (r *resultCallbackRegistry) Register(callback ResultCallback) {
	if callback == nil {
		return
	}
	r.mutex.Lock()
	r.callbacks = append(r.callbacks, callback)
	r.mutex.Unlock()
}

// Dispatch 同步分发结果，单个回调的panic被隔离
func (r *resultCallbackRegistry) Dispatch(result *models.PredictionResult) {
	r.mutex.RLock()
	snapshot := make([]ResultCallback, len(r.callbacks))
	copy(snapshot, r.callbacks)
	r.mutex.RUnlock()

	for _, callback := range snapshot {
		invokeResultCallback(callback, result)
	}
}

// Count 已注册回调数
func (r *resultCallbackRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.callbacks)
}

func invokeResultCallback(callback ResultCallback, result *models.PredictionResult) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("结果回调发生panic，已隔离",
				"request_id", result.RequestID,
				"subject_id", result.SubjectID,
				"panic", rec)
		}
	}()
	callback(result)
}

// alertCallbackRegistry 告警回调注册表
type alertCallbackRegistry struct {
	mutex     sync.RWMutex
	callbacks []AlertCallback
}

// Register 注册告警回调
func (r *alertCallbackRegistry) Register(callback AlertCallback) {
	if callback == nil {
		return
	}
	r.mutex.Lock()
	r.callbacks = append(r.callbacks, callback)
	r.mutex.Unlock()
}

// Dispatch 同步分发告警，回调之间相互独立
func (r *alertCallbackRegistry) Dispatch(alert *models.Alert) {
	r.mutex.RLock()
	snapshot := make([]AlertCallback, len(r.callbacks))
	copy(snapshot, r.callbacks)
	r.mutex.RUnlock()

	for _, callback := range snapshot {
		invokeAlertCallback(callback, alert)
	}
}

// Count 已注册回调数
func (r *alertCallbackRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.callbacks)
}

func invokeAlertCallback(callback AlertCallback, alert *models.Alert) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("告警回调发生panic，已隔离",
				"alert_id", alert.AlertID,
				"subject_id", alert.SubjectID,
				"panic", rec)
		}
	}()
	callback(alert)
}
