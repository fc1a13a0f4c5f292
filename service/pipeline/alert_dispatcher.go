/*
 * @module service/pipeline/alert_dispatcher
 * @description 高风险告警分发器，对high/critical结果同步扇出告警回调
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 批处理产出结果 -> 风险等级判定 -> 构造告警 -> 同步通知全部回调
 * @rules 告警本身不落库，持久化由注册的回调自行完成；回调失败只记日志
 * @dependencies fmt, time, log/slog
 * @refs service/pipeline/batch_worker.go, service/history/history_service.go
 */

package pipeline

import (
	"burnout-service/service/models"
	"fmt"
	"log/slog"
	"time"
)

// AlertDispatcher 告警分发器
type AlertDispatcher struct {
	callbacks *alertCallbackRegistry
	stats     *StatsAggregator
}

// NewAlertDispatcher 创建告警分发器
func NewAlertDispatcher(stats *StatsAggregator) *AlertDispatcher {
	return &AlertDispatcher{
		callbacks: &alertCallbackRegistry{},
		stats:     stats,
	}
}

// RegisterCallback 注册告警回调，可在流水线运行中调用
func (d *AlertDispatcher) RegisterCallback(callback AlertCallback) {
	d.callbacks.Register(callback)
}

// CallbackCount 已注册回调数
func (d *AlertDispatcher) CallbackCount() int {
	return d.callbacks.Count()
}

// Evaluate 检查结果风险等级，达到告警阈值时构造告警并同步分发
// 返回是否触发了告警
func (d *AlertDispatcher) Evaluate(result *models.PredictionResult) bool {
	if result == nil || !result.RiskLevel.RequiresAlert() {
		return false
	}

	alert := d.buildAlert(result)
	if d.stats != nil {
		d.stats.RecordAlert()
	}

	slog.Warn("检测到高风险预测结果，触发告警",
		"alert_id", alert.AlertID,
		"subject_id", alert.SubjectID,
		"risk_level", alert.RiskLevel,
		"risk_score", alert.RiskScore)

	d.callbacks.Dispatch(alert)
	return true
}

// buildAlert 由预测结果构造告警
func (d *AlertDispatcher) buildAlert(result *models.PredictionResult) *models.Alert {
	return &models.Alert{
		AlertID:    d.generateAlertID(),
		RequestID:  result.RequestID,
		SubjectID:  result.SubjectID,
		RiskScore:  result.RiskScore,
		RiskLevel:  result.RiskLevel,
		Confidence: result.Confidence,
		ProducedAt: result.ProducedAt,
		Message: fmt.Sprintf("对象 %s 倦怠风险评分 %.2f，等级 %s，请及时关注",
			result.SubjectID, result.RiskScore, result.RiskLevel),
	}
}

// generateAlertID 生成告警ID
func (d *AlertDispatcher) generateAlertID() string {
	return fmt.Sprintf("alert_%d", time.Now().UnixNano())
}
