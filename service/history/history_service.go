/*
 * @module service/history/history_service
 * @description 预测历史服务，负责预测结果与告警的落库、查询和过期清理
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 流水线回调 -> 历史落库 -> 分页查询/定期清理
 * @rules 落库由注册到流水线的回调驱动，失败只记录日志，不反向影响流水线
 * @dependencies burnout-service/service/models, gorm.io/gorm
 * @refs service/pipeline/callbacks.go, service/cleanup
 */

package history

import (
	"fmt"
	"log/slog"
	"time"

	"burnout-service/service/models"

	"gorm.io/gorm"
)

// HistoryService 预测历史服务
type HistoryService struct {
	db *gorm.DB
}

// NewHistoryService 创建预测历史服务实例
func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// === 落库 ===

// RecordResult 保存一条预测结果历史
func (s *HistoryService) RecordResult(result *models.PredictionResult) error {
	if result == nil {
		return fmt.Errorf("预测结果为空")
	}
	record := &models.PredictionRecord{
		RequestID:  result.RequestID,
		SubjectID:  result.SubjectID,
		CacheKey:   result.CacheKey,
		RiskScore:  result.RiskScore,
		RiskLevel:  string(result.RiskLevel),
		Confidence: result.Confidence,
		LatencyMs:  result.LatencyMs,
		Source:     result.Source,
		ProducedAt: result.ProducedAt,
	}
	return s.db.Create(record).Error
}

// RecordAlert 保存一条告警历史
func (s *HistoryService) RecordAlert(alert *models.Alert) error {
	if alert == nil {
		return fmt.Errorf("告警事件为空")
	}
	record := &models.AlertRecord{
		AlertID:    alert.AlertID,
		RequestID:  alert.RequestID,
		SubjectID:  alert.SubjectID,
		RiskScore:  alert.RiskScore,
		RiskLevel:  string(alert.RiskLevel),
		Confidence: alert.Confidence,
		Message:    alert.Message,
		ProducedAt: alert.ProducedAt,
	}
	return s.db.Create(record).Error
}

// OnResult 流水线结果回调适配器，落库失败只记日志
func (s *HistoryService) OnResult(result *models.PredictionResult) {
	if err := s.RecordResult(result); err != nil {
		slog.Error("保存预测历史失败", "request_id", result.RequestID, "error", err)
	}
}

// OnAlert 流水线告警回调适配器，落库失败只记日志
func (s *HistoryService) OnAlert(alert *models.Alert) {
	if err := s.RecordAlert(alert); err != nil {
		slog.Error("保存告警历史失败", "alert_id", alert.AlertID, "error", err)
	}
}

// === 查询 ===

// GetPredictions 分页查询预测历史
func (s *HistoryService) GetPredictions(page, pageSize int, subjectID, riskLevel string, start, end *time.Time) ([]models.PredictionRecord, int64, error) {
	var records []models.PredictionRecord
	var total int64

	query := s.db.Model(&models.PredictionRecord{})

	if subjectID != "" {
		query = query.Where("subject_id = ?", subjectID)
	}
	if riskLevel != "" {
		query = query.Where("risk_level = ?", riskLevel)
	}
	if start != nil {
		query = query.Where("produced_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("produced_at < ?", *end)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("produced_at DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// GetPredictionByRequestID 根据请求ID查询预测历史
func (s *HistoryService) GetPredictionByRequestID(requestID string) (*models.PredictionRecord, error) {
	var record models.PredictionRecord
	if err := s.db.First(&record, "request_id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GetLatestBySubject 查询指定对象最近一次预测
func (s *HistoryService) GetLatestBySubject(subjectID string) (*models.PredictionRecord, error) {
	var record models.PredictionRecord
	if err := s.db.Where("subject_id = ?", subjectID).Order("produced_at DESC").First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GetAlerts 分页查询告警历史
func (s *HistoryService) GetAlerts(page, pageSize int, subjectID, riskLevel string) ([]models.AlertRecord, int64, error) {
	var records []models.AlertRecord
	var total int64

	query := s.db.Model(&models.AlertRecord{})

	if subjectID != "" {
		query = query.Where("subject_id = ?", subjectID)
	}
	if riskLevel != "" {
		query = query.Where("risk_level = ?", riskLevel)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("produced_at DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// === 清理 ===

// CleanupPredictions 删除超过保留天数的预测历史
func (s *HistoryService) CleanupPredictions(retentionDays int) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	slog.Debug("清理预测历史", "cutoff_date", cutoffDate.Format("2006-01-02 15:04:05"), "retention_days", retentionDays)

	result := s.db.Where("created_at < ?", cutoffDate).Delete(&models.PredictionRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("删除预测历史失败: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// CleanupAlerts 删除超过保留天数的告警历史
func (s *HistoryService) CleanupAlerts(retentionDays int) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	slog.Debug("清理告警历史", "cutoff_date", cutoffDate.Format("2006-01-02 15:04:05"), "retention_days", retentionDays)

	result := s.db.Where("created_at < ?", cutoffDate).Delete(&models.AlertRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("删除告警历史失败: %w", result.Error)
	}

	return result.RowsAffected, nil
}
