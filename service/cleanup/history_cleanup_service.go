/*
 * @module service/cleanup/history_cleanup_service
 * @description 历史清理服务，负责定期清理过期的预测历史与告警历史
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 定时触发 -> 获取分布式锁 -> 执行清理 -> 记录结果
 * @rules 多副本部署时通过分布式锁保证同一时刻只有一个副本执行清理
 * @dependencies burnout-service/service/history, github.com/robfig/cron/v3
 * @refs service/distributed_lock, service/config
 */

package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"burnout-service/service/distributed_lock"
	"burnout-service/service/history"

	"github.com/robfig/cron/v3"
)

const (
	// 清理任务的分布式锁键
	cleanupLockKey = "history_cleanup"
	// 锁的持有时间与续期间隔
	cleanupLockTTL     = 10 * time.Minute
	cleanupLockRefresh = 3 * time.Minute
)

// HistoryCleanupService 历史清理服务
type HistoryCleanupService struct {
	historyService *history.HistoryService
	lockExecutor   *distributed_lock.LockExecutor
	cron           *cron.Cron
	cronSpec       string
	retentionDays  int
	ctx            context.Context
	cancel         context.CancelFunc
	started        bool
}

// NewHistoryCleanupService 创建历史清理服务实例
// lockExecutor可为空，单副本部署时直接执行
func NewHistoryCleanupService(historyService *history.HistoryService, lockExecutor *distributed_lock.LockExecutor, cronSpec string, retentionDays int) *HistoryCleanupService {
	ctx, cancel := context.WithCancel(context.Background())

	return &HistoryCleanupService{
		historyService: historyService,
		lockExecutor:   lockExecutor,
		cron:           cron.New(cron.WithSeconds()),
		cronSpec:       cronSpec,
		retentionDays:  retentionDays,
		ctx:            ctx,
		cancel:         cancel,
		started:        false,
	}
}

// CleanupExpiredHistory 清理所有过期历史
func (s *HistoryCleanupService) CleanupExpiredHistory(ctx context.Context) error {
	slog.Info("开始清理过期历史", "retention_days", s.retentionDays)
	startTime := time.Now()

	// 1. 清理预测历史
	predictionsDeleted, err := s.historyService.CleanupPredictions(s.retentionDays)
	if err != nil {
		slog.Error("清理预测历史失败", "error", err)
	} else {
		slog.Info("清理预测历史完成", "deleted_count", predictionsDeleted, "retention_days", s.retentionDays)
	}

	// 2. 清理告警历史
	alertsDeleted, err := s.historyService.CleanupAlerts(s.retentionDays)
	if err != nil {
		slog.Error("清理告警历史失败", "error", err)
	} else {
		slog.Info("清理告警历史完成", "deleted_count", alertsDeleted, "retention_days", s.retentionDays)
	}

	duration := time.Since(startTime)
	slog.Info("历史清理完成",
		"predictions_deleted", predictionsDeleted,
		"alerts_deleted", alertsDeleted,
		"total_deleted", predictionsDeleted+alertsDeleted,
		"duration_ms", duration.Milliseconds())

	return nil
}

// runCleanupTask 在分布式锁保护下执行清理
func (s *HistoryCleanupService) runCleanupTask() {
	if s.lockExecutor == nil {
		if err := s.CleanupExpiredHistory(s.ctx); err != nil {
			slog.Error("历史清理任务失败", "error", err)
		}
		return
	}

	err := s.lockExecutor.ExecuteWithLockAndRefresh(s.ctx, cleanupLockKey, cleanupLockTTL, cleanupLockRefresh, func() error {
		return s.CleanupExpiredHistory(s.ctx)
	})
	if err != nil {
		slog.Error("历史清理任务失败", "error", err)
	}
}

// StartScheduledCleanup 启动定时清理任务
func (s *HistoryCleanupService) StartScheduledCleanup() error {
	if s.started {
		return fmt.Errorf("历史清理调度器已经启动")
	}

	slog.Info("启动历史清理调度器", "cron", s.cronSpec)

	// Cron表达式：秒 分 时 日 月 周
	_, err := s.cron.AddFunc(s.cronSpec, func() {
		slog.Info("开始执行定时历史清理任务")
		s.runCleanupTask()
	})

	if err != nil {
		return fmt.Errorf("添加定时任务失败: %w", err)
	}

	// 启动调度器
	s.cron.Start()
	s.started = true

	slog.Info("历史清理调度器启动成功")

	// 可选：启动时立即执行一次清理
	go func() {
		slog.Info("执行首次历史清理")
		s.runCleanupTask()
	}()

	return nil
}

// StopScheduledCleanup 停止定时清理任务
func (s *HistoryCleanupService) StopScheduledCleanup() {
	if !s.started {
		return
	}

	slog.Info("停止历史清理调度器")

	s.cancel()

	if s.cron != nil {
		s.cron.Stop()
	}

	s.started = false

	slog.Info("历史清理调度器已停止")
}
