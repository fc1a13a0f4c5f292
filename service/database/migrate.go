/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新数据库表结构
 * @architecture 数据访问层 - 迁移管理
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 确保数据库结构与模型定义保持一致
 * @dependencies burnout-service/service/models, gorm.io/gorm
 * @refs service/models/prediction.go, service/models/alert.go
 */

package database

import (
	"burnout-service/service/models"
	"log"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	// 预测历史相关表
	err := db.AutoMigrate(
		&models.PredictionRecord{},
	)
	if err != nil {
		return err
	}

	// 告警历史相关表
	err = db.AutoMigrate(
		&models.AlertRecord{},
	)
	if err != nil {
		return err
	}

	// 访问控制相关表
	err = db.AutoMigrate(
		&models.ApiKey{},
	)
	if err != nil {
		return err
	}

	log.Println("数据库迁移完成")
	return nil
}

// InitializeData 初始化基础数据
func InitializeData(db *gorm.DB) error {
	log.Println("开始初始化基础数据...")

	// 风险等级与告警事件类型由代码内枚举提供，无需数据库存储
	riskLevels := []string{
		string(models.RiskLevelLow),      // 低风险
		string(models.RiskLevelMedium),   // 中风险
		string(models.RiskLevelHigh),     // 高风险
		string(models.RiskLevelCritical), // 危急
	}

	eventTypes := []string{
		models.StreamEventResult, // 预测结果
		models.StreamEventAlert,  // 高风险告警
	}

	log.Printf("支持的风险等级: %v", riskLevels)
	log.Printf("支持的事件类型: %v", eventTypes)

	log.Println("基础数据初始化完成")
	return nil
}
