/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify, time
 * @refs service/models
 */

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"burnout-service/service/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.PredictionRecord{},
		&models.AlertRecord{},
		&models.ApiKey{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	// 清空所有表的数据
	tables := []string{
		"prediction_records",
		"alert_records",
		"api_keys",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// PredictionRecordOption 预测历史选项函数类型
type PredictionRecordOption func(*models.PredictionRecord)

// CreatePredictionRecord 创建测试预测历史
func (f *TestDataFactory) CreatePredictionRecord(subjectID string, opts ...PredictionRecordOption) *models.PredictionRecord {
	record := &models.PredictionRecord{
		ID:         generateID("pr"),
		RequestID:  generateID("req"),
		SubjectID:  subjectID,
		RiskScore:  0.42,
		RiskLevel:  string(models.RiskLevelMedium),
		Confidence: 0.58,
		LatencyMs:  120,
		Source:     "http",
		ProducedAt: time.Now(),
		CreatedAt:  time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(record)
	}

	err := f.DB.Create(record).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test prediction record: %v", err))
	}

	return record
}

// AlertRecordOption 告警历史选项函数类型
type AlertRecordOption func(*models.AlertRecord)

// CreateAlertRecord 创建测试告警历史
func (f *TestDataFactory) CreateAlertRecord(subjectID string, opts ...AlertRecordOption) *models.AlertRecord {
	record := &models.AlertRecord{
		ID:         generateID("ar"),
		AlertID:    generateID("alert"),
		RequestID:  generateID("req"),
		SubjectID:  subjectID,
		RiskScore:  0.85,
		RiskLevel:  string(models.RiskLevelCritical),
		Confidence: 0.85,
		Message:    "测试告警",
		ProducedAt: time.Now(),
		CreatedAt:  time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(record)
	}

	err := f.DB.Create(record).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test alert record: %v", err))
	}

	return record
}

// ApiKeyOption API密钥选项函数类型
type ApiKeyOption func(*models.ApiKey)

// CreateApiKey 创建测试API密钥
func (f *TestDataFactory) CreateApiKey(opts ...ApiKeyOption) *models.ApiKey {
	apiKey := &models.ApiKey{
		ID:           generateID("ak"),
		Name:         "测试API密钥",
		KeyPrefix:    "test0000",
		KeyValueHash: "test_key_hash_" + generateSuffix(),
		Description:  "这是一个测试API密钥",
		Status:       "active",
		CreatedBy:    "test",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(apiKey)
	}

	err := f.DB.Create(apiKey).Error
	if err != nil {
		panic(fmt.Sprintf("failed to create test api key: %v", err))
	}

	return apiKey
}

// 辅助函数
func generateID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixNano(), generateSuffix())
}

func generateSuffix() string {
	return fmt.Sprintf("%d", time.Now().UnixNano()%100000)
}

// TestTransaction 测试事务辅助工具
type TestTransaction struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewTestTransaction 创建测试事务
func NewTestTransaction(db *gorm.DB) *TestTransaction {
	tx := db.Begin()
	return &TestTransaction{
		db: db,
		tx: tx,
	}
}

// DB 获取事务数据库
func (tt *TestTransaction) DB() *gorm.DB {
	return tt.tx
}

// Commit 提交事务
func (tt *TestTransaction) Commit() {
	tt.tx.Commit()
}

// Rollback 回滚事务
func (tt *TestTransaction) Rollback() {
	tt.tx.Rollback()
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// AssertJSONResponse 断言JSON响应
func (h *HTTPTestHelper) AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	assert.Equal(t, expectedStatus, w.Code)

	if expectedBody != nil {
		var actualBody interface{}
		err := json.Unmarshal(w.Body.Bytes(), &actualBody)
		assert.NoError(t, err)

		expectedJSON, _ := json.Marshal(expectedBody)
		actualJSON, _ := json.Marshal(actualBody)

		assert.JSONEq(t, string(expectedJSON), string(actualJSON))
	}
}
