/*
 * @module RedisPublisher
 * @description Redis发布器，通过发布订阅广播预测结果与告警，并缓存每个评估对象的最新结果
 * @architecture 适配器模式 - 封装第三方Redis客户端，提供统一的发布与查询接口
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 连接建立 -> 回调触发 -> PUBLISH广播/SET最新结果 -> 连接断开
 * @rules 最新结果键带TTL，过期由Redis自行回收；发布失败不阻塞流水线
 * @dependencies github.com/go-redis/redis/v8, encoding/json
 * @refs service/pipeline/callbacks.go, api/controllers/prediction_controller.go
 */
package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"burnout-service/service/models"

	"github.com/go-redis/redis/v8"
)

// 键与频道约定
const (
	resultChannel   = "burnout:events:predictions"
	alertChannel    = "burnout:events:alerts"
	latestKeyPrefix = "burnout:latest:"
)

// RedisPublisherConfig Redis发布器配置
type RedisPublisherConfig struct {
	Address      string        `json:"address"`        // Redis地址
	Password     string        `json:"-"`              // 密码
	Database     int           `json:"database"`       // 数据库编号
	PoolSize     int           `json:"pool_size"`      // 连接池大小
	MinIdleConns int           `json:"min_idle_conns"` // 最小空闲连接数
	DialTimeout  time.Duration `json:"dial_timeout"`   // 连接超时时间
	ReadTimeout  time.Duration `json:"read_timeout"`   // 读取超时时间
	WriteTimeout time.Duration `json:"write_timeout"`  // 写入超时时间
	LatestTTL    time.Duration `json:"latest_ttl"`     // 最新结果缓存时长
}

// RedisPublisherStats Redis发布器统计信息
type RedisPublisherStats struct {
	ConnectedAt  time.Time `json:"connected_at"`  // 连接时间
	MessagesSent int64     `json:"messages_sent"` // 发送消息数
	BytesWritten int64     `json:"bytes_written"` // 写入字节数
	LastError    string    `json:"last_error"`    // 最后错误信息
	mutex        sync.RWMutex
}

// RedisPublisher Redis发布器结构体
type RedisPublisher struct {
	config      *RedisPublisherConfig
	client      *redis.Client
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	isConnected bool
	mutex       sync.RWMutex
	stats       *RedisPublisherStats
}

// NewRedisPublisher 创建新的Redis发布器
func NewRedisPublisher(config *RedisPublisherConfig, logger *log.Logger) *RedisPublisher {
	ctx, cancel := context.WithCancel(context.Background())

	if config.PoolSize <= 0 {
		config.PoolSize = 10
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = 5 * time.Second
	}
	if config.LatestTTL <= 0 {
		config.LatestTTL = 30 * time.Minute
	}

	publisher := &RedisPublisher{
		config:      config,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		isConnected: false,
		stats:       &RedisPublisherStats{},
	}

	publisher.client = redis.NewClient(&redis.Options{
		Addr:         config.Address,
		Password:     config.Password,
		DB:           config.Database,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	return publisher
}

// Connect 建立Redis连接
func (rp *RedisPublisher) Connect() error {
	rp.mutex.Lock()
	defer rp.mutex.Unlock()

	if rp.isConnected {
		return nil
	}

	if _, err := rp.client.Ping(rp.ctx).Result(); err != nil {
		rp.updateError(fmt.Sprintf("Redis连接失败: %v", err))
		return fmt.Errorf("Redis连接失败: %v", err)
	}

	rp.isConnected = true
	rp.stats.ConnectedAt = time.Now()
	rp.logger.Printf("Redis发布器已连接: %s", rp.config.Address)
	return nil
}

// Disconnect 断开Redis连接
func (rp *RedisPublisher) Disconnect() error {
	rp.mutex.Lock()
	defer rp.mutex.Unlock()

	if !rp.isConnected {
		return nil
	}

	if err := rp.client.Close(); err != nil {
		rp.logger.Printf("关闭Redis客户端失败: %v", err)
	}

	rp.cancel()
	rp.isConnected = false
	rp.logger.Println("Redis发布器已断开连接")
	return nil
}

// PublishResult 广播预测结果并缓存为该对象的最新结果
func (rp *RedisPublisher) PublishResult(result *models.PredictionResult) error {
	if result == nil {
		return fmt.Errorf("预测结果为空")
	}
	if !rp.IsConnected() {
		return fmt.Errorf("Redis发布器未连接")
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("序列化预测结果失败: %v", err)
	}

	if err := rp.client.Publish(rp.ctx, resultChannel, data).Err(); err != nil {
		rp.updateError(fmt.Sprintf("PUBLISH命令失败: %v", err))
		return fmt.Errorf("PUBLISH命令失败: %v", err)
	}

	// 最新结果缓存允许失败，广播成功即视为发布成功
	latestKey := latestKeyPrefix + result.SubjectID
	if err := rp.client.Set(rp.ctx, latestKey, data, rp.config.LatestTTL).Err(); err != nil {
		rp.logger.Printf("缓存最新结果失败 subject_id=%s: %v", result.SubjectID, err)
	}

	rp.updateStats(1, int64(len(data)))
	return nil
}

// PublishAlert 广播高风险告警
func (rp *RedisPublisher) PublishAlert(alert *models.Alert) error {
	if alert == nil {
		return fmt.Errorf("告警为空")
	}
	if !rp.IsConnected() {
		return fmt.Errorf("Redis发布器未连接")
	}

	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("序列化告警失败: %v", err)
	}

	if err := rp.client.Publish(rp.ctx, alertChannel, data).Err(); err != nil {
		rp.updateError(fmt.Sprintf("PUBLISH命令失败: %v", err))
		return fmt.Errorf("PUBLISH命令失败: %v", err)
	}

	rp.updateStats(1, int64(len(data)))
	return nil
}

// GetLatestResult 查询评估对象的最新预测结果，无记录时返回nil
func (rp *RedisPublisher) GetLatestResult(ctx context.Context, subjectID string) (*models.PredictionResult, error) {
	if !rp.IsConnected() {
		return nil, fmt.Errorf("Redis发布器未连接")
	}

	data, err := rp.client.Get(ctx, latestKeyPrefix+subjectID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GET命令失败: %v", err)
	}

	var result models.PredictionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("反序列化最新结果失败: %v", err)
	}
	return &result, nil
}

// OnResult 结果回调适配器，发布失败只记录日志
func (rp *RedisPublisher) OnResult(result *models.PredictionResult) {
	if err := rp.PublishResult(result); err != nil {
		rp.logger.Printf("Redis广播预测结果失败 request_id=%s: %v", result.RequestID, err)
	}
}

// OnAlert 告警回调适配器
func (rp *RedisPublisher) OnAlert(alert *models.Alert) {
	if err := rp.PublishAlert(alert); err != nil {
		rp.logger.Printf("Redis广播告警失败 alert_id=%s: %v", alert.AlertID, err)
	}
}

// Client 返回底层Redis客户端
func (rp *RedisPublisher) Client() *redis.Client {
	return rp.client
}

// IsConnected 检查连接状态
func (rp *RedisPublisher) IsConnected() bool {
	rp.mutex.RLock()
	defer rp.mutex.RUnlock()
	return rp.isConnected
}

// GetStatistics 获取发布器统计信息
func (rp *RedisPublisher) GetStatistics() map[string]interface{} {
	rp.stats.mutex.RLock()
	defer rp.stats.mutex.RUnlock()

	rp.mutex.RLock()
	defer rp.mutex.RUnlock()

	return map[string]interface{}{
		"connected":     rp.isConnected,
		"address":       rp.config.Address,
		"connected_at":  rp.stats.ConnectedAt,
		"messages_sent": rp.stats.MessagesSent,
		"bytes_written": rp.stats.BytesWritten,
		"last_error":    rp.stats.LastError,
	}
}

// updateStats 更新统计信息
func (rp *RedisPublisher) updateStats(messages, bytes int64) {
	rp.stats.mutex.Lock()
	rp.stats.MessagesSent += messages
	rp.stats.BytesWritten += bytes
	rp.stats.mutex.Unlock()
}

// updateError 更新错误信息
func (rp *RedisPublisher) updateError(errMsg string) {
	rp.stats.mutex.Lock()
	rp.stats.LastError = errMsg
	rp.stats.mutex.Unlock()
}
