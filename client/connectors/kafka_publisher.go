/*
 * @module KafkaPublisher
 * @description Kafka发布器，将预测结果与高风险告警异步写入Kafka主题，供下游系统订阅
 * @architecture 适配器模式 - 封装第三方Kafka客户端，提供统一的发布接口
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 连接建立 -> 回调触发 -> 消息发布 -> 连接断开
 * @rules 发布失败只记录日志与统计，绝不反向阻塞流水线
 * @dependencies github.com/segmentio/kafka-go, encoding/json
 * @refs service/pipeline/callbacks.go, service/models/prediction.go
 */
package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"burnout-service/service/models"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisherConfig Kafka发布器配置
type KafkaPublisherConfig struct {
	Brokers      []string      `json:"brokers"`       // broker地址列表
	ResultTopic  string        `json:"result_topic"`  // 预测结果主题
	AlertTopic   string        `json:"alert_topic"`   // 告警主题
	BatchSize    int           `json:"batch_size"`    // 生产者批大小
	BatchTimeout time.Duration `json:"batch_timeout"` // 生产者批超时
	WriteTimeout time.Duration `json:"write_timeout"` // 单次写入超时
}

// KafkaPublisher Kafka发布器结构体
type KafkaPublisher struct {
	config      *KafkaPublisherConfig
	writers     map[string]*kafka.Writer // 按topic分组的生产者
	mutex       sync.RWMutex
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	isConnected bool

	publishedCount int64
	failedCount    int64
}

// NewKafkaPublisher 创建新的Kafka发布器
func NewKafkaPublisher(config *KafkaPublisherConfig, logger *log.Logger) *KafkaPublisher {
	ctx, cancel := context.WithCancel(context.Background())

	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}

	return &KafkaPublisher{
		config:      config,
		writers:     make(map[string]*kafka.Writer),
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		isConnected: false,
	}
}

// Connect 初始化各主题的生产者
func (kp *KafkaPublisher) Connect() error {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	if kp.isConnected {
		return nil
	}

	if len(kp.config.Brokers) == 0 {
		return fmt.Errorf("未配置Kafka broker地址")
	}

	for _, topic := range []string{kp.config.ResultTopic, kp.config.AlertTopic} {
		if topic == "" {
			continue
		}

		writer := &kafka.Writer{
			Addr:         kafka.TCP(kp.config.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
			Completion:   kp.onCompletion,
		}

		if kp.config.BatchSize > 0 {
			writer.BatchSize = kp.config.BatchSize
		}
		if kp.config.BatchTimeout > 0 {
			writer.BatchTimeout = kp.config.BatchTimeout
		}

		kp.writers[topic] = writer
	}

	kp.isConnected = true
	kp.logger.Printf("Kafka发布器已连接到brokers: %v", kp.config.Brokers)
	return nil
}

// Disconnect 关闭所有生产者
func (kp *KafkaPublisher) Disconnect() error {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	if !kp.isConnected {
		return nil
	}

	for topic, writer := range kp.writers {
		if err := writer.Close(); err != nil {
			kp.logger.Printf("关闭生产者失败 topic=%s: %v", topic, err)
		}
	}

	kp.cancel()
	kp.writers = make(map[string]*kafka.Writer)
	kp.isConnected = false
	kp.logger.Println("Kafka发布器已断开连接")
	return nil
}

// PublishResult 发布预测结果，消息键为评估对象ID以保证同对象分区有序
func (kp *KafkaPublisher) PublishResult(result *models.PredictionResult) error {
	if result == nil {
		return fmt.Errorf("预测结果为空")
	}
	return kp.publish(kp.config.ResultTopic, result.SubjectID, result)
}

// PublishAlert 发布高风险告警
func (kp *KafkaPublisher) PublishAlert(alert *models.Alert) error {
	if alert == nil {
		return fmt.Errorf("告警为空")
	}
	return kp.publish(kp.config.AlertTopic, alert.SubjectID, alert)
}

// OnResult 结果回调适配器，发布失败只记录日志
func (kp *KafkaPublisher) OnResult(result *models.PredictionResult) {
	if err := kp.PublishResult(result); err != nil {
		kp.logger.Printf("发布预测结果失败 request_id=%s: %v", result.RequestID, err)
	}
}

// OnAlert 告警回调适配器
func (kp *KafkaPublisher) OnAlert(alert *models.Alert) {
	if err := kp.PublishAlert(alert); err != nil {
		kp.logger.Printf("发布告警失败 alert_id=%s: %v", alert.AlertID, err)
	}
}

// publish 序列化并写入指定主题
func (kp *KafkaPublisher) publish(topic, key string, value interface{}) error {
	kp.mutex.RLock()
	writer, exists := kp.writers[topic]
	connected := kp.isConnected
	kp.mutex.RUnlock()

	if !connected {
		return fmt.Errorf("Kafka发布器未连接")
	}
	if !exists {
		return fmt.Errorf("找不到topic的生产者: %s", topic)
	}

	valueBytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化消息值失败: %v", err)
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(key),
		Value: valueBytes,
		Time:  time.Now(),
	}

	// 异步生产者下WriteMessages只做入队，实际发送结果由Completion回调统计
	ctx, cancel := context.WithTimeout(kp.ctx, kp.config.WriteTimeout)
	defer cancel()

	if err := writer.WriteMessages(ctx, kafkaMsg); err != nil {
		atomic.AddInt64(&kp.failedCount, 1)
		return fmt.Errorf("发送消息失败: %v", err)
	}

	return nil
}

// onCompletion 异步发送完成回调
func (kp *KafkaPublisher) onCompletion(messages []kafka.Message, err error) {
	if err != nil {
		atomic.AddInt64(&kp.failedCount, int64(len(messages)))
		kp.logger.Printf("异步发送失败 count=%d: %v", len(messages), err)
		return
	}
	atomic.AddInt64(&kp.publishedCount, int64(len(messages)))
}

// IsConnected 检查连接状态
func (kp *KafkaPublisher) IsConnected() bool {
	kp.mutex.RLock()
	defer kp.mutex.RUnlock()
	return kp.isConnected
}

// GetStatistics 获取发布器统计信息
func (kp *KafkaPublisher) GetStatistics() map[string]interface{} {
	kp.mutex.RLock()
	defer kp.mutex.RUnlock()

	return map[string]interface{}{
		"connected":       kp.isConnected,
		"brokers":         kp.config.Brokers,
		"result_topic":    kp.config.ResultTopic,
		"alert_topic":     kp.config.AlertTopic,
		"published_count": atomic.LoadInt64(&kp.publishedCount),
		"failed_count":    atomic.LoadInt64(&kp.failedCount),
	}
}
