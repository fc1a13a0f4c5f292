/*
 * @module MQTTSource
 * @description MQTT信号源，订阅行为信号主题并将信号转为预测请求提交到流水线
 * @architecture 适配器模式 - 封装第三方MQTT客户端，对接流水线提交接口
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 连接建立 -> 主题订阅 -> 信号解析 -> 流水线提交 -> 连接断开
 * @rules 解析失败与提交失败只记录统计，队列满由流水线背压，信号源不做重试
 * @dependencies github.com/eclipse/paho.mqtt.golang, github.com/google/uuid
 * @refs service/pipeline/pipeline_service.go, service/models/events.go
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

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// SignalSink 信号落点，由流水线服务实现
type SignalSink interface {
	Submit(ctx context.Context, request *models.PredictionRequest) (*models.PredictionResult, error)
}

// MQTTSourceConfig MQTT信号源配置
type MQTTSourceConfig struct {
	Broker        string        `json:"broker"`         // broker地址，如tcp://localhost:1883
	ClientID      string        `json:"client_id"`      // 客户端ID
	Topic         string        `json:"topic"`          // 订阅主题，支持通配符
	Username      string        `json:"username"`       // 用户名
	Password      string        `json:"-"`              // 密码
	QoS           byte          `json:"qos"`            // 服务质量等级
	KeepAlive     time.Duration `json:"keep_alive"`     // 心跳间隔
	SubmitTimeout time.Duration `json:"submit_timeout"` // 单条信号的提交超时
}

// MQTTSourceStats MQTT信号源统计信息
type MQTTSourceStats struct {
	ConnectedAt      time.Time `json:"connected_at"`      // 连接时间
	SignalsReceived  int64     `json:"signals_received"`  // 接收信号数
	SignalsSubmitted int64     `json:"signals_submitted"` // 成功提交数
	SignalsRejected  int64     `json:"signals_rejected"`  // 提交失败数
	ParseErrors      int64     `json:"parse_errors"`      // 解析失败数
	ReconnectCount   int       `json:"reconnect_count"`   // 重连次数
	LastError        string    `json:"last_error"`        // 最后错误信息
	mutex            sync.RWMutex
}

// MQTTSource MQTT信号源结构体
type MQTTSource struct {
	config      *MQTTSourceConfig
	client      mqtt.Client
	sink        SignalSink
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mutex       sync.RWMutex
	isConnected bool
	stats       *MQTTSourceStats
}

// NewMQTTSource 创建新的MQTT信号源
func NewMQTTSource(config *MQTTSourceConfig, sink SignalSink, logger *log.Logger) *MQTTSource {
	ctx, cancel := context.WithCancel(context.Background())

	if config.KeepAlive <= 0 {
		config.KeepAlive = 30 * time.Second
	}
	if config.SubmitTimeout <= 0 {
		config.SubmitTimeout = 30 * time.Second
	}

	source := &MQTTSource{
		config:      config,
		sink:        sink,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		isConnected: false,
		stats:       &MQTTSourceStats{},
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)

	if config.Username != "" {
		opts.SetUsername(config.Username)
		opts.SetPassword(config.Password)
	}

	opts.SetCleanSession(true)
	opts.SetKeepAlive(config.KeepAlive)
	opts.SetAutoReconnect(true)
	// 每条消息在独立goroutine中处理，提交阻塞不会卡住接收循环
	opts.SetOrderMatters(false)

	opts.SetOnConnectHandler(source.onConnected)
	opts.SetConnectionLostHandler(source.onConnectionLost)

	source.client = mqtt.NewClient(opts)
	return source
}

// Start 建立连接并订阅信号主题
func (ms *MQTTSource) Start() error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if ms.isConnected {
		return nil
	}

	ms.logger.Printf("正在连接MQTT broker: %s", ms.config.Broker)

	if token := ms.client.Connect(); token.Wait() && token.Error() != nil {
		ms.updateError(fmt.Sprintf("MQTT连接失败: %v", token.Error()))
		return fmt.Errorf("MQTT连接失败: %v", token.Error())
	}

	ms.isConnected = true
	ms.stats.ConnectedAt = time.Now()
	ms.logger.Printf("MQTT信号源已连接，订阅主题: %s", ms.config.Topic)
	return nil
}

// Stop 取消订阅并断开连接
func (ms *MQTTSource) Stop() error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if !ms.isConnected {
		return nil
	}

	ms.logger.Println("正在断开MQTT信号源...")

	if token := ms.client.Unsubscribe(ms.config.Topic); token.Wait() && token.Error() != nil {
		ms.logger.Printf("取消订阅失败 topic=%s: %v", ms.config.Topic, token.Error())
	}

	ms.client.Disconnect(250) // 等待250ms让在途消息处理完成
	ms.cancel()
	ms.isConnected = false
	ms.logger.Println("MQTT信号源已断开连接")
	return nil
}

// onConnected 连接建立处理器，首连与重连都在这里完成订阅
func (ms *MQTTSource) onConnected(client mqtt.Client) {
	ms.mutex.Lock()
	ms.isConnected = true
	ms.mutex.Unlock()

	token := client.Subscribe(ms.config.Topic, ms.config.QoS, ms.handleSignal)
	if token.Wait() && token.Error() != nil {
		ms.updateError(fmt.Sprintf("订阅主题失败: %v", token.Error()))
		ms.logger.Printf("订阅主题失败 topic=%s: %v", ms.config.Topic, token.Error())
		return
	}

	ms.logger.Printf("已订阅主题: %s (QoS: %d)", ms.config.Topic, ms.config.QoS)
}

// onConnectionLost 连接丢失处理器
func (ms *MQTTSource) onConnectionLost(client mqtt.Client, err error) {
	ms.mutex.Lock()
	ms.isConnected = false
	ms.mutex.Unlock()

	ms.stats.mutex.Lock()
	ms.stats.ReconnectCount++
	ms.stats.mutex.Unlock()

	ms.updateError(fmt.Sprintf("MQTT连接丢失: %v", err))
	ms.logger.Printf("MQTT连接丢失: %v", err)
}

// handleSignal 解析信号并提交流水线
func (ms *MQTTSource) handleSignal(client mqtt.Client, msg mqtt.Message) {
	ms.stats.mutex.Lock()
	ms.stats.SignalsReceived++
	ms.stats.mutex.Unlock()

	var signal models.SignalMessage
	if err := json.Unmarshal(msg.Payload(), &signal); err != nil {
		ms.recordParseError()
		ms.logger.Printf("解析信号失败 topic=%s: %v", msg.Topic(), err)
		return
	}

	if signal.SubjectID == "" {
		ms.recordParseError()
		ms.logger.Printf("信号缺少subject_id topic=%s", msg.Topic())
		return
	}

	request := &models.PredictionRequest{
		RequestID:   uuid.New().String(),
		SubjectID:   signal.SubjectID,
		CacheKey:    signal.CacheKey,
		RawPayload:  signal.Payload,
		SubmittedAt: time.Now(),
		Source:      "mqtt",
	}

	ctx, cancel := context.WithTimeout(ms.ctx, ms.config.SubmitTimeout)
	defer cancel()

	result, err := ms.sink.Submit(ctx, request)
	if err != nil {
		ms.stats.mutex.Lock()
		ms.stats.SignalsRejected++
		ms.stats.mutex.Unlock()
		ms.logger.Printf("信号提交失败 subject_id=%s: %v", signal.SubjectID, err)
		return
	}

	ms.stats.mutex.Lock()
	ms.stats.SignalsSubmitted++
	ms.stats.mutex.Unlock()

	ms.logger.Printf("信号处理完成 subject_id=%s risk_level=%s", result.SubjectID, result.RiskLevel)
}

// recordParseError 记录解析失败
func (ms *MQTTSource) recordParseError() {
	ms.stats.mutex.Lock()
	ms.stats.ParseErrors++
	ms.stats.mutex.Unlock()
}

// updateError 更新错误信息
func (ms *MQTTSource) updateError(errMsg string) {
	ms.stats.mutex.Lock()
	ms.stats.LastError = errMsg
	ms.stats.mutex.Unlock()
}

// IsConnected 检查连接状态
func (ms *MQTTSource) IsConnected() bool {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	return ms.isConnected
}

// GetStatistics 获取信号源统计信息
func (ms *MQTTSource) GetStatistics() map[string]interface{} {
	ms.stats.mutex.RLock()
	defer ms.stats.mutex.RUnlock()

	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	return map[string]interface{}{
		"connected":         ms.isConnected,
		"broker":            ms.config.Broker,
		"client_id":         ms.config.ClientID,
		"topic":             ms.config.Topic,
		"connected_at":      ms.stats.ConnectedAt,
		"signals_received":  ms.stats.SignalsReceived,
		"signals_submitted": ms.stats.SignalsSubmitted,
		"signals_rejected":  ms.stats.SignalsRejected,
		"parse_errors":      ms.stats.ParseErrors,
		"reconnect_count":   ms.stats.ReconnectCount,
		"last_error":        ms.stats.LastError,
	}
}
