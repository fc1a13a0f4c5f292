/*
 * @module service/config/config_manager
 * @description 服务配置管理，默认值、YAML配置文件与环境变量三级加载，运行期读写并发安全
 * @architecture 分层架构 - 配置管理层
 * @stateFlow 内置默认值 -> CONFIG_FILE指定的YAML覆盖 -> 环境变量覆盖 -> 校验后生效
 * @rules 基础设施项沿用平台通用环境变量；流水线调优项使用BURNOUT_前缀环境变量
 * @dependencies os, gopkg.in/yaml.v3, github.com/spf13/cast
 * @refs service/init.go, api/controllers/pipeline_controller.go
 */

package config

import (
	"burnout-service/service/models"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Port        string `json:"port" yaml:"port"`
	BaseContext string `json:"base_context" yaml:"base_context"`
}

// DatabaseConfig 数据库配置
// driver为sqlite时直接使用dsn；为postgres时优先完整URL，否则按主机各项拼接
type DatabaseConfig struct {
	Driver   string `json:"driver" yaml:"driver"`
	URL      string `json:"url" yaml:"url"`
	Host     string `json:"host" yaml:"host"`
	Port     string `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"-" yaml:"password"`
	Name     string `json:"name" yaml:"name"`
	SSLMode  string `json:"ssl_mode" yaml:"ssl_mode"`
	Schema   string `json:"schema" yaml:"schema"`
	DSN      string `json:"dsn" yaml:"dsn"`
}

// RedisConfig Redis配置，供限流器、分布式锁与事件发布使用
type RedisConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Host     string `json:"host" yaml:"host"`
	Port     string `json:"port" yaml:"port"`
	Password string `json:"-" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// KafkaConfig Kafka配置，供结果与告警外发使用
type KafkaConfig struct {
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	Brokers     []string `json:"brokers" yaml:"brokers"`
	ResultTopic string   `json:"result_topic" yaml:"result_topic"`
	AlertTopic  string   `json:"alert_topic" yaml:"alert_topic"`
}

// MQTTConfig MQTT配置，供行为信号接入使用
type MQTTConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Broker   string `json:"broker" yaml:"broker"`
	ClientID string `json:"client_id" yaml:"client_id"`
	Topic    string `json:"topic" yaml:"topic"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"-" yaml:"password"`
	QOS      byte   `json:"qos" yaml:"qos"`
}

// ScoringConfig 评分模型与特征提取配置
type ScoringConfig struct {
	Weights       []float64 `json:"weights" yaml:"weights"`
	Bias          float64   `json:"bias" yaml:"bias"`
	ScriptFile    string    `json:"script_file" yaml:"script_file"`
	ExtractScript string    `json:"-" yaml:"extract_script"`
}

// RateLimitConfig 提交限流配置
type RateLimitConfig struct {
	Enabled bool          `json:"enabled" yaml:"enabled"`
	Limit   int64         `json:"limit" yaml:"limit"`
	Window  time.Duration `json:"window" yaml:"window"`
}

// CleanupConfig 历史数据清理配置
type CleanupConfig struct {
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	Cron          string `json:"cron" yaml:"cron"`
	RetentionDays int    `json:"retention_days" yaml:"retention_days"`
}

// AppConfig 服务全量配置
type AppConfig struct {
	Server    ServerConfig          `json:"server" yaml:"server"`
	Database  DatabaseConfig        `json:"database" yaml:"database"`
	Redis     RedisConfig           `json:"redis" yaml:"redis"`
	Kafka     KafkaConfig           `json:"kafka" yaml:"kafka"`
	MQTT      MQTTConfig            `json:"mqtt" yaml:"mqtt"`
	Pipeline  models.PipelineConfig `json:"pipeline" yaml:"pipeline"`
	Scoring   ScoringConfig         `json:"scoring" yaml:"scoring"`
	RateLimit RateLimitConfig       `json:"rate_limit" yaml:"rate_limit"`
	Cleanup   CleanupConfig         `json:"cleanup" yaml:"cleanup"`
}

// Default 内置默认配置
func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        "80",
			BaseContext: "",
		},
		Database: DatabaseConfig{
			Driver:  "sqlite",
			DSN:     "burnout.db",
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "burnout",
			SSLMode: "disable",
			Schema:  "public",
		},
		Redis: RedisConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    "6379",
			DB:      0,
		},
		Kafka: KafkaConfig{
			Enabled:     false,
			Brokers:     []string{"localhost:9092"},
			ResultTopic: "burnout.predictions",
			AlertTopic:  "burnout.alerts",
		},
		MQTT: MQTTConfig{
			Enabled:  false,
			Broker:   "tcp://localhost:1883",
			ClientID: "burnout-service",
			Topic:    "burnout/signals/#",
			QOS:      1,
		},
		Pipeline: models.GetDefaultPipelineConfig(),
		Scoring:  ScoringConfig{},
		RateLimit: RateLimitConfig{
			Enabled: false,
			Limit:   120,
			Window:  time.Minute,
		},
		Cleanup: CleanupConfig{
			Enabled:       true,
			Cron:          "0 0 2 * * *",
			RetentionDays: 90,
		},
	}
}

// Load 按默认值 -> YAML文件 -> 环境变量的顺序加载配置
func Load() (*AppConfig, error) {
	config := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFromFile(config, path); err != nil {
			return nil, err
		}
	}
	applyEnvOverrides(config)

	if err := config.Pipeline.Validate(); err != nil {
		return nil, fmt.Errorf("流水线配置无效: %w", err)
	}
	if config.Scoring.ScriptFile != "" && config.Scoring.ExtractScript == "" {
		script, err := os.ReadFile(config.Scoring.ScriptFile)
		if err != nil {
			return nil, fmt.Errorf("读取特征脚本文件失败: %w", err)
		}
		config.Scoring.ExtractScript = string(script)
	}
	return config, nil
}

// loadFromFile 从YAML文件加载并覆盖默认值
func loadFromFile(config *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return nil
}

// applyEnvOverrides 环境变量覆盖
// 基础设施项沿用平台通用变量名，流水线调优项使用BURNOUT_前缀
func applyEnvOverrides(config *AppConfig) {
	setString(&config.Server.Port, "PORT")
	setString(&config.Server.BaseContext, "BASE_CONTEXT")

	setString(&config.Database.Driver, "DB_DRIVER")
	setString(&config.Database.URL, "DATABASE_URL")
	setString(&config.Database.Host, "DB_HOST")
	setString(&config.Database.Port, "DB_PORT")
	setString(&config.Database.User, "DB_USER")
	setString(&config.Database.Password, "DB_PASSWORD")
	setString(&config.Database.Name, "DB_NAME")
	setString(&config.Database.SSLMode, "DB_SSLMODE")
	setString(&config.Database.Schema, "DB_SCHEMA")
	setString(&config.Database.DSN, "DB_DSN")
	if config.Database.URL != "" && os.Getenv("DB_DRIVER") == "" {
		config.Database.Driver = "postgres"
	}

	setBool(&config.Redis.Enabled, "REDIS_ENABLED")
	setString(&config.Redis.Host, "REDIS_HOST")
	setString(&config.Redis.Port, "REDIS_PORT")
	setString(&config.Redis.Password, "REDIS_PASSWORD")
	setInt(&config.Redis.DB, "REDIS_DB")
	if os.Getenv("REDIS_HOST") != "" && os.Getenv("REDIS_ENABLED") == "" {
		config.Redis.Enabled = true
	}

	setBool(&config.Kafka.Enabled, "KAFKA_ENABLED")
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		config.Kafka.Brokers = strings.Split(brokers, ",")
		if os.Getenv("KAFKA_ENABLED") == "" {
			config.Kafka.Enabled = true
		}
	}
	setString(&config.Kafka.ResultTopic, "KAFKA_RESULT_TOPIC")
	setString(&config.Kafka.AlertTopic, "KAFKA_ALERT_TOPIC")

	setBool(&config.MQTT.Enabled, "MQTT_ENABLED")
	setString(&config.MQTT.Broker, "MQTT_BROKER")
	setString(&config.MQTT.ClientID, "MQTT_CLIENT_ID")
	setString(&config.MQTT.Topic, "MQTT_TOPIC")
	setString(&config.MQTT.Username, "MQTT_USERNAME")
	setString(&config.MQTT.Password, "MQTT_PASSWORD")
	if os.Getenv("MQTT_BROKER") != "" && os.Getenv("MQTT_ENABLED") == "" {
		config.MQTT.Enabled = true
	}

	setInt(&config.Pipeline.BatchSize, "BURNOUT_BATCH_SIZE")
	setDuration(&config.Pipeline.BatchWindow, "BURNOUT_BATCH_WINDOW")
	setDuration(&config.Pipeline.CacheTTL, "BURNOUT_CACHE_TTL")
	setDuration(&config.Pipeline.SweepInterval, "BURNOUT_SWEEP_INTERVAL")
	setInt(&config.Pipeline.QueueCapacity, "BURNOUT_QUEUE_CAPACITY")
	setInt(&config.Pipeline.MaxWorkers, "BURNOUT_MAX_WORKERS")
	setDuration(&config.Pipeline.RequestTimeout, "BURNOUT_REQUEST_TIMEOUT")
	setDuration(&config.Pipeline.StopGraceTimeout, "BURNOUT_STOP_GRACE_TIMEOUT")
	setInt(&config.Pipeline.QueueDepthThreshold, "BURNOUT_QUEUE_DEPTH_THRESHOLD")
	setFloat(&config.Pipeline.ErrorRateThreshold, "BURNOUT_ERROR_RATE_THRESHOLD")
	setFloat(&config.Pipeline.LatencyThresholdMs, "BURNOUT_LATENCY_THRESHOLD_MS")

	setString(&config.Scoring.ScriptFile, "BURNOUT_EXTRACT_SCRIPT_FILE")
	setFloat(&config.Scoring.Bias, "BURNOUT_MODEL_BIAS")

	setBool(&config.RateLimit.Enabled, "BURNOUT_RATE_LIMIT_ENABLED")
	setInt64(&config.RateLimit.Limit, "BURNOUT_RATE_LIMIT")
	setDuration(&config.RateLimit.Window, "BURNOUT_RATE_LIMIT_WINDOW")

	setBool(&config.Cleanup.Enabled, "BURNOUT_CLEANUP_ENABLED")
	setString(&config.Cleanup.Cron, "BURNOUT_CLEANUP_CRON")
	setInt(&config.Cleanup.RetentionDays, "BURNOUT_RETENTION_DAYS")
}

func setString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func setInt(target *int, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := cast.ToIntE(value); err == nil {
			*target = parsed
		}
	}
}

func setInt64(target *int64, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := cast.ToInt64E(value); err == nil {
			*target = parsed
		}
	}
}

func setFloat(target *float64, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := cast.ToFloat64E(value); err == nil {
			*target = parsed
		}
	}
}

func setBool(target *bool, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := cast.ToBoolE(value); err == nil {
			*target = parsed
		}
	}
}

func setDuration(target *time.Duration, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := cast.ToDurationE(value); err == nil {
			*target = parsed
		}
	}
}

// PostgresDSN 拼接postgres连接串，优先使用完整URL
func (d *DatabaseConfig) PostgresDSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode, d.Schema)
}

// RedisAddr Redis连接地址
func (r *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Manager 配置管理器，持有当前生效配置
type Manager struct {
	mutex   sync.RWMutex
	current *AppConfig
}

// NewManager 创建配置管理器
func NewManager(config *AppConfig) *Manager {
	return &Manager{current: config}
}

// Get 当前配置副本
func (m *Manager) Get() AppConfig {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return *m.current
}

// Pipeline 当前流水线配置副本
func (m *Manager) Pipeline() models.PipelineConfig {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.current.Pipeline
}

// SetPipeline 更新流水线配置段
func (m *Manager) SetPipeline(pipeline models.PipelineConfig) {
	m.mutex.Lock()
	m.current.Pipeline = pipeline
	m.mutex.Unlock()
}
