/*
 * @module service/init
 * @description 服务初始化模块，负责配置加载、数据库连接、流水线装配与周边组件启动
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 应用启动时执行初始化流程，进程退出时按依赖逆序停止
 * @rules 配置、数据库、流水线初始化失败直接终止进程，可选组件失败仅降级并记录日志
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres, gorm.io/driver/sqlite
 * @refs service/config/config_manager.go, service/pipeline/pipeline_service.go
 */

package service

import (
	"log"
	"os"

	"burnout-service/client/connectors"
	"burnout-service/service/access"
	"burnout-service/service/cleanup"
	"burnout-service/service/config"
	"burnout-service/service/database"
	"burnout-service/service/distributed_lock"
	"burnout-service/service/event"
	"burnout-service/service/features"
	"burnout-service/service/history"
	"burnout-service/service/monitoring"
	"burnout-service/service/pipeline"
	"burnout-service/service/rate_limiter"
	"burnout-service/service/scoring"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	DB                    *gorm.DB
	GlobalConfig          *config.Manager
	GlobalPipelineService *pipeline.PipelineService
	GlobalHistoryService  *history.HistoryService
	GlobalEventService    *event.EventService
	GlobalAccessService   *access.AccessService
	GlobalHealthChecker   *monitoring.HealthChecker
	GlobalRateLimiter     *rate_limiter.RedisRateLimiter
	GlobalCleanupService  *cleanup.HistoryCleanupService
	GlobalKafkaPublisher  *connectors.KafkaPublisher
	GlobalRedisPublisher  *connectors.RedisPublisher
	GlobalMQTTSource      *connectors.MQTTSource

	globalLock *distributed_lock.RedisLock
)

func init() {
	initConfig()
	initDatabase()
	runMigrations()
	initPipeline()
	initServices()
}

// initConfig 加载配置
func initConfig() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	GlobalConfig = config.NewManager(cfg)
	log.Printf("配置加载完成: driver=%s redis=%t kafka=%t mqtt=%t",
		cfg.Database.Driver, cfg.Redis.Enabled, cfg.Kafka.Enabled, cfg.MQTT.Enabled)
}

// initDatabase 初始化数据库连接
func initDatabase() {
	cfg := GlobalConfig.Get()

	var dialector gorm.Dialector
	if cfg.Database.Driver == "postgres" {
		dialector = postgres.Open(cfg.Database.PostgresDSN())
	} else {
		dialector = sqlite.Open(cfg.Database.DSN)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库表结构迁移完成")

	if err := database.InitializeData(DB); err != nil {
		log.Fatalf("基础数据初始化失败: %v", err)
	}
	log.Println("基础数据初始化完成")
}

// initPipeline 装配推理流水线
func initPipeline() {
	cfg := GlobalConfig.Get()

	extractor, err := buildExtractor(&cfg)
	if err != nil {
		log.Fatalf("特征提取器构建失败: %v", err)
	}

	model, err := buildModel(&cfg)
	if err != nil {
		log.Fatalf("评分模型构建失败: %v", err)
	}

	pipelineCfg := cfg.Pipeline
	GlobalPipelineService, err = pipeline.NewPipelineService(&pipelineCfg, extractor, model)
	if err != nil {
		log.Fatalf("流水线创建失败: %v", err)
	}
}

// buildExtractor 按配置选择特征提取器，配置了脚本时用脚本提取器
func buildExtractor(cfg *config.AppConfig) (features.Extractor, error) {
	if cfg.Scoring.ExtractScript != "" {
		return features.NewScriptExtractor(cfg.Scoring.ExtractScript)
	}
	return features.NewSignalExtractor(), nil
}

// buildModel 按配置选择评分模型，未配置权重时用默认线性模型
func buildModel(cfg *config.AppConfig) (scoring.Model, error) {
	if len(cfg.Scoring.Weights) > 0 {
		return scoring.NewLinearModel(cfg.Scoring.Weights, cfg.Scoring.Bias)
	}
	return scoring.DefaultLinearModel(), nil
}

// initServices 初始化服务并注册流水线观察者
func initServices() {
	cfg := GlobalConfig.Get()

	GlobalHistoryService = history.NewHistoryService(DB)
	GlobalAccessService = access.NewAccessService(DB)
	GlobalEventService = event.NewEventService(DB)

	// 历史落库在前，事件推送在后
	GlobalPipelineService.RegisterResultCallback(GlobalHistoryService.OnResult)
	GlobalPipelineService.RegisterAlertCallback(GlobalHistoryService.OnAlert)
	GlobalPipelineService.RegisterResultCallback(GlobalEventService.OnResult)
	GlobalPipelineService.RegisterAlertCallback(GlobalEventService.OnAlert)

	if cfg.Redis.Enabled {
		initRedisComponents(&cfg)
	}
	if cfg.Kafka.Enabled {
		initKafkaPublisher(&cfg)
	}

	GlobalHealthChecker = monitoring.NewHealthChecker(DB, redisHealthClient(), GlobalPipelineService)
	prometheus.MustRegister(monitoring.NewPipelineCollector(GlobalPipelineService))

	if err := GlobalPipelineService.Start(); err != nil {
		log.Fatalf("流水线启动失败: %v", err)
	}
	log.Println("推理流水线已启动")

	// postgres下桥接其他副本的写入事件
	if cfg.Database.Driver == "postgres" {
		if err := GlobalEventService.StartChangeListener(cfg.Database.PostgresDSN()); err != nil {
			log.Printf("启动数据库变更监听失败: %v", err)
		}
	}

	initCleanup(&cfg)

	if cfg.MQTT.Enabled {
		initMQTTSource(&cfg)
	}

	log.Println("服务初始化完成")
}

// initRedisComponents 初始化Redis相关组件：发布器、限流器、分布式锁
func initRedisComponents(cfg *config.AppConfig) {
	addr := cfg.Redis.RedisAddr()

	publisher := connectors.NewRedisPublisher(&connectors.RedisPublisherConfig{
		Address:  addr,
		Password: cfg.Redis.Password,
		Database: cfg.Redis.DB,
	}, log.New(os.Stdout, "[redis-publisher] ", log.LstdFlags))
	if err := publisher.Connect(); err != nil {
		log.Printf("Redis发布器连接失败，跨副本广播不可用: %v", err)
	} else {
		GlobalRedisPublisher = publisher
		GlobalPipelineService.RegisterResultCallback(publisher.OnResult)
		GlobalPipelineService.RegisterAlertCallback(publisher.OnAlert)
	}

	if cfg.RateLimit.Enabled {
		limiter, err := rate_limiter.NewRedisRateLimiter(addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("限流器初始化失败，提交接口不限流: %v", err)
		} else {
			GlobalRateLimiter = limiter
		}
	}

	lock, err := distributed_lock.NewRedisLock(addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("分布式锁初始化失败，清理任务将在各副本独立执行: %v", err)
	} else {
		globalLock = lock
	}
}

// initKafkaPublisher 初始化Kafka发布器并注册为流水线观察者
func initKafkaPublisher(cfg *config.AppConfig) {
	publisher := connectors.NewKafkaPublisher(&connectors.KafkaPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		ResultTopic: cfg.Kafka.ResultTopic,
		AlertTopic:  cfg.Kafka.AlertTopic,
	}, log.New(os.Stdout, "[kafka-publisher] ", log.LstdFlags))

	if err := publisher.Connect(); err != nil {
		log.Printf("Kafka发布器初始化失败，结果外发不可用: %v", err)
		return
	}

	GlobalKafkaPublisher = publisher
	GlobalPipelineService.RegisterResultCallback(publisher.OnResult)
	GlobalPipelineService.RegisterAlertCallback(publisher.OnAlert)
}

// initCleanup 初始化历史清理调度
func initCleanup(cfg *config.AppConfig) {
	if !cfg.Cleanup.Enabled {
		return
	}

	var executor *distributed_lock.LockExecutor
	if globalLock != nil {
		executor = distributed_lock.NewLockExecutor(globalLock)
	}

	GlobalCleanupService = cleanup.NewHistoryCleanupService(
		GlobalHistoryService, executor, cfg.Cleanup.Cron, cfg.Cleanup.RetentionDays)
	if err := GlobalCleanupService.StartScheduledCleanup(); err != nil {
		log.Printf("启动历史清理调度失败: %v", err)
	}
}

// initMQTTSource 初始化MQTT信号源
func initMQTTSource(cfg *config.AppConfig) {
	source := connectors.NewMQTTSource(&connectors.MQTTSourceConfig{
		Broker:        cfg.MQTT.Broker,
		ClientID:      cfg.MQTT.ClientID,
		Topic:         cfg.MQTT.Topic,
		Username:      cfg.MQTT.Username,
		Password:      cfg.MQTT.Password,
		QoS:           cfg.MQTT.QOS,
		SubmitTimeout: cfg.Pipeline.RequestTimeout,
	}, GlobalPipelineService, log.New(os.Stdout, "[mqtt-source] ", log.LstdFlags))

	if err := source.Start(); err != nil {
		log.Printf("MQTT信号源启动失败: %v", err)
		return
	}
	GlobalMQTTSource = source
}

// redisHealthClient 健康检查复用Redis发布器的客户端，未启用时返回nil
func redisHealthClient() *redis.Client {
	if GlobalRedisPublisher == nil {
		return nil
	}
	return GlobalRedisPublisher.Client()
}

// Shutdown 按依赖逆序停止各组件，先停进量再排空流水线
func Shutdown() {
	log.Println("开始停止服务...")

	if GlobalMQTTSource != nil {
		if err := GlobalMQTTSource.Stop(); err != nil {
			log.Printf("停止MQTT信号源失败: %v", err)
		}
	}

	if GlobalPipelineService != nil {
		if err := GlobalPipelineService.Stop(); err != nil {
			log.Printf("停止流水线失败: %v", err)
		}
	}

	if GlobalCleanupService != nil {
		GlobalCleanupService.StopScheduledCleanup()
	}

	if GlobalEventService != nil {
		GlobalEventService.Stop()
	}

	if GlobalKafkaPublisher != nil {
		GlobalKafkaPublisher.Disconnect()
	}
	if GlobalRedisPublisher != nil {
		GlobalRedisPublisher.Disconnect()
	}
	if GlobalRateLimiter != nil {
		GlobalRateLimiter.Close()
	}
	if globalLock != nil {
		globalLock.Close()
	}

	log.Println("服务已停止")
}
