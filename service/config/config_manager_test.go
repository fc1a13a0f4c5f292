/*
 * @module service/config/config_manager_test
 * @description 配置三级加载的单元测试
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults 测试无任何外部配置时使用内置默认值
func TestLoad_Defaults(t *testing.T) {
	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "80", config.Server.Port)
	assert.Equal(t, "sqlite", config.Database.Driver)
	assert.Equal(t, 32, config.Pipeline.BatchSize)
	assert.Equal(t, 5*time.Minute, config.Pipeline.CacheTTL)
	assert.False(t, config.Redis.Enabled)
	assert.False(t, config.Kafka.Enabled)
	assert.True(t, config.Cleanup.Enabled)
}

// TestLoad_YamlFileOverridesDefaults 测试YAML文件覆盖默认值
func TestLoad_YamlFileOverridesDefaults(t *testing.T) {
	content := `
server:
  port: "8080"
pipeline:
  batch_size: 16
  batch_window: 500ms
kafka:
  enabled: true
  brokers:
    - kafka-1:9092
    - kafka-2:9092
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("CONFIG_FILE", path)

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, 16, config.Pipeline.BatchSize)
	assert.Equal(t, 500*time.Millisecond, config.Pipeline.BatchWindow)
	assert.True(t, config.Kafka.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, config.Kafka.Brokers)
	// 文件未覆盖的项仍是默认值
	assert.Equal(t, 1000, config.Pipeline.QueueCapacity)
}

// TestLoad_EnvOverridesFile 测试环境变量优先级高于配置文件
func TestLoad_EnvOverridesFile(t *testing.T) {
	content := `
pipeline:
  batch_size: 16
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("BURNOUT_BATCH_SIZE", "64")
	t.Setenv("BURNOUT_CACHE_TTL", "90s")
	t.Setenv("REDIS_HOST", "redis.internal")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 64, config.Pipeline.BatchSize, "环境变量应该覆盖配置文件")
	assert.Equal(t, 90*time.Second, config.Pipeline.CacheTTL)
	assert.True(t, config.Redis.Enabled, "设置REDIS_HOST时默认启用Redis")
	assert.Equal(t, "redis.internal:6379", config.Redis.RedisAddr())
}

// TestLoad_InvalidPipelineConfigRejected 测试非法流水线配置被拒绝
func TestLoad_InvalidPipelineConfigRejected(t *testing.T) {
	t.Setenv("BURNOUT_BATCH_SIZE", "0")

	_, err := Load()
	assert.Error(t, err, "batch_size为0应该加载失败")
}

// TestLoad_DatabaseURLImpliesPostgres 测试提供DATABASE_URL时驱动默认切换为postgres
func TestLoad_DatabaseURLImpliesPostgres(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/burnout?sslmode=disable")

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", config.Database.Driver)
	assert.Equal(t, "postgres://user:pass@db:5432/burnout?sslmode=disable", config.Database.PostgresDSN())
}

// TestPostgresDSN_FromParts 测试按主机各项拼接连接串
func TestPostgresDSN_FromParts(t *testing.T) {
	database := DatabaseConfig{
		Host: "db", Port: "5432", User: "svc", Password: "secret",
		Name: "burnout", SSLMode: "disable", Schema: "public",
	}
	dsn := database.PostgresDSN()
	assert.Contains(t, dsn, "host=db")
	assert.Contains(t, dsn, "dbname=burnout")
	assert.Contains(t, dsn, "search_path=public")
}

// TestManager_PipelineRoundTrip 测试管理器的流水线配置读写
func TestManager_PipelineRoundTrip(t *testing.T) {
	manager := NewManager(Default())

	pipeline := manager.Pipeline()
	assert.Equal(t, 32, pipeline.BatchSize)

	pipeline.BatchSize = 8
	manager.SetPipeline(pipeline)
	assert.Equal(t, 8, manager.Pipeline().BatchSize)
	assert.Equal(t, 8, manager.Get().Pipeline.BatchSize)
}
