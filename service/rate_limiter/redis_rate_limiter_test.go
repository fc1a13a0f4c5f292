/*
 * @module service/rate_limiter/redis_rate_limiter_test
 * @description Redis限流器单元测试，无可用Redis时跳过
 * @architecture 测试层
 * @documentReference ai_docs/inference_pipeline_design.md
 */

package rate_limiter

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis 设置测试用Redis环境，连接失败时跳过测试
func setupTestRedis(t *testing.T) *RedisRateLimiter {
	addr := getEnvWithDefault("REDIS_HOST", "localhost") + ":" + getEnvWithDefault("REDIS_PORT", "6379")

	limiter, err := NewRedisRateLimiter(addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Skipf("Redis不可用，跳过限流测试: %v", err)
	}

	// 清理测试数据
	ctx := context.Background()
	limiter.client.FlushDB(ctx)

	t.Cleanup(func() { limiter.Close() })
	return limiter
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// TestCheckRateLimit_SingleRule_Success 测试单个规则限流成功
func TestCheckRateLimit_SingleRule_Success(t *testing.T) {
	limiter := setupTestRedis(t)

	ctx := context.Background()
	rule := RateLimitRule{
		Type:        "global",
		TargetID:    "",
		TimeWindow:  60,
		MaxRequests: 10,
	}

	// 第一次请求应该成功
	result, err := limiter.checkSingleRule(ctx, rule)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "第一次请求应该被允许")
	assert.Equal(t, 10, result.Limit, "限制数应该为10")
	assert.Equal(t, 9, result.Remaining, "剩余数应该为9")
	assert.Equal(t, "global", result.RateLimitType)
}

// TestCheckRateLimit_SingleRule_RateLimited 测试单个规则触发限流
func TestCheckRateLimit_SingleRule_RateLimited(t *testing.T) {
	limiter := setupTestRedis(t)

	ctx := context.Background()
	rule := RateLimitRule{
		Type:        "api_key",
		TargetID:    "test-key-123",
		TimeWindow:  10,
		MaxRequests: 5,
	}

	// 发送5次请求
	for i := 0; i < 5; i++ {
		result, err := limiter.checkSingleRule(ctx, rule)
		require.NoError(t, err)
		assert.True(t, result.Allowed, fmt.Sprintf("第%d次请求应该被允许", i+1))
		assert.Equal(t, 5-i-1, result.Remaining, fmt.Sprintf("第%d次请求剩余数应该为%d", i+1, 5-i-1))
	}

	// 第6次请求应该被限流
	result, err := limiter.checkSingleRule(ctx, rule)
	require.NoError(t, err)
	assert.False(t, result.Allowed, "第6次请求应该被限流")
	assert.Equal(t, 0, result.Remaining, "剩余数应该为0")
	assert.Contains(t, result.Message, "API密钥限流限制")
}

// TestCheckRateLimit_MultipleRules_Priority 测试多层限流优先级
func TestCheckRateLimit_MultipleRules_Priority(t *testing.T) {
	limiter := setupTestRedis(t)

	ctx := context.Background()
	rules := []RateLimitRule{
		{Type: "global", TargetID: "", TimeWindow: 60, MaxRequests: 100},
		{Type: "api_key", TargetID: "key-123", TimeWindow: 60, MaxRequests: 50},
		{Type: "subject", TargetID: "emp-456", TimeWindow: 60, MaxRequests: 10},
	}

	// 应该按优先级检查：subject > api_key > global
	for i := 0; i < 10; i++ {
		result, err := limiter.CheckRateLimit(ctx, rules)
		require.NoError(t, err)
		assert.True(t, result.Allowed, fmt.Sprintf("第%d次请求应该被允许", i+1))
	}

	// 第11次请求应该被评估对象层限流
	result, err := limiter.CheckRateLimit(ctx, rules)
	require.NoError(t, err)
	assert.False(t, result.Allowed, "第11次请求应该被限流")
	assert.Equal(t, "subject", result.RateLimitType)
	assert.Contains(t, result.Message, "评估对象")
}

// TestCheckRateLimit_NoRules 测试无规则时放行
func TestCheckRateLimit_NoRules(t *testing.T) {
	limiter := setupTestRedis(t)

	result, err := limiter.CheckRateLimit(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, "none", result.RateLimitType)
}

// TestCheckRateLimit_Concurrent 测试并发限流计数准确
func TestCheckRateLimit_Concurrent(t *testing.T) {
	limiter := setupTestRedis(t)

	ctx := context.Background()
	rule := RateLimitRule{
		Type:        "subject",
		TargetID:    "emp-concurrent",
		TimeWindow:  60,
		MaxRequests: 20,
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := limiter.checkSingleRule(ctx, rule)
			if err == nil && result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, allowed, "Lua脚本应该保证并发下计数准确")
}

// TestResetRateLimit 测试重置限流计数
func TestResetRateLimit(t *testing.T) {
	limiter := setupTestRedis(t)

	ctx := context.Background()
	rule := RateLimitRule{
		Type:        "api_key",
		TargetID:    "key-reset",
		TimeWindow:  60,
		MaxRequests: 2,
	}

	for i := 0; i < 2; i++ {
		_, err := limiter.checkSingleRule(ctx, rule)
		require.NoError(t, err)
	}
	result, err := limiter.checkSingleRule(ctx, rule)
	require.NoError(t, err)
	require.False(t, result.Allowed)

	require.NoError(t, limiter.ResetRateLimit(ctx, rule))

	result, err = limiter.checkSingleRule(ctx, rule)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "重置后应该重新放行")
}
