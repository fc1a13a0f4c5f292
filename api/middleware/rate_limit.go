/*
 * @module api/middleware/rate_limit
 * @description 限流中间件，基于Redis固定窗口计数器保护提交接口
 * @architecture 中间件模式 - HTTP请求拦截和验证
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 规则构建 -> Redis计数 -> 放行或429
 * @rules 携带API密钥的请求按密钥限流，匿名请求共享全局配额；限流器故障时放行
 * @dependencies net/http, github.com/go-chi/render
 * @refs service/rate_limiter/redis_rate_limiter.go, api/routes.go
 */

package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"burnout-service/service/rate_limiter"

	"github.com/go-chi/render"
)

// RateLimitMiddleware 限流中间件
type RateLimitMiddleware struct {
	limiter     *rate_limiter.RedisRateLimiter
	maxRequests int
	window      time.Duration
}

// NewRateLimitMiddleware 创建限流中间件实例，limiter为空时中间件直接放行
func NewRateLimitMiddleware(limiter *rate_limiter.RedisRateLimiter, maxRequests int64, window time.Duration) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter:     limiter,
		maxRequests: int(maxRequests),
		window:      window,
	}
}

// Middleware 限流中间件处理函数
func (m *RateLimitMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		rule := rate_limiter.RateLimitRule{
			Type:        "global",
			TimeWindow:  int(m.window.Seconds()),
			MaxRequests: m.maxRequests,
		}
		if apiKey, ok := GetApiKeyFromContext(r.Context()); ok {
			rule.Type = "api_key"
			rule.TargetID = apiKey.ID
		}

		result, err := m.limiter.CheckRateLimit(r.Context(), []rate_limiter.RateLimitRule{rule})
		if err != nil {
			// 限流器故障时放行，可用性优先
			log.Printf("限流检查失败，放行请求: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			m.respondTooManyRequests(w, r, result.Message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// respondTooManyRequests 返回429限流响应
func (m *RateLimitMiddleware) respondTooManyRequests(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	render.JSON(w, r, map[string]interface{}{
		"status":  http.StatusTooManyRequests,
		"message": message,
		"error":   "Too Many Requests",
	})
}
