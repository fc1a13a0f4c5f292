/*
 * @module api/middleware/api_key_auth
 * @description API密钥鉴权中间件，验证请求携带的API Key有效性
 * @architecture 中间件模式 - HTTP请求拦截和验证
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 密钥提取 -> 密钥验证 -> 上下文注入 -> 下一个处理器
 * @rules 未配置任何有效密钥时放行全部请求，便于本地开发和首次部署
 * @dependencies net/http, strings, context, github.com/go-chi/render
 * @refs service/access/access_service.go, api/routes.go
 */

package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"burnout-service/service/access"
	"burnout-service/service/models"

	"github.com/go-chi/render"
)

// ContextKey 上下文键类型
type ContextKey string

const (
	// ApiKeyKey API密钥信息在上下文中的键
	ApiKeyKey ContextKey = "api_key"
)

// ApiKeyAuthMiddleware API密钥认证中间件
type ApiKeyAuthMiddleware struct {
	accessService *access.AccessService
	// 已验证密钥缓存，bcrypt校验开销大，短期内重复请求直接命中
	cache      map[string]*cacheEntry
	cacheMutex sync.RWMutex
	cacheTTL   time.Duration
	// 白名单路径（不需要鉴权）
	whitelistPaths []string
}

// cacheEntry 缓存条目
type cacheEntry struct {
	apiKey    *models.ApiKey
	expiresAt time.Time
}

// NewApiKeyAuthMiddleware 创建API密钥认证中间件实例
func NewApiKeyAuthMiddleware(accessService *access.AccessService) *ApiKeyAuthMiddleware {
	return &ApiKeyAuthMiddleware{
		accessService: accessService,
		cache:         make(map[string]*cacheEntry),
		cacheTTL:      5 * time.Minute, // 缓存5分钟
		whitelistPaths: []string{
			"/health",  // 健康检查
			"/ready",   // 就绪检查
			"/swagger", // Swagger文档
			"/metrics", // Prometheus指标
		},
	}
}

// AddWhitelistPath 添加白名单路径
func (m *ApiKeyAuthMiddleware) AddWhitelistPath(path string) {
	m.whitelistPaths = append(m.whitelistPaths, path)
}

// IsWhitelistPath 检查路径是否在白名单中
func (m *ApiKeyAuthMiddleware) IsWhitelistPath(path string) bool {
	for _, whitelistPath := range m.whitelistPaths {
		// 支持前缀匹配
		if strings.HasPrefix(path, whitelistPath) {
			return true
		}
	}
	return false
}

// Middleware 认证中间件处理函数
func (m *ApiKeyAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 检查是否在白名单中
		if m.IsWhitelistPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		// 系统中没有任何有效密钥时放行，鉴权在创建首个密钥后自动生效
		if hasKeys, err := m.accessService.HasActiveKeys(); err == nil && !hasKeys {
			next.ServeHTTP(w, r)
			return
		}

		keyValue := extractApiKey(r)
		if keyValue == "" {
			m.respondUnauthorized(w, r, "缺少API密钥")
			return
		}

		// 先检查缓存
		if apiKey := m.getFromCache(keyValue); apiKey != nil {
			ctx := context.WithValue(r.Context(), ApiKeyKey, apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		// 验证密钥
		apiKey, err := m.accessService.VerifyApiKey(keyValue)
		if err != nil {
			m.respondUnauthorized(w, r, "API密钥验证失败: "+err.Error())
			return
		}

		// 保存到缓存
		m.saveToCache(keyValue, apiKey)

		// 将密钥信息注入到上下文中
		ctx := context.WithValue(r.Context(), ApiKeyKey, apiKey)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractApiKey 从请求中提取API密钥
// 依次尝试Authorization Bearer头、X-API-Key头、api_key查询参数
// 查询参数用于浏览器EventSource等无法设置请求头的场景
func extractApiKey(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimPrefix(authHeader, "Bearer "); token != "" {
			return token
		}
	}

	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}

	return r.URL.Query().Get("api_key")
}

// getFromCache 从缓存中获取已验证的密钥信息
func (m *ApiKeyAuthMiddleware) getFromCache(keyValue string) *models.ApiKey {
	m.cacheMutex.RLock()
	defer m.cacheMutex.RUnlock()

	entry, exists := m.cache[keyValue]
	if !exists {
		return nil
	}

	// 检查是否过期
	if time.Now().After(entry.expiresAt) {
		// 异步删除过期缓存
		go m.removeFromCache(keyValue)
		return nil
	}

	return entry.apiKey
}

// saveToCache 保存已验证的密钥信息到缓存
func (m *ApiKeyAuthMiddleware) saveToCache(keyValue string, apiKey *models.ApiKey) {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()

	// 计算缓存过期时间（取密钥过期时间和缓存TTL的较小值）
	cacheExpiry := time.Now().Add(m.cacheTTL)
	if apiKey.ExpiresAt != nil && apiKey.ExpiresAt.Before(cacheExpiry) {
		cacheExpiry = *apiKey.ExpiresAt
	}

	m.cache[keyValue] = &cacheEntry{
		apiKey:    apiKey,
		expiresAt: cacheExpiry,
	}
}

// removeFromCache 从缓存中删除密钥
func (m *ApiKeyAuthMiddleware) removeFromCache(keyValue string) {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()

	delete(m.cache, keyValue)
}

// InvalidateCache 清空已验证密钥缓存，吊销密钥后调用使其立即失效
func (m *ApiKeyAuthMiddleware) InvalidateCache() {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()

	m.cache = make(map[string]*cacheEntry)
}

// ClearExpiredCache 清理过期缓存（可以定期调用）
func (m *ApiKeyAuthMiddleware) ClearExpiredCache() int {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()

	now := time.Now()
	clearedCount := 0

	for keyValue, entry := range m.cache {
		if now.After(entry.expiresAt) {
			delete(m.cache, keyValue)
			clearedCount++
		}
	}

	return clearedCount
}

// respondUnauthorized 返回401未授权响应
func (m *ApiKeyAuthMiddleware) respondUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	render.JSON(w, r, map[string]interface{}{
		"status":  http.StatusUnauthorized,
		"message": message,
		"error":   "Unauthorized",
	})
}

// GetApiKeyFromContext 从上下文中获取API密钥信息
func GetApiKeyFromContext(ctx context.Context) (*models.ApiKey, bool) {
	apiKey, ok := ctx.Value(ApiKeyKey).(*models.ApiKey)
	return apiKey, ok
}
