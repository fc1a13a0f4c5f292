/*
 * @module api/middleware/api_key_auth_test
 * @description API密钥鉴权中间件的单元测试，覆盖放行、拒绝、多种提取方式与缓存失效
 */

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"burnout-service/service/access"
	"burnout-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authTestEnv struct {
	accessService *access.AccessService
	auth          *ApiKeyAuthMiddleware
	handler       http.Handler
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	accessService := access.NewAccessService(tdb.DB)
	auth := NewApiKeyAuthMiddleware(accessService)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey, ok := GetApiKeyFromContext(r.Context()); ok {
			w.Header().Set("X-Test-Key-ID", apiKey.ID)
		}
		w.WriteHeader(http.StatusOK)
	})

	return &authTestEnv{
		accessService: accessService,
		auth:          auth,
		handler:       auth.Middleware(inner),
	}
}

func (env *authTestEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	return w
}

// TestAuthFailOpenWithoutKeys 测试系统中没有任何密钥时请求放行
func TestAuthFailOpenWithoutKeys(t *testing.T) {
	env := newAuthTestEnv(t)

	w := env.do(httptest.NewRequest("GET", "/predictions", nil))
	assert.Equal(t, http.StatusOK, w.Code, "没有有效密钥时应该放行")
}

// TestAuthRejectsMissingKey 测试存在有效密钥后，未携带凭证的请求被拒绝
func TestAuthRejectsMissingKey(t *testing.T) {
	env := newAuthTestEnv(t)

	_, _, err := env.accessService.CreateApiKey("guard", "", "admin", nil)
	require.NoError(t, err)

	w := env.do(httptest.NewRequest("GET", "/predictions", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "缺少API密钥")
}

// TestAuthExtractsKeyFromMultipleSources 测试三种凭证提取方式
func TestAuthExtractsKeyFromMultipleSources(t *testing.T) {
	env := newAuthTestEnv(t)

	apiKey, keyValue, err := env.accessService.CreateApiKey("multi-source", "", "admin", nil)
	require.NoError(t, err)

	// Authorization Bearer头
	req := httptest.NewRequest("GET", "/predictions", nil)
	req.Header.Set("Authorization", "Bearer "+keyValue)
	w := env.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, apiKey.ID, w.Header().Get("X-Test-Key-ID"), "密钥应该注入请求上下文")

	// X-API-Key头
	req = httptest.NewRequest("GET", "/predictions", nil)
	req.Header.Set("X-API-Key", keyValue)
	w = env.do(req)
	assert.Equal(t, http.StatusOK, w.Code)

	// 查询参数，浏览器EventSource场景
	w = env.do(httptest.NewRequest("GET", "/sse?api_key="+keyValue, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestAuthRejectsInvalidKey 测试无效密钥被拒绝
func TestAuthRejectsInvalidKey(t *testing.T) {
	env := newAuthTestEnv(t)

	_, _, err := env.accessService.CreateApiKey("guard", "", "admin", nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/predictions", nil)
	req.Header.Set("X-API-Key", "bk_0000000000000000")
	w := env.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "验证失败")
}

// TestAuthWhitelistPaths 测试白名单路径跳过鉴权
func TestAuthWhitelistPaths(t *testing.T) {
	env := newAuthTestEnv(t)

	_, _, err := env.accessService.CreateApiKey("guard", "", "admin", nil)
	require.NoError(t, err)

	for _, path := range []string{"/health", "/ready", "/swagger/index.html", "/metrics"} {
		w := env.do(httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusOK, w.Code, "白名单路径 %s 应该免鉴权", path)
	}
	assert.True(t, env.auth.IsWhitelistPath("/swagger/doc.json"))
	assert.False(t, env.auth.IsWhitelistPath("/predictions"))
}

// TestAuthCacheInvalidation 测试吊销后需要清空缓存才立即生效
func TestAuthCacheInvalidation(t *testing.T) {
	env := newAuthTestEnv(t)

	apiKey, keyValue, err := env.accessService.CreateApiKey("to-revoke", "", "admin", nil)
	require.NoError(t, err)

	// 保留第二把有效密钥，避免吊销后触发无密钥放行逻辑
	_, _, err = env.accessService.CreateApiKey("keeper", "", "admin", nil)
	require.NoError(t, err)

	authedRequest := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/predictions", nil)
		req.Header.Set("X-API-Key", keyValue)
		return env.do(req)
	}

	// 第一次校验通过并写入缓存
	assert.Equal(t, http.StatusOK, authedRequest().Code)

	require.NoError(t, env.accessService.RevokeApiKey(apiKey.ID))

	// 缓存未过期时仍然命中
	assert.Equal(t, http.StatusOK, authedRequest().Code, "缓存有效期内吊销尚未生效")

	env.auth.InvalidateCache()
	assert.Equal(t, http.StatusUnauthorized, authedRequest().Code, "清空缓存后吊销立即生效")
}
