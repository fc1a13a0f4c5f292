/*
 * @module api/controllers/access_controller_test
 * @description 接入管理控制器的单元测试，覆盖API密钥的创建、查询、吊销与删除
 */

package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"burnout-service/service/access"
	"burnout-service/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccessControllerEnv(t *testing.T) *chi.Mux {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	controller := NewAccessController(access.NewAccessService(tdb.DB))

	router := chi.NewRouter()
	router.Post("/access/api-keys", controller.CreateApiKey)
	router.Get("/access/api-keys", controller.GetApiKeys)
	router.Get("/access/api-keys/{id}", controller.GetApiKey)
	router.Post("/access/api-keys/{id}/revoke", controller.RevokeApiKey)
	router.Delete("/access/api-keys/{id}", controller.DeleteApiKey)

	return router
}

// createKeyViaAPI 通过接口创建密钥，返回密钥ID与完整密钥值
func createKeyViaAPI(t *testing.T, router *chi.Mux, name string) (string, string) {
	helper := testutil.NewHTTPTestHelper()
	req, err := helper.CreateJSONRequest("POST", "/access/api-keys", CreateApiKeyRequest{
		Name:      name,
		CreatedBy: "admin",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope struct {
		Status int `json:"status"`
		Data   struct {
			ApiKey   map[string]interface{} `json:"api_key"`
			KeyValue string                 `json:"key_value"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, http.StatusOK, envelope.Status, "创建密钥应该成功")

	return envelope.Data.ApiKey["id"].(string), envelope.Data.KeyValue
}

// TestCreateApiKey 测试创建密钥并只返回一次完整密钥值
func TestCreateApiKeyAPI(t *testing.T) {
	router := newAccessControllerEnv(t)

	id, keyValue := createKeyViaAPI(t, router, "dashboard-reader")
	assert.NotEmpty(t, id)
	require.NotEmpty(t, keyValue, "创建响应应该包含完整密钥值")
	assert.GreaterOrEqual(t, len(keyValue), 8)

	// 列表中不应该再出现完整密钥值
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/access/api-keys", nil))

	var listEnvelope struct {
		Status int                      `json:"status"`
		Data   []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listEnvelope))
	require.Len(t, listEnvelope.Data, 1)
	assert.Equal(t, keyValue[:8], listEnvelope.Data[0]["key_prefix"], "列表只展示前缀")
	assert.NotContains(t, w.Body.String(), keyValue, "完整密钥值不应该出现在列表响应中")
}

// TestCreateApiKeyAPI_BadRequest 测试创建参数校验
func TestCreateApiKeyAPI_BadRequest(t *testing.T) {
	router := newAccessControllerEnv(t)
	helper := testutil.NewHTTPTestHelper()

	// 缺少名称
	req, err := helper.CreateJSONRequest("POST", "/access/api-keys", CreateApiKeyRequest{})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	status, msg, _ := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, msg, "名称不能为空")

	// 非法过期时间
	req, err = helper.CreateJSONRequest("POST", "/access/api-keys", CreateApiKeyRequest{
		Name:      "bad-expiry",
		ExpiresAt: "明天",
	})
	require.NoError(t, err)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	status, msg, _ = decodeEnvelope(t, w)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, msg, "RFC3339")
}

// TestRevokeApiKeyAPI 测试吊销后状态变更
func TestRevokeApiKeyAPI(t *testing.T) {
	router := newAccessControllerEnv(t)

	id, _ := createKeyViaAPI(t, router, "to-revoke")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/access/api-keys/"+id+"/revoke", nil))
	status, _, _ := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusOK, status, "吊销应该成功")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/access/api-keys/"+id, nil))
	status, _, data := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "revoked", data["status"], "吊销后状态应该是revoked")

	// 吊销不存在的密钥
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/access/api-keys/ak-missing/revoke", nil))
	status, _, _ = decodeEnvelope(t, w)
	assert.Equal(t, http.StatusNotFound, status)
}

// TestDeleteApiKeyAPI 测试删除密钥
func TestDeleteApiKeyAPI(t *testing.T) {
	router := newAccessControllerEnv(t)

	id, _ := createKeyViaAPI(t, router, "to-delete")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/access/api-keys/"+id, nil))
	status, _, _ := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusOK, status, "删除应该成功")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/access/api-keys/"+id, nil))
	status, _, _ = decodeEnvelope(t, w)
	assert.Equal(t, http.StatusNotFound, status, "删除后查询应该返回404")
}
