/*
 * @module service/access/access_service_test
 * @description 访问控制服务的单元测试
 */

package access

import (
	"testing"
	"time"

	"burnout-service/service/models"
	"burnout-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *AccessService {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	return NewAccessService(tdb.DB)
}

// TestCreateAndVerifyApiKey 测试密钥签发后能用明文通过校验
func TestCreateAndVerifyApiKey(t *testing.T) {
	service := newTestService(t)

	apiKey, fullKey, err := service.CreateApiKey("监控平台", "接入用", "admin", nil)
	require.NoError(t, err)
	assert.Len(t, fullKey, 64)
	assert.Equal(t, fullKey[:8], apiKey.KeyPrefix)
	assert.NotEqual(t, fullKey, apiKey.KeyValueHash, "数据库只能存哈希")
	assert.Equal(t, "active", apiKey.Status)

	verified, err := service.VerifyApiKey(fullKey)
	require.NoError(t, err)
	assert.Equal(t, apiKey.ID, verified.ID)

	// 使用统计被更新
	stored, err := service.GetApiKeyByID(apiKey.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.UsageCount)
	assert.NotNil(t, stored.LastUsedAt)
}

// TestVerifyApiKey_Invalid 测试非法密钥被拒绝
func TestVerifyApiKey_Invalid(t *testing.T) {
	service := newTestService(t)

	_, fullKey, err := service.CreateApiKey("测试", "", "admin", nil)
	require.NoError(t, err)

	_, err = service.VerifyApiKey("short")
	assert.Error(t, err, "长度不足8的密钥直接拒绝")

	// 前缀相同但内容错误
	tampered := fullKey[:8] + "0000000000000000000000000000000000000000000000000000000000"
	_, err = service.VerifyApiKey(tampered)
	assert.Error(t, err)
}

// TestVerifyApiKey_Expired 测试过期密钥被拒绝
func TestVerifyApiKey_Expired(t *testing.T) {
	service := newTestService(t)

	expiresAt := time.Now().Add(-time.Hour)
	_, fullKey, err := service.CreateApiKey("已过期", "", "admin", &expiresAt)
	require.NoError(t, err)

	_, err = service.VerifyApiKey(fullKey)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "过期")
}

// TestRevokeApiKey 测试吊销后密钥失效
func TestRevokeApiKey(t *testing.T) {
	service := newTestService(t)

	apiKey, fullKey, err := service.CreateApiKey("待吊销", "", "admin", nil)
	require.NoError(t, err)

	require.NoError(t, service.RevokeApiKey(apiKey.ID))

	_, err = service.VerifyApiKey(fullKey)
	assert.Error(t, err, "吊销后不能再通过校验")

	assert.Error(t, service.RevokeApiKey("missing-id"))
}

// TestDeleteApiKey 测试删除密钥
func TestDeleteApiKey(t *testing.T) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	service := NewAccessService(tdb.DB)
	factory := testutil.NewTestDataFactory(tdb.DB)

	seeded := factory.CreateApiKey(func(k *models.ApiKey) {
		k.Name = "直接落库"
	})

	require.NoError(t, service.DeleteApiKey(seeded.ID))

	_, err := service.GetApiKeyByID(seeded.ID)
	assert.Error(t, err, "删除后不应该再查到")
}

// TestHasActiveKeys 测试有效密钥存在性检查
func TestHasActiveKeys(t *testing.T) {
	service := newTestService(t)

	has, err := service.HasActiveKeys()
	require.NoError(t, err)
	assert.False(t, has, "初始无密钥")

	apiKey, _, err := service.CreateApiKey("唯一", "", "admin", nil)
	require.NoError(t, err)

	has, err = service.HasActiveKeys()
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, service.RevokeApiKey(apiKey.ID))
	has, err = service.HasActiveKeys()
	require.NoError(t, err)
	assert.False(t, has, "吊销后不再有有效密钥")
}

// TestGetApiKeys 测试密钥列表
func TestGetApiKeys(t *testing.T) {
	service := newTestService(t)

	_, _, err := service.CreateApiKey("key-a", "", "admin", nil)
	require.NoError(t, err)
	_, _, err = service.CreateApiKey("key-b", "", "admin", nil)
	require.NoError(t, err)

	keys, err := service.GetApiKeys()
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}
