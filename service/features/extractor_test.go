/*
 * @module service/features/extractor_test
 * @description 特征提取器单元测试，覆盖字段转换、默认值、情绪推算与GBK转码
 */

package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSignalExtractor_FullPayload 测试完整载荷产出8维归一化向量
func TestSignalExtractor_FullPayload(t *testing.T) {
	extractor := NewSignalExtractor()

	vector, err := extractor.Extract(map[string]interface{}{
		"weekly_work_hours":         60,
		"consecutive_overtime_days": 7,
		"sleep_hours_avg":           4.5,
		"negative_sentiment":        0.8,
		"task_backlog":              25,
		"social_activity":           0.2,
		"meeting_ratio":             0.5,
		"days_since_vacation":       90,
	})
	require.NoError(t, err)
	require.Len(t, vector, FeatureCount)

	assert.InDelta(t, 0.75, vector[0], 1e-9, "60小时/80上限")
	assert.InDelta(t, 0.5, vector[1], 1e-9, "7天/14上限")
	assert.InDelta(t, 0.5, vector[2], 1e-9, "4.5小时/9上限")
	assert.InDelta(t, 0.8, vector[3], 1e-9)
	assert.InDelta(t, 0.5, vector[4], 1e-9, "25条/50上限")
	assert.InDelta(t, 0.2, vector[5], 1e-9)
	assert.InDelta(t, 0.5, vector[6], 1e-9)
	assert.InDelta(t, 0.25, vector[7], 1e-9, "90天未休假时临近度 1/(1+3)")

	for i, value := range vector {
		assert.GreaterOrEqual(t, value, 0.0, "第 %d 维应该非负", i)
		assert.LessOrEqual(t, value, 1.0, "第 %d 维应该不超过1", i)
	}
}

// TestSignalExtractor_MissingFieldsUseDefaults 测试缺失字段使用中性默认值
func TestSignalExtractor_MissingFieldsUseDefaults(t *testing.T) {
	extractor := NewSignalExtractor()

	vector, err := extractor.Extract(map[string]interface{}{
		"weekly_work_hours": 40,
	})
	require.NoError(t, err)
	require.Len(t, vector, FeatureCount)

	assert.InDelta(t, 0.5, vector[0], 1e-9)
	assert.InDelta(t, 0.0, vector[1], 1e-9, "未提供加班天数时默认为0")
	assert.InDelta(t, 0.0, vector[3], 1e-9, "未提供情绪信号时默认为0")
}

// TestSignalExtractor_StringNumbersCoerced 测试字符串数值可以被转换
func TestSignalExtractor_StringNumbersCoerced(t *testing.T) {
	extractor := NewSignalExtractor()

	vector, err := extractor.Extract(map[string]interface{}{
		"weekly_work_hours": "48",
		"task_backlog":      "10",
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, vector[0], 1e-9)
	assert.InDelta(t, 0.2, vector[4], 1e-9)
}

// TestSignalExtractor_InvalidValueFails 测试字段存在但无法转换时报错
func TestSignalExtractor_InvalidValueFails(t *testing.T) {
	extractor := NewSignalExtractor()

	_, err := extractor.Extract(map[string]interface{}{
		"weekly_work_hours": "不是数字",
	})
	assert.Error(t, err, "无法转换的字段值应该使提取失败")
}

// TestSignalExtractor_EmptyOrUnrecognizedPayloadFails 测试空载荷与无可识别字段报错
func TestSignalExtractor_EmptyOrUnrecognizedPayloadFails(t *testing.T) {
	extractor := NewSignalExtractor()

	_, err := extractor.Extract(map[string]interface{}{})
	assert.Error(t, err, "空载荷应该报错")

	_, err = extractor.Extract(map[string]interface{}{
		"unrelated_field": 123,
	})
	assert.Error(t, err, "没有可识别字段应该报错")
}

// TestSignalExtractor_MoodKeywords 测试心情文本的负向关键词推算
func TestSignalExtractor_MoodKeywords(t *testing.T) {
	extractor := NewSignalExtractor()

	vector, err := extractor.Extract(map[string]interface{}{
		"mood_note": "最近连续加班，感觉很疲惫，晚上还失眠",
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, vector[3], 1e-9, "3个负向关键词应该推算为0.75")

	calm, err := extractor.Extract(map[string]interface{}{
		"mood_note":         "本周状态不错",
		"weekly_work_hours": 40,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, calm[3], 1e-9, "无负向关键词时情绪负向度为0")
}

// TestSignalExtractor_GBKMoodNote 测试GBK编码的心情文本先转码再匹配
func TestSignalExtractor_GBKMoodNote(t *testing.T) {
	extractor := NewSignalExtractor()

	gbkBytes, err := EncodeGBK("加班太多，压力很大")
	require.NoError(t, err)

	vector, err := extractor.Extract(map[string]interface{}{
		"mood_note_raw": gbkBytes,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, vector[3], 1e-9, "2个负向关键词应该推算为0.5")
}

// TestDecodeGBK_RoundTrip 测试GBK编解码往返
func TestDecodeGBK_RoundTrip(t *testing.T) {
	original := "倦怠风险评估"

	encoded, err := EncodeGBK(original)
	require.NoError(t, err)
	assert.NotEqual(t, []byte(original), encoded, "GBK字节应该与UTF-8不同")

	decoded, err := DecodeGBK(encoded)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}
