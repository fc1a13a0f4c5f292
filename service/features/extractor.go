/*
 * @module service/features
 * @description 行为信号特征提取器，将原始信号载荷转换为固定顺序的归一化特征向量
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 批处理工作器逐条调用Extract -> 字段系数转换 -> 归一化 -> 8维特征向量
 * @rules 特征顺序与维度固定；字段存在但无法转换为数值视为提取失败；完全无可识别字段视为提取失败
 * @dependencies math, strings, github.com/spf13/cast
 * @refs service/pipeline/batch_worker.go, service/scoring/model.go
 */

package features

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Extractor 特征提取器
type Extractor interface {
	Extract(rawPayload map[string]interface{}) ([]float64, error)
}

// FeatureCount 特征向量固定维度
const FeatureCount = 8

// FeatureNames 特征顺序，与默认线性模型的权重顺序一一对应
var FeatureNames = []string{
	"work_load",        // 周工作时长
	"overtime_streak",  // 连续加班天数
	"sleep_quality",    // 平均睡眠时长
	"negative_mood",    // 情绪负向度
	"task_backlog",     // 任务积压量
	"social_activity",  // 社交活跃度
	"meeting_ratio",    // 会议时间占比
	"vacation_recency", // 休假临近度
}

// 负向情绪关键词，用于从心情文本推算情绪负向度
var negativeMoodKeywords = []string{
	"疲惫", "加班", "崩溃", "焦虑", "失眠", "压力", "熬夜", "烦躁",
	"exhausted", "burnout", "overwhelmed", "anxious", "stressed",
}

// SignalExtractor 默认信号特征提取器
// 识别固定的信号字段集合，缺失字段使用中性默认值
type SignalExtractor struct{}

// NewSignalExtractor 创建默认特征提取器
func NewSignalExtractor() *SignalExtractor {
	return &SignalExtractor{}
}

// Extract 提取特征向量
func (e *SignalExtractor) Extract(rawPayload map[string]interface{}) ([]float64, error) {
	if len(rawPayload) == 0 {
		return nil, fmt.Errorf("信号载荷为空")
	}

	recognized := 0
	readField := func(key string, fallback float64) (float64, error) {
		value, exists := rawPayload[key]
		if !exists {
			return fallback, nil
		}
		number, err := cast.ToFloat64E(value)
		if err != nil {
			return 0, fmt.Errorf("字段 %s 的值无法转换为数值: %v", key, err)
		}
		recognized++
		return number, nil
	}

	workHours, err := readField("weekly_work_hours", 40)
	if err != nil {
		return nil, err
	}
	overtimeDays, err := readField("consecutive_overtime_days", 0)
	if err != nil {
		return nil, err
	}
	sleepHours, err := readField("sleep_hours_avg", 7)
	if err != nil {
		return nil, err
	}
	taskBacklog, err := readField("task_backlog", 0)
	if err != nil {
		return nil, err
	}
	socialActivity, err := readField("social_activity", 0.5)
	if err != nil {
		return nil, err
	}
	meetingRatio, err := readField("meeting_ratio", 0.3)
	if err != nil {
		return nil, err
	}
	vacationDays, err := readField("days_since_vacation", 30)
	if err != nil {
		return nil, err
	}

	negativeMood, moodRecognized, err := e.resolveNegativeMood(rawPayload)
	if err != nil {
		return nil, err
	}
	if moodRecognized {
		recognized++
	}

	if recognized == 0 {
		return nil, fmt.Errorf("信号载荷中没有可识别的特征字段")
	}

	vector := []float64{
		clamp01(workHours / 80.0),
		clamp01(overtimeDays / 14.0),
		clamp01(sleepHours / 9.0),
		clamp01(negativeMood),
		clamp01(taskBacklog / 50.0),
		clamp01(socialActivity),
		clamp01(meetingRatio),
		1.0 / (1.0 + math.Max(vacationDays, 0)/30.0),
	}
	return vector, nil
}

// resolveNegativeMood 计算情绪负向度
// 优先使用数值字段negative_sentiment，否则从心情文本的负向关键词推算
// 旧版采集端的mood_note_raw为GBK编码字节，先转码再参与关键词匹配
func (e *SignalExtractor) resolveNegativeMood(rawPayload map[string]interface{}) (float64, bool, error) {
	if value, exists := rawPayload["negative_sentiment"]; exists {
		number, err := cast.ToFloat64E(value)
		if err != nil {
			return 0, false, fmt.Errorf("字段 negative_sentiment 的值无法转换为数值: %v", err)
		}
		return number, true, nil
	}

	moodText := ""
	if value, exists := rawPayload["mood_note"]; exists {
		moodText = cast.ToString(value)
	} else if value, exists := rawPayload["mood_note_raw"]; exists {
		decoded, err := DecodeGBKValue(value)
		if err != nil {
			return 0, false, fmt.Errorf("字段 mood_note_raw 转码失败: %v", err)
		}
		moodText = decoded
	}
	if moodText == "" {
		return 0, false, nil
	}

	hits := 0
	lowered := strings.ToLower(moodText)
	for _, keyword := range negativeMoodKeywords {
		hits += strings.Count(lowered, keyword)
	}
	return math.Min(1.0, float64(hits)*0.25), true, nil
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
