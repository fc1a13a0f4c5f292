/*
 * @module service/pipeline/errors
 * @description 推理流水线错误分类定义，区分校验、特征提取、模型评分、超时、队列满与未运行等错误
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 错误产生 -> 分类包装 -> 按类别统计/上抛
 * @rules 单项失败只影响该项，永不中断批次或流水线
 * @dependencies errors
 * @refs service/pipeline/pipeline_service.go
 */

package pipeline

import "errors"

// 流水线错误分类，调用方通过 errors.Is 判断类别
var (
	// ErrValidation 请求格式不合法，入队前即被拒绝
	ErrValidation = errors.New("请求校验失败")
	// ErrExtraction 单项特征提取失败，该项被剔除并计入错误
	ErrExtraction = errors.New("特征提取失败")
	// ErrScoring 整批模型评分失败，批内所有项计入错误
	ErrScoring = errors.New("模型评分失败")
	// ErrTimeout 调用方等待超过请求超时时间
	ErrTimeout = errors.New("等待预测结果超时")
	// ErrQueueFull 请求队列已满，调用方需稍后重试
	ErrQueueFull = errors.New("请求队列已满")
	// ErrNotRunning 流水线未处于运行状态
	ErrNotRunning = errors.New("流水线未运行")
)

// ErrorKind 返回错误所属的分类名，用于日志与API响应
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrScoring):
		return "scoring"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrQueueFull):
		return "queue_full"
	case errors.Is(err, ErrNotRunning):
		return "not_running"
	default:
		return "internal"
	}
}
