/*
 * @module service/scoring
 * @description 倦怠风险评分模型抽象与内置线性模型实现，支持批量评分与类别概率输出
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 批处理工作器构造特征矩阵 -> 单次Predict调用 -> 返回[0,1]风险评分
 * @rules 评分必须落在[0,1]区间；输入矩阵行宽与模型权重维度不一致时整批报错
 * @dependencies math, fmt
 * @refs service/pipeline/batch_worker.go, service/features/extractor.go
 */

package scoring

import (
	"fmt"
	"math"
)

// Model 风险评分模型
// 一次调用完成整批评分，返回值与输入矩阵逐行对应
type Model interface {
	Predict(featureMatrix [][]float64) ([]float64, error)
}

// ProbabilityPredictor 可输出类别概率分布的模型
// 返回矩阵与输入逐行对应，每行是[低风险概率, 高风险概率]
type ProbabilityPredictor interface {
	PredictProbabilities(featureMatrix [][]float64) ([][]float64, error)
}

// LinearModel 逻辑回归形式的线性评分模型
// 评分 = sigmoid(w·x + b)，权重维度即期望的特征向量长度
type LinearModel struct {
	weights []float64
	bias    float64
}

// NewLinearModel 创建线性模型
func NewLinearModel(weights []float64, bias float64) (*LinearModel, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("模型权重不能为空")
	}
	owned := make([]float64, len(weights))
	copy(owned, weights)
	return &LinearModel{weights: owned, bias: bias}, nil
}

// DefaultLinearModel 内置默认权重的线性模型
// 权重顺序与特征提取器的固定特征顺序一致
func DefaultLinearModel() *LinearModel {
	model, _ := NewLinearModel([]float64{
		0.9,  // 周工作时长(归一化)
		0.7,  // 连续加班天数(归一化)
		-0.8, // 睡眠时长(归一化)
		0.6,  // 情绪负向度
		0.5,  // 任务积压量(归一化)
		-0.6, // 社交活跃度
		0.4,  // 会议占比
		-0.5, // 休假间隔倒数
	}, -0.4)
	return model
}

// Dimension 模型期望的特征维度
func (m *LinearModel) Dimension() int {
	return len(m.weights)
}

// Predict 批量评分
func (m *LinearModel) Predict(featureMatrix [][]float64) ([]float64, error) {
	scores := make([]float64, len(featureMatrix))
	for i, row := range featureMatrix {
		if len(row) != len(m.weights) {
			return nil, fmt.Errorf("第 %d 行特征维度 %d 与模型维度 %d 不一致",
				i, len(row), len(m.weights))
		}
		z := m.bias
		for j, value := range row {
			z += m.weights[j] * value
		}
		scores[i] = sigmoid(z)
	}
	return scores, nil
}

// PredictProbabilities 输出每条预测的二分类概率分布
func (m *LinearModel) PredictProbabilities(featureMatrix [][]float64) ([][]float64, error) {
	scores, err := m.Predict(featureMatrix)
	if err != nil {
		return nil, err
	}
	probabilities := make([][]float64, len(scores))
	for i, score := range scores {
		probabilities[i] = []float64{1 - score, score}
	}
	return probabilities, nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
