/*
 * @module service/scoring/model_test
 * @description 线性评分模型单元测试
 */

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewLinearModel 测试模型构造校验
func TestNewLinearModel(t *testing.T) {
	model, err := NewLinearModel([]float64{0.5, -0.5}, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 2, model.Dimension())

	_, err = NewLinearModel(nil, 0)
	assert.Error(t, err, "空权重应该报错")

	// 模型持有权重副本，外部修改不影响模型
	weights := []float64{1.0}
	owned, err := NewLinearModel(weights, 0)
	require.NoError(t, err)
	weights[0] = -99
	scores, err := owned.Predict([][]float64{{1.0}})
	require.NoError(t, err)
	assert.Greater(t, scores[0], 0.5, "权重副本不应该被外部修改污染")
}

// TestLinearModel_Predict_ScoresInUnitInterval 测试批量评分且分数落在[0,1]
func TestLinearModel_Predict_ScoresInUnitInterval(t *testing.T) {
	model := DefaultLinearModel()
	require.Equal(t, 8, model.Dimension(), "默认模型与特征提取器的8维约定一致")

	lowRisk := []float64{0.3, 0, 0.8, 0.1, 0.1, 0.9, 0.2, 0.9}
	highRisk := []float64{1.0, 1.0, 0.2, 0.9, 0.9, 0.1, 0.8, 0.1}

	scores, err := model.Predict([][]float64{lowRisk, highRisk})
	require.NoError(t, err)
	require.Len(t, scores, 2)

	for i, score := range scores {
		assert.GreaterOrEqual(t, score, 0.0, "第 %d 条评分应该非负", i)
		assert.LessOrEqual(t, score, 1.0, "第 %d 条评分应该不超过1", i)
	}
	assert.Greater(t, scores[1], scores[0], "高负荷特征的评分应该高于低负荷特征")
}

// TestLinearModel_Predict_DimensionMismatch 测试特征维度不一致时整批报错
func TestLinearModel_Predict_DimensionMismatch(t *testing.T) {
	model, err := NewLinearModel([]float64{0.5, 0.5}, 0)
	require.NoError(t, err)

	_, err = model.Predict([][]float64{{0.1, 0.2}, {0.1}})
	assert.Error(t, err, "维度不一致应该报错")
}

// TestLinearModel_PredictProbabilities 测试二分类概率分布输出
func TestLinearModel_PredictProbabilities(t *testing.T) {
	model, err := NewLinearModel([]float64{5.0}, 0)
	require.NoError(t, err)

	probabilities, err := model.PredictProbabilities([][]float64{{1.0}, {-1.0}, {0.0}})
	require.NoError(t, err)
	require.Len(t, probabilities, 3)

	for i, row := range probabilities {
		require.Len(t, row, 2, "第 %d 行应该是二分类概率", i)
		assert.InDelta(t, 1.0, row[0]+row[1], 1e-9, "第 %d 行概率应该归一化", i)
	}
	assert.Greater(t, probabilities[0][1], 0.5, "正向特征的高风险概率应该占优")
	assert.Less(t, probabilities[1][1], 0.5, "负向特征的高风险概率应该处于劣势")
	assert.InDelta(t, 0.5, probabilities[2][1], 1e-9, "决策边界上两类概率应该相等")
}

// TestSigmoid 测试sigmoid的中心点与单调性
func TestSigmoid(t *testing.T) {
	assert.InDelta(t, 0.5, sigmoid(0), 1e-9)
	assert.Greater(t, sigmoid(2.0), sigmoid(1.0))
	assert.Less(t, sigmoid(-2.0), sigmoid(-1.0))
	assert.Greater(t, sigmoid(10), 0.99)
	assert.Less(t, sigmoid(-10), 0.01)
}
