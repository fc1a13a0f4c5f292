/*
 * @module api/controllers/prediction_controller
 * @description 预测控制器，提供行为信号提交、批量提交、最新结果与历史查询API
 * @architecture RESTful API架构 - 控制器层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow HTTP请求 -> 流水线提交/历史查询 -> 响应返回
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies burnout-service/service/pipeline, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/pipeline/pipeline_service.go, service/history/history_service.go
 */

package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"burnout-service/client/connectors"
	"burnout-service/service/history"
	"burnout-service/service/models"
	"burnout-service/service/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PredictionController 预测控制器
type PredictionController struct {
	pipelineService *pipeline.PipelineService
	historyService  *history.HistoryService
	redisPublisher  *connectors.RedisPublisher // 可为nil，仅作最新结果的快路径
}

// NewPredictionController 创建预测控制器实例
func NewPredictionController(pipelineService *pipeline.PipelineService, historyService *history.HistoryService, redisPublisher *connectors.RedisPublisher) *PredictionController {
	return &PredictionController{
		pipelineService: pipelineService,
		historyService:  historyService,
		redisPublisher:  redisPublisher,
	}
}

// SubmitPredictionRequest 提交预测请求结构
type SubmitPredictionRequest struct {
	SubjectID string                 `json:"subject_id" validate:"required"`
	CacheKey  string                 `json:"cache_key"`
	Payload   map[string]interface{} `json:"payload" validate:"required"`
}

// SubmitBatchRequest 批量提交请求结构
type SubmitBatchRequest struct {
	Items []SubmitPredictionRequest `json:"items" validate:"required"`
}

// toModel 转换为流水线请求
func (r *SubmitPredictionRequest) toModel(source string) *models.PredictionRequest {
	return &models.PredictionRequest{
		RequestID:   uuid.New().String(),
		SubjectID:   r.SubjectID,
		CacheKey:    r.CacheKey,
		RawPayload:  r.Payload,
		SubmittedAt: time.Now(),
		Source:      source,
	}
}

// Submit 提交单条行为信号
// @Summary 提交行为信号
// @Description 提交单个对象的行为信号，阻塞等待倦怠风险预测结果
// @Tags 预测
// @Accept json
// @Produce json
// @Param request body SubmitPredictionRequest true "行为信号"
// @Success 200 {object} APIResponse{data=models.PredictionResult} "预测成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 503 {object} APIResponse "流水线未运行或队列已满"
// @Router /predictions [post]
func (c *PredictionController) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitPredictionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result, err := c.pipelineService.Submit(r.Context(), req.toModel("http"))
	if err != nil {
		c.renderPipelineError(w, r, err)
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "预测成功",
		Data:   result,
	})
}

// SubmitBatch 批量提交行为信号
// @Summary 批量提交行为信号
// @Description 一次提交多个对象的行为信号，按提交顺序返回各项结果，单项失败不影响其他项
// @Tags 预测
// @Accept json
// @Produce json
// @Param request body SubmitBatchRequest true "行为信号列表"
// @Success 200 {object} APIResponse{data=[]BatchItemResponse} "批量提交完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /predictions/batch [post]
func (c *PredictionController) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	var req SubmitBatchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if len(req.Items) == 0 {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "批量提交不能为空",
		})
		return
	}

	requests := make([]*models.PredictionRequest, 0, len(req.Items))
	for i := range req.Items {
		requests = append(requests, req.Items[i].toModel("http"))
	}

	outcomes := c.pipelineService.SubmitBatch(r.Context(), requests)

	items := make([]BatchItemResponse, 0, len(outcomes))
	for _, outcome := range outcomes {
		item := BatchItemResponse{
			Index:   outcome.Index,
			Success: outcome.Err == nil,
			Result:  outcome.Result,
		}
		if outcome.Err != nil {
			item.ErrorKind = pipeline.ErrorKind(outcome.Err)
			item.Error = outcome.Err.Error()
		}
		items = append(items, item)
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "批量提交完成",
		Data:   items,
	})
}

// GetLatest 查询对象的最新预测结果
// @Summary 查询最新预测结果
// @Description 优先读Redis中跨副本共享的最新结果，未命中时回退历史库
// @Tags 预测
// @Accept json
// @Produce json
// @Param subject_id path string true "评估对象ID"
// @Success 200 {object} APIResponse{data=models.PredictionResult} "查询成功"
// @Failure 404 {object} APIResponse "暂无该对象的预测结果"
// @Router /predictions/subjects/{subject_id}/latest [get]
func (c *PredictionController) GetLatest(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subject_id")
	if subjectID == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "评估对象ID不能为空",
		})
		return
	}

	if c.redisPublisher != nil {
		if result, err := c.redisPublisher.GetLatestResult(r.Context(), subjectID); err == nil && result != nil {
			render.JSON(w, r, APIResponse{
				Status: http.StatusOK,
				Msg:    "查询成功",
				Data:   result,
			})
			return
		}
	}

	record, err := c.historyService.GetLatestBySubject(subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusNotFound,
				Msg:    "暂无该对象的预测结果",
			})
			return
		}
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "查询最新预测结果失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "查询成功",
		Data:   record,
	})
}

// GetPredictions 分页查询预测历史
// @Summary 查询预测历史
// @Description 分页查询预测历史记录，支持按对象、风险等级与时间窗过滤
// @Tags 预测
// @Accept json
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(10)
// @Param subject_id query string false "评估对象ID"
// @Param risk_level query string false "风险等级" Enums(low, medium, high, critical)
// @Param start query string false "开始时间(RFC3339)"
// @Param end query string false "结束时间(RFC3339)"
// @Success 200 {object} PaginatedResponse{data=[]models.PredictionRecord} "查询成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /predictions [get]
func (c *PredictionController) GetPredictions(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)
	subjectID := r.URL.Query().Get("subject_id")
	riskLevel := r.URL.Query().Get("risk_level")

	start, err := parseTimeParam(r, "start")
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "开始时间格式错误，需要RFC3339格式",
		})
		return
	}
	end, err := parseTimeParam(r, "end")
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "结束时间格式错误，需要RFC3339格式",
		})
		return
	}

	records, total, err := c.historyService.GetPredictions(page, size, subjectID, riskLevel, start, end)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "查询预测历史失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "查询成功",
		Data:   records,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetPredictionByRequestID 按请求ID查询单条预测记录
// @Summary 按请求ID查询预测记录
// @Tags 预测
// @Accept json
// @Produce json
// @Param request_id path string true "请求ID"
// @Success 200 {object} APIResponse{data=models.PredictionRecord} "查询成功"
// @Failure 404 {object} APIResponse "记录不存在"
// @Router /predictions/{request_id} [get]
func (c *PredictionController) GetPredictionByRequestID(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "request_id")

	record, err := c.historyService.GetPredictionByRequestID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusNotFound,
				Msg:    "预测记录不存在",
			})
			return
		}
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "查询预测记录失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "查询成功",
		Data:   record,
	})
}

// renderPipelineError 将流水线错误映射为HTTP响应
func (c *PredictionController) renderPipelineError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pipeline.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, pipeline.ErrQueueFull):
		status = http.StatusTooManyRequests
	case errors.Is(err, pipeline.ErrNotRunning):
		status = http.StatusServiceUnavailable
	case errors.Is(err, pipeline.ErrTimeout):
		status = http.StatusGatewayTimeout
	}

	render.JSON(w, r, APIResponse{
		Status: status,
		Msg:    err.Error(),
		Data:   map[string]string{"error_kind": pipeline.ErrorKind(err)},
	})
}

// parsePagination 解析分页参数
func parsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// parseTimeParam 解析RFC3339时间参数，缺省返回nil
func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
