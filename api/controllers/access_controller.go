/*
 * @module api/controllers/access_controller
 * @description 接入管理控制器，提供API密钥的创建、查询、吊销、删除API
 * @architecture RESTful API架构 - 控制器层
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow HTTP请求 -> 接入服务处理 -> 响应返回
 * @rules 完整密钥值仅在创建响应中返回一次，后续只能看到前缀
 * @dependencies burnout-service/service/access, github.com/go-chi/render
 * @refs service/access/access_service.go
 */

package controllers

import (
	"errors"
	"net/http"
	"time"

	"burnout-service/service/access"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gorm.io/gorm"
)

// AccessController 接入管理控制器
type AccessController struct {
	accessService *access.AccessService
}

// NewAccessController 创建接入管理控制器实例
func NewAccessController(accessService *access.AccessService) *AccessController {
	return &AccessController{
		accessService: accessService,
	}
}

// CreateApiKeyRequest 创建API密钥请求
type CreateApiKeyRequest struct {
	Name        string `json:"name" validate:"required" example:"dashboard-reader"`
	Description string `json:"description" example:"仪表盘只读接入"`
	CreatedBy   string `json:"created_by" example:"admin"`
	ExpiresAt   string `json:"expires_at" example:"2026-12-31T00:00:00Z"`
}

// CreateApiKey 创建API密钥
// @Summary 创建API密钥
// @Description 创建新的API密钥，完整密钥值仅在本次响应中返回
// @Tags 接入管理
// @Accept json
// @Produce json
// @Param request body CreateApiKeyRequest true "创建API密钥请求"
// @Success 200 {object} APIResponse "创建成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "创建失败"
// @Router /access/api-keys [post]
func (c *AccessController) CreateApiKey(w http.ResponseWriter, r *http.Request) {
	var req CreateApiKeyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if req.Name == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "密钥名称不能为空",
		})
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			render.JSON(w, r, APIResponse{
				Status: http.StatusBadRequest,
				Msg:    "过期时间格式错误，应为RFC3339格式",
			})
			return
		}
		expiresAt = &parsed
	}

	key, keyValue, err := c.accessService.CreateApiKey(req.Name, req.Description, req.CreatedBy, expiresAt)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "创建API密钥失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "创建成功，请妥善保存完整密钥，后续不再展示",
		Data: map[string]interface{}{
			"api_key":   key,
			"key_value": keyValue,
		},
	})
}

// GetApiKeys 查询API密钥列表
// @Summary 查询API密钥列表
// @Description 返回全部API密钥，密钥值只展示前缀
// @Tags 接入管理
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.ApiKey} "查询成功"
// @Failure 500 {object} APIResponse "查询失败"
// @Router /access/api-keys [get]
func (c *AccessController) GetApiKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := c.accessService.GetApiKeys()
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "查询API密钥列表失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "查询成功",
		Data:   keys,
	})
}

// GetApiKey 查询单个API密钥
// @Summary 查询单个API密钥
// @Tags 接入管理
// @Produce json
// @Param id path string true "密钥ID"
// @Success 200 {object} APIResponse{data=models.ApiKey} "查询成功"
// @Failure 404 {object} APIResponse "密钥不存在"
// @Router /access/api-keys/{id} [get]
func (c *AccessController) GetApiKey(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "id")

	key, err := c.accessService.GetApiKeyByID(keyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.JSON(w, r, APIResponse{
				Status: http.StatusNotFound,
				Msg:    "API密钥不存在",
			})
			return
		}
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "查询API密钥失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "查询成功",
		Data:   key,
	})
}

// RevokeApiKey 吊销API密钥
// @Summary 吊销API密钥
// @Description 将密钥状态置为revoked，吊销后立即失效
// @Tags 接入管理
// @Produce json
// @Param id path string true "密钥ID"
// @Success 200 {object} APIResponse "吊销成功"
// @Failure 404 {object} APIResponse "密钥不存在"
// @Router /access/api-keys/{id}/revoke [post]
func (c *AccessController) RevokeApiKey(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "id")

	if err := c.accessService.RevokeApiKey(keyID); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "吊销成功",
	})
}

// DeleteApiKey 删除API密钥
// @Summary 删除API密钥
// @Tags 接入管理
// @Produce json
// @Param id path string true "密钥ID"
// @Success 200 {object} APIResponse "删除成功"
// @Failure 500 {object} APIResponse "删除失败"
// @Router /access/api-keys/{id} [delete]
func (c *AccessController) DeleteApiKey(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "id")

	if err := c.accessService.DeleteApiKey(keyID); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "删除API密钥失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "删除成功",
	})
}
