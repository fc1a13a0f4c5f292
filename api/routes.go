/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference ai_docs/inference_pipeline_design.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers, api/middleware
 */

package api

import (
	"net/http"

	"burnout-service/api/controllers"
	apimw "burnout-service/api/middleware"
	"burnout-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API密钥鉴权
	auth := apimw.NewApiKeyAuthMiddleware(service.GlobalAccessService)
	r.Use(auth.Middleware)

	// 提交接口限流
	rateLimitCfg := service.GlobalConfig.Get().RateLimit
	rateLimit := apimw.NewRateLimitMiddleware(service.GlobalRateLimiter, rateLimitCfg.Limit, rateLimitCfg.Window)

	// 健康检查
	healthController := controllers.NewHealthController(service.GlobalHealthChecker, service.GlobalPipelineService)
	r.Get("/health", healthController.GetHealth)
	r.Get("/ready", healthController.GetReady)

	// SSE事件订阅
	eventController := controllers.NewEventController(service.GlobalEventService)
	r.Get("/sse", eventController.HandleSSE)

	// 事件管理
	r.Route("/events", func(r chi.Router) {
		r.Post("/broadcast", eventController.BroadcastEvent)
		r.Get("/stats", eventController.GetEventStats)
	})

	// 预测提交与查询
	r.Route("/predictions", func(r chi.Router) {
		predictionController := controllers.NewPredictionController(
			service.GlobalPipelineService,
			service.GlobalHistoryService,
			service.GlobalRedisPublisher,
		)

		// 提交接口走限流
		r.With(rateLimit.Middleware).Post("/", predictionController.Submit)
		r.With(rateLimit.Middleware).Post("/batch", predictionController.SubmitBatch)

		r.Get("/", predictionController.GetPredictions)
		r.Get("/{request_id}", predictionController.GetPredictionByRequestID)
		r.Get("/subjects/{subject_id}/latest", predictionController.GetLatest)
	})

	// 流水线管理
	r.Route("/pipeline", func(r chi.Router) {
		pipelineController := controllers.NewPipelineController(service.GlobalPipelineService, service.GlobalConfig)

		r.Post("/start", pipelineController.Start)
		r.Post("/stop", pipelineController.Stop)
		r.Get("/status", pipelineController.GetStatus)
		r.Get("/statistics", pipelineController.GetStatistics)
		r.Post("/statistics/reset", pipelineController.ResetStatistics)
		r.Get("/config", pipelineController.GetConfig)
		r.Put("/config", pipelineController.UpdateConfig)
	})

	// 告警查询
	r.Route("/alerts", func(r chi.Router) {
		alertController := controllers.NewAlertController(service.GlobalHistoryService)
		r.Get("/", alertController.GetAlerts)
	})

	// 接入管理
	r.Route("/access", func(r chi.Router) {
		accessController := controllers.NewAccessController(service.GlobalAccessService)

		r.Route("/api-keys", func(r chi.Router) {
			r.Post("/", accessController.CreateApiKey)
			r.Get("/", accessController.GetApiKeys)
			r.Get("/{id}", accessController.GetApiKey)
			r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
				accessController.DeleteApiKey(w, req)
				// 清空鉴权缓存，使删除立即生效
				auth.InvalidateCache()
			})
			r.Post("/{id}/revoke", func(w http.ResponseWriter, req *http.Request) {
				accessController.RevokeApiKey(w, req)
				// 清空鉴权缓存，使吊销立即生效
				auth.InvalidateCache()
			})
		})
	})
}
