package api

import (
	"WebShop_AI/backend/go/internal/config"
	"WebShop_AI/backend/go/pkg/httpmiddleware"
	"WebShop_AI/backend/go/pkg/logger"
	"WebShop_AI/backend/go/pkg/ratelimiter"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// 校验错误中使用 JSON 字段名 (session_id)，而不是 Go 字段名 (SessionID)。
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// SetupRouter 配置和返回一个 Gin 引擎实例。
func SetupRouter(h *Handler, cfg *config.AppConfig, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.AccessLog(log))
	r.Use(httpmiddleware.CORS(cfg.CORS))
	r.Use(httpmiddleware.MaxBodyBytes(cfg.Upstream.MaxRequestBytes))

	if cfg.Middleware.RateLimiter.Enabled {
		rl := cfg.Middleware.RateLimiter
		log.WithFields(map[string]interface{}{"rate": rl.Rate, "capacity": rl.Capacity, "per_client": rl.PerClient}).
			Info("Enabling Rate Limiter middleware")
		if rl.PerClient {
			r.Use(httpmiddleware.RateLimitPerClient(ratelimiter.NewKeyed(ratelimiter.KeyedConfig{
				Rate:     rl.Rate,
				Capacity: rl.Capacity,
				MaxKeys:  rl.MaxClients,
				IdleTTL:  rl.IdleTTL,
			})))
		} else {
			r.Use(httpmiddleware.RateLimit(ratelimiter.NewTokenBucket(rl.Rate, rl.Capacity)))
		}
	}

	r.GET("/", h.Root)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		// 聊天路由组
		chat := api.Group("/chat")
		{
			chat.POST("", h.SendMessage)
			chat.GET("/history/:session_id", h.GetHistory)
			chat.DELETE("/history/:session_id", h.ClearHistory)
		}

		// Agent 路由组
		agents := api.Group("/agents")
		{
			agents.GET("", h.ListAgents)
			agents.POST("/:agent_id/invoke", h.InvokeAgent)
			agents.GET("/:agent_id/status", h.AgentStatus)
		}
	}

	return r
}
