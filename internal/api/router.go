package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/kidcare_server/config"
	"github.com/qs3c/kidcare_server/internal/api/handler"
	"github.com/qs3c/kidcare_server/internal/api/middleware"
)

type Router struct {
	subscriptionHandler *handler.SubscriptionHandler
	catalogHandler      *handler.CatalogHandler
	promotionHandler    *handler.PromotionHandler
	websocketHandler    *handler.WebSocketHandler
	cfg                 *config.Config
}

func NewRouter(
	subscriptionHandler *handler.SubscriptionHandler,
	catalogHandler *handler.CatalogHandler,
	promotionHandler *handler.PromotionHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		subscriptionHandler: subscriptionHandler,
		catalogHandler:      catalogHandler,
		promotionHandler:    promotionHandler,
		websocketHandler:    websocketHandler,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 服务报价与名额
		services := api.Group("/services")
		{
			services.GET("/:id/pricing", r.catalogHandler.Quote)
			services.GET("/:id/session-options", r.catalogHandler.SessionOptions)
			services.GET("/:id/capacity", r.catalogHandler.Capacity)
		}

		// 公开接口 - 优惠码预览
		api.POST("/promotions/preview", r.promotionHandler.Preview)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			subscriptions := authenticated.Group("/subscriptions")
			{
				subscriptions.POST("", r.subscriptionHandler.Create)
				subscriptions.GET("", r.subscriptionHandler.List)
				subscriptions.GET("/:code", r.subscriptionHandler.Get)
				subscriptions.POST("/:code/cancel", r.subscriptionHandler.Cancel)
			}
		}
	}

	return engine
}
