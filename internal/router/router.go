package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cellar-next/internal/cache"
	"github.com/cellar-next/internal/config"
	adminhandlers "github.com/cellar-next/internal/http/handlers/admin"
	publichandlers "github.com/cellar-next/internal/http/handlers/public"
	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/logger"
	"github.com/cellar-next/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	RegisterValidators()
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "cellar"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
	}
	promoRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:promo", redisPrefix),
		WindowSeconds: cfg.Security.PromoRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.PromoRateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(MetricsMiddleware())
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		metricsPath := strings.TrimSpace(cfg.Metrics.Path)
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		r.GET(metricsPath, gin.WrapH(promhttp.Handler()))
	}

	userAuth := UserAuthMiddleware(c.UserAuthService, true)
	optionalAuth := UserAuthMiddleware(c.UserAuthService, false)

	apiV1 := r.Group("/api/v1")
	{
		// 优惠码
		apiV1.POST("/promo/validate", RateLimitMiddleware(redisClient, promoRule, KeyByIP), publicHandler.ValidatePromo)
		apiV1.GET("/promo", publicHandler.ListPromoCodes)

		// 结算与支付
		apiV1.POST("/checkout", publicHandler.Checkout)
		apiV1.POST("/paystack/verify", publicHandler.VerifyPayment)
		apiV1.POST("/paystack/webhook", publicHandler.PaystackWebhook)
		apiV1.GET("/order-details", publicHandler.GetOrderDetails)

		// 商品目录
		apiV1.GET("/products", publicHandler.ListProducts)
		apiV1.GET("/products/:slug", publicHandler.GetProduct)
		apiV1.GET("/delivery-fees/:city", publicHandler.GetDeliveryFee)
		apiV1.GET("/reviews", publicHandler.ListReviews)
		apiV1.POST("/reviews", userAuth, publicHandler.CreateReview)

		// 用户认证
		auth := apiV1.Group("/auth")
		auth.Use(RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")))
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", publicHandler.Login)
		}
		apiV1.GET("/me", userAuth, publicHandler.Me)

		// 管理端：匿名 401，非管理员 403
		admin := apiV1.Group("/admin")
		admin.Use(optionalAuth, AdminGuard(c.RoleStore))
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/analytics", adminHandler.GetAnalytics)

			admin.GET("/products", adminHandler.ListProducts)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.GET("/products/:id", adminHandler.GetProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.PATCH("/products/:id", adminHandler.PatchProductStock)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)

			admin.GET("/promo-codes", adminHandler.ListPromoCodes)
			admin.POST("/promo-codes", adminHandler.CreatePromoCode)
			admin.GET("/promo-codes/:id", adminHandler.GetPromoCode)
			admin.PUT("/promo-codes/:id", adminHandler.UpdatePromoCode)
			admin.PATCH("/promo-codes/:id", adminHandler.PatchPromoCode)
			admin.DELETE("/promo-codes/:id", adminHandler.DeletePromoCode)

			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.PATCH("/orders/:id", adminHandler.UpdateOrderStatus)

			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/users/:id/make-admin", adminHandler.MakeAdmin)
			admin.POST("/users/:id/remove-admin", adminHandler.RemoveAdmin)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)

			admin.GET("/delivery-fees", adminHandler.ListDeliveryFees)
			admin.PUT("/delivery-fees", adminHandler.UpsertDeliveryFee)
			admin.DELETE("/delivery-fees/:id", adminHandler.DeleteDeliveryFee)

			admin.POST("/email/test", adminHandler.SendTestEmail)
		}
	}

	r.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "Not found")
	})

	return r
}
