package router

import (
	"fmt"
	"strings"

	"github.com/aurix-store/internal/cache"
	"github.com/aurix-store/internal/config"
	publichandlers "github.com/aurix-store/internal/http/handlers/public"
	"github.com/aurix-store/internal/logger"
	"github.com/aurix-store/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "aurix"
	}
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxRequests,
		Message:       "checkout too frequent",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(ctx *gin.Context) {
		online := true
		if c != nil && c.Monitor != nil {
			online = c.Monitor.Online()
		}
		ctx.JSON(200, gin.H{"status": "ok", "remote_online": online})
	})

	apiV1 := r.Group("/api/v1")
	{
		// 商品目录无需会话
		apiV1.GET("/products", publicHandler.GetProducts)
		apiV1.GET("/products/:slug", publicHandler.GetProductBySlug)

		// 购物车与结账要求会话标识
		carted := apiV1.Group("")
		carted.Use(SessionMiddleware())
		{
			carted.GET("/cart", publicHandler.GetCart)
			carted.POST("/cart/items", publicHandler.AddCartItem)
			carted.PUT("/cart/items", publicHandler.UpdateCartItem)
			carted.DELETE("/cart/items/:product_id", publicHandler.DeleteCartItem)
			carted.POST("/cart/clear", publicHandler.ClearCart)
			carted.GET("/cart/corrections", publicHandler.GetCartCorrections)

			carted.POST("/checkout",
				RateLimitMiddleware(cache.Client(), checkoutRule, KeyBySession),
				publicHandler.Checkout,
			)
			carted.GET("/orders", publicHandler.GetOrders)
			carted.GET("/orders/:order_no", publicHandler.GetOrder)
		}
	}

	return r
}
