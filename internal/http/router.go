package http

import (
	"net/http"

	"diamond_store/internal/config"
	"diamond_store/internal/http/handlers"
	"diamond_store/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter собирает HTTP-поверхность приложения: callback платёжного
// провайдера, здоровье и метрики
func NewRouter(cfg *config.Config, payments *service.PaymentService) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.CryptoPayToken != "" {
		webhook := handlers.NewCryptoPayWebhookHandler(cfg.CryptoPayToken, payments)
		r.POST("/webhook/cryptopay", webhook.Handle)
	}

	return r
}
