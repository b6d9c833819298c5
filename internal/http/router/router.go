package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wwwxxch/linebot-genai/internal/http/handler/webhook"
)

// SetupRoutes registers the two public endpoints: the health probe and the
// LINE webhook.
func SetupRoutes(router *gin.Engine, lineWebhook *webhook.LineWebhookHandler) {
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	router.POST("/webhook", lineWebhook.HandleEvents)
}
