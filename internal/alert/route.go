package alert

import (
	"resiliencehub/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, handler *AlertHandler, verifier middleware.TokenVerifier) {
	alertGroup := r.Group("api/v1/alerts", middleware.Secured(verifier))
	{
		alertGroup.GET("", handler.ListAlerts)
		alertGroup.GET("/stream", handler.Stream)
		alertGroup.POST("", middleware.AdminOnly(), handler.CreateAlert)
	}
}
