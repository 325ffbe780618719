package resource

import (
	"resiliencehub/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, handler *ResourceHandler, verifier middleware.TokenVerifier) {
	r.GET("api/v1/shelters/:id/resources", middleware.Secured(verifier), handler.ListResources)
	r.GET("api/v1/resources/categories", middleware.Secured(verifier), handler.ListCategories)

	resourceGroup := r.Group("api/v1/resources", middleware.Secured(verifier), middleware.AdminOnly())
	{
		resourceGroup.POST("", handler.CreateResource)
		resourceGroup.PUT("/:id", handler.UpdateResource)
		resourceGroup.DELETE("/:id", handler.DeleteResource)
	}
}
