package shelter

import (
	"resiliencehub/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, handler *ShelterHandler, verifier middleware.TokenVerifier) {
	r.POST("api/v1/checkin", middleware.Secured(verifier), handler.CheckIn)

	shelterGroup := r.Group("api/v1/shelters", middleware.Secured(verifier))
	{
		shelterGroup.GET("/active", handler.GetActiveShelter)
		shelterGroup.GET("/:id", handler.GetShelter)
	}

	adminGroup := r.Group("api/v1/shelters", middleware.Secured(verifier), middleware.AdminOnly())
	{
		adminGroup.POST("", handler.CreateShelter)
		adminGroup.GET("/mine", handler.GetMyShelter)
		adminGroup.POST("/:id/toggle", handler.ToggleActive)
		adminGroup.GET("/:id/occupants", handler.ListOccupants)
		adminGroup.POST("/:id/checkout/:user_id", handler.CheckOut)
		adminGroup.GET("/:id/qrcode", handler.GetQRCode)
	}
}
