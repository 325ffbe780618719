package auth

import (
	"resiliencehub/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, handler *AuthHandler, verifier middleware.TokenVerifier) {
	authGroup := r.Group("api/v1/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/logout", middleware.Secured(verifier), handler.Logout)
	}

	profileGroup := r.Group("api/v1/profile", middleware.Secured(verifier))
	{
		profileGroup.GET("", handler.GetProfile)
		profileGroup.PATCH("", handler.UpdateProfile)
		profileGroup.GET("/check-ins", handler.GetCheckInHistory)
	}
}
