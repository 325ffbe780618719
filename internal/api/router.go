package api

import (
	"context"
	"net/http"
	"time"

	"resiliencehub/helper"
	"resiliencehub/internal/alert"
	"resiliencehub/internal/auth"
	"resiliencehub/internal/middleware"
	"resiliencehub/internal/resource"
	"resiliencehub/internal/shelter"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth     *auth.AuthHandler
	Shelter  *shelter.ShelterHandler
	Resource *resource.ResourceHandler
	Alert    *alert.AlertHandler
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

func NewRouter(logger *zap.SugaredLogger, verifier middleware.TokenVerifier, handlers Handlers, checks map[string]HealthCheck) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.CORS(), middleware.Logging(logger))

	r.GET("/health", healthHandler(checks))

	auth.RegisterRoutes(r, handlers.Auth, verifier)
	shelter.RegisterRoutes(r, handlers.Shelter, verifier)
	resource.RegisterRoutes(r, handlers.Resource, verifier)
	alert.RegisterRoutes(r, handlers.Alert, verifier)

	return r
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				report[name] = err.Error()
				continue
			}
			report[name] = "ok"
		}

		if status != http.StatusOK {
			c.JSON(status, helper.APIResponse{
				StatusCode: status,
				Data:       report,
				Error:      &helper.APIError{Code: helper.ErrInternal, Message: "dependency unavailable"},
			})
			return
		}

		helper.SendSuccess(c, status, "healthy", report)
	}
}
