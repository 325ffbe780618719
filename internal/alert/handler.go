package alert

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"resiliencehub/helper"
	"resiliencehub/internal/user"
	"resiliencehub/pkg/constants"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileSource supplies the issuing admin's profile.
type ProfileSource interface {
	Profile(ctx context.Context, uid string) (*user.Profile, error)
}

type AlertHandler struct {
	alertService AlertService
	profiles     ProfileSource
	hub          *Hub
	logger       *zap.SugaredLogger
}

func NewAlertHandler(alertService AlertService, profiles ProfileSource, hub *Hub, logger *zap.SugaredLogger) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
		profiles:     profiles,
		hub:          hub,
		logger:       logger,
	}
}

func (h *AlertHandler) ListAlerts(c *gin.Context) {

	var limit int64
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			helper.SendError(c, http.StatusBadRequest, errors.New("limit must be a non-negative number"), helper.ErrInvalidRequest)
			return
		}
		limit = n
	}

	alerts, err := h.alertService.List(c.Request.Context(), c.DefaultQuery("filter", FilterAll), limit)
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", alerts)

}

func (h *AlertHandler) CreateAlert(c *gin.Context) {

	var req CreateAlertRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	uid := c.GetString(constants.UserID)

	profile, err := h.profiles.Profile(ctx, uid)
	if err != nil {
		h.logger.Warnw("Creating alert without profile", "user_id", uid, "error", err)
		profile = nil
	}

	alert, err := h.alertService.Create(ctx, Creator{UID: uid, Name: profile.DisplayName()}, &req)
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusCreated, "success", alert)

}

func (h *AlertHandler) Stream(c *gin.Context) {
	if err := h.hub.ServeWS(c.Writer, c.Request); err != nil {
		h.logger.Warnw("Alert stream upgrade failed", "error", err)
	}
}

func (h *AlertHandler) sendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTitleRequired),
		errors.Is(err, ErrDescriptionRequired),
		errors.Is(err, ErrInvalidSeverity),
		errors.Is(err, ErrInvalidFilter):
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
	default:
		h.logger.Errorw("Alert request failed", "path", c.FullPath(), "error", err)
		helper.SendError(c, http.StatusInternalServerError, helper.ErrSomethingWentWrong, helper.ErrInternal)
	}
}
