package auth

import (
	"errors"
	"net/http"

	"resiliencehub/helper"
	"resiliencehub/internal/identity"
	"resiliencehub/pkg/constants"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	gate   *Gate
	logger *zap.SugaredLogger
}

func NewAuthHandler(gate *Gate, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		gate:   gate,
		logger: logger,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {

	var req RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	result, err := h.gate.Register(c.Request.Context(), &req)
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusCreated, "success", result)

}

func (h *AuthHandler) Login(c *gin.Context) {

	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	result, err := h.gate.Login(c.Request.Context(), &req)
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", result)

}

func (h *AuthHandler) Logout(c *gin.Context) {

	uid := c.GetString(constants.UserID)

	if err := h.gate.Logout(c.Request.Context(), uid); err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", nil)

}

// GetProfile answers with null data when the profile does not exist yet.
func (h *AuthHandler) GetProfile(c *gin.Context) {

	uid := c.GetString(constants.UserID)

	profile, err := h.gate.Profile(c.Request.Context(), uid)
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", profile)

}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {

	var req UpdateProfileRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	uid := c.GetString(constants.UserID)

	profile, err := h.gate.UpdateProfile(c.Request.Context(), uid, &req)
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", profile)

}

func (h *AuthHandler) GetCheckInHistory(c *gin.Context) {

	uid := c.GetString(constants.UserID)

	history, err := h.gate.CheckInHistory(c.Request.Context(), uid)
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", history)

}

func (h *AuthHandler) sendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
	case errors.Is(err, ErrUserNotFound):
		helper.SendError(c, http.StatusNotFound, err, helper.ErrNotFound)
	case errors.Is(err, identity.ErrEmailInUse):
		helper.SendError(c, http.StatusConflict, errors.New(identity.Message(err)), helper.ErrConflict)
	case errors.Is(err, identity.ErrWeakPassword), errors.Is(err, identity.ErrInvalidEmail):
		helper.SendError(c, http.StatusBadRequest, errors.New(identity.Message(err)), helper.ErrInvalidRequest)
	case errors.Is(err, identity.ErrUserNotFound),
		errors.Is(err, identity.ErrWrongPassword),
		errors.Is(err, identity.ErrInvalidCredentials):
		helper.SendError(c, http.StatusUnauthorized, errors.New(identity.Message(err)), helper.ErrUnauthorized)
	case errors.Is(err, identity.ErrUserDisabled):
		helper.SendError(c, http.StatusForbidden, errors.New(identity.Message(err)), helper.ErrForbidden)
	case errors.Is(err, identity.ErrTooManyRequests):
		helper.SendError(c, http.StatusTooManyRequests, errors.New(identity.Message(err)), helper.ErrInvalidOperation)
	default:
		h.logger.Errorw("Auth request failed", "path", c.FullPath(), "error", err)
		helper.SendError(c, http.StatusInternalServerError, helper.ErrSomethingWentWrong, helper.ErrInternal)
	}
}
