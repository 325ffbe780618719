package resource

import (
	"errors"
	"net/http"

	"resiliencehub/helper"
	"resiliencehub/pkg/constants"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ResourceHandler struct {
	resourceService ResourceService
	logger          *zap.SugaredLogger
}

func NewResourceHandler(resourceService ResourceService, logger *zap.SugaredLogger) *ResourceHandler {
	return &ResourceHandler{
		resourceService: resourceService,
		logger:          logger,
	}
}

func (h *ResourceHandler) ListResources(c *gin.Context) {

	resources, err := h.resourceService.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", resources)

}

func (h *ResourceHandler) ListCategories(c *gin.Context) {
	helper.SendSuccess(c, http.StatusOK, "success", Categories)
}

func (h *ResourceHandler) CreateResource(c *gin.Context) {

	var req ResourceRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	res, err := h.resourceService.Create(c.Request.Context(), c.GetString(constants.UserID), &req)
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusCreated, "success", res)

}

func (h *ResourceHandler) UpdateResource(c *gin.Context) {

	var req ResourceRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	if err := h.resourceService.Update(c.Request.Context(), c.GetString(constants.UserID), c.Param("id"), &req); err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", nil)

}

func (h *ResourceHandler) DeleteResource(c *gin.Context) {

	if err := h.resourceService.Delete(c.Request.Context(), c.GetString(constants.UserID), c.Param("id")); err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", nil)

}

func (h *ResourceHandler) sendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrInvalidQuantity):
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
	case errors.Is(err, ErrResourceNotFound), errors.Is(err, ErrShelterNotFound):
		helper.SendError(c, http.StatusNotFound, err, helper.ErrNotFound)
	case errors.Is(err, ErrNotOwner):
		helper.SendError(c, http.StatusForbidden, err, helper.ErrForbidden)
	default:
		h.logger.Errorw("Resource request failed", "path", c.FullPath(), "error", err)
		helper.SendError(c, http.StatusInternalServerError, helper.ErrSomethingWentWrong, helper.ErrInternal)
	}
}
