package shelter

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

// ProfileSource supplies the caller's profile and is told when check-in or
// check-out changed it.
type ProfileSource interface {
	Profile(ctx context.Context, uid string) (*user.Profile, error)
	Invalidate(ctx context.Context, uid string)
}

type ShelterHandler struct {
	shelterService ShelterService
	profiles       ProfileSource
	logger         *zap.SugaredLogger
}

func NewShelterHandler(shelterService ShelterService, profiles ProfileSource, logger *zap.SugaredLogger) *ShelterHandler {
	return &ShelterHandler{
		shelterService: shelterService,
		profiles:       profiles,
		logger:         logger,
	}
}

func (h *ShelterHandler) CheckIn(c *gin.Context) {

	var req CheckInRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	uid := c.GetString(constants.UserID)

	profile, err := h.profiles.Profile(ctx, uid)
	if err != nil {
		h.logger.Warnw("Checking in without profile", "user_id", uid, "error", err)
		profile = nil
	}

	shelter, err := h.shelterService.CheckInWithCode(ctx, req.Code, uid, profile)
	if shelter != nil {
		h.profiles.Invalidate(ctx, uid)
	}
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "Check-in completed at "+shelter.Name, shelter)

}

func (h *ShelterHandler) CheckOut(c *gin.Context) {

	ctx := c.Request.Context()
	userID := c.Param("user_id")

	shelter, err := h.shelterService.CheckOut(ctx, c.Param("id"), userID)
	if shelter != nil {
		h.profiles.Invalidate(ctx, userID)
	}
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", shelter)

}

func (h *ShelterHandler) GetShelter(c *gin.Context) {

	shelter, err := h.shelterService.FindShelterByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", shelter)

}

// GetActiveShelter answers with null data when no shelter is active.
func (h *ShelterHandler) GetActiveShelter(c *gin.Context) {

	shelter, err := h.shelterService.FindActiveShelter(c.Request.Context())
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", shelter)

}

// GetMyShelter answers with null data when the admin has no shelter yet.
func (h *ShelterHandler) GetMyShelter(c *gin.Context) {

	shelter, err := h.shelterService.FindShelterByAdmin(c.Request.Context(), c.GetString(constants.UserID))
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", shelter)

}

func (h *ShelterHandler) CreateShelter(c *gin.Context) {

	var req CreateShelterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	shelter, err := h.shelterService.CreateShelter(c.Request.Context(), c.GetString(constants.UserID), &req)
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusCreated, "success", shelter)

}

func (h *ShelterHandler) ToggleActive(c *gin.Context) {

	shelter, err := h.shelterService.ToggleActive(c.Request.Context(), c.GetString(constants.UserID), c.Param("id"))
	if err != nil {
		h.sendError(c, err)
		return
	}

	check := "off"
	if shelter.Active {
		check = "on"
	}

	helper.SendSuccess(c, http.StatusOK, check, shelter)

}

func (h *ShelterHandler) ListOccupants(c *gin.Context) {

	occupants, err := h.shelterService.ListOccupants(c.Request.Context(), c.GetString(constants.UserID), c.Param("id"))
	if err != nil {
		h.sendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", occupants)

}

func (h *ShelterHandler) GetQRCode(c *gin.Context) {

	size := defaultQRSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 2048 {
			helper.SendError(c, http.StatusBadRequest, errors.New("size must be between 1 and 2048"), helper.ErrInvalidRequest)
			return
		}
		size = n
	}

	png, err := h.shelterService.QRCode(c.Request.Context(), c.GetString(constants.UserID), c.Param("id"), size)
	if err != nil {
		h.sendError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)

}

func (h *ShelterHandler) sendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrShelterNotFound):
		helper.SendError(c, http.StatusNotFound, err, helper.ErrNotFound)
	case errors.Is(err, ErrShelterInactive), errors.Is(err, ErrShelterFull):
		helper.SendError(c, http.StatusConflict, err, helper.ErrInvalidOperation)
	case errors.Is(err, ErrNotShelterAdmin):
		helper.SendError(c, http.StatusForbidden, err, helper.ErrForbidden)
	case errors.Is(err, ErrInvalidCode), errors.Is(err, ErrInvalidShelter):
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
	case errors.Is(err, ErrPartialWrite):
		helper.SendError(c, http.StatusInternalServerError, ErrPartialWrite, helper.ErrInternal)
	default:
		h.logger.Errorw("Shelter request failed", "path", c.FullPath(), "error", err)
		helper.SendError(c, http.StatusInternalServerError, helper.ErrSomethingWentWrong, helper.ErrInternal)
	}
}
