package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stampjoy/internal/api/middleware"
	"stampjoy/internal/api/response"
	inputsanitize "stampjoy/internal/api/sanitize"
	"stampjoy/internal/model"
	"stampjoy/internal/service"
)

type ReferralHandler struct {
	referralService *service.ReferralService
}

type bindReferralRequest struct {
	RestaurantID string `json:"restaurant_id" binding:"required"`
	Code         string `json:"code" binding:"required"`
}

func NewReferralHandler(referralService *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

func RegisterReferralRoutes(group *gin.RouterGroup, referralService *service.ReferralService) {
	if referralService == nil {
		return
	}

	handler := NewReferralHandler(referralService)
	group.POST(
		"/referrals",
		middleware.IdentityAuth(),
		middleware.RequireRole(model.RoleClient),
		middleware.RateLimit("user_id", 10, time.Minute),
		handler.Bind,
	)
}

// Bind
// @Summary Bind
// @Description Auto-generated endpoint documentation for Bind.
// @Tags referral
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/referrals [post]
func (h *ReferralHandler) Bind(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req bindReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid restaurant_id")
		return
	}

	card, err := h.referralService.Bind(c.Request.Context(), identity, restaurantID, inputsanitize.Text(req.Code))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, card)
}
