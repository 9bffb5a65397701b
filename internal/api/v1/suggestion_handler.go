package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stampjoy/internal/api/middleware"
	"stampjoy/internal/api/response"
	"stampjoy/internal/model"
	"stampjoy/internal/service"
)

type SuggestionHandler struct {
	suggestionService *service.SuggestionService
	restaurantService *service.RestaurantService
}

type draftReviewRequest struct {
	RestaurantID string `json:"restaurant_id" binding:"required"`
}

func NewSuggestionHandler(
	suggestionService *service.SuggestionService,
	restaurantService *service.RestaurantService,
) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionService: suggestionService,
		restaurantService: restaurantService,
	}
}

func RegisterSuggestionRoutes(
	group *gin.RouterGroup,
	suggestionService *service.SuggestionService,
	restaurantService *service.RestaurantService,
) {
	if suggestionService == nil || restaurantService == nil {
		return
	}

	handler := NewSuggestionHandler(suggestionService, restaurantService)
	aiGroup := group.Group("/ai")
	aiGroup.Use(middleware.IdentityAuth(), middleware.RateLimit("user_id", 10, time.Minute))

	aiGroup.POST("/suggest-reward", middleware.RequireRole(model.RoleRestaurant), handler.SuggestReward)
	aiGroup.POST("/draft-review", middleware.RequireRole(model.RoleClient), handler.DraftReview)
}

// SuggestReward
// @Summary SuggestReward
// @Description Auto-generated endpoint documentation for SuggestReward.
// @Tags ai
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/ai/suggest-reward [post]
func (h *SuggestionHandler) SuggestReward(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	restaurant, err := h.restaurantService.Get(c.Request.Context(), identity.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	suggestion := h.suggestionService.SuggestReward(c.Request.Context(), identity, restaurant.Name)
	response.Success(c, gin.H{"suggestion": suggestion})
}

// DraftReview
// @Summary DraftReview
// @Description Auto-generated endpoint documentation for DraftReview.
// @Tags ai
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/ai/draft-review [post]
func (h *SuggestionHandler) DraftReview(c *gin.Context) {
	if _, ok := currentIdentity(c); !ok {
		return
	}

	var req draftReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid restaurant_id")
		return
	}

	restaurant, err := h.restaurantService.Get(c.Request.Context(), restaurantID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	draft := h.suggestionService.DraftReview(c.Request.Context(), restaurant.Name)
	response.Success(c, gin.H{"draft": draft})
}
