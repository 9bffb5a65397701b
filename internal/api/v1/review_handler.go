package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stampjoy/internal/api/middleware"
	"stampjoy/internal/api/response"
	inputsanitize "stampjoy/internal/api/sanitize"
	"stampjoy/internal/model"
	"stampjoy/internal/service"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
}

type createReviewRequest struct {
	RestaurantID string `json:"restaurant_id" binding:"required"`
	Rating       int    `json:"rating" binding:"required"`
	Body         string `json:"body"`
	Language     string `json:"language"`
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func RegisterReviewRoutes(group *gin.RouterGroup, reviewService *service.ReviewService) {
	if reviewService == nil {
		return
	}

	handler := NewReviewHandler(reviewService)
	reviews := group.Group("/reviews")
	reviews.Use(middleware.IdentityAuth())

	reviews.GET("/", handler.List)
	reviews.POST(
		"/",
		middleware.RequireRole(model.RoleClient),
		middleware.RateLimit("user_id", 5, time.Minute),
		handler.Create,
	)
	reviews.POST(
		"/:id/regenerate-response",
		middleware.RequireRole(model.RoleRestaurant),
		handler.RegenerateResponse,
	)
}

// Create
// @Summary Create
// @Description Auto-generated endpoint documentation for Create.
// @Tags review
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid restaurant_id")
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), identity, service.CreateReviewRequest{
		RestaurantID: restaurantID,
		Rating:       req.Rating,
		Body:         inputsanitize.Text(req.Body),
		Language:     inputsanitize.Text(req.Language),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, review)
}

// List
// @Summary List
// @Description Auto-generated endpoint documentation for List.
// @Tags review
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	if _, ok := currentIdentity(c); !ok {
		return
	}

	restaurantID, err := uuid.Parse(strings.TrimSpace(c.Query("restaurant_id")))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid restaurant_id")
		return
	}

	page := parseIntOrDefault(c.Query("page"), 1)
	pageSize := parseIntOrDefault(c.Query("page_size"), 20)

	items, total, err := h.reviewService.List(c.Request.Context(), restaurantID, page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Paginated(c, items, page, pageSize, total)
}

// RegenerateResponse
// @Summary RegenerateResponse
// @Description Auto-generated endpoint documentation for RegenerateResponse.
// @Tags review
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/reviews/{id}/regenerate-response [post]
func (h *ReviewHandler) RegenerateResponse(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	reviewID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	text, err := h.reviewService.RegenerateResponse(c.Request.Context(), identity, reviewID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"response": text})
}
