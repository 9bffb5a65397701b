package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stampjoy/internal/api/middleware"
	"stampjoy/internal/api/response"
	inputsanitize "stampjoy/internal/api/sanitize"
	"stampjoy/internal/model"
	"stampjoy/internal/service"
)

type RestaurantHandler struct {
	restaurantService *service.RestaurantService
}

type registerRestaurantRequest struct {
	Name           string  `json:"name"`
	Email          *string `json:"email"`
	LoyaltyReward  string  `json:"loyalty_reward"`
	ReferralReward string  `json:"referral_reward"`
}

type updateRestaurantConfigRequest struct {
	Name           *string `json:"name"`
	LoyaltyReward  *string `json:"loyalty_reward"`
	StampsRequired *int    `json:"stamps_required"`
	ReferralReward *string `json:"referral_reward"`
	ReviewLink     *string `json:"review_link"`
	CardImageURL   *string `json:"card_image_url"`
	NewPIN         *string `json:"new_pin"`
}

type pinConfirmRequest struct {
	PIN string `json:"pin" binding:"required"`
}

func NewRestaurantHandler(restaurantService *service.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: restaurantService}
}

func RegisterRestaurantRoutes(group *gin.RouterGroup, restaurantService *service.RestaurantService) {
	if restaurantService == nil {
		return
	}

	handler := NewRestaurantHandler(restaurantService)
	restaurants := group.Group("/restaurants")
	restaurants.Use(middleware.IdentityAuth())

	restaurants.GET("/", handler.List)
	restaurants.GET("/:id", handler.Get)

	owner := restaurants.Group("")
	owner.Use(middleware.RequireRole(model.RoleRestaurant))
	owner.POST("/", middleware.AuditLog("restaurant.register", "restaurant"), handler.Register)
	owner.PATCH("/me/config", handler.UpdateConfig)
	owner.GET("/me/qr", handler.CurrentQR)
	owner.GET("/me/qr.png", handler.QRImage)
	owner.POST("/me/qr/rotate", middleware.RateLimit("user_id", 10, time.Minute), handler.Rotate)
	owner.GET("/me/stats", handler.Stats)
	owner.POST("/me/stats/reset", handler.ResetStats)
	owner.DELETE("/me", middleware.AuditLog("restaurant.delete", "restaurant"), handler.Delete)
}

// Register
// @Summary Register
// @Description Auto-generated endpoint documentation for Register.
// @Tags restaurant
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/restaurants [post]
func (h *RestaurantHandler) Register(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req registerRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return
	}

	restaurant, err := h.restaurantService.Register(c.Request.Context(), identity, service.RegisterRestaurantRequest{
		Name:           inputsanitize.Text(req.Name),
		Email:          inputsanitize.TextPtr(req.Email),
		LoyaltyReward:  inputsanitize.Text(req.LoyaltyReward),
		ReferralReward: inputsanitize.Text(req.ReferralReward),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, restaurant)
}

// List
// @Summary List
// @Description Auto-generated endpoint documentation for List.
// @Tags restaurant
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/restaurants [get]
func (h *RestaurantHandler) List(c *gin.Context) {
	page := parseIntOrDefault(c.Query("page"), 1)
	pageSize := parseIntOrDefault(c.Query("page_size"), 20)

	restaurants, total, err := h.restaurantService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// Directory entries carry only what the card front shows.
	items := make([]gin.H, 0, len(restaurants))
	for _, restaurant := range restaurants {
		items = append(items, gin.H{
			"id":              restaurant.ID,
			"name":            restaurant.Name,
			"loyalty_reward":  restaurant.LoyaltyReward,
			"stamps_required": restaurant.StampsRequired,
			"referral_reward": restaurant.ReferralReward,
			"card_image_url":  restaurant.CardImageURL,
		})
	}

	response.Paginated(c, items, page, pageSize, total)
}

// Get
// @Summary Get
// @Description Auto-generated endpoint documentation for Get.
// @Tags restaurant
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/restaurants/{id} [get]
func (h *RestaurantHandler) Get(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	restaurant, err := h.restaurantService.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if identity.IsRestaurant() && identity.ID == restaurant.ID {
		response.Success(c, restaurant)
		return
	}

	// Clients only see what the card front shows.
	response.Success(c, gin.H{
		"id":              restaurant.ID,
		"name":            restaurant.Name,
		"loyalty_reward":  restaurant.LoyaltyReward,
		"stamps_required": restaurant.StampsRequired,
		"referral_reward": restaurant.ReferralReward,
		"review_link":     restaurant.ReviewLink,
		"card_image_url":  restaurant.CardImageURL,
	})
}

// UpdateConfig
// @Summary UpdateConfig
// @Description Auto-generated endpoint documentation for UpdateConfig.
// @Tags restaurant
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/restaurants/me/config [patch]
func (h *RestaurantHandler) UpdateConfig(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req updateRestaurantConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return
	}

	restaurant, err := h.restaurantService.UpdateConfig(c.Request.Context(), identity, service.UpdateRestaurantConfigRequest{
		Name:           inputsanitize.TextPtr(req.Name),
		LoyaltyReward:  inputsanitize.TextPtr(req.LoyaltyReward),
		StampsRequired: req.StampsRequired,
		ReferralReward: inputsanitize.TextPtr(req.ReferralReward),
		ReviewLink:     inputsanitize.TextPtr(req.ReviewLink),
		CardImageURL:   inputsanitize.TextPtr(req.CardImageURL),
		NewPIN:         req.NewPIN,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, restaurant)
}

// CurrentQR
// @Summary CurrentQR
// @Description Auto-generated endpoint documentation for CurrentQR.
// @Tags restaurant
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/restaurants/me/qr [get]
func (h *RestaurantHandler) CurrentQR(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	payload, expiresAt, err := h.restaurantService.CurrentQR(c.Request.Context(), identity, identity.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"payload":    payload,
		"expires_at": expiresAt,
	})
}

// QRImage
// @Summary QRImage
// @Description Auto-generated endpoint documentation for QRImage.
// @Tags restaurant
// @Accept json
// @Produce png
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {string} binary
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/restaurants/me/qr.png [get]
func (h *RestaurantHandler) QRImage(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	size := parseIntOrDefault(c.Query("size"), 0)
	png, err := h.restaurantService.QRImagePNG(c.Request.Context(), identity, identity.ID, size)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// Rotate
// @Summary Rotate
// @Description Auto-generated endpoint documentation for Rotate.
// @Tags restaurant
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/restaurants/me/qr/rotate [post]
func (h *RestaurantHandler) Rotate(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	restaurant, err := h.restaurantService.Rotate(c.Request.Context(), identity, identity.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"expires_at": restaurant.QRExpiresAt,
	})
}

// Stats
// @Summary Stats
// @Description Auto-generated endpoint documentation for Stats.
// @Tags restaurant
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/restaurants/me/stats [get]
func (h *RestaurantHandler) Stats(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	stats, err := h.restaurantService.Stats(c.Request.Context(), identity, identity.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, stats)
}

// ResetStats
// @Summary ResetStats
// @Description Auto-generated endpoint documentation for ResetStats.
// @Tags restaurant
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/restaurants/me/stats/reset [post]
func (h *RestaurantHandler) ResetStats(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req pinConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return
	}

	if err := h.restaurantService.ResetStats(c.Request.Context(), identity, identity.ID, req.PIN); err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"reset": true})
}

// Delete
// @Summary Delete
// @Description Auto-generated endpoint documentation for Delete.
// @Tags restaurant
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/restaurants/me [delete]
func (h *RestaurantHandler) Delete(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req pinConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return
	}

	if err := h.restaurantService.Delete(c.Request.Context(), identity, identity.ID, req.PIN); err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
