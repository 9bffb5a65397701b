package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stampjoy/internal/api/middleware"
	"stampjoy/internal/api/response"
	inputsanitize "stampjoy/internal/api/sanitize"
	"stampjoy/internal/model"
	"stampjoy/internal/service"
)

type ClientHandler struct {
	clientService *service.ClientService
}

type upsertClientRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func RegisterClientRoutes(group *gin.RouterGroup, clientService *service.ClientService) {
	if clientService == nil {
		return
	}

	handler := NewClientHandler(clientService)
	clients := group.Group("/clients")
	clients.Use(middleware.IdentityAuth(), middleware.RequireRole(model.RoleClient))

	clients.POST("/", middleware.AuditLog("client.register", "client"), handler.Register)
	clients.GET("/me", handler.Profile)
	clients.PATCH("/me", middleware.AuditLog("client.update", "client"), handler.Update)
	clients.DELETE("/me", middleware.AuditLog("client.delete", "client"), handler.Delete)
	clients.GET("/me/rewards", handler.PendingRewards)
	clients.DELETE("/me/rewards/:id", handler.AcknowledgeReward)
}

// Register
// @Summary Register
// @Description Auto-generated endpoint documentation for Register.
// @Tags client
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/clients [post]
func (h *ClientHandler) Register(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req upsertClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return
	}

	client, err := h.clientService.Register(c.Request.Context(), identity, service.RegisterClientRequest{
		Name:    inputsanitize.Text(req.Name),
		Contact: inputsanitize.Text(req.Contact),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, client)
}

// Profile
// @Summary Profile
// @Description Auto-generated endpoint documentation for Profile.
// @Tags client
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/clients/me [get]
func (h *ClientHandler) Profile(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	profile, err := h.clientService.Profile(c.Request.Context(), identity)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, profile)
}

// Update
// @Summary Update
// @Description Auto-generated endpoint documentation for Update.
// @Tags client
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/clients/me [patch]
func (h *ClientHandler) Update(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req upsertClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), identity, service.RegisterClientRequest{
		Name:    inputsanitize.Text(req.Name),
		Contact: inputsanitize.Text(req.Contact),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, client)
}

// Delete
// @Summary Delete
// @Description Auto-generated endpoint documentation for Delete.
// @Tags client
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/clients/me [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), identity); err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// PendingRewards
// @Summary PendingRewards
// @Description Auto-generated endpoint documentation for PendingRewards.
// @Tags client
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/clients/me/rewards [get]
func (h *ClientHandler) PendingRewards(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	rewards, err := h.clientService.PendingRewards(c.Request.Context(), identity)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, rewards)
}

// AcknowledgeReward
// @Summary AcknowledgeReward
// @Description Auto-generated endpoint documentation for AcknowledgeReward.
// @Tags client
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/clients/me/rewards/{id} [delete]
func (h *ClientHandler) AcknowledgeReward(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	rewardID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.clientService.AcknowledgeReward(c.Request.Context(), identity, rewardID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"acknowledged": true})
}
