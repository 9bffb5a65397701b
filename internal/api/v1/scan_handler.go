package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stampjoy/internal/api/middleware"
	"stampjoy/internal/api/response"
	"stampjoy/internal/model"
	"stampjoy/internal/service"
)

type ScanHandler struct {
	stampService *service.StampService
}

type scanRequest struct {
	Payload string `json:"payload" binding:"required"`
}

func NewScanHandler(stampService *service.StampService) *ScanHandler {
	return &ScanHandler{stampService: stampService}
}

func RegisterScanRoutes(group *gin.RouterGroup, stampService *service.StampService) {
	if stampService == nil {
		return
	}

	handler := NewScanHandler(stampService)
	group.POST(
		"/scan",
		middleware.IdentityAuth(),
		middleware.RequireRole(model.RoleClient),
		middleware.RateLimit("user_id", 30, time.Minute),
		handler.Scan,
	)
}

// Scan
// @Summary Scan
// @Description Auto-generated endpoint documentation for Scan.
// @Tags scan
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer access token"
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/scan [post]
func (h *ScanHandler) Scan(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidInput, "invalid request")
		return
	}

	// The payload is parsed as JSON, never stored or rendered, so it is
	// only trimmed here.
	result, err := h.stampService.ApplyScan(c.Request.Context(), identity, strings.TrimSpace(req.Payload))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, result)
}
