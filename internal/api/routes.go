package api

import (
	"github.com/gin-gonic/gin"

	v1 "stampjoy/internal/api/v1"
	"stampjoy/internal/service"
	"stampjoy/internal/sse"
)

// Services bundles everything the HTTP layer needs wired in.
type Services struct {
	Stamp      *service.StampService
	Referral   *service.ReferralService
	Client     *service.ClientService
	Restaurant *service.RestaurantService
	Review     *service.ReviewService
	Suggestion *service.SuggestionService
	Audit      *service.AuditService
	SSEHub     *sse.SSEHub
}

func RegisterRoutes(router *gin.Engine, services Services) {
	group := router.Group("/api/v1")

	v1.RegisterScanRoutes(group, services.Stamp)
	v1.RegisterReferralRoutes(group, services.Referral)
	v1.RegisterClientRoutes(group, services.Client)
	v1.RegisterRestaurantRoutes(group, services.Restaurant)
	v1.RegisterReviewRoutes(group, services.Review)
	v1.RegisterSuggestionRoutes(group, services.Suggestion, services.Restaurant)
	v1.RegisterAuditRoutes(group, services.Audit)
	v1.RegisterSSERoutes(group, services.SSEHub)
}
