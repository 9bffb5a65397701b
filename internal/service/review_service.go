package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stampjoy/internal/ledger"
	"stampjoy/internal/metrics"
	"stampjoy/internal/model"
	"stampjoy/internal/repository"
	"stampjoy/pkg/ai"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

type CreateReviewRequest struct {
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Rating       int       `json:"rating"`
	Body         string    `json:"body"`
	Language     string    `json:"language"`
}

type ReviewService struct {
	reviewRepo     repository.ReviewRepository
	restaurantRepo repository.RestaurantRepository
	clientRepo     repository.ClientRepository
	aiClient       *ai.Client
	logger         *zap.Logger

	generateResponseFn func(ctx context.Context, input ai.ReviewResponseInput) (string, error)
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	restaurantRepo repository.RestaurantRepository,
	clientRepo repository.ClientRepository,
	aiClient *ai.Client,
	logger *zap.Logger,
) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ReviewService{
		reviewRepo:     reviewRepo,
		restaurantRepo: restaurantRepo,
		clientRepo:     clientRepo,
		aiClient:       aiClient,
		logger:         logger,
	}
}

// Create stores a review and, best-effort, attaches a drafted owner
// response. A failing draft never fails the review.
func (s *ReviewService) Create(ctx context.Context, identity model.Identity, req CreateReviewRequest) (*model.Review, error) {
	if !identity.IsClient() {
		return nil, ErrForbidden
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, ErrInvalidInput
	}

	restaurant, err := s.restaurantRepo.FindByID(ctx, req.RestaurantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ledger.ErrUnknownRestaurant
	}
	if err != nil {
		return nil, err
	}

	author := "Anonymous"
	if client, err := s.clientRepo.FindByID(ctx, identity.ID); err == nil {
		author = client.Name
	}

	review := &model.Review{
		RestaurantID: restaurant.ID,
		Author:       author,
		Rating:       req.Rating,
		Body:         body,
		Language:     strings.TrimSpace(req.Language),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	if response := s.draftResponse(ctx, restaurant.Name, review); response != "" {
		if err := s.reviewRepo.SetAIResponse(ctx, review.ID, response); err != nil {
			s.logger.Warn("store review response failed",
				zap.String("review_id", review.ID.String()),
				zap.Error(err),
			)
		} else {
			review.AIResponse = &response
		}
	}

	return review, nil
}

func (s *ReviewService) draftResponse(ctx context.Context, restaurantName string, review *model.Review) string {
	started := time.Now()
	response, err := s.generateResponse(ctx, ai.ReviewResponseInput{
		RestaurantName: restaurantName,
		ReviewText:     review.Body,
		ReviewRating:   review.Rating,
		ReviewLanguage: review.Language,
	})
	metrics.ObserveAISuggestionDuration(time.Since(started))
	if err != nil {
		metrics.IncAISuggestionError()
		s.logger.Warn("review response draft failed",
			zap.String("review_id", review.ID.String()),
			zap.Error(err),
		)
		return ""
	}
	return response
}

func (s *ReviewService) generateResponse(ctx context.Context, input ai.ReviewResponseInput) (string, error) {
	if s.generateResponseFn != nil {
		return s.generateResponseFn(ctx, input)
	}
	if s.aiClient == nil {
		return "", nil
	}
	return s.aiClient.GenerateReviewResponse(ctx, input)
}

func (s *ReviewService) List(ctx context.Context, restaurantID uuid.UUID, page, pageSize int) ([]*model.Review, int64, error) {
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ReviewListFilter{
		RestaurantID: restaurantID,
		Pagination: repository.Pagination{
			Limit:  int32(pageSize),
			Offset: int32((page - 1) * pageSize),
		},
	}

	reviews, err := s.reviewRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.reviewRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// RegenerateResponse lets the restaurant re-draft the reply to one of
// its reviews.
func (s *ReviewService) RegenerateResponse(ctx context.Context, identity model.Identity, reviewID uuid.UUID) (string, error) {
	if !identity.IsRestaurant() {
		return "", ErrForbidden
	}

	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return "", err
	}
	if review.RestaurantID != identity.ID {
		return "", ErrForbidden
	}

	restaurant, err := s.restaurantRepo.FindByID(ctx, review.RestaurantID)
	if err != nil {
		return "", err
	}

	response := s.draftResponse(ctx, restaurant.Name, review)
	if response == "" {
		return "", nil
	}
	if err := s.reviewRepo.SetAIResponse(ctx, review.ID, response); err != nil {
		return "", err
	}
	return response, nil
}
