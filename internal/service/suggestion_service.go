package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stampjoy/internal/metrics"
	"stampjoy/internal/model"
	"stampjoy/pkg/ai"
)

// SuggestionService fronts the text-generation service. Every call
// degrades to an empty suggestion on failure; the primary flows never
// depend on it.
type SuggestionService struct {
	aiClient *ai.Client
	logger   *zap.Logger

	suggestRewardFn func(ctx context.Context, restaurantName string) (string, error)
	draftReviewFn   func(ctx context.Context, restaurantName string) (string, error)
}

func NewSuggestionService(aiClient *ai.Client, logger *zap.Logger) *SuggestionService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SuggestionService{
		aiClient: aiClient,
		logger:   logger,
	}
}

// SuggestReward asks for a reward idea for the caller's restaurant.
func (s *SuggestionService) SuggestReward(ctx context.Context, identity model.Identity, restaurantName string) string {
	if !identity.IsRestaurant() {
		return ""
	}
	return s.observe(ctx, "suggest_reward", restaurantName, s.suggestReward)
}

// DraftReview asks for review starter text a client can edit.
func (s *SuggestionService) DraftReview(ctx context.Context, restaurantName string) string {
	return s.observe(ctx, "draft_review", restaurantName, s.draftReview)
}

func (s *SuggestionService) observe(ctx context.Context, kind, restaurantName string, fn func(ctx context.Context, name string) (string, error)) string {
	started := time.Now()
	text, err := fn(ctx, restaurantName)
	metrics.ObserveAISuggestionDuration(time.Since(started))
	if err != nil {
		metrics.IncAISuggestionError()
		s.logger.Warn("ai suggestion failed",
			zap.String("kind", kind),
			zap.Error(err),
		)
		return ""
	}
	return text
}

func (s *SuggestionService) suggestReward(ctx context.Context, restaurantName string) (string, error) {
	if s.suggestRewardFn != nil {
		return s.suggestRewardFn(ctx, restaurantName)
	}
	if s.aiClient == nil {
		return "", nil
	}
	return s.aiClient.SuggestReward(ctx, restaurantName)
}

func (s *SuggestionService) draftReview(ctx context.Context, restaurantName string) (string, error) {
	if s.draftReviewFn != nil {
		return s.draftReviewFn(ctx, restaurantName)
	}
	if s.aiClient == nil {
		return "", nil
	}
	return s.aiClient.DraftReview(ctx, restaurantName)
}
