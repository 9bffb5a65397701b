// Package ai wraps the hosted text-generation service used for reward
// suggestions and review drafting. Calls are best-effort: callers must
// treat a failure as "no suggestion" and never block a loyalty flow on
// them.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// ReviewResponseInput carries everything the model needs to answer a
// customer review in the restaurant's voice and the review's language.
type ReviewResponseInput struct {
	RestaurantName string
	ReviewText     string
	ReviewRating   int
	ReviewLanguage string
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	client := httpClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: client,
	}
}

// SuggestReward proposes a loyalty reward for a restaurant.
func (c *Client) SuggestReward(ctx context.Context, restaurantName string) (string, error) {
	prompt := fmt.Sprintf(
		"Suggest one concise loyalty card reward for a restaurant named %q. Reply with the reward text only.",
		restaurantName,
	)
	return c.generate(ctx, prompt)
}

// DraftReview writes a short positive review a customer can start from.
func (c *Client) DraftReview(ctx context.Context, restaurantName string) (string, error) {
	prompt := fmt.Sprintf(
		"Write a short, warm customer review for a restaurant named %q. Two sentences at most.",
		restaurantName,
	)
	return c.generate(ctx, prompt)
}

// GenerateReviewResponse drafts the restaurant's reply to a review.
func (c *Client) GenerateReviewResponse(ctx context.Context, input ReviewResponseInput) (string, error) {
	prompt := fmt.Sprintf(
		"You are the owner of the restaurant %q. A customer left this %d-star review: %q. "+
			"Write a brief, courteous response in %s.",
		input.RestaurantName,
		input.ReviewRating,
		input.ReviewText,
		input.ReviewLanguage,
	)
	return c.generate(ctx, prompt)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if c == nil {
		return "", errors.New("ai client is nil")
	}
	if c.baseURL == "" {
		return "", errors.New("ai base url is empty")
	}

	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var apiResp generateResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&apiResp); decodeErr != nil {
		return "", decodeErr
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if apiResp.Error == "" {
			apiResp.Error = "generation request failed"
		}
		return "", fmt.Errorf("ai api error: %s", apiResp.Error)
	}

	return strings.TrimSpace(apiResp.Text), nil
}
