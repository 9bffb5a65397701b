package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateReviewResponse_SendsPromptAndAuth(t *testing.T) {
	var gotAuth string
	var gotPrompt string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotPrompt = req.Prompt
		_ = json.NewEncoder(w).Encode(generateResponse{Text: "  Thank you for the kind words!  "})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key", srv.Client())
	text, err := client.GenerateReviewResponse(context.Background(), ReviewResponseInput{
		RestaurantName: "Chez Test",
		ReviewText:     "Lovely food",
		ReviewRating:   5,
		ReviewLanguage: "French",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if text != "Thank you for the kind words!" {
		t.Fatalf("expected trimmed response, got %q", text)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	for _, want := range []string{"Chez Test", "Lovely food", "5-star", "French"} {
		if !strings.Contains(gotPrompt, want) {
			t.Fatalf("prompt missing %q: %s", want, gotPrompt)
		}
	}
}

func TestSuggestReward_APIErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(generateResponse{Error: "rate limited"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", srv.Client())
	if _, err := client.SuggestReward(context.Background(), "Chez Test"); err == nil {
		t.Fatal("expected error from failing api")
	}
}

func TestGenerate_EmptyBaseURL(t *testing.T) {
	client := NewClient("", "", nil)
	if _, err := client.DraftReview(context.Background(), "Chez Test"); err == nil {
		t.Fatal("expected error for empty base url")
	}
}
