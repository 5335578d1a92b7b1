package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newGeminiTestClient(t *testing.T, baseURL string, maxRetries string) GeminiClient {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_BASE_URL", baseURL)
	t.Setenv("GEMINI_MAX_RETRIES", maxRetries)
	t.Setenv("GEMINI_TIMEOUT_SECONDS", "5")
	client, err := NewGeminiClient(newTestLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func geminiOKBody(text string) string {
	payload := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := NewGeminiClient(newTestLogger()); err == nil {
		t.Fatalf("expected error without GEMINI_API_KEY")
	}
}

func TestGeminiClient_SuccessFirstAttempt(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiOKBody("generated text")))
	}))
	defer srv.Close()

	client := newGeminiTestClient(t, srv.URL, "3")
	text, err := client.GenerateContent(context.Background(), ModelFlash, "prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "generated text" {
		t.Fatalf("text = %q", text)
	}
	if !strings.Contains(gotPath, ModelFlash+":generateContent") {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key header = %q", gotKey)
	}
}

func TestGeminiClient_RetriesTransientFailure(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "upstream hiccup", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(geminiOKBody("recovered")))
	}))
	defer srv.Close()

	client := newGeminiTestClient(t, srv.URL, "3")
	text, err := client.GenerateContent(context.Background(), ModelFlash, "prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "recovered" {
		t.Fatalf("text = %q", text)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}

func TestGeminiClient_ExhaustsRetryBudget(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "still down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newGeminiTestClient(t, srv.URL, "1")
	_, err := client.GenerateContent(context.Background(), ModelFlash, "prompt")
	if err == nil {
		t.Fatalf("expected terminal error")
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2 (initial + 1 retry)", attempts)
	}
	if !strings.Contains(err.Error(), "after 2 attempts") {
		t.Fatalf("terminal error should name the attempt budget: %v", err)
	}
}

func TestGeminiClient_NonRetryableFailsImmediately(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newGeminiTestClient(t, srv.URL, "3")
	_, err := client.GenerateContent(context.Background(), ModelFlash, "prompt")
	if err == nil {
		t.Fatalf("expected error")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (no retry on 400)", attempts)
	}
}

func TestGeminiClient_EmptyResponseIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	client := newGeminiTestClient(t, srv.URL, "0")
	if _, err := client.GenerateContent(context.Background(), ModelFlash, "prompt"); err == nil {
		t.Fatalf("expected error for empty candidates")
	}
}

func TestIsRetryableHTTP(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 599} {
		if !isRetryableHTTP(code) {
			t.Fatalf("code %d should be retryable", code)
		}
	}
	for _, code := range []int{200, 400, 401, 403, 404} {
		if isRetryableHTTP(code) {
			t.Fatalf("code %d should not be retryable", code)
		}
	}
}
