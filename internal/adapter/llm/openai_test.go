package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docgen/internal/domain"
)

func testClient(url string) *ChatClient {
	return NewCompatibleClient("test", "test-key", "test-model", url, 5*time.Second)
}

func TestChatClientSuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: "Generated docstring."}}},
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	resp, err := c.Generate(context.Background(), domain.GenerationRequest{Prompt: "document this"})
	if err != nil {
		t.Fatal(err)
	}

	if resp.Text != "Generated docstring." {
		t.Errorf("text: got %q", resp.Text)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path: got %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header: got %q", gotAuth)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" {
		t.Errorf("expected system+user messages, got %+v", gotBody.Messages)
	}
	if gotBody.Messages[1].Content != "document this" {
		t.Errorf("user prompt: got %q", gotBody.Messages[1].Content)
	}
	if gotBody.Model != "test-model" {
		t.Errorf("model: got %q", gotBody.Model)
	}
}

func TestChatClientAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), domain.GenerationRequest{Prompt: "p"})
	var ae *domain.ProviderAuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ProviderAuthError, got %v", err)
	}
	if domain.IsTransient(err) {
		t.Error("auth errors must not be transient")
	}
}

func TestChatClientTransientStatuses(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := testClient(srv.URL).Generate(context.Background(), domain.GenerationRequest{Prompt: "p"})
		if !domain.IsTransient(err) {
			t.Errorf("status %d: expected transient error, got %v", status, err)
		}
		srv.Close()
	}
}

func TestChatClientBadRequestIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), domain.GenerationRequest{Prompt: "p"})
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.IsTransient(err) {
		t.Error("400 must not be retried")
	}
}

func TestChatClientTimeoutIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewCompatibleClient("test", "k", "m", srv.URL, 50*time.Millisecond)
	_, err := c.Generate(context.Background(), domain.GenerationRequest{Prompt: "p"})
	if !domain.IsTransient(err) {
		t.Errorf("client timeout should be transient, got %v", err)
	}
}

func TestChatClientAPIErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{Error: &apiError{Message: "model not found"}})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), domain.GenerationRequest{Prompt: "p"})
	if err == nil || domain.IsTransient(err) {
		t.Fatalf("expected permanent API error, got %v", err)
	}
}
