package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestGeminiChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.GenerationConfig.ResponseMimeType != "application/json" {
			t.Errorf("responseMimeType = %q, want application/json", req.GenerationConfig.ResponseMimeType)
		}
		if req.GenerationConfig.Temperature != 0.1 {
			t.Errorf("temperature = %v, want 0.1", req.GenerationConfig.Temperature)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[{\"type\":\"back\"}]"}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("test-key", "gemini-2.0-flash", 5*time.Second)
	c.SetBaseURL(srv.URL)

	out, err := c.Chat(context.Background(), "sys", "go back")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != `[{"type":"back"}]` {
		t.Errorf("output = %q", out)
	}
}

func TestGeminiEmptyResponse(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("test-key", "", time.Second)
	c.SetBaseURL(srv.URL)

	_, err := c.Chat(context.Background(), "", "hello")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want 2 (one retry)", calls)
	}
}

func TestGeminiBadRequestNoRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewGeminiClient("test-key", "", time.Second)
	c.SetBaseURL(srv.URL)

	_, err := c.Chat(context.Background(), "", "hello")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want StatusError 400", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", calls)
	}
}

func TestOpenAIChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[]"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "test-key", "gpt-4o-mini", 5*time.Second)
	out, err := c.Chat(context.Background(), "sys", "open chrome")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != "[]" {
		t.Errorf("output = %q", out)
	}
}

func TestIsRateLimited(t *testing.T) {
	err := &StatusError{Provider: "gemini", Code: 429, Body: "quota"}
	if !IsRateLimited(err) {
		t.Error("429 should be rate limited")
	}
	if IsRateLimited(&StatusError{Code: 500}) {
		t.Error("500 is not a rate limit")
	}
	if IsRateLimited(nil) {
		t.Error("nil is not a rate limit")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"empty response", ErrEmptyResponse, true},
		{"rate limit", &StatusError{Code: 429}, true},
		{"server error", &StatusError{Code: 503}, true},
		{"bad request", &StatusError{Code: 400}, false},
		{"unauthorized", &StatusError{Code: 401}, false},
		{"transport", errors.New("connection refused"), true},
		{"canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestNewFromEnvDisabled(t *testing.T) {
	for _, k := range []string{"LLM_PROVIDER", "GEMINI_API_KEY", "GOOGLE_API_KEY", "LLM_API_KEY", "OPENAI_API_KEY"} {
		os.Unsetenv(k)
	}
	_, err := NewFromEnv()
	if !errors.Is(err, ErrLLMDisabled) {
		t.Fatalf("err = %v, want ErrLLMDisabled", err)
	}
}

func TestNewFromEnvGemini(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "k")
	c, err := NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	if _, ok := c.(*GeminiClient); !ok {
		t.Fatalf("client type = %T, want *GeminiClient", c)
	}
}

func TestRedact(t *testing.T) {
	in := "POST /v1beta/models/x:generateContent?key=SECRET123 HTTP/1.1\nAuthorization: Bearer sk-abc123\n"
	out := redact(in)
	for _, leak := range []string{"SECRET123", "sk-abc123"} {
		if strings.Contains(out, leak) {
			t.Errorf("redact leaked %q: %s", leak, out)
		}
	}
}
