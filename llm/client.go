// Package llm provides chat-completion clients used by the remote
// planning tier. All providers implement the same Client interface so
// the planner never cares which backend produced the plan text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Client is a minimal chat interface over an LLM backend.
type Client interface {
	// Chat sends a system prompt and a user prompt, returning the raw
	// model output. Implementations must respect ctx cancellation.
	Chat(ctx context.Context, system, user string) (string, error)
}

// ErrLLMDisabled is returned by NewFromEnv when no API key is
// configured. Callers treat this as "skip the remote tier", not as a
// failure.
var ErrLLMDisabled = errors.New("llm: no API key configured, remote planning disabled")

// ErrEmptyResponse is returned when a provider answered 2xx but the
// body carried no usable text.
var ErrEmptyResponse = errors.New("llm: empty response from model")

// StatusError reports a non-2xx HTTP status from a provider.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm: %s returned status %d: %s", e.Provider, e.Code, e.Body)
}

// IsRateLimited reports whether err is a provider 429.
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == 429
}

// IsRetryable reports whether err is worth retrying: transport
// failures, rate limits, server errors, and empty responses. Malformed
// requests (4xx other than 429) are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == 429 || se.Code >= 500
	}
	// No status at all means the request never completed.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// NewFromEnv builds a Client from environment variables.
//
// Provider selection via LLM_PROVIDER: "gemini" (native REST, the
// default), "googleai" (langchaingo), or "openai" (any
// OpenAI-compatible endpoint). The API key is resolved from
// GEMINI_API_KEY, then GOOGLE_API_KEY, then LLM_API_KEY; for openai
// OPENAI_API_KEY takes precedence. Returns ErrLLMDisabled when no key
// is found.
func NewFromEnv() (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	if provider == "" {
		provider = "gemini"
	}

	timeout := 30 * time.Second
	if v := os.Getenv("LLM_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	model := os.Getenv("LLM_MODEL")

	switch provider {
	case "gemini":
		key := firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY", "LLM_API_KEY")
		if key == "" {
			return nil, ErrLLMDisabled
		}
		if model == "" {
			model = defaultGeminiModel
		}
		return NewGeminiClient(key, model, timeout), nil
	case "googleai":
		key := firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY", "LLM_API_KEY")
		if key == "" {
			return nil, ErrLLMDisabled
		}
		if model == "" {
			model = defaultGeminiModel
		}
		return NewGoogleAIClient(context.Background(), key, model)
	case "openai":
		key := firstEnv("OPENAI_API_KEY", "LLM_API_KEY")
		if key == "" {
			return nil, ErrLLMDisabled
		}
		base := os.Getenv("OPENAI_BASE_URL")
		if base == "" {
			base = "https://api.openai.com/v1"
		}
		if model == "" {
			model = "gpt-4o-mini"
		}
		return NewOpenAIClient(base, key, model, timeout), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
