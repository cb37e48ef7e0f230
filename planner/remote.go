package planner

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/voxa-project/voxa-agent/appdb"
	"github.com/voxa-project/voxa-agent/llm"
	"github.com/voxa-project/voxa-agent/logger"
	"github.com/voxa-project/voxa-agent/resilience"
	"github.com/voxa-project/voxa-agent/types"
)

// PlanErrorKind classifies a remote planning failure. All kinds are
// non-fatal to the cascade.
type PlanErrorKind string

const (
	KindUnreachable PlanErrorKind = "unreachable"
	KindStatus      PlanErrorKind = "status"
	KindRateLimit   PlanErrorKind = "ratelimit"
	KindEmpty       PlanErrorKind = "empty"
	KindUnparseable PlanErrorKind = "unparseable"
)

// PlanError wraps a remote tier failure with its classification.
type PlanError struct {
	Kind PlanErrorKind
	Err  error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("remote planner: %s: %v", e.Kind, e.Err)
}

func (e *PlanError) Unwrap() error { return e.Err }

// RemotePlanner asks an LLM to translate a command into a plan. The
// call is guarded by a circuit breaker and a small retry budget so a
// dead or rate-limited service is skipped cheaply.
type RemotePlanner struct {
	client  llm.Client
	apps    *appdb.Directory
	breaker *resilience.CircuitBreaker
	retry   *resilience.RetryConfig
	log     *logger.Logger
	schema  *gojsonschema.Schema
}

// planSchema is the shape check applied to parsed remote output: a
// non-empty array of objects each carrying at least a string type.
const planSchemaJSON = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["type"],
    "properties": {
      "type": {"type": "string", "minLength": 1}
    }
  }
}`

func NewRemotePlanner(client llm.Client, apps *appdb.Directory) *RemotePlanner {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(planSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("planner: invalid plan schema: %v", err))
	}
	return &RemotePlanner{
		client:  client,
		apps:    apps,
		breaker: resilience.NewCircuitBreaker(3, 30*time.Second),
		retry: &resilience.RetryConfig{
			MaxAttempts:     2,
			InitialDelay:    500 * time.Millisecond,
			MaxDelay:        5 * time.Second,
			Multiplier:      2.0,
			RandomizeFactor: 0.2,
			RetryIf:         isRetryableKind,
		},
		log:    logger.New("planner.remote"),
		schema: schema,
	}
}

func isRetryableKind(err error) bool {
	var pe *PlanError
	if errors.As(err, &pe) {
		return pe.Kind == KindRateLimit || pe.Kind == KindUnreachable
	}
	return false
}

const systemPrompt = "You are Voxa, an Android automation expert. Always output valid JSON arrays."

// Plan submits the command to the remote service and parses the
// returned JSON array. Every failure comes back as a *PlanError.
func (rp *RemotePlanner) Plan(ctx context.Context, command string) (types.Plan, error) {
	if rp.client == nil {
		return nil, &PlanError{Kind: KindUnreachable, Err: llm.ErrLLMDisabled}
	}

	prompt := rp.buildPrompt(command)

	var plan types.Plan
	err := rp.breaker.Execute(func() error {
		return resilience.RetryWithConfig(ctx, rp.retry, func() error {
			raw, err := rp.client.Chat(ctx, systemPrompt, prompt)
			if err != nil {
				return classifyChatError(err)
			}
			p, perr := rp.parseResponse(raw)
			if perr != nil {
				return perr
			}
			plan = p
			return nil
		})
	})
	if err != nil {
		var pe *PlanError
		if errors.As(err, &pe) {
			return nil, pe
		}
		return nil, &PlanError{Kind: KindUnreachable, Err: err}
	}

	rp.log.Info("remote planner produced %d actions", len(plan))
	return plan, nil
}

func classifyChatError(err error) *PlanError {
	switch {
	case llm.IsRateLimited(err):
		return &PlanError{Kind: KindRateLimit, Err: err}
	case errors.Is(err, llm.ErrEmptyResponse):
		return &PlanError{Kind: KindEmpty, Err: err}
	default:
		var se *llm.StatusError
		if errors.As(err, &se) {
			return &PlanError{Kind: KindStatus, Err: err}
		}
		return &PlanError{Kind: KindUnreachable, Err: err}
	}
}

func (rp *RemotePlanner) buildPrompt(command string) string {
	entries := rp.apps.Entries()
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var apps strings.Builder
	for _, name := range names {
		info := entries[name]
		fmt.Fprintf(&apps, "- %s (aliases: %s) -> %s\n", name, strings.Join(info.Aliases, ", "), info.PackageName)
	}

	return fmt.Sprintf(`Convert the user's natural language command into a sequence of JSON actions.

COMMAND: %q

CRITICAL INSTRUCTIONS:
1. Return ONLY a valid JSON array of action objects
2. No explanations, no markdown, no additional text
3. Use EXACTLY the action types defined below
4. Always include appropriate delays (500-3000ms)
5. Add wait actions between major operations
6. Validate all package names against the provided database
7. For messaging apps, include search and select contact steps

ACTION TYPES & REQUIRED FIELDS:
- open_app: { "type": "open_app", "packageName": "com.example.app", "delay": 2000 }
- click: { "type": "click", "target": "Button text", "delay": 1000 }
- type: { "type": "type", "text": "text to type", "delay": 1500 }
- send: { "type": "send", "delay": 500 }
- search: { "type": "search", "text": "search query", "delay": 1000 }
- call: { "type": "call", "phoneNumber": "+1234567890", "delay": 2000 }
- message: { "type": "message", "contactName": "John", "text": "Hello", "delay": 1000 }
- wait: { "type": "wait", "delay": 1000 }
- back: { "type": "back", "delay": 500 }
- home: { "type": "home", "delay": 500 }

COMMON APP PACKAGE NAMES:
%s
Now generate actions for: %q`, command, apps.String(), command)
}

var (
	jsonFenceRe = regexp.MustCompile("```json\\s*|```\\s*")
	jsonSpanRe  = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)
)

// parseResponse turns raw model output into a plan: strip markdown
// fences, try a direct decode, then fall back to extracting the first
// bracketed object-array span.
func (rp *RemotePlanner) parseResponse(raw string) (types.Plan, *PlanError) {
	clean := strings.TrimSpace(jsonFenceRe.ReplaceAllString(raw, ""))
	if clean == "" {
		return nil, &PlanError{Kind: KindEmpty, Err: errors.New("blank response body")}
	}

	if plan, err := rp.decodeChecked(clean); err == nil {
		return plan, nil
	}

	span := jsonSpanRe.FindString(clean)
	if span == "" {
		return nil, &PlanError{Kind: KindUnparseable, Err: fmt.Errorf("no JSON array in response: %s", truncateForLog(clean))}
	}
	plan, err := rp.decodeChecked(span)
	if err != nil {
		return nil, &PlanError{Kind: KindUnparseable, Err: err}
	}
	return plan, nil
}

func (rp *RemotePlanner) decodeChecked(text string) (types.Plan, error) {
	result, err := rp.schema.Validate(gojsonschema.NewStringLoader(text))
	if err != nil {
		return nil, fmt.Errorf("schema check: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("response violates plan schema: %v", result.Errors())
	}

	plan, err := types.DecodePlan([]byte(text))
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		return nil, errors.New("decoded plan is empty")
	}
	return plan, nil
}

func truncateForLog(s string) string {
	if len(s) > 256 {
		return s[:256] + "..."
	}
	return s
}
