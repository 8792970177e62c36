package core

import (
	"context"
	"strings"
)

// Navigation intents & targets understood by the frontend.
const (
	IntentNavigate = "navigate"
	IntentChat     = "chat"
)

var NavigationTargets = []string{"dashboard", "landing", "profile", "support", "teacher-portal"}

// Fallbacks returned by an AIService whenever the upstream model cannot be reached.
const (
	FallbackChatText    = "Sorry, I am having trouble connecting to the brain server right now. Please check your API Key."
	FallbackGradeText   = "Could not grade automatically at this time."
	FallbackParseText   = "AI Parsing Error"
	FallbackRunCodeText = "Error executing code via AI Simulator."
)

type (
	ChatTurn struct {
		Role string `json:"role"` // user | model
		Text string `json:"text"`
	}

	GradeResult struct {
		Score    int    `json:"score"` // 0-100
		Feedback string `json:"feedback"`
	}

	ExecutionResult struct {
		Output string `json:"output"`
		Failed bool   `json:"failed"`
	}

	NavigationIntent struct {
		Intent string `json:"intent"`
		Target string `json:"target,omitempty"`
	}

	// AIService is the opaque generative-AI collaborator.
	// Every method always returns a usable value: on failure it is the fixed fallback and the
	// returned error wraps ErrExternalService. Callers that only render may ignore the error.
	AIService interface {
		Chat(ctx context.Context, prompt string, history []ChatTurn) (string, error)
		GradeCode(ctx context.Context, code, task string) (GradeResult, error)
		RunCode(ctx context.Context, code, language string) (ExecutionResult, error)
		ClassifyIntent(ctx context.Context, query string) (NavigationIntent, error)
	}
)

// Clamped returns r with its score bounded to 0-100.
func (r GradeResult) Clamped() GradeResult {
	switch {
	case r.Score < 0:
		r.Score = 0
	case r.Score > 100:
		r.Score = 100
	}
	return r
}

// IsNavigationTarget reports whether target is a known frontend view.
func IsNavigationTarget(target string) bool {
	for _, t := range NavigationTargets {
		if t == target {
			return true
		}
	}
	return false
}

// NewExecutionResult wraps simulated program output. Output mentioning an error or an exception
// marks the run as failed.
func NewExecutionResult(output string) ExecutionResult {
	lower := strings.ToLower(output)
	return ExecutionResult{
		Output: output,
		Failed: strings.Contains(lower, "error") || strings.Contains(lower, "exception"),
	}
}

// NormalizeIntent keeps navigation to known targets only; anything else is a chat intent.
func NormalizeIntent(in NavigationIntent) NavigationIntent {
	if in.Intent == IntentNavigate && IsNavigationTarget(in.Target) {
		return in
	}
	return NavigationIntent{Intent: IntentChat}
}
