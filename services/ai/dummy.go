package aisvc

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/educode/core"
)

var errOffline = errors.Wrap(core.ErrExternalService, "AI is offline")

// keywords routing offline navigation requests
var offlineTargets = []struct {
	target   string
	keywords []string
}{
	{target: "teacher-portal", keywords: []string{"teacher", "grading", "create course"}},
	{target: "dashboard", keywords: []string{"dashboard", "my learning", "progress"}},
	{target: "profile", keywords: []string{"profile", "settings", "account"}},
	{target: "support", keywords: []string{"support", "help", "report"}},
	{target: "landing", keywords: []string{"home", "explore", "courses"}},
}

type dummyService struct {
	logger core.Logger
}

var _ core.AIService = (*dummyService)(nil)

// NewDummyService answers without any model; used when no AI API key is configured.
// Only navigation intents get a real answer, everything else is the fallback.
func NewDummyService(logger core.Logger) core.AIService {
	return &dummyService{logger: logger}
}

func (svc dummyService) Chat(_ context.Context, prompt string, _ []core.ChatTurn) (string, error) {
	svc.logger.Debug("offline AI chat", map[string]interface{}{"prompt": prompt})
	return core.FallbackChatText, errOffline
}

func (svc dummyService) GradeCode(context.Context, string, string) (core.GradeResult, error) {
	return core.GradeResult{Score: 0, Feedback: core.FallbackGradeText}, errOffline
}

func (svc dummyService) RunCode(context.Context, string, string) (core.ExecutionResult, error) {
	return core.ExecutionResult{Output: core.FallbackRunCodeText, Failed: true}, errOffline
}

// ClassifyIntent recognises explicit navigation requests by keyword.
func (svc dummyService) ClassifyIntent(_ context.Context, query string) (core.NavigationIntent, error) {
	q := strings.ToLower(query)
	if strings.Contains(q, "go to") || strings.Contains(q, "open") || strings.Contains(q, "take me") || strings.Contains(q, "show") {
		for _, t := range offlineTargets {
			for _, kw := range t.keywords {
				if strings.Contains(q, kw) {
					return core.NavigationIntent{Intent: core.IntentNavigate, Target: t.target}, nil
				}
			}
		}
	}
	return core.NavigationIntent{Intent: core.IntentChat}, nil
}
