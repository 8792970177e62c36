package aisvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/educode/core"
)

const emptyChatText = "I couldn't generate a response."

type (
	part struct {
		Text string `json:"text"`
	}

	content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}

	generationConfig struct {
		ResponseMimeType string      `json:"responseMimeType,omitempty"`
		ResponseSchema   interface{} `json:"responseSchema,omitempty"`
	}

	generateRequest struct {
		Contents         []content         `json:"contents"`
		GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
	}

	generateResponse struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
	}
)

var (
	gradeSchema = map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"score":    map[string]string{"type": "INTEGER"},
			"feedback": map[string]string{"type": "STRING"},
		},
		"required": []string{"score", "feedback"},
	}
	intentSchema = map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"intent": map[string]string{"type": "STRING"},
			"target": map[string]string{"type": "STRING"},
		},
	}
)

type geminiService struct {
	client  *rest.Client
	baseURL string
	model   string
	apiKey  string
	timeout time.Duration
	logger  core.Logger
}

var _ core.AIService = (*geminiService)(nil)

// NewGeminiService talks to the Gemini generateContent REST endpoint.
func NewGeminiService(conf *core.Config, logger core.Logger) core.AIService {
	return &geminiService{
		client:  &rest.Client{HTTPClient: &http.Client{}},
		baseURL: strings.TrimSuffix(conf.AI.BaseURL, "/"),
		model:   conf.AI.Model,
		apiKey:  conf.AI.APIKey,
		timeout: conf.AI.Timeout,
		logger:  logger,
	}
}

// generate sends one prompt and returns the text of the first candidate.
func (svc geminiService) generate(ctx context.Context, prompt string, genConf *generationConfig) (string, error) {
	if svc.apiKey == "" {
		return "", errors.Wrap(core.ErrExternalService, "missing AI API key")
	}
	if svc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, svc.timeout)
		defer cancel()
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: genConf,
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding AI request")
	}
	req := rest.Request{
		Method:  rest.Post,
		BaseURL: fmt.Sprintf("%s/models/%s:generateContent", svc.baseURL, svc.model),
		Headers: map[string]string{
			"Content-Type":   "application/json",
			"x-goog-api-key": svc.apiKey,
		},
		Body: body,
	}

	res, err := send(ctx, svc.client, req)
	if err != nil {
		return "", errors.Wrapf(core.ErrExternalService, "calling AI: %v", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return "", errors.Wrapf(core.ErrExternalService, "AI status: %d - body: %s", res.StatusCode, res.Body)
	}

	var gr generateResponse
	if err := json.Unmarshal([]byte(res.Body), &gr); err != nil {
		return "", errors.Wrapf(core.ErrExternalService, "decoding AI response: %v", err)
	}
	var text strings.Builder
	if len(gr.Candidates) > 0 {
		for _, p := range gr.Candidates[0].Content.Parts {
			text.WriteString(p.Text)
		}
	}
	return text.String(), nil
}

func (svc geminiService) Chat(ctx context.Context, prompt string, history []core.ChatTurn) (string, error) {
	text, err := svc.generate(ctx, chatPrompt(prompt, history), nil)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("AI chat: %v", err), err)
		return core.FallbackChatText, err
	}
	if strings.TrimSpace(text) == "" {
		return emptyChatText, nil
	}
	return text, nil
}

func (svc geminiService) GradeCode(ctx context.Context, code, task string) (core.GradeResult, error) {
	fallback := core.GradeResult{Score: 0, Feedback: core.FallbackGradeText}
	text, err := svc.generate(ctx, gradePrompt(code, task), &generationConfig{
		ResponseMimeType: "application/json",
		ResponseSchema:   gradeSchema,
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("AI grading: %v", err), err)
		return fallback, err
	}
	if strings.TrimSpace(text) == "" {
		return core.GradeResult{Score: 0, Feedback: core.FallbackParseText}, errors.Wrap(core.ErrExternalService, "empty AI grade")
	}
	var res core.GradeResult
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		svc.logger.Warn(fmt.Sprintf("AI grading: decoding %q: %v", text, err))
		return fallback, errors.Wrapf(core.ErrExternalService, "decoding AI grade: %v", err)
	}
	return res.Clamped(), nil
}

func (svc geminiService) RunCode(ctx context.Context, code, language string) (core.ExecutionResult, error) {
	text, err := svc.generate(ctx, runPrompt(code, language), nil)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("AI code run: %v", err), err)
		return core.ExecutionResult{Output: core.FallbackRunCodeText, Failed: true}, err
	}
	return core.NewExecutionResult(text), nil
}

func (svc geminiService) ClassifyIntent(ctx context.Context, query string) (core.NavigationIntent, error) {
	fallback := core.NavigationIntent{Intent: core.IntentChat}
	text, err := svc.generate(ctx, intentPrompt(query), &generationConfig{
		ResponseMimeType: "application/json",
		ResponseSchema:   intentSchema,
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("AI intent: %v", err), err)
		return fallback, err
	}
	if strings.TrimSpace(text) == "" {
		return fallback, nil
	}
	var intent core.NavigationIntent
	if err := json.Unmarshal([]byte(text), &intent); err != nil {
		return fallback, errors.Wrapf(core.ErrExternalService, "decoding AI intent: %v", err)
	}
	return core.NormalizeIntent(intent), nil
}

// send performs req bound to ctx, so the timeout and caller cancellation abort the call.
func send(ctx context.Context, client *rest.Client, req rest.Request) (*rest.Response, error) {
	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return nil, err
	}
	httpRes, err := client.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return rest.BuildResponse(httpRes)
}
