package aisvc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/educode/core"
	logsvc "github.com/trezcool/educode/services/logger"
)

// fakeGemini answers every generateContent call with reply(prompt).
func fakeGemini(t *testing.T, status int, reply func(req generateRequest) string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= http.StatusBadRequest {
			_, _ = fmt.Fprint(w, `{"error": {"message": "boom"}}`)
			return
		}
		res := generateResponse{}
		res.Candidates = append(res.Candidates, struct {
			Content content `json:"content"`
		}{Content: content{Role: "model", Parts: []part{{Text: reply(req)}}}})
		_ = json.NewEncoder(w).Encode(res)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(baseURL string) core.AIService {
	conf := core.NewTestConfig()
	conf.AI.BaseURL = baseURL + "/"
	conf.AI.Model = "gemini-test"
	conf.AI.APIKey = "secret"
	conf.AI.Timeout = time.Second
	return NewGeminiService(conf, logsvc.NewDiscardLogger())
}

func promptOf(req generateRequest) string {
	if len(req.Contents) == 0 || len(req.Contents[0].Parts) == 0 {
		return ""
	}
	return req.Contents[0].Parts[0].Text
}

func TestGeminiService_Chat(t *testing.T) {
	var gotPrompt string
	srv := fakeGemini(t, http.StatusOK, func(req generateRequest) string {
		gotPrompt = promptOf(req)
		assert.Nil(t, req.GenerationConfig)
		return "Use a for loop."
	})
	svc := newTestService(srv.URL)

	history := []core.ChatTurn{{Role: "user", Text: "hi"}, {Role: "model", Text: "hello"}}
	text, err := svc.Chat(context.Background(), "How do I iterate?", history)
	require.NoError(t, err)
	assert.Equal(t, "Use a for loop.", text)
	assert.Contains(t, gotPrompt, "User: hi\nAI: hello\n")
	assert.Contains(t, gotPrompt, "Current User Question: How do I iterate?")
}

func TestGeminiService_Chat_empty(t *testing.T) {
	srv := fakeGemini(t, http.StatusOK, func(generateRequest) string { return "  " })
	text, err := newTestService(srv.URL).Chat(context.Background(), "?", nil)
	assert.NoError(t, err)
	assert.Equal(t, emptyChatText, text)
}

func TestGeminiService_failures(t *testing.T) {
	srv := fakeGemini(t, http.StatusInternalServerError, nil)
	svc := newTestService(srv.URL)
	ctx := context.Background()

	text, err := svc.Chat(ctx, "hi", nil)
	assert.True(t, errors.Is(err, core.ErrExternalService))
	assert.Equal(t, core.FallbackChatText, text)

	grade, err := svc.GradeCode(ctx, "print(1)", "print one")
	assert.True(t, errors.Is(err, core.ErrExternalService))
	assert.Equal(t, core.GradeResult{Score: 0, Feedback: core.FallbackGradeText}, grade)

	run, err := svc.RunCode(ctx, "print(1)", "python")
	assert.True(t, errors.Is(err, core.ErrExternalService))
	assert.Equal(t, core.ExecutionResult{Output: core.FallbackRunCodeText, Failed: true}, run)

	intent, err := svc.ClassifyIntent(ctx, "go to my profile")
	assert.True(t, errors.Is(err, core.ErrExternalService))
	assert.Equal(t, core.NavigationIntent{Intent: core.IntentChat}, intent)

	t.Run("unreachable", func(t *testing.T) {
		svc := newTestService("http://127.0.0.1:1")
		_, err := svc.Chat(ctx, "hi", nil)
		assert.True(t, errors.Is(err, core.ErrExternalService))
	})

	t.Run("missing key", func(t *testing.T) {
		conf := core.NewTestConfig()
		conf.AI.APIKey = ""
		_, err := NewGeminiService(conf, logsvc.NewDiscardLogger()).Chat(ctx, "hi", nil)
		assert.True(t, errors.Is(err, core.ErrExternalService))
	})

	t.Run("cancelled", func(t *testing.T) {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
		}))
		defer slow.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := newTestService(slow.URL).GradeCode(ctx, "x", "y")
		assert.True(t, errors.Is(err, core.ErrExternalService))
	})
}

func TestGeminiService_GradeCode(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    core.GradeResult
		wantErr bool
	}{
		{name: "valid", reply: `{"score": 87, "feedback": "Nice"}`, want: core.GradeResult{Score: 87, Feedback: "Nice"}},
		{name: "score above range", reply: `{"score": 140, "feedback": "Wow"}`, want: core.GradeResult{Score: 100, Feedback: "Wow"}},
		{name: "negative score", reply: `{"score": -5, "feedback": "Broken"}`, want: core.GradeResult{Score: 0, Feedback: "Broken"}},
		{name: "garbage", reply: `not json`, want: core.GradeResult{Score: 0, Feedback: core.FallbackGradeText}, wantErr: true},
		{name: "empty", reply: ``, want: core.GradeResult{Score: 0, Feedback: core.FallbackParseText}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeGemini(t, http.StatusOK, func(req generateRequest) string {
				if assert.NotNil(t, req.GenerationConfig) {
					assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
				}
				assert.Contains(t, promptOf(req), "Task: Sum a list")
				return tt.reply
			})
			got, err := newTestService(srv.URL).GradeCode(context.Background(), "return sum(xs)", "Sum a list")
			assert.Equal(t, tt.wantErr, err != nil, "GradeCode() error = %v", err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeminiService_RunCode(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantFailed bool
	}{
		{name: "output", reply: "3\n", wantFailed: false},
		{name: "syntax error", reply: "SyntaxError: invalid syntax", wantFailed: true},
		{name: "exception", reply: "Traceback: ZeroDivision Exception", wantFailed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeGemini(t, http.StatusOK, func(req generateRequest) string {
				assert.True(t, strings.HasPrefix(promptOf(req), "Act as a python interpreter."))
				return tt.reply
			})
			got, err := newTestService(srv.URL).RunCode(context.Background(), "print(1+2)", "python")
			require.NoError(t, err)
			assert.Equal(t, tt.reply, got.Output)
			assert.Equal(t, tt.wantFailed, got.Failed)
		})
	}
}

func TestGeminiService_ClassifyIntent(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  core.NavigationIntent
	}{
		{name: "navigate", reply: `{"intent": "navigate", "target": "profile"}`, want: core.NavigationIntent{Intent: core.IntentNavigate, Target: "profile"}},
		{name: "unknown target", reply: `{"intent": "navigate", "target": "admin-panel"}`, want: core.NavigationIntent{Intent: core.IntentChat}},
		{name: "chat", reply: `{"intent": "chat"}`, want: core.NavigationIntent{Intent: core.IntentChat}},
		{name: "empty", reply: ``, want: core.NavigationIntent{Intent: core.IntentChat}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeGemini(t, http.StatusOK, func(generateRequest) string { return tt.reply })
			got, err := newTestService(srv.URL).ClassifyIntent(context.Background(), "take me to settings")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDummyService(t *testing.T) {
	svc := NewDummyService(logsvc.NewDiscardLogger())
	ctx := context.Background()

	_, err := svc.GradeCode(ctx, "x", "y")
	assert.True(t, errors.Is(err, core.ErrExternalService))
	text, err := svc.Chat(ctx, "hi", nil)
	assert.True(t, errors.Is(err, core.ErrExternalService))
	assert.Equal(t, core.FallbackChatText, text)

	tests := []struct {
		query string
		want  core.NavigationIntent
	}{
		{query: "Take me to my profile", want: core.NavigationIntent{Intent: core.IntentNavigate, Target: "profile"}},
		{query: "open the teacher portal", want: core.NavigationIntent{Intent: core.IntentNavigate, Target: "teacher-portal"}},
		{query: "what is a goroutine?", want: core.NavigationIntent{Intent: core.IntentChat}},
	}
	for _, tt := range tests {
		got, err := svc.ClassifyIntent(ctx, tt.query)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.query)
	}
}
