package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	. "github.com/trezcool/educode/apps/api/echo"
	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/store"
	"github.com/trezcool/educode/core/user"
	emailsvc "github.com/trezcool/educode/services/email"
	logsvc "github.com/trezcool/educode/services/logger"
	"github.com/trezcool/educode/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	*Server
	conf   *core.Config
	store  *store.Store
	mailer *emailsvc.ConsoleServiceMock
	ai     *fakeAI
}

func setup(t *testing.T) testApp {
	st, mailer := testutil.NewStore(t)
	ai := &fakeAI{grade: core.GradeResult{Score: 77, Feedback: "Solid work"}}
	return testApp{
		Server: NewServer(st.Config(), logsvc.NewDiscardLogger(), st, ai),
		conf:   st.Config(),
		store:  st,
		mailer: mailer,
		ai:     ai,
	}
}

// fakeAI answers every AI call with fixed values, or with the fallbacks once err is set.
type fakeAI struct {
	grade core.GradeResult
	err   error
}

func (f *fakeAI) Chat(context.Context, string, []core.ChatTurn) (string, error) {
	if f.err != nil {
		return core.FallbackChatText, f.err
	}
	return "Hello from the tutor", nil
}

func (f *fakeAI) GradeCode(context.Context, string, string) (core.GradeResult, error) {
	if f.err != nil {
		return core.GradeResult{Feedback: core.FallbackGradeText}, f.err
	}
	return f.grade, nil
}

func (f *fakeAI) RunCode(_ context.Context, code, _ string) (core.ExecutionResult, error) {
	return core.NewExecutionResult("ran: " + code), nil
}

func (f *fakeAI) ClassifyIntent(context.Context, string) (core.NavigationIntent, error) {
	return core.NavigationIntent{Intent: core.IntentNavigate, Target: "profile"}, nil
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// do serves one request and returns the recorded response.
func (app testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func (app testApp) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			checkCodeAndData(t, tt, app.do(method, tt.path, tt.token, tt.body))
		})
	}
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

// checkCodeAndData compares the response body only when wantData is set.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
