package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	echoapi "github.com/trezcool/educode/apps/api/echo"
)

// apiClient drives the EduCode API on behalf of an operator.
type apiClient struct {
	client  *rest.Client
	baseURL string
}

func newAPIClient(baseURL string, httpClient *http.Client) *apiClient {
	return &apiClient{
		client:  &rest.Client{HTTPClient: httpClient},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// apiError is a non-2xx answer of the API.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	var msg struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &msg); err == nil && msg.Error != "" {
		return fmt.Sprintf("%d: %s", e.StatusCode, msg.Error)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// do sends in as JSON (when not nil) and decodes the answer into out (when not nil).
func (c *apiClient) do(ctx context.Context, method rest.Method, path, token string, query map[string]string, in, out interface{}) error {
	req := rest.Request{
		Method:      method,
		BaseURL:     c.baseURL + path,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: query,
	}
	if token != "" {
		req.Headers["Authorization"] = "Bearer " + token
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		req.Headers["Content-Type"] = "application/json"
		req.Body = body
	}

	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	httpRes, err := c.client.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	res, err := rest.BuildResponse(httpRes)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return &apiError{StatusCode: res.StatusCode, Body: res.Body}
	}
	if out != nil {
		if err := json.Unmarshal([]byte(res.Body), out); err != nil {
			return errors.Wrap(err, "decoding response")
		}
	}
	return nil
}

func (c *apiClient) login(ctx context.Context, email, pwd string) (echoapi.AuthResponse, error) {
	var res echoapi.AuthResponse
	err := c.do(ctx, rest.Post, "/v1/users/login", "", nil, echoapi.LoginRequest{Email: email, Password: pwd}, &res)
	return res, err
}
