/*
Copyright 2026 the E-Pasar Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package harness_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/epasar/marketplace-e2e/pkg/harness"
	"github.com/epasar/marketplace-e2e/pkg/harness/mock"

	"k8s.io/utils/ptr"
)

const (
	baseURL = "http://marketplace.test"
	runID   = "run-1"
)

var errConnectionRefused = errors.New("connection refused")

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header: http.Header{
			"Content-Type": []string{"application/json"},
		},
		Body: io.NopCloser(strings.NewReader(body)),
	}
}

func newRunner(t *testing.T, client harness.Doer, validator harness.ResponseValidator) (*harness.Runner, *harness.ResultLog) {
	t.Helper()

	log := harness.NewResultLog(nil, false)

	runner := harness.NewRunner(baseURL+"/", client, log, harness.RunnerOptions{
		RunID:     runID,
		Validator: validator,
	})

	return runner, log
}

// TestRunPassesOnExpectedStatus ensures a matching status passes and the
// request carries the stored token and trace headers.
func TestRunPassesOnExpectedStatus(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()

	doer := mock.NewMockDoer(c)

	doer.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodGet, req.Method)
		require.Equal(t, baseURL+"/products", req.URL.String())
		require.Equal(t, "Bearer stored", req.Header.Get("Authorization"))
		require.Equal(t, "application/json", req.Header.Get("Accept"))
		require.Empty(t, req.Header.Get("Content-Type"))
		require.Regexp(t, `^00-[0-9a-f]{32}-[0-9a-f]{16}-01$`, req.Header.Get("Traceparent"))
		require.Equal(t, "e2e-automation="+runID, req.Header.Get("Tracestate"))

		return response(http.StatusOK, `{"status":200,"message":"ok","data":[]}`), nil
	})

	runner, log := newRunner(t, doer, nil)
	runner.SetAuthToken("stored")

	ok, payload := runner.Run(t.Context(), harness.Request{
		Name:           "List Products",
		Category:       "catalog",
		Method:         http.MethodGet,
		Path:           "/products",
		ExpectedStatus: http.StatusOK,
	})

	require.True(t, ok)
	require.Equal(t, "ok", payload["message"])

	results := log.Results()
	require.Len(t, results, 1)
	require.Equal(t, harness.Passed, results[0].Outcome)
	require.Equal(t, "Status: 200", results[0].Message)
	require.Equal(t, harness.Category("catalog"), results[0].Category)

	summary := log.Summary()
	require.Equal(t, 1, summary.Total)
	require.Equal(t, 1, summary.Passed)
}

// TestRunURLJoining ensures slashes are normalized between the base URL
// and the path.
func TestRunURLJoining(t *testing.T) {
	t.Parallel()

	runner := harness.NewRunner("http://marketplace.test/api/", nil, harness.NewResultLog(nil, false), harness.RunnerOptions{})

	require.Equal(t, "http://marketplace.test/api/products", runner.URL("products"))
	require.Equal(t, "http://marketplace.test/api/products", runner.URL("/products"))
}

// TestRunStatusMismatch ensures a wrong status fails with a bounded snippet
// of the response, and a non JSON body is kept as raw text.
func TestRunStatusMismatch(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()

	body := strings.Repeat("x", 300)

	doer := mock.NewMockDoer(c)
	doer.EXPECT().Do(gomock.Any()).Return(response(http.StatusNotFound, body), nil)

	runner, log := newRunner(t, doer, nil)

	ok, payload := runner.Run(t.Context(), harness.Request{
		Name:           "Get Product",
		Method:         http.MethodGet,
		Path:           "/products/product/1",
		ExpectedStatus: http.StatusOK,
	})

	require.False(t, ok)
	require.Equal(t, harness.Payload{harness.RawResponseKey: body}, payload)

	results := log.Results()
	require.Len(t, results, 1)
	require.Equal(t, harness.Failed, results[0].Outcome)
	require.Equal(t, "expected 200, got 404. Response: "+strings.Repeat("x", 200), results[0].Message)

	summary := log.Summary()
	require.Equal(t, 1, summary.Total)
	require.Equal(t, 0, summary.Passed)
	require.Len(t, summary.Failures, 1)
}

// TestRunExpectedErrorStatus ensures an expected error status is a pass.
func TestRunExpectedErrorStatus(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()

	doer := mock.NewMockDoer(c)
	doer.EXPECT().Do(gomock.Any()).Return(response(http.StatusNotFound, `{"status":404,"message":"No items in cart"}`), nil)

	runner, log := newRunner(t, doer, nil)

	ok, payload := runner.Run(t.Context(), harness.Request{
		Name:           "View Cart",
		Method:         http.MethodGet,
		Path:           "/cart/view",
		ExpectedStatus: http.StatusNotFound,
	})

	require.True(t, ok)
	require.Equal(t, "No items in cart", payload["message"])
	require.Equal(t, "Status: 404", log.Results()[0].Message)
}

// TestRunTransportError ensures transport failures are recorded rather
// than returned.
func TestRunTransportError(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()

	doer := mock.NewMockDoer(c)
	doer.EXPECT().Do(gomock.Any()).Return(nil, errConnectionRefused)

	runner, log := newRunner(t, doer, nil)

	ok, payload := runner.Run(t.Context(), harness.Request{
		Name:           "List Products",
		Method:         http.MethodGet,
		Path:           "/products",
		ExpectedStatus: http.StatusOK,
	})

	require.False(t, ok)
	require.Empty(t, payload)

	results := log.Results()
	require.Len(t, results, 1)
	require.Equal(t, harness.Failed, results[0].Outcome)
	require.Equal(t, "request failed: connection refused", results[0].Message)
}

// TestRunTimeout ensures a slow server is reported as a failed request.
func TestRunTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	log := harness.NewResultLog(nil, false)
	runner := harness.NewRunner(server.URL, harness.NewHTTPClient(50*time.Millisecond), log, harness.RunnerOptions{})

	ok, payload := runner.Run(t.Context(), harness.Request{
		Name:           "Slow",
		Method:         http.MethodGet,
		Path:           "/slow",
		ExpectedStatus: http.StatusOK,
	})

	require.False(t, ok)
	require.Empty(t, payload)
	require.True(t, strings.HasPrefix(log.Results()[0].Message, "request failed: "))
}

// TestRunCancelled ensures a cancelled context is reported as a failed
// request.
func TestRunCancelled(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	log := harness.NewResultLog(nil, false)
	runner := harness.NewRunner(server.URL, server.Client(), log, harness.RunnerOptions{})

	ok, _ := runner.Run(ctx, harness.Request{
		Name:           "Cancelled",
		Method:         http.MethodGet,
		Path:           "/",
		ExpectedStatus: http.StatusOK,
	})

	require.False(t, ok)
	require.Contains(t, log.Results()[0].Message, "request failed: ")
	require.Contains(t, log.Results()[0].Message, context.Canceled.Error())
}

// TestRunTokenOverride ensures an explicit token replaces the stored one
// and an empty override sends no credentials.
func TestRunTokenOverride(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()

	var headers []string

	doer := mock.NewMockDoer(c)
	doer.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		headers = append(headers, req.Header.Get("Authorization"))

		return response(http.StatusOK, `{}`), nil
	}).Times(3)

	runner, _ := newRunner(t, doer, nil)
	runner.SetAuthToken("stored")

	for _, token := range []*string{nil, ptr.To("override"), ptr.To("")} {
		runner.Run(t.Context(), harness.Request{
			Name:           "Profile",
			Method:         http.MethodGet,
			Path:           "/profile",
			Token:          token,
			ExpectedStatus: http.StatusOK,
		})
	}

	require.Equal(t, []string{"Bearer stored", "Bearer override", ""}, headers)
}

// TestRunJSONBody ensures bodies are sent as JSON and headers may be
// overridden, except for the content type of the encoded body.
func TestRunJSONBody(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()

	doer := mock.NewMockDoer(c)
	doer.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "application/json", req.Header.Get("Content-Type"))
		require.Equal(t, "custom", req.Header.Get("X-Test"))

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"username":"buyer_test","password":"buyer123"}`, string(body))

		return response(http.StatusOK, `{"data":{"token":"t"}}`), nil
	})

	runner, _ := newRunner(t, doer, nil)

	ok, payload := runner.Run(t.Context(), harness.Request{
		Name:   "Login",
		Method: http.MethodPost,
		Path:   "/login",
		Body: map[string]string{
			"username": "buyer_test",
			"password": "buyer123",
		},
		Headers: map[string]string{
			"X-Test":       "custom",
			"Content-Type": "text/plain",
		},
		ExpectedStatus: http.StatusOK,
	})

	require.True(t, ok)
	require.Equal(t, map[string]any{"token": "t"}, payload["data"])
}

// TestRunExpectedContentType ensures a response of the wrong media type
// fails even when the status matches.
func TestRunExpectedContentType(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()

	image := &http.Response{
		StatusCode: http.StatusOK,
		Header: http.Header{
			"Content-Type": []string{"image/jpeg"},
		},
		Body: io.NopCloser(strings.NewReader("\xff\xd8")),
	}

	doer := mock.NewMockDoer(c)
	gomock.InOrder(
		doer.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "image/*", req.Header.Get("Accept"))

			return image, nil
		}),
		doer.EXPECT().Do(gomock.Any()).Return(response(http.StatusOK, `{"status":200}`), nil),
	)

	runner, log := newRunner(t, doer, nil)

	for range 2 {
		runner.Run(t.Context(), harness.Request{
			Name:                "Product Image",
			Method:              http.MethodGet,
			Path:                "/products/image/1",
			Headers:             map[string]string{"Accept": "image/*"},
			ExpectedStatus:      http.StatusOK,
			ExpectedContentType: "image/",
		})
	}

	results := log.Results()
	require.Len(t, results, 2)
	require.Equal(t, harness.Passed, results[0].Outcome)
	require.Equal(t, "Status: 200, Content-Type: image/jpeg", results[0].Message)
	require.Equal(t, harness.Failed, results[1].Outcome)
	require.Equal(t, `expected content type image/, got "application/json"`, results[1].Message)
}

// TestRunMultipart ensures files are sent as a multipart form, never with
// a JSON content type.
func TestRunMultipart(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()

	doer := mock.NewMockDoer(c)
	doer.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		require.True(t, strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		require.NoError(t, req.ParseMultipartForm(1<<20))

		require.Equal(t, "5", req.FormValue("conversationId"))
		require.Equal(t, "Test Report", req.FormValue("title"))
		require.NotContains(t, req.MultipartForm.Value, "note")

		files := req.MultipartForm.File["attachments"]
		require.Len(t, files, 1)
		require.Equal(t, "report.txt", files[0].Filename)
		require.Equal(t, "text/plain", files[0].Header.Get("Content-Type"))

		f, err := files[0].Open()
		require.NoError(t, err)

		defer f.Close()

		content, err := io.ReadAll(f)
		require.NoError(t, err)
		require.Equal(t, "evidence", string(content))

		return response(http.StatusOK, `{}`), nil
	})

	runner, _ := newRunner(t, doer, nil)

	ok, _ := runner.Run(t.Context(), harness.Request{
		Name:   "Report",
		Method: http.MethodPost,
		Path:   "/communication/report-conversation",
		Body: map[string]any{
			"conversationId": 5,
			"title":          "Test Report",
			"note":           nil,
		},
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Files: []harness.File{
			{
				Field:       "attachments",
				Name:        "report.txt",
				ContentType: "text/plain",
				Content:     []byte("evidence"),
			},
		},
		ExpectedStatus: http.StatusOK,
	})

	require.True(t, ok)
}

// TestRunUnsupportedMethod ensures an unsupported method is recorded as a
// failure without touching the network.
func TestRunUnsupportedMethod(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()

	runner, log := newRunner(t, mock.NewMockDoer(c), nil)

	ok, payload := runner.Run(t.Context(), harness.Request{
		Name:           "Delete",
		Method:         http.MethodDelete,
		Path:           "/cart/clear",
		ExpectedStatus: http.StatusOK,
	})

	require.False(t, ok)
	require.Empty(t, payload)
	require.Contains(t, log.Results()[0].Message, harness.ErrUnsupportedMethod.Error())
	require.Equal(t, 1, log.Summary().Total)
}

// TestRunContractViolation ensures contract problems are attached to the
// result without changing the verdict.
func TestRunContractViolation(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()

	doer := mock.NewMockDoer(c)
	doer.EXPECT().Do(gomock.Any()).Return(response(http.StatusOK, `{"data":{}}`), nil)

	validator := mock.NewMockResponseValidator(c)
	validator.EXPECT().Validate(gomock.Any(), gomock.Any(), http.StatusOK, gomock.Any(), []byte(`{"data":{}}`)).Return(errors.New("missing token"))

	runner, log := newRunner(t, doer, validator)

	ok, _ := runner.Run(t.Context(), harness.Request{
		Name:           "Login",
		Method:         http.MethodPost,
		Path:           "/login",
		ExpectedStatus: http.StatusOK,
	})

	require.True(t, ok)

	results := log.Results()
	require.Equal(t, harness.Passed, results[0].Outcome)
	require.Equal(t, []string{"missing token"}, results[0].ContractErrors)
	require.Len(t, log.Summary().ContractViolations, 1)
}
