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

package harness

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/epasar/marketplace-e2e/pkg/constants"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// snippetLength bounds how much of an unexpected response body is quoted
// in a failure message.
const snippetLength = 200

var (
	ErrUnsupportedMethod = errors.New("unsupported method")
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Doer sends HTTP requests, *http.Client satisfies it.
//
//go:generate mockgen -source=runner.go -destination=mock/interfaces.go -package=mock
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResponseValidator checks a response against an API contract.
type ResponseValidator interface {
	Validate(ctx context.Context, req *http.Request, status int, header http.Header, body []byte) error
}

// File is a multipart attachment.
type File struct {
	// Field is the form field name.
	Field       string
	Name        string
	ContentType string
	Content     []byte
}

// Request describes a single API test.
type Request struct {
	// Name identifies the test in the transcript.
	Name     string
	Category Category

	// Method is one of GET, POST or PATCH.
	Method string

	// Path is relative to the base URL.
	Path string

	ExpectedStatus int

	// ExpectedContentType, if set, is a prefix the response media type
	// must carry, e.g. "image/".
	ExpectedContentType string

	// Body is encoded as JSON, or as form fields when Files are present.
	Body any

	// Headers are applied after the defaults.
	Headers map[string]string

	// Token overrides the stored bearer token, an empty string sends
	// the request unauthenticated.
	Token *string

	Files []File
}

// RunnerOptions tune a Runner.
type RunnerOptions struct {
	// RunID is sent in the trace state so a run can be found in server logs.
	RunID string

	LogRequests  bool
	LogResponses bool

	// Validator, if set, checks every response against a contract.
	Validator ResponseValidator
}

// Runner performs requests and records their outcome.
type Runner struct {
	baseURL   string
	client    Doer
	log       *ResultLog
	authToken string
	options   RunnerOptions
}

// NewRunner returns a runner that records into log.
func NewRunner(baseURL string, client Doer, log *ResultLog, options RunnerOptions) *Runner {
	return &Runner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		log:     log,
		options: options,
	}
}

// NewHTTPClient returns a client that gives up on a request after timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// SetAuthToken sets the bearer token sent when a request has no override.
func (r *Runner) SetAuthToken(token string) {
	r.authToken = token
}

// URL returns the absolute URL for a path.
func (r *Runner) URL(path string) string {
	return r.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// Run performs the request and records exactly one result.  It never
// returns an error, transport failures are recorded as failed tests and
// yield an empty payload.
//
//nolint:cyclop
func (r *Runner) Run(ctx context.Context, request Request) (bool, Payload) {
	if !supportedMethod(request.Method) {
		r.fail(request, fmt.Sprintf("%v: %q", ErrUnsupportedMethod, request.Method))
		return false, Payload{}
	}

	req, err := r.newRequest(ctx, request)
	if err != nil {
		r.fail(request, fmt.Sprintf("building request: %v", err))
		return false, Payload{}
	}

	traceParent, traceID := newTraceParent()
	req.Header.Set("Traceparent", traceParent)
	req.Header.Set("Tracestate", constants.TraceState+"="+r.options.RunID)

	log := log.FromContext(ctx).WithValues("method", request.Method, "path", request.Path, "traceID", traceID)

	start := time.Now()
	resp, err := r.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		log.Error(err, "http request failed", "duration", duration)
		r.fail(request, fmt.Sprintf("request failed: %v", err))

		return false, Payload{}
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error(err, "reading response body", "status", resp.StatusCode)
		r.fail(request, fmt.Sprintf("reading response body: %v", err))

		return false, Payload{}
	}

	if r.options.LogRequests {
		log.Info("request", "status", resp.StatusCode, "duration", duration)
	}

	if r.options.LogResponses && len(body) > 0 {
		log.Info("response body", "body", string(body))
	}

	payload := parsePayload(body)

	result := TestResult{
		Name:     request.Name,
		Category: request.Category,
		Outcome:  Passed,
		Message:  fmt.Sprintf("Status: %d", resp.StatusCode),
		Payload:  payload,
	}

	if resp.StatusCode != request.ExpectedStatus {
		log.Info("unexpected status", "expected", request.ExpectedStatus, "got", resp.StatusCode)

		result.Outcome = Failed
		result.Message = fmt.Sprintf("expected %d, got %d. Response: %s", request.ExpectedStatus, resp.StatusCode, truncate(string(body), snippetLength))
	} else if request.ExpectedContentType != "" {
		contentType := resp.Header.Get("Content-Type")

		if strings.HasPrefix(contentType, request.ExpectedContentType) {
			result.Message += ", Content-Type: " + contentType
		} else {
			result.Outcome = Failed
			result.Message = fmt.Sprintf("expected content type %s, got %q", request.ExpectedContentType, contentType)
		}
	}

	if r.options.Validator != nil {
		if err := r.options.Validator.Validate(ctx, req, resp.StatusCode, resp.Header, body); err != nil {
			log.Info("contract violation", "error", err.Error())

			result.ContractErrors = append(result.ContractErrors, err.Error())
		}
	}

	r.log.Record(result)

	return result.Outcome == Passed, payload
}

// newTraceParent starts a sampled W3C trace for one request so a failure
// can be found in the server logs.  It returns the header value and the
// trace ID it carries.
func newTraceParent() (header, traceID string) {
	var id [24]byte

	_, _ = rand.Read(id[:])

	traceID = hex.EncodeToString(id[:16])

	return "00-" + traceID + "-" + hex.EncodeToString(id[16:]) + "-01", traceID
}

func (r *Runner) fail(request Request, message string) {
	r.log.Record(TestResult{
		Name:     request.Name,
		Category: request.Category,
		Outcome:  Failed,
		Message:  message,
	})
}

func supportedMethod(method string) bool {
	return slices.Contains([]string{http.MethodGet, http.MethodPost, http.MethodPatch}, method)
}

// newRequest encodes the body and applies headers.
func (r *Runner) newRequest(ctx context.Context, request Request) (*http.Request, error) {
	var (
		body        io.Reader
		contentType string
	)

	switch {
	case len(request.Files) > 0:
		buffer, formContentType, err := encodeMultipart(request.Body, request.Files)
		if err != nil {
			return nil, err
		}

		body = buffer
		contentType = formContentType
	case request.Body != nil:
		data, err := json.Marshal(request.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, request.Method, r.URL(request.Path), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	token := r.authToken
	if request.Token != nil {
		token = *request.Token
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	for k, v := range request.Headers {
		req.Header.Set(k, v)
	}

	// The encoded body dictates the content type, overrides only apply
	// to bodiless requests.
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

// encodeMultipart writes body fields as form values followed by the files.
func encodeMultipart(body any, files []File) (*bytes.Buffer, string, error) {
	fields, err := formFields(body)
	if err != nil {
		return nil, "", err
	}

	buffer := &bytes.Buffer{}
	writer := multipart.NewWriter(buffer)

	for _, field := range fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("writing form field %s: %w", field.name, err)
		}
	}

	for _, file := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.Name)))

		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("creating form file %s: %w", file.Name, err)
		}

		if _, err := part.Write(file.Content); err != nil {
			return nil, "", fmt.Errorf("writing form file %s: %w", file.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}

	return buffer, writer.FormDataContentType(), nil
}

type formField struct {
	name  string
	value string
}

// formFields flattens a JSON encodable object into sorted form values.
// Nested values are sent as JSON text, nulls are dropped.
func formFields(body any) ([]formField, error) {
	if body == nil {
		return nil, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling form body: %w", err)
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(data, &object); err != nil {
		return nil, fmt.Errorf("form body must be an object: %w", err)
	}

	fields := make([]formField, 0, len(object))

	for name, raw := range object {
		if string(raw) == "null" {
			continue
		}

		value := string(raw)

		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			value = s
		}

		fields = append(fields, formField{name: name, value: value})
	}

	slices.SortFunc(fields, func(a, b formField) int {
		return strings.Compare(a.name, b.name)
	})

	return fields, nil
}

// parsePayload decodes a JSON object, anything else is kept as raw text.
func parsePayload(body []byte) Payload {
	var payload Payload

	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return Payload{RawResponseKey: string(body)}
	}

	return payload
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n]
}
