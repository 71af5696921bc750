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

package marketplace

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
)

//go:embed openapi.yaml
var openapiDocument []byte

var (
	ErrContract      = errors.New("contract violation")
	ErrUnknownRoute  = errors.New("route not in contract")
	ErrContractSetup = errors.New("loading contract")
)

// Contract validates responses against the OpenAPI description of the
// marketplace API.
type Contract struct {
	router routers.Router

	// prefix is the path component of the base URL, stripped before
	// routing.
	prefix string
}

// Schema returns the parsed OpenAPI document.
func Schema() (*openapi3.T, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(openapiDocument)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContractSetup, err)
	}

	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContractSetup, err)
	}

	return doc, nil
}

// NewContract loads the embedded contract for a server rooted at baseURL.
func NewContract(baseURL string) (*Contract, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContractSetup, err)
	}

	doc, err := Schema()
	if err != nil {
		return nil, err
	}

	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContractSetup, err)
	}

	return &Contract{
		router: router,
		prefix: strings.TrimSuffix(u.Path, "/"),
	}, nil
}

// Validate checks a response.  Undocumented routes and status codes are
// violations too.
func (c *Contract) Validate(ctx context.Context, req *http.Request, status int, header http.Header, body []byte) error {
	routed := req.Clone(ctx)
	routed.URL.Path = strings.TrimPrefix(req.URL.Path, c.prefix)
	routed.URL.RawPath = ""

	route, pathParams, err := c.router.FindRoute(routed)
	if err != nil {
		return fmt.Errorf("%w: %s %s", ErrUnknownRoute, req.Method, routed.URL.Path)
	}

	options := &openapi3filter.Options{
		IncludeResponseStatus: true,
		MultiError:            true,
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    routed,
			PathParams: pathParams,
			Route:      route,
			Options:    options,
		},
		Status:  status,
		Header:  header,
		Options: options,
	}

	input.SetBodyBytes(body)

	if err := openapi3filter.ValidateResponse(ctx, input); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrContract, req.Method, routed.URL.Path, err)
	}

	return nil
}
