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

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/onsi/ginkgo/v2"

	"github.com/epasar/marketplace-e2e/pkg/config"
	"github.com/epasar/marketplace-e2e/pkg/harness"
	"github.com/epasar/marketplace-e2e/pkg/marketplace"
	"github.com/epasar/marketplace-e2e/pkg/marketplace/fake"
	"github.com/epasar/marketplace-e2e/pkg/scenarios"
)

// requestTimeout is generous, the marketplace is in process.
const requestTimeout = 5 * time.Second

// Marketplace is a fake marketplace served over HTTP beneath /api.
type Marketplace struct {
	*fake.Server

	server *httptest.Server

	// BaseURL is the API root.
	BaseURL string
}

// StartMarketplace starts a freshly seeded marketplace.
func StartMarketplace() *Marketplace {
	m := &Marketplace{
		Server: fake.New(),
	}

	m.server = httptest.NewServer(http.StripPrefix("/api", m.Handler()))
	m.BaseURL = m.server.URL + "/api"

	return m
}

// Close stops the server.
func (m *Marketplace) Close() {
	m.server.Close()
}

// UnreachableURL returns a base URL nothing is listening on.
func UnreachableURL() string {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	return server.URL + "/api"
}

// Run is a harness run whose transcript is captured as well as written
// to the Ginkgo output.
type Run struct {
	*harness.RunContext

	Transcript *bytes.Buffer

	accounts config.Accounts
}

// NewRun prepares a run against baseURL.  Contract validation is enabled
// when validate is set.
func NewRun(baseURL string, accounts config.Accounts, validate bool) (*Run, error) {
	transcript := &bytes.Buffer{}

	log := harness.NewResultLog(io.MultiWriter(ginkgo.GinkgoWriter, transcript), false)

	options := harness.RunnerOptions{
		RunID: "e2e-suite",
	}

	if validate {
		contract, err := marketplace.NewContract(baseURL)
		if err != nil {
			return nil, err
		}

		options.Validator = contract
	}

	runner := harness.NewRunner(baseURL, harness.NewHTTPClient(requestTimeout), log, options)

	return &Run{
		RunContext: harness.NewRunContext(options.RunID, log, runner),
		Transcript: transcript,
		accounts:   accounts,
	}, nil
}

// Execute runs the named scenarios, or all of them.
func (r *Run) Execute(ctx context.Context, names ...string) (harness.Summary, error) {
	selected, err := harness.Select(scenarios.New(r.accounts).All(), names)
	if err != nil {
		return harness.Summary{}, err
	}

	return r.RunContext.Execute(logr.NewContext(ctx, ginkgoLogger()), selected), nil
}

// ginkgoLogger sends runner logs to the Ginkgo output so they are only
// shown for failed specs.
func ginkgoLogger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		fmt.Fprintln(ginkgo.GinkgoWriter, prefix, args)
	}, funcr.Options{}).WithName("runner")
}
