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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/epasar/marketplace-e2e/pkg/config"
	"github.com/epasar/marketplace-e2e/pkg/constants"
	"github.com/epasar/marketplace-e2e/pkg/harness"
	"github.com/epasar/marketplace-e2e/pkg/marketplace"
	"github.com/epasar/marketplace-e2e/pkg/scenarios"

	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"
)

// suiteFunc builds the scenarios to select from for a set of accounts.
type suiteFunc func(accounts config.Accounts) []harness.Scenario

func allScenarios(accounts config.Accounts) []harness.Scenario {
	return scenarios.New(accounts).All()
}

func main() {
	os.Exit(run(signals.SetupSignalHandler(), os.Args[1:], os.Stdout, allScenarios))
}

// isTerminal reports whether colour output makes sense for w.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

// run executes the suite and returns the process exit code, 0 only when
// tests ran and all of them passed.
//
//nolint:cyclop
func run(ctx context.Context, args []string, out io.Writer, suite suiteFunc) (code int) {
	options, err := config.NewOptions()
	if err != nil {
		fmt.Fprintln(out, err)
		return 1
	}

	zapOptions := zap.Options{}

	goFlags := flag.NewFlagSet(constants.Application, flag.ContinueOnError)
	zapOptions.BindFlags(goFlags)

	flags := pflag.NewFlagSet(constants.Application, pflag.ContinueOnError)
	flags.SetOutput(out)

	options.AddFlags(flags)
	flags.AddGoFlagSet(goFlags)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}

		return 1
	}

	log.SetLogger(zap.New(zap.UseFlagOptions(&zapOptions)))

	logger := log.Log.WithName("init")
	logger.Info("suite starting", "application", constants.Application, "version", constants.Version, "revision", constants.Revision)

	if err := options.Complete(); err != nil {
		fmt.Fprintln(out, err)
		return 1
	}

	if err := options.Validate(); err != nil {
		fmt.Fprintln(out, err)
		return 1
	}

	selected, err := harness.Select(suite(options.Accounts), options.Scenarios)
	if err != nil {
		fmt.Fprintln(out, err)
		return 1
	}

	runID := uuid.NewString()

	runnerOptions := harness.RunnerOptions{
		RunID:        runID,
		LogRequests:  options.LogRequests,
		LogResponses: options.LogResponses,
	}

	if options.ValidateContract {
		contract, err := marketplace.NewContract(options.BaseURL)
		if err != nil {
			fmt.Fprintln(out, err)
			return 1
		}

		runnerOptions.Validator = contract
	}

	results := harness.NewResultLog(out, !options.NoColor && isTerminal(out))
	runner := harness.NewRunner(options.BaseURL, harness.NewHTTPClient(options.RequestTimeout), results, runnerOptions)

	ctx = log.IntoContext(ctx, log.Log.WithName("runner").WithValues("runID", runID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Errorf("%v", r), "scenario panicked", "runID", runID)
			fmt.Fprintf(out, "\n💥 unexpected error: %v\n", r)

			code = 1
		}
	}()

	fmt.Fprintf(out, "🚀 Starting E-Pasar API tests against %s\n", options.BaseURL)

	summary := harness.NewRunContext(runID, results, runner).Execute(ctx, selected)

	harness.PrintSummary(out, summary)

	if options.MetricsFile != "" {
		if err := harness.WriteMetrics(options.MetricsFile, summary); err != nil {
			logger.Error(err, "writing metrics", "path", options.MetricsFile)
		}
	}

	if ctx.Err() != nil {
		fmt.Fprintln(out, "\n⚠️ interrupted")
		return 1
	}

	if !summary.OK() {
		return 1
	}

	return 0
}
