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
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/onsi/gomega/types"
	"github.com/spjmurray/go-util/pkg/set"

	"k8s.io/utils/ptr"
)

var (
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrMissingSession  = errors.New("no session")
	ErrMissingValue    = errors.New("no value")
)

// Requirement is a precondition on the run state.
type Requirement func(*RunContext) error

// RequireSession requires a logged in user for the role.
func RequireSession(role Role) Requirement {
	return func(c *RunContext) error {
		if _, ok := c.Session(role); !ok {
			return fmt.Errorf("%w for %s", ErrMissingSession, role)
		}

		return nil
	}
}

// RequireValue requires a value captured by an earlier scenario.
func RequireValue(key Key) Requirement {
	return func(c *RunContext) error {
		if _, ok := c.Value(key); !ok {
			return fmt.Errorf("%w for %s", ErrMissingValue, key)
		}

		return nil
	}
}

// Scenario is a named sequence of requests and assertions.
type Scenario struct {
	Name     string
	Category Category
	Requires []Requirement
	Run      func(ctx context.Context, s *Scope)
}

// Select returns the named scenarios in suite order, or all of them when
// no names are given.
func Select(scenarios []Scenario, names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return scenarios, nil
	}

	known := make([]string, len(scenarios))
	for i := range scenarios {
		known[i] = scenarios[i].Name
	}

	requested := set.New[string](names...)

	var unknown []string

	for name := range requested.Difference(set.New[string](known...)).All() {
		unknown = append(unknown, name)
	}

	if len(unknown) > 0 {
		slices.Sort(unknown)

		return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, strings.Join(unknown, ", "))
	}

	selected := slices.DeleteFunc(slices.Clone(scenarios), func(s Scenario) bool {
		return !slices.Contains(names, s.Name)
	})

	return selected, nil
}

// Execute runs scenarios in order and returns the final summary.  Scenarios
// with unmet requirements are skipped.  Cancellation stops the run before
// the next scenario.
func (c *RunContext) Execute(ctx context.Context, scenarios []Scenario) Summary {
	for _, scenario := range scenarios {
		if ctx.Err() != nil {
			break
		}

		c.Log.Section(scenario.Name)

		var unmet []string

		for _, requirement := range scenario.Requires {
			if err := requirement(c); err != nil {
				unmet = append(unmet, err.Error())
			}
		}

		if len(unmet) > 0 {
			c.Log.Skip(scenario.Name, scenario.Category, "missing prerequisites: "+strings.Join(unmet, "; "))
			continue
		}

		scenario.Run(ctx, &Scope{
			run:      c,
			category: scenario.Category,
		})
	}

	return c.Log.Summary()
}

// Scope is what a scenario uses to talk to the API and record outcomes.
type Scope struct {
	run       *RunContext
	category  Category
	as        Role
	anonymous bool
}

// Run exposes the run state.
func (s *Scope) Run() *RunContext {
	return s.run
}

// As returns a scope whose requests carry the role's token.
func (s *Scope) As(role Role) *Scope {
	scope := *s
	scope.as = role
	scope.anonymous = false

	return &scope
}

// Anonymous returns a scope whose requests carry no token.
func (s *Scope) Anonymous() *Scope {
	scope := *s
	scope.as = ""
	scope.anonymous = true

	return &scope
}

// Request performs a request, see Runner.Run.
func (s *Scope) Request(ctx context.Context, request Request) (bool, Payload) {
	request.Category = s.category

	if request.Token == nil {
		switch {
		case s.anonymous:
			request.Token = ptr.To("")
		case s.as != "":
			session, _ := s.run.Session(s.as)
			request.Token = ptr.To(session.Token)
		}
	}

	return s.run.Runner.Run(ctx, request)
}

// Record logs an outcome decided by the scenario itself.
func (s *Scope) Record(name string, passed bool, message string, payload Payload) {
	outcome := Failed
	if passed {
		outcome = Passed
	}

	s.run.Log.Record(TestResult{
		Name:     name,
		Category: s.category,
		Outcome:  outcome,
		Message:  message,
		Payload:  payload,
	})
}

// Expect records whether actual satisfies the matcher.  The optional
// description is formatted with fmt.Sprintf and used as the passing message.
func (s *Scope) Expect(name string, actual any, matcher types.GomegaMatcher, description ...any) bool {
	message := describe(description)

	ok, err := matcher.Match(actual)

	switch {
	case err != nil:
		s.Record(name, false, err.Error(), nil)
	case !ok:
		failure := matcher.FailureMessage(actual)
		if message != "ok" {
			failure = message + ": " + failure
		}

		s.Record(name, false, failure, nil)
	default:
		s.Record(name, true, message, nil)
	}

	return ok && err == nil
}

// Check records a failure for err, or a pass with the description.
func (s *Scope) Check(name string, err error, description ...any) bool {
	if err != nil {
		s.Record(name, false, err.Error(), nil)
		return false
	}

	s.Record(name, true, describe(description), nil)

	return true
}

func describe(description []any) string {
	switch len(description) {
	case 0:
		return "ok"
	case 1:
		return fmt.Sprint(description[0])
	default:
		format, ok := description[0].(string)
		if !ok {
			return fmt.Sprint(description...)
		}

		return fmt.Sprintf(format, description[1:]...)
	}
}
