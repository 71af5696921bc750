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

//nolint:revive,staticcheck // dot imports are standard for Gomega matchers
package scenarios

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	. "github.com/onsi/gomega"

	"github.com/epasar/marketplace-e2e/pkg/config"
	"github.com/epasar/marketplace-e2e/pkg/harness"
	"github.com/epasar/marketplace-e2e/pkg/marketplace"
)

// Authentication logs in every account, confirms each session belongs
// to the expected user and checks bad credentials are rejected.
func (s *Suite) Authentication() harness.Scenario {
	return harness.Scenario{
		Name:     "Authentication",
		Category: CategoryAuth,
		Run: func(ctx context.Context, scope *harness.Scope) {
			s.login(ctx, scope, harness.RoleSeller, s.accounts.Seller)
			s.login(ctx, scope, harness.RoleBuyer, s.accounts.Buyer)
			s.login(ctx, scope, harness.RoleAdmin, s.accounts.Admin)

			public := scope.Anonymous()

			public.Request(ctx, harness.Request{
				Name:   "Login Invalid Password",
				Method: http.MethodPost,
				Path:   s.endpoints.Login(),
				Body: marketplace.Credentials{
					Username: s.accounts.Buyer.Username,
					Password: s.accounts.Buyer.Password + "-wrong",
				},
				ExpectedStatus: http.StatusUnauthorized,
			})

			// The marketplace answers a missing token with a redirect status.
			public.Request(ctx, harness.Request{
				Name:           "Profile Without Token",
				Method:         http.MethodGet,
				Path:           s.endpoints.Profile(),
				ExpectedStatus: http.StatusMovedPermanently,
			})
		},
	}
}

func (s *Suite) login(ctx context.Context, scope *harness.Scope, role harness.Role, account config.Account) {
	title := strings.ToUpper(string(role[:1])) + string(role[1:])
	name := fmt.Sprintf("%s Login", title)

	ok, payload := scope.Anonymous().Request(ctx, harness.Request{
		Name:   name,
		Method: http.MethodPost,
		Path:   s.endpoints.Login(),
		Body: marketplace.Credentials{
			Username: account.Username,
			Password: account.Password,
		},
		ExpectedStatus: http.StatusOK,
	})
	if !ok {
		return
	}

	session, ok := data[marketplace.Session](scope, name, payload)
	if !ok {
		return
	}

	run := scope.Run()
	run.SetSession(role, harness.Session{
		Username: account.Username,
		Token:    session.Token,
		UserID:   session.ID(),
		UserAuth: session.UserAuth,
	})

	name = fmt.Sprintf("%s Profile", title)

	ok, payload = scope.As(role).Request(ctx, harness.Request{
		Name:           name,
		Method:         http.MethodGet,
		Path:           s.endpoints.Profile(),
		ExpectedStatus: http.StatusOK,
	})
	if !ok {
		return
	}

	profile, ok := data[marketplace.Profile](scope, name, payload)
	if !ok {
		return
	}

	scope.Expect(name+" Username", profile.Username, Equal(account.Username), "logged in as %s", profile.Username)
	scope.Expect(name+" Role", profile.UserAuth, Equal(session.UserAuth), "role %s", profile.UserAuth)

	// The login response does not always carry the user ID, the profile does.
	run.SetSession(role, harness.Session{
		Username: account.Username,
		Token:    session.Token,
		UserID:   profile.UserID,
		UserAuth: session.UserAuth,
	})
}
