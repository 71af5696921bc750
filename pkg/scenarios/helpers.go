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

package scenarios

import (
	"github.com/epasar/marketplace-e2e/pkg/harness"
	"github.com/epasar/marketplace-e2e/pkg/marketplace"
)

// data decodes a response, a schema mismatch is recorded as a failure.
func data[T any](s *harness.Scope, name string, payload harness.Payload) (T, bool) {
	v, err := marketplace.Data[T](payload)
	if err != nil {
		s.Record(name+" Schema", false, err.Error(), payload)
		return v, false
	}

	return v, true
}

// items decodes a list response, a schema mismatch is recorded as a failure.
func items[T any](s *harness.Scope, name string, payload harness.Payload) ([]T, bool) {
	v, err := marketplace.Items[T](payload)
	if err != nil {
		s.Record(name+" Schema", false, err.Error(), payload)
		return nil, false
	}

	return v, true
}

func usernames(users []marketplace.UserSummary) []string {
	names := make([]string, len(users))
	for i := range users {
		names[i] = users[i].Username
	}

	return names
}
