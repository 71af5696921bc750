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

// Package harness runs ordered API test scenarios against a remote service
// and keeps score.
//
// # Components
//
//   - ResultLog is an append-only record of test outcomes.  Every outcome is
//     echoed to the transcript as it happens.
//   - Runner issues one HTTP request, compares the status code with the
//     expected one and records exactly one result.  Transport errors never
//     escape it, they become failed results.
//   - RunContext carries everything a scenario may read or write: sessions
//     per role, values captured from earlier responses and the log.
//   - Scenario declares its prerequisites up front.  A scenario whose
//     prerequisites are missing is recorded as skipped rather than run
//     against stale state.
//   - PrintSummary renders the final tally.
//
// Nothing here runs concurrently, a run is a single pass over the scenario
// list.
package harness
