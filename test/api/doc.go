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

// Package api provides the fixtures for exercising the whole end-to-end
// pipeline, scenarios through runner to summary, against an in-memory
// marketplace.
//
// # Fault Injection
//
// The marketplace can be told to fail any route with a given status.  This
// lets the suites check the harness degrades the way an operator expects:
// a failed login skips everything that needs that session, and a broken
// listing skips everything that needs the captured product.
package api
