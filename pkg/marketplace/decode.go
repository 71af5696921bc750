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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/epasar/marketplace-e2e/pkg/harness"
)

var (
	ErrMissingEnvelope = errors.New("response has no data envelope")
	ErrDecode          = errors.New("response data does not match schema")
)

// validator is implemented by schemas with required fields.
type validator interface {
	Validate() error
}

func envelope(payload harness.Payload) (json.RawMessage, error) {
	data, ok := payload["data"]
	if !ok || data == nil {
		return nil, ErrMissingEnvelope
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return raw, nil
}

func validate(v any) error {
	if v, ok := v.(validator); ok {
		return v.Validate()
	}

	return nil
}

// Data decodes the data member of a response envelope into T.  Type
// mismatches and missing required fields are errors, nothing is defaulted.
func Data[T any](payload harness.Payload) (T, error) {
	var out T

	raw, err := envelope(payload)
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if err := validate(&out); err != nil {
		return out, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return out, nil
}

// Items decodes a data member that is a list, validating every element.
func Items[T any](payload harness.Payload) ([]T, error) {
	out, err := Data[[]T](payload)
	if err != nil {
		return nil, err
	}

	for i := range out {
		if err := validate(&out[i]); err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", ErrDecode, i, err)
		}
	}

	return out, nil
}

// StatusMessage returns the human readable message of a response envelope.
func StatusMessage(payload harness.Payload) string {
	if message, ok := payload["message"].(string); ok {
		return message
	}

	return ""
}
