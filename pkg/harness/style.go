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

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
)

// style renders transcript lines, optionally with ANSI colour.
type style struct {
	color bool
}

func (s style) paint(code, text string) string {
	if !s.color {
		return text
	}

	return code + text + ansiReset
}

func (s style) glyph(o Outcome) string {
	switch o {
	case Passed:
		return "✅"
	case Skipped:
		return "⏭️"
	default:
		return "❌"
	}
}

func (s style) colour(o Outcome) string {
	switch o {
	case Passed:
		return ansiGreen
	case Skipped:
		return ansiYellow
	default:
		return ansiRed
	}
}

func (s style) line(r TestResult) string {
	return s.paint(s.colour(r.Outcome), s.glyph(r.Outcome)+" "+r.Name) + ": " + r.Message
}

func (s style) heading(text string) string {
	return s.paint(ansiBold, text)
}
